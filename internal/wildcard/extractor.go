// Package wildcard finds gravity domains made redundant by dnsmasq wildcard
// blocks (address=/<base>/<target>), which block a base domain and every
// name below it.
package wildcard

import (
	"regexp"
	"strings"

	"github.com/miekg/dns"

	"github.com/bft-labs/gravityopt/internal/domain"
)

// addressLine matches a dnsmasq wildcard block whose target is an IPv4
// literal, "::", "#" or empty. Group 1 holds the "/"-separated bases.
var addressLine = regexp.MustCompile(`^address=/(.+)/(([0-9]{1,3}\.){3}[0-9]{1,3}|::|#)?$`)

// Extraction is the outcome of scanning configuration lines.
type Extraction struct {
	// Bases are the wildcarded base domains, lowercased.
	Bases domain.Set

	// Invalid are bases on matching lines that are not usable domain names.
	Invalid []string
}

// Extract scans lines for wildcard blocks. Lines that do not match the
// grammar are skipped silently; a matching line may list several bases
// (address=/a.com/b.com/#), each of which becomes a rule.
func Extract(lines []string) Extraction {
	ex := Extraction{Bases: domain.NewSet()}

	for _, line := range lines {
		m := addressLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		for _, raw := range strings.Split(m[1], "/") {
			if raw == "" {
				continue
			}
			base, ok := normalizeBase(raw)
			if !ok {
				ex.Invalid = append(ex.Invalid, raw)
				continue
			}
			ex.Bases.Add(base)
		}
	}

	return ex
}

// normalizeBase lowercases a base, drops a trailing root dot and checks it is
// a plain DNS name.
func normalizeBase(raw string) (string, bool) {
	base := strings.ToLower(strings.TrimSuffix(raw, "."))
	if base == "" || strings.HasPrefix(base, ".") {
		return "", false
	}
	if _, ok := dns.IsDomainName(base); !ok {
		return "", false
	}
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
		default:
			return "", false
		}
	}
	return base, true
}
