// Package fs implements the flat-file adapters: the gravity.list domain
// store, the regex.list rule file and the dnsmasq configuration directory.
package fs

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"
)

// maxLineSize bounds a single line. Gravity lists hold one short name per
// line, but configuration files occasionally carry long values.
const maxLineSize = 1 << 20

// readLines returns the trimmed lines of r, skipping blanks and # comments.
func readLines(ctx context.Context, r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)

	var out []string
	for n := 0; sc.Scan(); n++ {
		if n%65536 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}

// readFileLines opens path and reads it with readLines.
func readFileLines(ctx context.Context, path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readLines(ctx, f)
}
