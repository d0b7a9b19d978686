package domain

import (
	"errors"
	"fmt"
)

// Domain errors returned by the engine and its adapters. Check with errors.Is.
var (
	// ErrPrecondition is returned when a required path, file or store is absent.
	// No mutation has happened when it is returned.
	ErrPrecondition = errors.New("gravityopt: precondition failed")

	// ErrEmptyGravity is returned when the loaded gravity set is empty.
	ErrEmptyGravity = fmt.Errorf("%w: no gravity domains found", ErrPrecondition)

	// ErrPersistence is returned when the removal could not be committed.
	// The backing store or file is left as it was before the run.
	ErrPersistence = errors.New("gravityopt: persistence failed")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("gravityopt: invalid configuration")
)
