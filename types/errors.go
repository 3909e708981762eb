package types

import (
	"errors"
	"fmt"
)

var (
	// ErrDataIntegrity indicates the records, label assignment and embedding
	// table do not describe the same player universe.
	ErrDataIntegrity = errors.New("data integrity violation")

	// ErrUnknownPlayer indicates a query identity with no label or no row.
	ErrUnknownPlayer = errors.New("player not found")
)

// DataIntegrityError is raised at index build time. It is fatal: a process
// must not serve traffic with an inconsistent index.
type DataIntegrityError struct {
	Name   string
	Label  int
	Reason string
}

func (e *DataIntegrityError) Error() string {
	switch {
	case e.Name != "":
		return fmt.Sprintf("data integrity: player %q (label %d): %s", e.Name, e.Label, e.Reason)
	case e.Label >= 0:
		return fmt.Sprintf("data integrity: label %d: %s", e.Label, e.Reason)
	default:
		return "data integrity: " + e.Reason
	}
}

// Is reports whether target is ErrDataIntegrity.
func (e *DataIntegrityError) Is(target error) bool {
	return target == ErrDataIntegrity
}

// UnknownPlayerError is returned to callers as a user-facing "player not found".
type UnknownPlayerError struct {
	Name  string
	Label int
}

func (e *UnknownPlayerError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("player not found: %q", e.Name)
	}
	return fmt.Sprintf("player not found: label %d", e.Label)
}

// Is reports whether target is ErrUnknownPlayer.
func (e *UnknownPlayerError) Is(target error) bool {
	return target == ErrUnknownPlayer
}
