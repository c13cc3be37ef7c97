package session

import "errors"

// Store-level error conditions. Callers match these with errors.Is; the
// wrapped messages carry the offending id or path.
var (
	// ErrNoActiveSession means no pointer to a current session exists.
	ErrNoActiveSession = errors.New("no active session (run: grocer new)")

	// ErrSessionNotFound means no session record exists at the given id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrCorruptSession means a persisted session could not be decoded, or
	// its schema version does not match the current one. Corruption is
	// reported rather than silently coerced; the only documented
	// backward-compatible default is a recipe's missing scale factor.
	ErrCorruptSession = errors.New("corrupt session")
)
