package ghub

import "github.com/pkg/errors"

// Sentinel errors returned by the settings reader. Callers match them with
// errors.Is; the returned errors carry additional context.
var (
	// ErrNotFound means the settings file is missing or holds no rows.
	ErrNotFound = errors.New("ghub settings not found")

	// ErrParse means the stored settings blob is not a JSON object, or a
	// value inside it does not have the expected shape.
	ErrParse = errors.New("ghub settings malformed")

	// ErrQuery means the settings database could not be queried.
	ErrQuery = errors.New("ghub settings query failed")
)
