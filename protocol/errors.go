package protocol

import "errors"

// ErrMalformed is returned when a recognized command is missing a required
// key or, for SET, a value separator.
var ErrMalformed = errors.New("protocol: malformed command")

// ErrUnknownCommand is returned when the first token isn't GET, SET, or DEL.
var ErrUnknownCommand = errors.New("protocol: unknown command")
