package interfaces

import "errors"

// ErrNotFound is returned when a record does not exist. Services map it
// to a not-found response so clients can tell "ride vanished" apart from
// "ride taken by someone else".
var ErrNotFound = errors.New("record not found")
