package testutil

import "errors"

// ErrSimulated is returned by failing fake contributors and handlers.
var ErrSimulated = errors.New("simulated error for testing")
