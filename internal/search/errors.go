package search

import (
	"errors"
	"fmt"
)

// ConnectivityError reports that the vector store or its collection could not be opened.
// It is cached by the Engine and not retried; the remedy is creating the collection
// (notesearch init) or fixing the configured location.
type ConnectivityError struct {
	Location   string
	Collection string
	Err        error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("failed to connect to vector store at %s (collection %q): %v; make sure the store is initialized",
		e.Location, e.Collection, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// IsConnectivityError reports whether err wraps a *ConnectivityError.
func IsConnectivityError(err error) bool {
	var ce *ConnectivityError
	return errors.As(err, &ce)
}
