package taskqueue

import "errors"

// terminalError marks a failure that redelivery cannot fix. The dispatcher
// records it and drops the delivery instead of retrying.
type terminalError struct {
	err error
}

func (e terminalError) Error() string { return e.err.Error() }

func (e terminalError) Unwrap() error { return e.err }

// Terminal wraps err so the dispatcher treats it as final. Wrapping nil
// returns nil.
func Terminal(err error) error {
	if err == nil {
		return nil
	}
	return terminalError{err: err}
}

// IsTerminal reports whether err carries a terminal marker anywhere in its
// chain. Unclassified errors are transient: when in doubt, retry.
func IsTerminal(err error) bool {
	var t terminalError
	return errors.As(err, &t)
}
