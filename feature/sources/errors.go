package sources

import "fmt"

// TransientSourceError reports a feed failure that is local to one source: a
// sync cycle records it and keeps going with the remaining feeds, and the
// next cycle retries from scratch.
type TransientSourceError struct {
	Source string
	Err    error
}

func (e *TransientSourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *TransientSourceError) Unwrap() error {
	return e.Err
}

func transientError(source string, err error) error {
	if err == nil {
		return nil
	}
	return &TransientSourceError{Source: source, Err: err}
}
