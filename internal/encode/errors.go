package encode

import (
	"errors"
	"fmt"
)

// EncodeError reports a failed export of one output format. The
// timeline that produced it stays valid and can still be written to
// other formats.
type EncodeError struct {
	Format string
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Format, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// wrap tags err with the format unless it already carries one.
func wrap(format string, err error) error {
	if err == nil {
		return nil
	}
	var ee *EncodeError
	if errors.As(err, &ee) {
		return err
	}
	return &EncodeError{Format: format, Err: err}
}
