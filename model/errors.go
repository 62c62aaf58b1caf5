package model

import (
	"errors"
	"fmt"
)

// ErrConfig tags failures caused by one table's configuration (malformed
// transform parameters, a script that does not satisfy its contract, an
// unknown variant name) rather than by the input document. A caller extracting
// many tables reports the offending table and moves on; ErrConfig is never
// fatal to a whole run.
var ErrConfig = errors.New("configuration error")

// Configf builds an ErrConfig-category error. The result matches
// errors.Is(err, ErrConfig).
func Configf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}
