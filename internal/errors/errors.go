// internal/errors/errors.go
package errors

import (
	"fmt"
	"time"
)

// ErrInvalidInterval is returned when the configured poll interval is not a
// positive duration.
type ErrInvalidInterval struct {
	Interval time.Duration
}

func (e *ErrInvalidInterval) Error() string {
	return fmt.Sprintf("invalid poll interval: %s, expected a positive duration", e.Interval)
}
