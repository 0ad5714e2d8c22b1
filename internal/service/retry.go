package service

import (
	"errors"

	"github.com/aserdiukov/stockledger/internal/domain"
)

// maxAttempts bounds how often a read-modify-write sequence is retried
// when the store reports a version conflict.
const maxAttempts = 5

// errTooManyConflicts is returned when every attempt lost its race.
// It is an opaque failure; callers never see the conflict kind itself.
var errTooManyConflicts = errors.New("operation aborted after repeated write conflicts")

// withConflictRetry runs fn until it returns anything other than
// domain.ErrVersionConflict, up to maxAttempts times. fn must re-read
// the entities it touches on every attempt.
func withConflictRetry(fn func() error) error {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := fn()
		if !errors.Is(err, domain.ErrVersionConflict) {
			return err
		}
	}
	return errTooManyConflicts
}
