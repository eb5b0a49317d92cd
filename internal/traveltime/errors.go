package traveltime

import (
	"errors"

	"github.com/quakelocate/iloc-go/internal/locerr"
)

// ErrTableMiss marks a (delta, depth) query outside a table's coverage or
// landing on a sentinel cell, per §4.2's "Corrections fail" clause. Callers
// (the phase identifier, the inversion kernel) treat this as
// locerr.ErrPredictFailed and downgrade the phase to non-defining rather
// than fail the event.
var ErrTableMiss = errors.New("travel-time table miss")

func wrapPredictFailed(err error) error {
	return errors.Join(locerr.ErrPredictFailed, err)
}
