package records

import (
	"context"
	"errors"

	"raspador-backend/lib/scrapers/camara"
)

// BillFanout delivers each emitted bill to every sink. A failing sink
// does not stop delivery to the others.
type BillFanout []camara.BillEmitter

func (f BillFanout) EmitBill(ctx context.Context, bill camara.BillRecord) error {
	var errlist []error
	for _, sink := range f {
		if err := sink.EmitBill(ctx, bill); err != nil {
			errlist = append(errlist, err)
		}
	}
	return errors.Join(errlist...)
}

// EventFanout delivers each emitted event to every sink.
type EventFanout []camara.EventEmitter

func (f EventFanout) EmitEvent(ctx context.Context, event camara.EventRecord) error {
	var errlist []error
	for _, sink := range f {
		if err := sink.EmitEvent(ctx, event); err != nil {
			errlist = append(errlist, err)
		}
	}
	return errors.Join(errlist...)
}
