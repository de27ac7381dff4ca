package model

import "github.com/google/uuid"

// newID returns a UUIDv7 so primary keys stay time-sortable.
func newID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails if the random source is broken; nothing sensible
		// can run without one.
		panic(err)
	}
	return id
}
