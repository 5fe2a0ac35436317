package pipeline

import "github.com/google/uuid"

// newJobID returns a UUIDv7, so IDs sort by submission time.
func newJobID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Only fails when the random source does.
		return uuid.NewString()
	}
	return id.String()
}
