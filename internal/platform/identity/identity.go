package identity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Generator produces UUID entity ids and ULID-backed entry numbers. ULIDs are
// lexicographically sortable, so entry numbers order by creation time.
type Generator struct{}

// NewGenerator creates a new Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// NewID generates a new UUID string for entity identifiers.
func (g *Generator) NewID() string {
	return uuid.NewString()
}

// NewEntryNumber generates a unique entry number stamped at the given time.
func (g *Generator) NewEntryNumber(at time.Time) string {
	return fmt.Sprintf("JE-%s", ulid.MustNew(ulid.Timestamp(at), ulid.DefaultEntropy()).String())
}
