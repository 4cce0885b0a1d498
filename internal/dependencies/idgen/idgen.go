package idgen

import (
	"strings"

	"github.com/google/uuid"
)

// IDLength is the number of hex characters in a generated id
const IDLength = 8

// Generator produces short identifiers. Collisions are possible; callers are
// expected to check and retry.
type Generator interface {
	Next() string
}

// UUIDGenerator takes the leading hex characters of a random v4 UUID
type UUIDGenerator struct{}

// New creates a new UUIDGenerator
func New() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Next returns an 8-character lowercase hex id
func (g *UUIDGenerator) Next() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:IDLength]
}
