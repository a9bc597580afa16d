package id

import "github.com/google/uuid"

// Generator creates opaque IDs used to correlate outbound requests.
type Generator interface {
	NewID() string
}

type UUIDGenerator struct{}

func NewUUIDGenerator() UUIDGenerator {
	return UUIDGenerator{}
}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// Static returns the same ID every time.
type Static string

func (s Static) NewID() string {
	return string(s)
}
