package utils

import "github.com/google/uuid"

// UUIDGenerator issues run identifiers. Time-ordered v7 identifiers keep
// log lines of consecutive passes sortable.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
