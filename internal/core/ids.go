package core

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IDGenerator hands out unique identifiers for warehouses, items and transactions.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues random v4 UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// SequenceGenerator issues prefix-0001, prefix-0002, ... and is deterministic across runs.
type SequenceGenerator struct {
	prefix string
	next   int
}

func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{prefix: prefix}
}

func (g *SequenceGenerator) NewID() string {
	g.next++
	return fmt.Sprintf("%s-%04d", g.prefix, g.next)
}

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

var validID = regexp.MustCompile(`^[A-Za-z0-9\-]{1,64}$`)

// NormalizeID trims raw and checks it is a well-formed identifier.
// Malformed ids are rejected rather than coerced.
func NormalizeID(field, raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", validationError(field, raw, "%s is required", field)
	}
	if !validID.MatchString(id) {
		return "", validationError(field, raw, "%s %q is not a valid identifier", field, raw)
	}
	return id, nil
}
