package workout

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

type IDGenerator interface {
	NewID(at time.Time) string
}

// KSUIDGenerator produces time-ordered ids, so sorting ids also sorts by
// creation time down to the second.
type KSUIDGenerator struct{}

func (KSUIDGenerator) NewID(at time.Time) string {
	id, err := ksuid.NewRandomWithTime(at)
	if err != nil {
		return ksuid.New().String()
	}
	return id.String()
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(time.Time) string {
	return uuid.NewString()
}

func NewIDGenerator(scheme string) (IDGenerator, error) {
	switch scheme {
	case "", "ksuid":
		return KSUIDGenerator{}, nil
	case "uuid":
		return UUIDGenerator{}, nil
	}
	return nil, fmt.Errorf("unknown id scheme %q", scheme)
}
