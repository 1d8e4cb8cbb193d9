// ABOUTME: Clock and ID source for the sync engine
// ABOUTME: Injected so creation timestamps and hashes are deterministic in tests

package clock

import (
	"time"

	"github.com/google/uuid"
)

// TimeFormat is the textual timestamp format the remote API speaks.
const TimeFormat = "2006-01-02T15:04:05Z"

// Clock supplies the current time in API format and fresh record IDs.
type Clock interface {
	Now() string
	NewID() string
}

// System is the production Clock backed by time.Now and random UUIDs.
type System struct{}

func (System) Now() string {
	return time.Now().UTC().Format(TimeFormat)
}

func (System) NewID() string {
	return uuid.New().String()
}
