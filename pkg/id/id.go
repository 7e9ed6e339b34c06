// Package id generates identifiers for backtest runs and their orders.
package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	// Seed from crypto/rand; ulid.Monotonic keeps IDs from the same
	// millisecond increasing.
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New returns a ULID string. Orders of a run sort in execution order and
// runs sort by start time, which keeps the SQLite indexes append-only.
func New() string {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), mono)
	if err != nil {
		// only if the clock goes backwards past the monotonic window
		panic(err)
	}
	return id.String()
}

// Time returns the creation time encoded in a ULID string.
func Time(s string) (time.Time, error) {
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()).UTC(), nil
}

// Short returns the first 8 characters of an id for display.
func Short(s string) string {
	if len(s) <= 8 {
		return s
	}
	return s[:8]
}
