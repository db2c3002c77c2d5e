package envelope

import "time"

// Package envelope implements the stub response envelope: every invocation,
// whatever its input, is answered with a success marker, a capture timestamp,
// and the result value. Construction never fails.

// StatusOK is the only status value an envelope ever carries.
const StatusOK = "ok"

// Clock abstracts the time source so tests can assert on timestamps
// deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the system clock.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time { return time.Now() }

// Envelope tags an arbitrary result value with a success marker and an
// epoch-millisecond capture timestamp.
type Envelope struct {
	Status    string `json:"status" msgpack:"status"`
	Timestamp int64  `json:"timestamp" msgpack:"timestamp"`
	Data      any    `json:"data" msgpack:"data"`
}

// New wraps data in a success envelope stamped from clk. It accepts any
// value, including nil, and cannot fail.
func New(clk Clock, data any) Envelope {
	return Envelope{
		Status:    StatusOK,
		Timestamp: clk.Now().UnixMilli(),
		Data:      data,
	}
}
