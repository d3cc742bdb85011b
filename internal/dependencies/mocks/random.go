package mocks

import "github.com/netznav/navigator/internal/dependencies/random"

// MockRandom is a mock implementation of Random for testing. Codes are
// returned from a queue so tests can force specific (or colliding) ids.
type MockRandom struct {
	codes []string
	next  int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// QueueCodes adds values to the result queue
func (r *MockRandom) QueueCodes(codes ...string) {
	r.codes = append(r.codes, codes...)
}

// Code returns the next queued result. It panics when the queue is empty:
// returning a constant would make callers that retry on collision loop
// forever, so a forgotten QueueCodes call should fail the test loudly.
func (r *MockRandom) Code(length int, alphabet string) string {
	if r.next >= len(r.codes) {
		panic("mocks: MockRandom code queue exhausted, queue more with QueueCodes")
	}
	code := r.codes[r.next]
	r.next++
	return code
}
