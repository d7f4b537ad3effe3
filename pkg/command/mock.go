package command

import "sync"

// MockBackend is a test backend that records calls and can be made to
// fail or block.
type MockBackend struct {
	mu        sync.Mutex
	Simulated []Event
	Executed  []Event

	// Err, when set, is returned from every call.
	Err error

	// Block, when set, is received from before every call returns,
	// letting tests hold the backend busy.
	Block chan struct{}
}

// NewMockBackend creates an empty mock.
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

// Simulate records the event.
func (m *MockBackend) Simulate(e Event) error {
	if m.Block != nil {
		<-m.Block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Simulated = append(m.Simulated, e)
	return m.Err
}

// Execute records the event.
func (m *MockBackend) Execute(e Event) error {
	if m.Block != nil {
		<-m.Block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Executed = append(m.Executed, e)
	return m.Err
}

// SimulatedCount returns how many Simulate calls completed.
func (m *MockBackend) SimulatedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Simulated)
}

// ExecutedCount returns how many Execute calls completed.
func (m *MockBackend) ExecutedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Executed)
}

var _ Backend = (*MockBackend)(nil)
