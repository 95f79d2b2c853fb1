package mqtt

import "sync"

// FakeClient records published events for test assertions and lets tests
// inject inbound payloads. Safe for concurrent use; the guardian activities
// publish from more than one goroutine in tests.
type FakeClient struct {
	mu sync.Mutex

	// Recorded outbound events.
	Acks         []AckEvent
	Syncs        []SyncEvent
	Trends       []TrendEvent
	SystemEvents []SystemEvent

	// PublishError, if set, is returned by every publish method.
	PublishError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool

	// Deliver, if set, receives injected inbound payloads.
	Deliver func(Inbound)
}

// NewFakeClient creates a FakeClient for testing.
func NewFakeClient() *FakeClient {
	return &FakeClient{Connected: true}
}

// Inject simulates an inbound broker message.
func (f *FakeClient) Inject(in Inbound) {
	f.mu.Lock()
	deliver := f.Deliver
	f.mu.Unlock()
	if deliver != nil {
		deliver(in)
	}
}

// PublishAck records the acknowledgement.
func (f *FakeClient) PublishAck(event AckEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Acks = append(f.Acks, event)
	return nil
}

// PublishSync records the sync confirmation.
func (f *FakeClient) PublishSync(event SyncEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Syncs = append(f.Syncs, event)
	return nil
}

// PublishTrend records the trend report.
func (f *FakeClient) PublishTrend(event TrendEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Trends = append(f.Trends, event)
	return nil
}

// PublishSystem records the system event.
func (f *FakeClient) PublishSystem(event SystemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	f.SystemEvents = append(f.SystemEvents, event)
	return nil
}

// AckCount returns the number of recorded acknowledgements.
func (f *FakeClient) AckCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Acks)
}

// SyncCount returns the number of recorded sync confirmations.
func (f *FakeClient) SyncCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Syncs)
}

// TrendCount returns the number of recorded trend reports.
func (f *FakeClient) TrendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Trends)
}

// IsConnected reports whether the fake client is "connected".
func (f *FakeClient) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// Close marks the client as closed.
func (f *FakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}
