package testsupport

import (
	"context"
	"sync"

	"github.com/goliatone/go-formwizard/pkg/payload"
	"github.com/goliatone/go-formwizard/pkg/submission"
)

// RecordingTransport records every payload it is asked to send. Failures can
// be queued with FailNext and sends can be held open with Hold.
type RecordingTransport struct {
	mu      sync.Mutex
	sent    []payload.Payload
	errs    []error
	hold    chan struct{}
	started chan struct{}
	receipt submission.Receipt
}

// Ensure the implementation satisfies the submission contract.
var _ submission.Transport = (*RecordingTransport)(nil)

// NewRecordingTransport returns a transport that accepts every payload with a
// 200 receipt.
func NewRecordingTransport() *RecordingTransport {
	return &RecordingTransport{
		started: make(chan struct{}, 64),
		receipt: submission.Receipt{StatusCode: 200, Message: "OK"},
	}
}

// FailNext queues errors returned by the next sends, one per call.
func (t *RecordingTransport) FailNext(errs ...error) {
	t.mu.Lock()
	t.errs = append(t.errs, errs...)
	t.mu.Unlock()
}

// Hold makes subsequent sends block until the returned release func is
// called or their context ends.
func (t *RecordingTransport) Hold() (release func()) {
	ch := make(chan struct{})
	t.mu.Lock()
	t.hold = ch
	t.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			if t.hold == ch {
				t.hold = nil
			}
			t.mu.Unlock()
			close(ch)
		})
	}
}

// Started receives one value each time Send is entered.
func (t *RecordingTransport) Started() <-chan struct{} {
	return t.started
}

// Send records p and replies according to the queued behaviour.
func (t *RecordingTransport) Send(ctx context.Context, p payload.Payload) (submission.Receipt, error) {
	t.mu.Lock()
	t.sent = append(t.sent, p)
	hold := t.hold
	var err error
	if len(t.errs) > 0 {
		err = t.errs[0]
		t.errs = t.errs[1:]
	}
	receipt := t.receipt
	t.mu.Unlock()

	select {
	case t.started <- struct{}{}:
	default:
	}

	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return submission.Receipt{}, ctx.Err()
		}
	}
	if err != nil {
		return submission.Receipt{}, err
	}
	return receipt, nil
}

// Sent returns the recorded payloads in call order.
func (t *RecordingTransport) Sent() []payload.Payload {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]payload.Payload, len(t.sent))
	copy(out, t.sent)
	return out
}

// Calls reports how many sends were attempted.
func (t *RecordingTransport) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sent)
}
