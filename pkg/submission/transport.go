package submission

import (
	"context"

	"github.com/goliatone/go-formwizard/pkg/payload"
)

// Receipt describes what the receiving side reported for a delivered payload.
type Receipt struct {
	StatusCode int
	Message    string
}

// Transport delivers a payload. Implementations must honour ctx cancellation
// where they can; the controller times out regardless.
type Transport interface {
	Send(ctx context.Context, p payload.Payload) (Receipt, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, p payload.Payload) (Receipt, error)

// Send calls f.
func (f TransportFunc) Send(ctx context.Context, p payload.Payload) (Receipt, error) {
	return f(ctx, p)
}
