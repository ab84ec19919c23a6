package checkout

import (
	"context"

	"ercaspay/internal/ercaspay"
)

// CompletedPayment is the event delivered to the completion handler once a
// redirect callback has been re-verified server-side. Response is the full
// verified gateway response for integrations that need more than the summary
// fields.
type CompletedPayment struct {
	TransactionRef string
	Status         string
	Amount         float64
	Currency       string
	CustomerEmail  string
	Response       *ercaspay.GatewayResponse
}

// CompletionHandler is invoked after a successful verification reports a
// transaction status. It runs on the callback request path; long work should
// be handed off by the implementation.
type CompletionHandler func(ctx context.Context, payment CompletedPayment)
