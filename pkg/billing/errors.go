package billing

import "errors"

var (
	// ErrInvalidSignature means the webhook delivery failed the
	// authenticity check. The request is rejected outright.
	ErrInvalidSignature = errors.New("webhook signature verification failed")

	// ErrProviderFailure wraps payment-gateway call failures. Not retried
	// here; retry policy belongs to the caller or the provider.
	ErrProviderFailure = errors.New("payment provider call failed")

	// ErrNoSubscriptionInSession means a checkout session was reconciled
	// before the provider attached a subscription to it.
	ErrNoSubscriptionInSession = errors.New("checkout session has no subscription")

	// ErrCancellationUnconfirmed means the provider did not report the
	// subscription as cancelled; account state stays untouched.
	ErrCancellationUnconfirmed = errors.New("provider did not confirm subscription cancellation")
)
