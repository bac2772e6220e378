// Package billing owns subscription lifecycle reconciliation and the
// payment provider abstraction.
//
// The Reconciler maps provider lifecycle events (checkout completed,
// invoice paid, cancellation) onto account state. The Provider interface
// keeps the Stripe SDK at the edge so the reconciler can be exercised
// against mocks. Payment records are keyed by invoice number, which makes
// duplicate webhook deliveries converge instead of double-granting.
package billing
