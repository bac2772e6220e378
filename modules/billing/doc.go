// Package billing exposes the subscription lifecycle over HTTP: checkout
// session creation, plan activation and cancellation, payment history,
// pricing plan listing, and the provider webhook endpoint.
package billing
