// Package ledger mutates the consumed-usage counters on accounts. It is the
// only component that increments counters; resets are owned by the billing
// reconciler. All writes go through the account store's optimistic update,
// never a blind increment, so concurrent debits for the same account cannot
// lose updates or drive the available balance negative.
package ledger
