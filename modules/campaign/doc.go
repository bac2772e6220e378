// Package campaign exposes the metered operations over HTTP: sending
// campaign emails through the user's own channel and AI text rewriting.
// Both follow the same sequencing: entitlement check, external side
// effect, then debit. A failed side effect debits nothing; a failed debit
// after a successful side effect is logged and the request still succeeds.
package campaign
