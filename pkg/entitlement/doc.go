// Package entitlement implements the allow/deny decision for metered
// actions. Allowances are monthly buckets: the checker compares the plan
// allowance against the consumed counter on the account, and the counters
// are reset by the billing reconciler on every renewal, so no scheduler is
// involved.
//
// Check is intentionally read-only. The caller performs the external side
// effect first and only then debits through the ledger, so a failed send
// never consumes a credit.
package entitlement
