// Package account holds the user account model and its persistence contract.
//
// The account record is the only mutable shared resource in the metering
// core. Every mutation goes through Store.Update, an optimistic
// read-modify-write primitive; there is deliberately no raw "read, then
// separately write" path, so concurrent debits and subscription
// reconciliations cannot lose updates.
package account
