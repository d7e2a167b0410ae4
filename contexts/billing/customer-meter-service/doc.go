// Package billing tracks customer usage against metered billing.
//
// Usage events are ingested through the HTTP surface and folded into
// derived per-customer balances by background tasks. Balances are always
// recomputed in full from the event history, so task redelivery and the
// periodic organization-wide refresh converge on the same state.
package billing
