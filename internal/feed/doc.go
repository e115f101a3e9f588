// Package feed issues the HTTP GETs every stage depends on.
//
// A single Client is shared by the listing resolver, the image locator, and
// the fetch pool so every request carries the same browser User-Agent and the
// same per-request timeout. Any non-2xx response is a failure. Optional
// retries use exponential backoff and only cover transport errors and 5xx
// responses.
package feed
