// Package httputil fetches remote tree and buffer files.
//
// # Overview
//
// Commands accept an http:// or https:// URL wherever they take a file. A
// [Fetcher] downloads the body, retrying transient failures, and keeps it in
// a [cache.Cache] so repeated runs over the same published tree do not hit
// the network:
//
//	f := httputil.NewFetcher(c)
//	data, cached, err := f.Fetch(ctx, "https://example.org/tree.nwk")
//
// # Retry
//
// [Retry] runs a function with exponential backoff. Only errors wrapped with
// [cache.Retryable] are retried. The fetcher marks these as retryable:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Other 4xx responses fail immediately: 404 with a NOT_FOUND code, the rest
// with INVALID_INPUT.
package httputil
