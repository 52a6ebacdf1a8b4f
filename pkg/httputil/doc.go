// Package httputil fetches graph documents over HTTP.
//
// CI systems often publish the dependency-cruiser output of a build as an
// artifact; [Fetch] lets the check and render commands read it by URL:
//
//	data, err := httputil.Fetch(ctx, nil, "https://ci.example.com/artifacts/deps.json")
//
// Transient failures (network errors, 5xx and 429 responses) are retried
// with exponential backoff by [Retry]. Other failures are returned at once.
package httputil
