// Package api provides the HTTP client for the stock market engine's API.
//
// The client performs exactly one request per call and returns typed errors;
// it does not retry. Callers that want retries wrap calls with an explicit
// retry.Policy and the IsTransient predicate from this package.
package api
