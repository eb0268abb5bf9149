// Package httpapi exposes the market engine over HTTP.
//
// The server serves the catalog, price history, market inventory and
// per-user trading endpoints, with bearer-token authentication minted
// by login and register. Error responses carry a JSON body of the form
// {"message": "..."} with the status code mapped from the domain error.
package httpapi
