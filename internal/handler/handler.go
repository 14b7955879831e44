// Package handler turns HTTP requests into service calls and service results
// into JSON or HTML responses.
package handler

import (
	"net/http"
	"strconv"

	"github.com/sakif/portfolio/internal/backend"
)

// Backend is what handlers need from the backend factory.
type Backend interface {
	backend.RequestClients
	Admin() (*backend.AdminClient, error)
}

func clientFor(b backend.RequestClients, w http.ResponseWriter, r *http.Request) *backend.Client {
	return backend.ClientFor(b, w, r)
}

// queryInt reads a positive integer query parameter. Missing or malformed
// values read as 0 so the service falls back to its default.
func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}
