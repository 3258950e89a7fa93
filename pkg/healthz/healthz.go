package healthz

import (
	"io"
	"net/http"
)

// ServeHTTP serves the state of a check set. It responds with
// status 200 if all checks are healthy and 500 otherwise.
func (c *Checks) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ok, info := c.HealthInfo()
	if ok {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusInternalServerError)
	}
	io.WriteString(w, info)
}

// Healthz is a HTTP handler for the process wide checks.
func Healthz(w http.ResponseWriter, r *http.Request) {
	checks.ServeHTTP(w, r)
}
