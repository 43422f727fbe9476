// Package handlers exposes the services as a JSON API.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/diewo77/go-lessons/auth"
)

// caller returns the authenticated caller, the zero Caller for anonymous
// requests. Services reject the zero caller themselves.
func caller(r *http.Request) auth.Caller {
	c, _ := auth.CallerFromContext(r.Context())
	return c
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}

// Health answers liveness checks.
func Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
