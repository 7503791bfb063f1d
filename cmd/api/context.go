package main

import (
	"context"
	"net/http"
)

type contextKey string

const callerContextKey = contextKey("caller")

// caller describes who is making the request. Operators hold the key whose bcrypt
// hash is configured with -operator-key-hash.
type caller struct {
	Operator bool
}

var anonymousCaller = &caller{}

func (app *application) contextSetCaller(r *http.Request, c *caller) *http.Request {
	ctx := context.WithValue(r.Context(), callerContextKey, c)
	return r.WithContext(ctx)
}

// contextGetCaller is only used where authenticate has run, so a missing value is a
// programming error.
func (app *application) contextGetCaller(r *http.Request) *caller {
	c, ok := r.Context().Value(callerContextKey).(*caller)
	if !ok {
		panic("missing caller value in request context")
	}
	return c
}
