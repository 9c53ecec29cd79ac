// Package middleware contains the HTTP middleware wrapped around the games API.
package middleware

import (
	"context"
	"net/http"
)

// Middleware wraps an http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

type requestIDKey struct{}

type clientIPKey struct{}

// WithRequestID returns a copy of ctx carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// GetRequestID returns the request id stored by RequestID, or "".
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithClientIP returns a copy of ctx carrying ip.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// GetClientIP returns the address stored by ClientIP, or "".
func GetClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}

// Chain is an ordered list of middlewares. The first entry sees the request first.
type Chain []Middleware

// New builds a Chain from mws.
func New(mws ...Middleware) Chain {
	return append(Chain(nil), mws...)
}

// Append returns a new Chain with mws after the existing entries.
func (c Chain) Append(mws ...Middleware) Chain {
	out := make(Chain, 0, len(c)+len(mws))
	return append(append(out, c...), mws...)
}

// Then wraps h with every middleware in c. A nil h answers 404.
func (c Chain) Then(h http.Handler) http.Handler {
	if h == nil {
		h = http.NotFoundHandler()
	}
	for i := len(c) - 1; i >= 0; i-- {
		h = c[i](h)
	}
	return h
}
