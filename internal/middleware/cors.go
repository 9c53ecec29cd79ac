package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS returns a middleware that answers preflight requests and sets
// Access-Control headers for the given origins. An empty list allows any origin.
func CORS(allowedOrigins []string) Middleware {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", HeaderXRequestID},
		ExposedHeaders: []string{HeaderXRequestID},
	})

	return c.Handler
}
