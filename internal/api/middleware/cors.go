package middleware

import (
	"net/http"

	gorillaHandlers "github.com/gorilla/handlers"
)

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           int
}

// DefaultCORSConfig returns default CORS configuration
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        43200, // 12 hours
	}
}

// CORS middleware with configuration
func CORS(config CORSConfig) func(http.Handler) http.Handler {
	opts := []gorillaHandlers.CORSOption{
		gorillaHandlers.AllowedOrigins(config.AllowOrigins),
		gorillaHandlers.AllowedMethods(config.AllowMethods),
		gorillaHandlers.AllowedHeaders(config.AllowHeaders),
		gorillaHandlers.ExposedHeaders(config.ExposeHeaders),
		gorillaHandlers.MaxAge(config.MaxAge),
	}
	if config.AllowCredentials {
		opts = append(opts, gorillaHandlers.AllowCredentials())
	}
	return gorillaHandlers.CORS(opts...)
}
