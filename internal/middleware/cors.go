package middleware

import (
	"net/http"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// CORS allows browser calls to the donation endpoints. Preflights pass
// through so the handlers answer OPTIONS themselves.
func CORS(allowedOrigins []string, logger *zerolog.Logger) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	opts := cors.Options{
		AllowedOrigins:     allowedOrigins,
		AllowedMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:     []string{"Content-Type", "X-Requested-With", "X-Paystack-Signature", RequestIDHeader},
		ExposedHeaders:     []string{RequestIDHeader},
		MaxAge:             600,
		OptionsPassthrough: true,
	}
	if logger != nil && logger.GetLevel() <= zerolog.DebugLevel {
		opts.Logger = corsLogger{logger: logger}
	}
	return cors.New(opts).Handler
}

type corsLogger struct {
	logger *zerolog.Logger
}

func (c corsLogger) Printf(format string, v ...any) {
	c.logger.Debug().Msgf("cors: "+format, v...)
}
