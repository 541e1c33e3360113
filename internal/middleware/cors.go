package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// preflightMaxAge is how long browsers may cache a preflight answer, in seconds.
const preflightMaxAge = 3600

// CORSConfig is the inbound cross-origin policy: any origin may call the broker.
var CORSConfig = echomw.CORSConfig{
	AllowOrigins: []string{"*"},
	AllowMethods: []string{
		http.MethodHead,
		http.MethodOptions,
		http.MethodGet,
		http.MethodPost,
		http.MethodPatch,
	},
	AllowHeaders: []string{
		echo.HeaderAuthorization,
		echo.HeaderContentType,
		echo.HeaderAccessControlAllowHeaders,
		echo.HeaderAccessControlAllowOrigin,
		echo.HeaderAccessControlAllowMethods,
		echo.HeaderXRequestedWith,
	},
	MaxAge: preflightMaxAge,
}

// CORS returns an Echo middleware that answers preflight requests and marks
// responses as readable from any origin.
func CORS() echo.MiddlewareFunc {
	return echomw.CORSWithConfig(CORSConfig)
}
