package middleware

import (
	"github.com/acecasino/payout_automation/pkg/logger"
	"github.com/labstack/echo"
	echomiddleware "github.com/labstack/echo/middleware"
)

// Logger returns a logger middleware
func Logger() echo.MiddlewareFunc {
	return logger.LoggingMiddleware
}

// Recover returns a panic recovery middleware
func Recover() echo.MiddlewareFunc {
	return echomiddleware.Recover()
}

// CORS returns a CORS middleware
func CORS() echo.MiddlewareFunc {
	return echomiddleware.CORS()
}
