package factory

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const requestIDHeader = "X-Request-ID"

func NewModuleLogger(name string) logrus.FieldLogger {
	return logrus.WithField("module", name)
}

// LoggerWithContext tags the logger with the request id of the current echo
// request, taken from the request header or, failing that, the response header
// set by the request id middleware.
func LoggerWithContext(logger logrus.FieldLogger, c echo.Context) logrus.FieldLogger {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if c == nil {
		return logger
	}

	requestID := strings.TrimSpace(c.Request().Header.Get(requestIDHeader))
	if requestID == "" {
		requestID = strings.TrimSpace(c.Response().Header().Get(requestIDHeader))
	}
	if requestID == "" {
		return logger
	}
	return logger.WithField("request_id", requestID)
}
