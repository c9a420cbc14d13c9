package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rryowa/candidate_session/internal/client"
	"github.com/rryowa/candidate_session/internal/controller"
	"github.com/rryowa/candidate_session/internal/util"
)

const msgUnreachable = "Server unreachable. Please check your connection."

func ErrorHandler(log *zap.SugaredLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, reason := classify(err)
		if status >= http.StatusInternalServerError {
			log.Errorw("HTTP error", "error", err, "uri", c.Request().RequestURI)
		}

		if err := c.JSON(status, controller.ErrorResponse{Reason: reason}); err != nil {
			log.Errorw("failed to write json response", "error", err)
		}
	}
}

func classify(err error) (int, string) {
	if respErr, ok := util.AsResponseError(err); ok {
		status := respErr.Status
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		return status, respErr.Msg
	}

	if errors.Is(err, client.ErrUnreachable) {
		return http.StatusBadGateway, msgUnreachable
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok {
			return he.Code, msg
		}
		return he.Code, fmt.Sprint(he.Message)
	}

	return http.StatusInternalServerError, "internal server error"
}
