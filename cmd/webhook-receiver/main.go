package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rryowa/candidate_session/internal/models"
	"github.com/rryowa/candidate_session/internal/util"
)

const receiverAddr = ":9090"

// Development receiver for WEBHOOK_URL: logs every session event it gets.
func main() {
	logger := util.NewZapLogger(util.GetLogLevel())
	defer func() { _ = logger.Sync() }()

	e := echo.New()
	e.HideBanner = true
	e.POST("/", func(c echo.Context) error {
		var event models.SessionEvent
		if err := json.NewDecoder(c.Request().Body).Decode(&event); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Error parsing JSON")
		}

		logger.Infow("Received webhook",
			"type", event.Type,
			"device_id", event.DeviceID,
			"reason", event.Reason,
			"at", event.At,
		)
		return c.String(http.StatusOK, "Webhook received!")
	})

	logger.Infof("Webhook receiver listening on %s", receiverAddr)
	if err := e.Start(receiverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
