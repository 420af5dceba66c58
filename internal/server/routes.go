package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"thermacore/internal/core/domain"

	"github.com/carlmjohnson/versioninfo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = s.errorHandler
	if s.httpLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())

	e.GET("/healthcheck", s.HealthCheckHandler)
	e.GET("/version", s.VersionHandler)
	if s.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(s.metrics))
	}

	api := e.Group("/api")

	settings := api.Group("/settings")
	settings.GET("", s.GetSettingsHandler)
	settings.PUT("/volume", s.SetVolumeHandler)
	settings.POST("/sound/toggle", s.ToggleSoundHandler)
	settings.PUT("/temperature-unit", s.SetTemperatureUnitHandler)
	settings.POST("/temperature-unit/toggle", s.ToggleTemperatureUnitHandler)
	settings.GET("/temperature", s.FormatTemperatureHandler)

	units := api.Group("/units")
	units.GET("", s.ListUnitsHandler)
	units.GET("/:id", s.GetUnitHandler)
	units.PUT("/:id/name", s.UpdateUnitNameHandler)
	units.PUT("/:id/location", s.UpdateUnitLocationHandler)
	units.PUT("/:id/gps", s.UpdateUnitGPSHandler)
	units.POST("/:id/control", s.OpenUnitControlHandler)
	units.GET("/:id/control", s.GetUnitControlHandler)
	units.DELETE("/:id/control", s.CloseUnitControlHandler)
	units.POST("/:id/control/toggle", s.RequestToggleHandler)
	units.POST("/:id/control/confirm", s.ConfirmToggleHandler)
	units.POST("/:id/control/cancel", s.CancelToggleHandler)

	notifications := api.Group("/notifications")
	notifications.GET("", s.ListNotificationsHandler)
	notifications.POST("/open", s.OpenNotificationsHandler)
	notifications.POST("/history", s.OpenHistoryHandler)
	notifications.GET("/history", s.HistoryHandler)
	notifications.POST("/reset", s.ResetNotificationsHandler)

	return e
}

func (s *Server) HealthCheckHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.ActorHealthRequest{}, 10*time.Second).Result()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
	}
	if response, ok := res.(domain.ActorHealthResponse); ok && response.Healthy {
		return c.String(http.StatusOK, "health_check: OK")
	}
	return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
}

func (s *Server) VersionHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"version":  versioninfo.Version,
		"revision": versioninfo.Revision,
		"short":    versioninfo.Short(),
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

// errorStatus maps domain errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case domain.IsValidationError(err):
		return http.StatusBadRequest
	case domain.IsPreconditionError(err):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnitNotFound), errors.Is(err, domain.ErrUnitControlClosed),
		errors.Is(err, domain.ErrNoPendingToggle), errors.Is(err, domain.ErrPendingToggleMismatch):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnitServiceFailure):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := errorStatus(err)
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("http@error", zap.String("path", c.Path()), zap.Error(err))
	}
	if err := c.JSON(status, errorResponse{Error: msg}); err != nil {
		s.logger.Error("http@error could not write response", zap.Error(err))
	}
}

func badRequest(err error) error {
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}

func parseRole(c echo.Context) (domain.Role, error) {
	return domain.ParseRole(c.QueryParam("role"))
}

func parseBoolParam(c echo.Context, name string, def bool) (bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	return strconv.ParseBool(raw)
}
