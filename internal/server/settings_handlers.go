package server

import (
	"net/http"
	"strconv"

	"thermacore/internal/core/domain"

	"github.com/labstack/echo/v4"
)

type settingsView struct {
	domain.Settings
	EffectiveVolume int     `json:"effectiveVolume"`
	Gain            float64 `json:"gain"`
	Muted           bool    `json:"muted"`
}

func (s *Server) settingsView(st domain.Settings) settingsView {
	return settingsView{
		Settings:        st,
		EffectiveVolume: s.settings.EffectiveVolume(),
		Gain:            s.settings.NormalizedVolume(),
		Muted:           st.Muted(),
	}
}

func (s *Server) GetSettingsHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, s.settingsView(s.settings.Settings()))
}

type setVolumeBody struct {
	Volume *int `json:"volume"`
}

func (s *Server) SetVolumeHandler(c echo.Context) error {
	var body setVolumeBody
	if err := c.Bind(&body); err != nil {
		return err
	}
	if body.Volume == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "volume is required")
	}
	st := s.settings.SetVolume(c.Request().Context(), *body.Volume)
	return c.JSON(http.StatusOK, s.settingsView(st))
}

func (s *Server) ToggleSoundHandler(c echo.Context) error {
	st := s.settings.ToggleSound(c.Request().Context())
	return c.JSON(http.StatusOK, s.settingsView(st))
}

type setTemperatureUnitBody struct {
	Unit string `json:"unit"`
}

func (s *Server) SetTemperatureUnitHandler(c echo.Context) error {
	var body setTemperatureUnitBody
	if err := c.Bind(&body); err != nil {
		return err
	}
	st, err := s.settings.SetTemperatureUnit(c.Request().Context(), domain.TemperatureUnit(body.Unit))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.settingsView(st))
}

func (s *Server) ToggleTemperatureUnitHandler(c echo.Context) error {
	st := s.settings.ToggleTemperatureUnit(c.Request().Context())
	return c.JSON(http.StatusOK, s.settingsView(st))
}

type temperatureView struct {
	Value string                 `json:"value"`
	Unit  domain.TemperatureUnit `json:"unit"`
}

// FormatTemperatureHandler renders a celsius reading in the selected unit.
// A missing reading renders as unavailable.
func (s *Server) FormatTemperatureHandler(c echo.Context) error {
	var celsius *float64
	if raw := c.QueryParam("celsius"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return badRequest(err)
		}
		celsius = &v
	}
	withUnit, err := parseBoolParam(c, "unit", true)
	if err != nil {
		return badRequest(err)
	}
	return c.JSON(http.StatusOK, temperatureView{
		Value: s.settings.FormatTemperature(celsius, withUnit),
		Unit:  s.settings.Settings().TemperatureUnit,
	})
}
