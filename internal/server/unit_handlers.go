package server

import (
	"net/http"

	"thermacore/internal/core/domain"

	"github.com/labstack/echo/v4"
)

func (s *Server) ListUnitsHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, s.units.Units())
}

func (s *Server) GetUnitHandler(c echo.Context) error {
	unit, err := s.units.Get(c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, unit)
}

type unitFieldBody struct {
	Name           string `json:"name"`
	Location       string `json:"location"`
	GPSCoordinates string `json:"gpsCoordinates"`
}

func (s *Server) UpdateUnitNameHandler(c echo.Context) error {
	var body unitFieldBody
	if err := c.Bind(&body); err != nil {
		return err
	}
	unit, err := s.units.UpdateName(c.Request().Context(), c.Param("id"), body.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, unit)
}

func (s *Server) UpdateUnitLocationHandler(c echo.Context) error {
	var body unitFieldBody
	if err := c.Bind(&body); err != nil {
		return err
	}
	unit, err := s.units.UpdateLocation(c.Request().Context(), c.Param("id"), body.Location)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, unit)
}

func (s *Server) UpdateUnitGPSHandler(c echo.Context) error {
	var body unitFieldBody
	if err := c.Bind(&body); err != nil {
		return err
	}
	gps, err := domain.ParseGPS(body.GPSCoordinates)
	if err != nil {
		return err
	}
	unit, err := s.units.UpdateGPS(c.Request().Context(), c.Param("id"), gps)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, unit)
}

type unitControlView struct {
	Unit    domain.Unit             `json:"unit"`
	State   domain.UnitControlState `json:"state"`
	Pending *domain.PendingToggle   `json:"pending"`
	Changes []domain.ControlChange  `json:"changes,omitempty"`
}

// askUnitControl sends msg to the master actor and waits for the unit
// control actor's answer.
func (s *Server) askUnitControl(c echo.Context, msg domain.UnitRequest) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, msg, ACTOR_REQUEST_TIMEOUT).Result()
	if err != nil {
		return echo.NewHTTPError(http.StatusGatewayTimeout, err.Error())
	}
	resp, ok := res.(domain.UnitControlResponse)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "unexpected actor response")
	}
	if resp.HasResponseError() {
		return resp.GetResponseError()
	}
	return c.JSON(http.StatusOK, unitControlView{
		Unit:    resp.Unit,
		State:   resp.State,
		Pending: resp.Pending,
		Changes: resp.Changes,
	})
}

func unitRequest(c echo.Context) domain.UnitRequestMixIn {
	return domain.UnitRequestMixIn{UnitId: c.Param("id")}
}

func (s *Server) OpenUnitControlHandler(c echo.Context) error {
	return s.askUnitControl(c, domain.OpenUnitControlRequest{UnitRequestMixIn: unitRequest(c)})
}

func (s *Server) GetUnitControlHandler(c echo.Context) error {
	return s.askUnitControl(c, domain.GetUnitControlRequest{UnitRequestMixIn: unitRequest(c)})
}

func (s *Server) CloseUnitControlHandler(c echo.Context) error {
	_, err := s.rootContext.RequestFuture(s.masterActor, domain.CloseUnitControlRequest{UnitRequestMixIn: unitRequest(c)}, ACTOR_REQUEST_TIMEOUT).Result()
	if err != nil {
		return echo.NewHTTPError(http.StatusGatewayTimeout, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type toggleBody struct {
	Control string `json:"control"`
	On      bool   `json:"on"`
}

func (s *Server) RequestToggleHandler(c echo.Context) error {
	var body toggleBody
	if err := c.Bind(&body); err != nil {
		return err
	}
	control, err := domain.ParseControlId(body.Control)
	if err != nil {
		return err
	}
	return s.askUnitControl(c, domain.RequestToggleRequest{
		UnitRequestMixIn: unitRequest(c),
		Control:          control,
		On:               body.On,
	})
}

type toggleIdBody struct {
	ToggleId string `json:"toggleId"`
}

func (s *Server) ConfirmToggleHandler(c echo.Context) error {
	var body toggleIdBody
	if err := c.Bind(&body); err != nil {
		return err
	}
	return s.askUnitControl(c, domain.ConfirmToggleRequest{UnitRequestMixIn: unitRequest(c), ToggleId: body.ToggleId})
}

func (s *Server) CancelToggleHandler(c echo.Context) error {
	var body toggleIdBody
	if err := c.Bind(&body); err != nil {
		return err
	}
	return s.askUnitControl(c, domain.CancelToggleRequest{UnitRequestMixIn: unitRequest(c), ToggleId: body.ToggleId})
}
