package server

import (
	"net/http"

	"thermacore/internal/core/domain"

	"github.com/labstack/echo/v4"
)

type notificationView struct {
	domain.Notification
	Viewed   bool   `json:"viewed"`
	UnitName string `json:"unitName,omitempty"`
}

type notificationsResponse struct {
	Notifications []notificationView `json:"notifications"`
	UnviewedCount int                `json:"unviewedCount"`
}

func (s *Server) notificationsResponse(role domain.Role, list []domain.Notification) notificationsResponse {
	views := make([]notificationView, 0, len(list))
	for _, n := range list {
		name, _ := n.UnitName()
		views = append(views, notificationView{
			Notification: n,
			Viewed:       s.ledger.IsViewed(n.Id),
			UnitName:     name,
		})
	}
	return notificationsResponse{
		Notifications: views,
		UnviewedCount: s.ledger.UnviewedCount(role),
	}
}

func (s *Server) ListNotificationsHandler(c echo.Context) error {
	role, err := parseRole(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.notificationsResponse(role, s.ledger.Visible(role)))
}

// OpenNotificationsHandler persists the snapshot and marks every visible
// notification as viewed.
func (s *Server) OpenNotificationsHandler(c echo.Context) error {
	role, err := parseRole(c)
	if err != nil {
		return err
	}
	snapshot := s.ledger.OpenPanel(c.Request().Context(), role)
	return c.JSON(http.StatusOK, s.notificationsResponse(role, snapshot))
}

func (s *Server) OpenHistoryHandler(c echo.Context) error {
	role, err := parseRole(c)
	if err != nil {
		return err
	}
	snapshot := s.ledger.OpenHistory(c.Request().Context(), role)
	return c.JSON(http.StatusOK, snapshot)
}

func (s *Server) HistoryHandler(c echo.Context) error {
	history, err := s.ledger.History(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, history)
}

func (s *Server) ResetNotificationsHandler(c echo.Context) error {
	s.ledger.Reset(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}
