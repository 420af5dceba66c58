package unitservice

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"thermacore/internal/core/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// HTTPUnitService talks to the REST unit data service.
//
//	GET   /units
//	GET   /units/{id}
//	PATCH /units/{id}      {"name"} | {"location"} | {"gpsCoordinates"}
//	GET   /notifications   {"alarms": [...], "alerts": [...]}
type HTTPUnitService struct {
	client *resty.Client
	logger *zap.Logger
}

type notificationsPayload struct {
	Alarms []domain.Notification `json:"alarms"`
	Alerts []domain.Notification `json:"alerts"`
}

func NewHTTPUnitService(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPUnitService {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &HTTPUnitService{
		client: client,
		logger: logger.With(zap.String("component", "unit_service")),
	}
}

func (s *HTTPUnitService) GetUnits(ctx context.Context) ([]domain.Unit, error) {
	var units []domain.Unit
	resp, err := s.client.R().SetContext(ctx).SetResult(&units).Get("/units")
	if err := checkResponse("get units", resp, err); err != nil {
		return nil, err
	}
	return units, nil
}

func (s *HTTPUnitService) GetUnit(ctx context.Context, unitId string) (*domain.Unit, error) {
	var unit domain.Unit
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("id", unitId).
		SetResult(&unit).
		Get("/units/{id}")
	if err == nil && resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnitNotFound, unitId)
	}
	if err := checkResponse("get unit", resp, err); err != nil {
		return nil, err
	}
	return &unit, nil
}

func (s *HTTPUnitService) UpdateUnitName(ctx context.Context, unitId, name string) error {
	return s.patch(ctx, unitId, map[string]string{"name": name})
}

func (s *HTTPUnitService) UpdateUnitLocation(ctx context.Context, unitId, location string) error {
	return s.patch(ctx, unitId, map[string]string{"location": location})
}

func (s *HTTPUnitService) UpdateUnitGPS(ctx context.Context, unitId string, gps domain.GPS) error {
	return s.patch(ctx, unitId, map[string]string{"gpsCoordinates": gps.String()})
}

func (s *HTTPUnitService) GetNotifications(ctx context.Context) ([]domain.Notification, []domain.Notification, error) {
	var payload notificationsPayload
	resp, err := s.client.R().SetContext(ctx).SetResult(&payload).Get("/notifications")
	if err := checkResponse("get notifications", resp, err); err != nil {
		return nil, nil, err
	}
	return payload.Alarms, payload.Alerts, nil
}

func (s *HTTPUnitService) patch(ctx context.Context, unitId string, body map[string]string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("id", unitId).
		SetBody(body).
		Patch("/units/{id}")
	if err == nil && resp.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("%w: %s", domain.ErrUnitNotFound, unitId)
	}
	if err := checkResponse("update unit", resp, err); err != nil {
		s.logger.Warn("unit_service: update failed", zap.String("unit", unitId), zap.Error(err))
		return err
	}
	return nil
}

func checkResponse(op string, resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%s: %w", op, errors.New(resp.Status()))
	}
	return nil
}
