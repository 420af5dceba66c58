package unitservice

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"thermacore/internal/core/domain"
)

// MockUnitService serves a fixed fleet from memory. It is used when no unit
// service URL is configured.
type MockUnitService struct {
	mu     sync.Mutex
	units  []domain.Unit
	alarms []domain.Notification
	alerts []domain.Notification
}

func NewMockUnitService() *MockUnitService {
	return &MockUnitService{
		units:  mockUnits(),
		alarms: mockAlarms(),
		alerts: mockAlerts(),
	}
}

func (s *MockUnitService) GetUnits(_ context.Context) ([]domain.Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.units), nil
}

func (s *MockUnitService) GetUnit(_ context.Context, unitId string) (*domain.Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(unitId)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnitNotFound, unitId)
	}
	unit := s.units[i]
	return &unit, nil
}

func (s *MockUnitService) UpdateUnitName(_ context.Context, unitId, name string) error {
	return s.update(unitId, func(u *domain.Unit) { u.Name = name })
}

func (s *MockUnitService) UpdateUnitLocation(_ context.Context, unitId, location string) error {
	return s.update(unitId, func(u *domain.Unit) { u.Location = location })
}

func (s *MockUnitService) UpdateUnitGPS(_ context.Context, unitId string, gps domain.GPS) error {
	return s.update(unitId, func(u *domain.Unit) { u.GPSCoordinates = gps.String() })
}

func (s *MockUnitService) GetNotifications(_ context.Context) ([]domain.Notification, []domain.Notification, error) {
	return slices.Clone(s.alarms), slices.Clone(s.alerts), nil
}

func (s *MockUnitService) update(unitId string, fn func(*domain.Unit)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(unitId)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrUnitNotFound, unitId)
	}
	fn(&s.units[i])
	return nil
}

func (s *MockUnitService) indexOf(unitId string) int {
	return slices.IndexFunc(s.units, func(u domain.Unit) bool { return u.Id == unitId })
}

func temp(v float64) *float64 {
	return &v
}

func mockUnits() []domain.Unit {
	return []domain.Unit{
		{Id: "1", Name: "ThermaCore Unit 001", Location: "New York, NY", GPSCoordinates: "40.7128, -74.0060",
			Status: domain.UNIT_STATUS_OFFLINE, WaterGeneration: true, WaterLevel: 12, TempOutside: temp(18.5)},
		{Id: "2", Name: "ThermaCore Unit 002", Location: "Los Angeles, CA", GPSCoordinates: "34.0522, -118.2437",
			Status: domain.UNIT_STATUS_ONLINE, WaterGeneration: true, WaterProductionOn: true, AutoSwitchEnabled: true,
			WaterLevel: 8, TempOutside: temp(24)},
		{Id: "3", Name: "ThermaCore Unit 003", Location: "Chicago, IL", GPSCoordinates: "41.8781, -87.6298",
			Status: domain.UNIT_STATUS_ONLINE, WaterGeneration: false, TempOutside: temp(-2.3)},
		{Id: "14", Name: "ThermaCore Unit 014", Location: "Houston, TX", GPSCoordinates: "29.7604, -95.3698",
			Status: domain.UNIT_STATUS_ONLINE, WaterGeneration: true, WaterProductionOn: true, WaterLevel: 64},
	}
}

func mockAlerts() []domain.Notification {
	return []domain.Notification{
		{Id: 1, Kind: domain.NOTIFICATION_ALERT, Message: "ThermaCore Unit 001 - Unit Offline", Timestamp: "2025-09-09 14:45"},
		{Id: 2, Kind: domain.NOTIFICATION_ALERT, Message: "ThermaCore Unit 002 - Low Water Level", Timestamp: "2025-09-09 14:15"},
		{Id: 3, Kind: domain.NOTIFICATION_ALERT, Message: "ThermaCore Unit 003 - Maintenance Scheduled", Timestamp: "2025-09-09 13:30",
			Status: domain.STATUS_COMPLETED},
		{Id: 4, Kind: domain.NOTIFICATION_ALERT, Message: "ThermaCore Unit 004 - System Restored", Timestamp: "2025-09-09 12:00",
			Status: domain.STATUS_COMPLETED},
		{Id: 5, Kind: domain.NOTIFICATION_ALERT, Message: "ThermaCore Unit 005 - Temperature Alert", Timestamp: "2025-09-09 11:30",
			Status: domain.STATUS_COMPLETED},
		{Id: 6, Kind: domain.NOTIFICATION_ALERT, Message: "ThermaCore Unit 006 - Pressure Drop", Timestamp: "2025-09-09 10:15"},
	}
}

func mockAlarms() []domain.Notification {
	return []domain.Notification{
		{Id: 7, Kind: domain.NOTIFICATION_ALARM, Message: "ThermaCore Unit 003 - NH3 LEAK DETECTED", Timestamp: "2025-09-09 15:30"},
		{Id: 8, Kind: domain.NOTIFICATION_ALARM, Message: "ThermaCore Unit 014 - NH3 LEAK DETECTED", Timestamp: "2025-09-09 15:15"},
	}
}
