package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"thermacore/internal/core/domain"
	"thermacore/internal/core/port"

	"go.uber.org/zap"
)

// UnitDirectory caches the unit records and applies identity edits
// optimistically: the local record changes first and is reverted when the
// unit service rejects the update.
type UnitDirectory struct {
	mu      sync.RWMutex
	units   []domain.Unit
	service port.UnitService
	logger  *zap.Logger
}

func NewUnitDirectory(service port.UnitService, logger *zap.Logger) *UnitDirectory {
	return &UnitDirectory{
		service: service,
		logger:  logger.With(zap.String("component", "units")),
	}
}

func (d *UnitDirectory) Load(ctx context.Context) error {
	units, err := d.service.GetUnits(ctx)
	if err != nil {
		d.logger.Error("units@load: failed to load units", zap.Error(err))
		return fmt.Errorf("%w: %w", domain.ErrUnitServiceFailure, err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.units = slices.Clone(units)
	return nil
}

func (d *UnitDirectory) Units() []domain.Unit {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.units)
}

func (d *UnitDirectory) Get(unitId string) (domain.Unit, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	i := d.indexOf(unitId)
	if i < 0 {
		return domain.Unit{}, domain.ErrUnitNotFound
	}
	return d.units[i], nil
}

func (d *UnitDirectory) UpdateName(ctx context.Context, unitId, name string) (domain.Unit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Unit{}, domain.ErrEmptyUnitName
	}
	return d.update(ctx, unitId, "name", func(u *domain.Unit) { u.Name = name }, func() error {
		return d.service.UpdateUnitName(ctx, unitId, name)
	})
}

func (d *UnitDirectory) UpdateLocation(ctx context.Context, unitId, location string) (domain.Unit, error) {
	location = strings.TrimSpace(location)
	return d.update(ctx, unitId, "location", func(u *domain.Unit) { u.Location = location }, func() error {
		return d.service.UpdateUnitLocation(ctx, unitId, location)
	})
}

func (d *UnitDirectory) UpdateGPS(ctx context.Context, unitId string, gps domain.GPS) (domain.Unit, error) {
	return d.update(ctx, unitId, "gps", func(u *domain.Unit) { u.GPSCoordinates = gps.String() }, func() error {
		return d.service.UpdateUnitGPS(ctx, unitId, gps)
	})
}

func (d *UnitDirectory) update(ctx context.Context, unitId, field string, apply func(*domain.Unit), call func() error) (domain.Unit, error) {
	d.mu.Lock()
	i := d.indexOf(unitId)
	if i < 0 {
		d.mu.Unlock()
		return domain.Unit{}, domain.ErrUnitNotFound
	}
	lastKnownGood := d.units[i]
	apply(&d.units[i])
	updated := d.units[i]
	d.mu.Unlock()

	if err := call(); err != nil {
		d.logger.Error("units@update: service rejected update, reverting",
			zap.String("unit", unitId), zap.String("field", field), zap.Error(err))
		d.mu.Lock()
		if j := d.indexOf(unitId); j >= 0 {
			d.units[j] = lastKnownGood
		}
		d.mu.Unlock()
		return lastKnownGood, fmt.Errorf("%w: update %s: %w", domain.ErrUnitServiceFailure, field, err)
	}
	return updated, nil
}

func (d *UnitDirectory) indexOf(unitId string) int {
	return slices.IndexFunc(d.units, func(u domain.Unit) bool { return u.Id == unitId })
}
