package service

import (
	"context"
	"errors"
	"testing"

	"thermacore/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDirectory(t *testing.T) (*UnitDirectory, *fakeUnitService) {
	srv := &fakeUnitService{units: []domain.Unit{waterUnit(), {Id: "unit-002", Name: "ThermaCore Unit 002", Location: "Roof"}}}
	d := NewUnitDirectory(srv, zap.NewNop())
	require.NoError(t, d.Load(context.Background()))
	return d, srv
}

func TestUnitDirectoryUpdateName(t *testing.T) {
	d, srv := newTestDirectory(t)

	u, err := d.UpdateName(context.Background(), "unit-002", "  Rooftop unit ")
	require.NoError(t, err)
	assert.Equal(t, "Rooftop unit", u.Name)
	got, _ := d.Get("unit-002")
	assert.Equal(t, "Rooftop unit", got.Name)
	assert.Equal(t, 1, srv.calls)
}

func TestUnitDirectoryRevertsOnServiceFailure(t *testing.T) {
	d, srv := newTestDirectory(t)
	srv.failErr = errors.New("boom")

	u, err := d.UpdateLocation(context.Background(), "unit-002", "Basement")
	assert.ErrorIs(t, err, domain.ErrUnitServiceFailure)
	assert.Equal(t, "Roof", u.Location, "last known good value is returned")

	got, _ := d.Get("unit-002")
	assert.Equal(t, "Roof", got.Location)
}

func TestUnitDirectoryValidation(t *testing.T) {
	d, srv := newTestDirectory(t)

	_, err := d.UpdateName(context.Background(), "unit-002", "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyUnitName)
	_, err = d.UpdateName(context.Background(), "unit-404", "x")
	assert.ErrorIs(t, err, domain.ErrUnitNotFound)
	assert.Zero(t, srv.calls)
}

func TestUnitDirectoryUpdateGPS(t *testing.T) {
	d, _ := newTestDirectory(t)

	gps, err := domain.ParseGPS("40.7128, -74.0060")
	require.NoError(t, err)
	u, err := d.UpdateGPS(context.Background(), "unit-001", gps)
	require.NoError(t, err)
	assert.Equal(t, "40.7128, -74.0060", u.GPSCoordinates)

	_, err = domain.ParseGPS("91, 0")
	assert.ErrorIs(t, err, domain.ErrInvalidGPS)
}

func TestUnitDirectoryLoadFailure(t *testing.T) {
	d := NewUnitDirectory(&fakeUnitService{failErr: errors.New("offline")}, zap.NewNop())
	assert.ErrorIs(t, d.Load(context.Background()), domain.ErrUnitServiceFailure)
	assert.Empty(t, d.Units())
}
