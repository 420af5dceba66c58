package port

import (
	"context"

	"thermacore/internal/core/domain"
)

// UnitService is the external unit data service.
type UnitService interface {
	GetUnits(ctx context.Context) ([]domain.Unit, error)
	GetUnit(ctx context.Context, unitId string) (*domain.Unit, error)
	UpdateUnitName(ctx context.Context, unitId, name string) error
	UpdateUnitLocation(ctx context.Context, unitId, location string) error
	UpdateUnitGPS(ctx context.Context, unitId string, gps domain.GPS) error
}

// NotificationSource supplies the alarms and alerts shown in the panel.
type NotificationSource interface {
	GetNotifications(ctx context.Context) (alarms []domain.Notification, alerts []domain.Notification, err error)
}

// SoundSink plays a named cue at a gain in [0, 1].
type SoundSink interface {
	Play(cue domain.SoundCue, gain float64)
}

// EventPublisher is satisfied by protoactor's eventstream.EventStream.
type EventPublisher interface {
	Publish(evt interface{})
}

// VolumeSource exposes the gain a sound consumer must apply.
type VolumeSource interface {
	NormalizedVolume() float64
}
