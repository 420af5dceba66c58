package audio

import (
	"thermacore/internal/core/domain"
	"thermacore/internal/core/port"

	"go.uber.org/zap"
)

// EventSink hands cues to whatever player listens on the event stream; the
// MQTT actor forwards them to the audio cue topic.
type EventSink struct {
	events port.EventPublisher
	logger *zap.Logger
}

func NewEventSink(events port.EventPublisher, logger *zap.Logger) *EventSink {
	return &EventSink{
		events: events,
		logger: logger.With(zap.String("component", "audio")),
	}
}

func (s *EventSink) Play(cue domain.SoundCue, gain float64) {
	s.logger.Debug("audio@play", zap.String("cue", string(cue)), zap.Float64("gain", gain))
	s.events.Publish(domain.SoundCueEvent{
		Cue:  cue,
		Gain: gain,
	})
}
