package audio

import (
	"testing"

	"thermacore/internal/core/domain"

	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestEventSinkPublishesCue(t *testing.T) {
	es := &eventstream.EventStream{}
	var got []domain.SoundCueEvent
	es.Subscribe(func(evt interface{}) {
		if cue, ok := evt.(domain.SoundCueEvent); ok {
			got = append(got, cue)
		}
	})

	NewEventSink(es, zap.NewNop()).Play(domain.SOUND_CUE_WATER_OFF, 0.35)

	assert.Equal(t, []domain.SoundCueEvent{{Cue: domain.SOUND_CUE_WATER_OFF, Gain: 0.35}}, got)
}
