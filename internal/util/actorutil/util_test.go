package actorutil

import (
	"testing"

	"thermacore/internal/core/domain"
	"thermacore/internal/mqtt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsedMQTTCommandToCommand(t *testing.T) {
	req, err := ParsedMQTTCommandToCommand(mqtt.ParsedMQTTCommand{
		UnitId:   "2",
		DeviceId: "water_production",
		Command:  mqtt.COMMAND_SWITCH,
		Payload:  "off",
	})
	require.NoError(t, err)
	commit, ok := req.(domain.CommitToggleRequest)
	require.True(t, ok)
	assert.Equal(t, "2", commit.TargetUnit())
	assert.Equal(t, domain.SWITCH_ID_WATER_PRODUCTION, commit.Control)
	assert.False(t, commit.On)

	_, err = ParsedMQTTCommandToCommand(mqtt.ParsedMQTTCommand{UnitId: "2", DeviceId: "fan", Command: mqtt.COMMAND_SWITCH, Payload: "on"})
	assert.Error(t, err)

	_, err = ParsedMQTTCommandToCommand(mqtt.ParsedMQTTCommand{UnitId: "2", DeviceId: "machine", Command: mqtt.COMMAND_SWITCH, Payload: "1"})
	assert.Error(t, err)
}
