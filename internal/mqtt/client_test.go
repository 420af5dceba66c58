package mqtt

import (
	"testing"

	"thermacore/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient() *MQTTClient {
	cfg := config.Config{MQTT: config.MQTTConfig{Host: "localhost", Port: 1883, BaseTopic: "thermacore"}}
	return CreateMQTTClient(&cfg, OptsFromConfig(&cfg), nil, nil)
}

func TestUnitSwitchCommandParse(t *testing.T) {
	c := testClient()

	cmd, err := c.parseCommand("thermacore/unit/14/switch/water_production/command", "off")
	require.NoError(t, err)
	assert.Equal(t, ParsedMQTTCommand{UnitId: "14", DeviceId: "water_production", Command: COMMAND_SWITCH, Payload: "off"}, *cmd)
}

func TestUnitSwitchCommandParseFail(t *testing.T) {
	c := testClient()

	// state topics and foreign base topics are not commands
	_, err := c.parseCommand("thermacore/unit/14/switch/machine/state", "on")
	assert.Error(t, err)
	_, err = c.parseCommand("other/unit/14/switch/machine/command", "on")
	assert.Error(t, err)
	_, err = c.parseCommand("prefix/thermacore/unit/14/switch/machine/command", "on")
	assert.Error(t, err)
}

func TestSettingsCommandParse(t *testing.T) {
	c := testClient()

	cmd, err := c.parseCommand("thermacore/settings/switch/sound/command", "off")
	require.NoError(t, err)
	assert.Equal(t, "", cmd.UnitId)
	assert.Equal(t, "sound", cmd.DeviceId)
	assert.Equal(t, COMMAND_SWITCH, cmd.Command)

	cmd, err = c.parseCommand("thermacore/settings/number/volume/set", "42")
	require.NoError(t, err)
	assert.Equal(t, COMMAND_NUMBER, cmd.Command)
	assert.Equal(t, "42", cmd.Payload)

	_, err = c.parseCommand("thermacore/settings/number/volume/set", "loud")
	assert.Error(t, err)
}

func TestTopics(t *testing.T) {
	c := testClient()

	assert.Equal(t, "thermacore/bridge/state", c.BridgeStateTopic())
	assert.Equal(t, "thermacore/unit/2/switch/machine/state", c.UnitSwitchStateTopic("2", "machine"))
	assert.Equal(t, "thermacore/unit/2/switch/machine/command", c.UnitSwitchCommandTopic("2", "machine"))
	assert.Equal(t, "thermacore/settings/number/volume/state", c.SettingsNumberStateTopic("volume"))
	assert.Equal(t, "thermacore/settings/switch/sound/state", c.SettingsSwitchStateTopic("sound"))
	assert.Equal(t, "thermacore/settings/sensor/temperature_unit/state", c.SettingsSensorStateTopic("temperature_unit"))
	assert.Equal(t, "thermacore/audio/cue", c.AudioCueTopic())
}
