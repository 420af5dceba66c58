package mqtt

import (
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"time"

	"thermacore/internal/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	MQTT_PAYLOAD_ONLINE  = "online"
	MQTT_PAYLOAD_OFFLINE = "offline"
	MQTT_PAYLOAD_ON      = "on"
	MQTT_PAYLOAD_OFF     = "off"

	COMMAND_SWITCH = "switch"
	COMMAND_NUMBER = "number"
)

func OptsFromConfig(cfg *config.Config) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTT.Host, cfg.MQTT.Port))
	opts.SetClientID(fmt.Sprintf("thermacore_%d", rand.Intn(1000)))
	if cfg.MQTT.Username != "" && cfg.MQTT.Password != "" {
		opts.SetUsername(cfg.MQTT.Username)
		opts.SetPassword(cfg.MQTT.Password)
	}
	opts.WillEnabled = true
	opts.WillPayload = []byte(MQTT_PAYLOAD_OFFLINE)
	opts.WillRetained = true
	opts.WillTopic = bridgeStateTopic(cfg.MQTT.BaseTopic)
	opts.WillQos = 0

	return opts
}

func CreateMQTTClient(cfg *config.Config, opts *mqtt.ClientOptions, onConnectHandler func(client mqtt.Client),
	onConnectionLostHandler func(mqtt.Client, error)) *MQTTClient {
	if onConnectHandler != nil {
		opts.OnConnect = onConnectHandler
	}
	if onConnectionLostHandler != nil {
		opts.OnConnectionLost = onConnectionLostHandler
	}
	return &MQTTClient{
		client:                      mqtt.NewClient(opts),
		cfg:                         cfg.MQTT,
		unitSwitchCommandRegexp:     unitSwitchCommandExtractor(cfg.MQTT.BaseTopic),
		settingsSwitchCommandRegexp: settingsSwitchCommandExtractor(cfg.MQTT.BaseTopic),
		settingsNumberCommandRegexp: settingsNumberCommandExtractor(cfg.MQTT.BaseTopic),
	}
}

type MQTTClient struct {
	client                      mqtt.Client
	cfg                         config.MQTTConfig
	unitSwitchCommandRegexp     *regexp.Regexp
	settingsSwitchCommandRegexp *regexp.Regexp
	settingsNumberCommandRegexp *regexp.Regexp
}

// ParsedMQTTCommand is an incoming command. UnitId is empty for bridge wide
// settings.
type ParsedMQTTCommand struct {
	UnitId   string
	DeviceId string
	Command  string
	Payload  string
}

func (c *MQTTClient) baseTopic() string {
	return c.cfg.BaseTopic
}

func (c *MQTTClient) BridgeStateTopic() string {
	return bridgeStateTopic(c.baseTopic())
}

func (c *MQTTClient) UnitSwitchStateTopic(unitId, switchId string) string {
	return fmt.Sprintf("%s/unit/%s/switch/%s/state", c.baseTopic(), unitId, switchId)
}

func (c *MQTTClient) UnitSwitchCommandTopic(unitId, switchId string) string {
	return fmt.Sprintf("%s/unit/%s/switch/%s/command", c.baseTopic(), unitId, switchId)
}

func (c *MQTTClient) SettingsSensorStateTopic(id string) string {
	return fmt.Sprintf("%s/settings/sensor/%s/state", c.baseTopic(), id)
}

func (c *MQTTClient) SettingsSwitchStateTopic(id string) string {
	return fmt.Sprintf("%s/settings/switch/%s/state", c.baseTopic(), id)
}

func (c *MQTTClient) SettingsSwitchCommandTopic(id string) string {
	return fmt.Sprintf("%s/settings/switch/%s/command", c.baseTopic(), id)
}

func (c *MQTTClient) SettingsNumberStateTopic(id string) string {
	return fmt.Sprintf("%s/settings/number/%s/state", c.baseTopic(), id)
}

func (c *MQTTClient) SettingsNumberCommandTopic(id string) string {
	return fmt.Sprintf("%s/settings/number/%s/set", c.baseTopic(), id)
}

func (c *MQTTClient) AudioCueTopic() string {
	return fmt.Sprintf("%s/audio/cue", c.baseTopic())
}

func (c *MQTTClient) ParseMQTTCommand(msg mqtt.Message) (*ParsedMQTTCommand, error) {
	return c.parseCommand(msg.Topic(), string(msg.Payload()))
}

func (c *MQTTClient) parseCommand(topic, payload string) (*ParsedMQTTCommand, error) {
	if m := c.unitSwitchCommandRegexp.FindStringSubmatch(topic); len(m) == 3 {
		return &ParsedMQTTCommand{
			UnitId:   m[1],
			DeviceId: m[2],
			Command:  COMMAND_SWITCH,
			Payload:  payload,
		}, nil
	}
	if m := c.settingsSwitchCommandRegexp.FindStringSubmatch(topic); len(m) == 2 {
		return &ParsedMQTTCommand{
			DeviceId: m[1],
			Command:  COMMAND_SWITCH,
			Payload:  payload,
		}, nil
	}
	if m := c.settingsNumberCommandRegexp.FindStringSubmatch(topic); len(m) == 2 {
		// try to parse a valid number
		if _, err := strconv.ParseFloat(payload, 64); err != nil {
			return nil, err
		}
		return &ParsedMQTTCommand{
			DeviceId: m[1],
			Command:  COMMAND_NUMBER,
			Payload:  payload,
		}, nil
	}
	return nil, errors.New("invalid command")
}

func (c *MQTTClient) Publish(topic string, payload any, qos byte, retain bool, continuation func(error), timeout time.Duration) {
	token := c.client.Publish(topic, qos, retain, payload)
	go func() {
		didTO := token.WaitTimeout(timeout)
		if !didTO {
			continuation(errors.New("MQTT publish timed out"))
		} else {
			continuation(token.Error())
		}
	}()
}

func (c *MQTTClient) Subscribe(topic string, qos byte, handler mqtt.MessageHandler, continuation func(error), timeout time.Duration) {
	token := c.client.Subscribe(topic, qos, handler)
	go func() {
		didTO := token.WaitTimeout(timeout)
		if !didTO {
			continuation(errors.New("MQTT subscribe timed out"))
		} else {
			continuation(token.Error())
		}
	}()
}

func (c *MQTTClient) SubscribeToCommandTopic(handler mqtt.MessageHandler, continuation func(error), timeout time.Duration) {
	c.Subscribe(c.commandTopic(), 1, handler, continuation, timeout)
}

func (c *MQTTClient) Connect(continuation func(error), timeout time.Duration) {
	token := c.client.Connect()
	go func() {
		didTO := token.WaitTimeout(timeout)
		if !didTO {
			continuation(errors.New("MQTT connect timed out"))
		} else {
			continuation(token.Error())
		}
	}()
}

func (c *MQTTClient) Disconnect(timeout time.Duration) {
	c.client.Disconnect(uint(timeout.Milliseconds()))
}

func (c *MQTTClient) commandTopic() string {
	return fmt.Sprintf("%s/#", c.baseTopic())
}

func unitSwitchCommandExtractor(baseTopic string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf("^%s/unit/([a-zA-Z0-9_-]+)/switch/([a-z_]+)/command$", regexp.QuoteMeta(baseTopic)))
}

func settingsSwitchCommandExtractor(baseTopic string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf("^%s/settings/switch/([a-z_]+)/command$", regexp.QuoteMeta(baseTopic)))
}

func settingsNumberCommandExtractor(baseTopic string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf("^%s/settings/number/([a-z_]+)/set$", regexp.QuoteMeta(baseTopic)))
}

func bridgeStateTopic(baseTopic string) string {
	return fmt.Sprintf("%s/bridge/state", baseTopic)
}
