package domain

import "fmt"

const (
	SETTINGS_ID_VOLUME           = "volume"
	SETTINGS_ID_SOUND            = "sound"
	SETTINGS_ID_TEMPERATURE_UNIT = "temperature_unit"
)

// SensorUpdateEventMixIn identifies a state entity. An empty UnitId refers to
// a bridge wide entity such as the settings.
type SensorUpdateEventMixIn struct {
	UnitId string
	Id     string
}

type SensorUpdateEvent interface {
	SensorUpdateEvent() string
	SensorId() string
	SensorUnitId() string
}

func (e SensorUpdateEventMixIn) SensorUpdateEvent() string {
	return fmt.Sprintf("%T", e)
}

func (e SensorUpdateEventMixIn) SensorId() string {
	return e.Id
}

func (e SensorUpdateEventMixIn) SensorUnitId() string {
	return e.UnitId
}

type SwitchSensorUpdateEvent struct {
	SensorUpdateEventMixIn
	Value bool
}

type TextSensorUpdateEvent struct {
	SensorUpdateEventMixIn
	Value string
}

type BridgeStateUpdateEvent struct {
	SensorUpdateEventMixIn
	Value bool
}

type InputNumberSensorUpdateEvent struct {
	SensorUpdateEventMixIn
	Value    float64
	Decimals uint
}

// ControlTransitionEvent is the semantic event emitted once per committed
// transition, e.g. "machine turned off for unit X".
type ControlTransitionEvent struct {
	UnitId  string
	Changes []ControlChange
	State   UnitControlState
}

func (e ControlTransitionEvent) String() string {
	if len(e.Changes) == 0 {
		return fmt.Sprintf("no change for unit %s", e.UnitId)
	}
	return fmt.Sprintf("%s for unit %s", e.Changes[0], e.UnitId)
}

// SoundCueEvent asks the external audio player to emit a cue at the given gain.
type SoundCueEvent struct {
	Cue  SoundCue `json:"cue"`
	Gain float64  `json:"gain"`
}
