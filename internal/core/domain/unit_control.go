package domain

import "fmt"

type ControlId string

const (
	SWITCH_ID_MACHINE          ControlId = "machine"
	SWITCH_ID_WATER_PRODUCTION ControlId = "water_production"
	SWITCH_ID_AUTO_SWITCH      ControlId = "auto_switch"
)

func ParseControlId(value string) (ControlId, error) {
	switch ControlId(value) {
	case SWITCH_ID_MACHINE, SWITCH_ID_WATER_PRODUCTION, SWITCH_ID_AUTO_SWITCH:
		return ControlId(value), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownControl, value)
}

// UnitControlState holds the three dependent controls of a unit.
// Reachable states satisfy: machine off => water and auto off; water off => auto off.
type UnitControlState struct {
	MachineOn         bool `json:"machineOn"`
	WaterProductionOn bool `json:"waterProductionOn"`
	AutoSwitchEnabled bool `json:"autoSwitchEnabled"`
}

func (s UnitControlState) Valid() bool {
	if !s.MachineOn && (s.WaterProductionOn || s.AutoSwitchEnabled) {
		return false
	}
	if !s.WaterProductionOn && s.AutoSwitchEnabled {
		return false
	}
	return true
}

func (s UnitControlState) Get(id ControlId) bool {
	switch id {
	case SWITCH_ID_MACHINE:
		return s.MachineOn
	case SWITCH_ID_WATER_PRODUCTION:
		return s.WaterProductionOn
	case SWITCH_ID_AUTO_SWITCH:
		return s.AutoSwitchEnabled
	}
	return false
}

// ControlStateFromUnit derives the initial control state from the last known
// unit status, forcing dependent controls off when the record is inconsistent.
func ControlStateFromUnit(unit Unit) UnitControlState {
	s := UnitControlState{
		MachineOn:         unit.Status == UNIT_STATUS_ONLINE,
		WaterProductionOn: unit.WaterGeneration && unit.WaterProductionOn,
		AutoSwitchEnabled: unit.WaterGeneration && unit.AutoSwitchEnabled,
	}
	if !s.MachineOn {
		s.WaterProductionOn = false
	}
	if !s.WaterProductionOn {
		s.AutoSwitchEnabled = false
	}
	return s
}

// ControlAction

type ControlAction interface {
	Control() ControlId
	Target() bool
}

type SetMachine struct {
	On bool
}

func (a SetMachine) Control() ControlId { return SWITCH_ID_MACHINE }
func (a SetMachine) Target() bool       { return a.On }

type SetWaterProduction struct {
	On bool
}

func (a SetWaterProduction) Control() ControlId { return SWITCH_ID_WATER_PRODUCTION }
func (a SetWaterProduction) Target() bool       { return a.On }

type SetAutoSwitch struct {
	Enabled bool
}

func (a SetAutoSwitch) Control() ControlId { return SWITCH_ID_AUTO_SWITCH }
func (a SetAutoSwitch) Target() bool       { return a.Enabled }

func NewControlAction(id ControlId, on bool) (ControlAction, error) {
	switch id {
	case SWITCH_ID_MACHINE:
		return SetMachine{On: on}, nil
	case SWITCH_ID_WATER_PRODUCTION:
		return SetWaterProduction{On: on}, nil
	case SWITCH_ID_AUTO_SWITCH:
		return SetAutoSwitch{Enabled: on}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownControl, id)
}

// ControlChange describes a single control that changed value during a
// transition. Cascaded is true when the change was forced by a prerequisite.
type ControlChange struct {
	Control  ControlId `json:"control"`
	On       bool      `json:"on"`
	Cascaded bool      `json:"cascaded"`
}

func (c ControlChange) String() string {
	state := "off"
	if c.On {
		state = "on"
	}
	if c.Cascaded {
		return fmt.Sprintf("%s turned %s (cascade)", c.Control, state)
	}
	return fmt.Sprintf("%s turned %s", c.Control, state)
}

// PendingToggle is a requested but not yet confirmed control change.
type PendingToggle struct {
	Id      string    `json:"id"`
	Control ControlId `json:"control"`
	On      bool      `json:"on"`
}

func (p PendingToggle) Action() ControlAction {
	a, _ := NewControlAction(p.Control, p.On)
	return a
}

// SoundCue names the audio clip the external player emits on a transition.
type SoundCue string

const (
	SOUND_CUE_POWER_ON   SoundCue = "power-on"
	SOUND_CUE_POWER_OFF  SoundCue = "power-off"
	SOUND_CUE_WATER_ON   SoundCue = "water-on"
	SOUND_CUE_WATER_OFF  SoundCue = "water-off"
	SOUND_CUE_COOL_TONES SoundCue = "cool-tones"
)

func SoundCueFor(change ControlChange) SoundCue {
	switch change.Control {
	case SWITCH_ID_MACHINE:
		if change.On {
			return SOUND_CUE_POWER_ON
		}
		return SOUND_CUE_POWER_OFF
	case SWITCH_ID_WATER_PRODUCTION:
		if change.On {
			return SOUND_CUE_WATER_ON
		}
		return SOUND_CUE_WATER_OFF
	default:
		return SOUND_CUE_COOL_TONES
	}
}
