package events

import (
	. "thermacore/internal/core/domain"
)

// ControlStateUpdateEvents reports every switch of a unit, used when a
// control view is opened so retained state topics match the committed state.
func ControlStateUpdateEvents(unitId string, state UnitControlState) []any {
	var events []any
	for _, id := range []ControlId{SWITCH_ID_MACHINE, SWITCH_ID_WATER_PRODUCTION, SWITCH_ID_AUTO_SWITCH} {
		events = append(events, controlSwitchUpdateEvent(unitId, id, state.Get(id)))
	}
	return events
}

// ControlChangesToUpdateEvents reports only the switches a transition touched,
// cascaded ones included.
func ControlChangesToUpdateEvents(unitId string, changes []ControlChange) []any {
	var events []any
	for _, change := range changes {
		events = append(events, controlSwitchUpdateEvent(unitId, change.Control, change.On))
	}
	return events
}

func controlSwitchUpdateEvent(unitId string, id ControlId, on bool) SwitchSensorUpdateEvent {
	return SwitchSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			UnitId: unitId,
			Id:     string(id),
		},
		Value: on,
	}
}

func SettingsUpdateEvents(settings Settings) []any {
	var events []any
	events = append(events, InputNumberSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SETTINGS_ID_VOLUME,
		},
		Value: float64(settings.Volume),
	})
	events = append(events, SwitchSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SETTINGS_ID_SOUND,
		},
		Value: settings.SoundEnabled,
	})
	events = append(events, TextSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SETTINGS_ID_TEMPERATURE_UNIT,
		},
		Value: string(settings.TemperatureUnit),
	})
	return events
}
