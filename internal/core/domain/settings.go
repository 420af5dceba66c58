package domain

import "fmt"

type TemperatureUnit string

const (
	CELSIUS    TemperatureUnit = "celsius"
	FAHRENHEIT TemperatureUnit = "fahrenheit"
)

const (
	MIN_VOLUME     = 0
	MAX_VOLUME     = 100
	DEFAULT_VOLUME = 35
)

// Settings is the persisted user preference record. The JSON layout is the
// storage format and must stay backwards compatible.
type Settings struct {
	Volume          int             `json:"volume"`
	SoundEnabled    bool            `json:"soundEnabled"`
	PrevVolume      int             `json:"prevVolume"`
	TemperatureUnit TemperatureUnit `json:"temperatureUnit"`
}

func DefaultSettings() Settings {
	return Settings{
		Volume:          DEFAULT_VOLUME,
		SoundEnabled:    true,
		PrevVolume:      DEFAULT_VOLUME,
		TemperatureUnit: CELSIUS,
	}
}

// Muted is the presentation flag: muted when sound is off or the slider sits at zero.
func (s Settings) Muted() bool {
	return !s.SoundEnabled || s.Volume == 0
}

func ParseTemperatureUnit(value string) (TemperatureUnit, error) {
	switch TemperatureUnit(value) {
	case CELSIUS, FAHRENHEIT:
		return TemperatureUnit(value), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTemperatureUnit, value)
}

func (u TemperatureUnit) Valid() bool {
	return u == CELSIUS || u == FAHRENHEIT
}

func (u TemperatureUnit) Toggle() TemperatureUnit {
	if u == FAHRENHEIT {
		return CELSIUS
	}
	return FAHRENHEIT
}

func (u TemperatureUnit) Symbol() string {
	if u == FAHRENHEIT {
		return "°F"
	}
	return "°C"
}
