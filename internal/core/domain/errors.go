package domain

import "errors"

// validation errors
var (
	ErrInvalidTemperatureUnit = errors.New("invalid temperature unit")
	ErrMachineOff             = errors.New("machine is off")
	ErrWaterProductionOff     = errors.New("water production is off")
	ErrWaterGenerationMissing = errors.New("unit does not support water generation")
	ErrUnknownControl         = errors.New("unknown control")
	ErrNoPendingToggle        = errors.New("no pending toggle")
	ErrPendingToggleMismatch  = errors.New("pending toggle id does not match")
	ErrEmptyUnitName          = errors.New("unit name cannot be empty")
	ErrInvalidGPS             = errors.New("invalid gps coordinates")
	ErrInvalidRole            = errors.New("invalid role")
)

// lookup errors
var (
	ErrUnitNotFound       = errors.New("unit not found")
	ErrUnitControlClosed  = errors.New("unit control view is not open")
	ErrKeyNotFound        = errors.New("key not found")
	ErrUnitServiceFailure = errors.New("unit service call failed")
)

// IsValidationError reports whether err was caused by a rejected user action
// that left state unchanged.
func IsValidationError(err error) bool {
	for _, e := range []error{ErrInvalidTemperatureUnit, ErrUnknownControl, ErrEmptyUnitName, ErrInvalidGPS, ErrInvalidRole} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// IsPreconditionError reports whether err was caused by a dependent control
// whose prerequisite is off.
func IsPreconditionError(err error) bool {
	return errors.Is(err, ErrMachineOff) || errors.Is(err, ErrWaterProductionOff) ||
		errors.Is(err, ErrWaterGenerationMissing)
}
