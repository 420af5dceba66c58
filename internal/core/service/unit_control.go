package service

import (
	"fmt"

	"thermacore/internal/core/domain"

	"github.com/google/uuid"
)

// ApplyControlAction is the cascade state machine. It returns the next state
// and the list of controls that changed, primary change first. A rejected
// action returns the unchanged state and an error.
func ApplyControlAction(state domain.UnitControlState, action domain.ControlAction) (domain.UnitControlState, []domain.ControlChange, error) {
	next := state
	switch a := action.(type) {
	case domain.SetMachine:
		next.MachineOn = a.On
		if !a.On {
			next.WaterProductionOn = false
			next.AutoSwitchEnabled = false
		}
	case domain.SetWaterProduction:
		if !state.MachineOn {
			return state, nil, domain.ErrMachineOff
		}
		next.WaterProductionOn = a.On
		if !a.On {
			next.AutoSwitchEnabled = false
		}
	case domain.SetAutoSwitch:
		if !state.MachineOn {
			return state, nil, domain.ErrMachineOff
		}
		if !state.WaterProductionOn {
			return state, nil, domain.ErrWaterProductionOff
		}
		next.AutoSwitchEnabled = a.Enabled
	default:
		return state, nil, fmt.Errorf("%w: %T", domain.ErrUnknownControl, action)
	}
	return next, diffControlState(state, next, action.Control()), nil
}

func diffControlState(prev, next domain.UnitControlState, primary domain.ControlId) []domain.ControlChange {
	var changes []domain.ControlChange
	for _, id := range []domain.ControlId{domain.SWITCH_ID_MACHINE, domain.SWITCH_ID_WATER_PRODUCTION, domain.SWITCH_ID_AUTO_SWITCH} {
		if prev.Get(id) != next.Get(id) {
			changes = append(changes, domain.ControlChange{
				Control:  id,
				On:       next.Get(id),
				Cascaded: id != primary,
			})
		}
	}
	return changes
}

// UnitControlCoordinator holds the committed control state of one unit and
// the optional pending toggle awaiting confirmation. It is not safe for
// concurrent use; the unit control actor owns it.
type UnitControlCoordinator struct {
	unit    domain.Unit
	state   domain.UnitControlState
	pending *domain.PendingToggle
	newId   func() string
}

func NewUnitControlCoordinator(unit domain.Unit) *UnitControlCoordinator {
	return &UnitControlCoordinator{
		unit:  unit,
		state: domain.ControlStateFromUnit(unit),
		newId: uuid.NewString,
	}
}

func (c *UnitControlCoordinator) Unit() domain.Unit {
	return c.unit
}

func (c *UnitControlCoordinator) State() domain.UnitControlState {
	return c.state
}

func (c *UnitControlCoordinator) Pending() *domain.PendingToggle {
	if c.pending == nil {
		return nil
	}
	p := *c.pending
	return &p
}

// checkCapability rejects water related controls on units that cannot
// generate water.
func (c *UnitControlCoordinator) checkCapability(action domain.ControlAction) error {
	if action.Control() != domain.SWITCH_ID_MACHINE && !c.unit.WaterGeneration {
		return domain.ErrWaterGenerationMissing
	}
	return nil
}

// Request validates the action against the committed state and stores it as
// the pending toggle, replacing any earlier unconfirmed one. The committed
// state is not touched.
func (c *UnitControlCoordinator) Request(action domain.ControlAction) (domain.PendingToggle, error) {
	if err := c.checkCapability(action); err != nil {
		return domain.PendingToggle{}, err
	}
	if _, _, err := ApplyControlAction(c.state, action); err != nil {
		return domain.PendingToggle{}, err
	}
	c.pending = &domain.PendingToggle{
		Id:      c.newId(),
		Control: action.Control(),
		On:      action.Target(),
	}
	return *c.pending, nil
}

// Confirm commits the pending toggle with the given id. The pending toggle
// is consumed even when the transition is rejected.
func (c *UnitControlCoordinator) Confirm(id string) ([]domain.ControlChange, error) {
	if c.pending == nil {
		return nil, domain.ErrNoPendingToggle
	}
	if c.pending.Id != id {
		return nil, domain.ErrPendingToggleMismatch
	}
	action := c.pending.Action()
	c.pending = nil
	return c.Commit(action)
}

// Cancel drops the pending toggle; the committed state is untouched.
func (c *UnitControlCoordinator) Cancel(id string) error {
	if c.pending == nil {
		return domain.ErrNoPendingToggle
	}
	if c.pending.Id != id {
		return domain.ErrPendingToggleMismatch
	}
	c.pending = nil
	return nil
}

// Commit applies an already confirmed action.
func (c *UnitControlCoordinator) Commit(action domain.ControlAction) ([]domain.ControlChange, error) {
	if err := c.checkCapability(action); err != nil {
		return nil, err
	}
	next, changes, err := ApplyControlAction(c.state, action)
	if err != nil {
		return nil, err
	}
	c.state = next
	return changes, nil
}
