package actor

import (
	"context"
	"fmt"
	"time"

	"thermacore/internal/core/domain"
	"thermacore/internal/core/events"
	"thermacore/internal/core/port"
	"thermacore/internal/core/service"
	"thermacore/internal/metrics"
	. "thermacore/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"go.uber.org/zap"
)

const DEFAULT_UNIT_LOAD_TIMEOUT = 2 * time.Second

// UnitControlDeps are the collaborators shared by every unit control actor.
type UnitControlDeps struct {
	UnitService port.UnitService
	Sound       port.SoundSink
	Volume      port.VolumeSource
	Metrics     metrics.Recorder
	LoadTimeout time.Duration
}

// UnitControlActor serializes every toggle of one unit. It lives while the
// unit's control view is open.
type UnitControlActor struct {
	ActorWithStates
	unitId      string
	deps        UnitControlDeps
	eventStream *eventstream.EventStream
	stash       *Stash
	coordinator *service.UnitControlCoordinator
	logger      *zap.Logger
}

type unitLoaded struct {
	unit domain.Unit
	err  error
}

// unitControlFailed tells the master that the unit could not be loaded.
type unitControlFailed struct {
	unitId string
	who    *actor.PID
}

func NewUnitControlActor(unitId string, deps UnitControlDeps, eventStream *eventstream.EventStream, logger *zap.Logger) *UnitControlActor {
	if deps.LoadTimeout <= 0 {
		deps.LoadTimeout = DEFAULT_UNIT_LOAD_TIMEOUT
	}
	deps.Metrics = metrics.OrNoop(deps.Metrics)
	act := &UnitControlActor{
		unitId:      unitId,
		deps:        deps,
		eventStream: eventStream,
		stash:       &Stash{},
		logger:      ActorLogger(domain.ACTOR_ID_UNIT_CONTROL, logger).With(zap.String("unit", unitId)),
		ActorWithStates: ActorWithStates{
			Behavior: actor.NewBehavior(),
		},
	}
	act.Become(UCStartingState{
		actor: act,
	})
	return act
}

func (state *UnitControlActor) Receive(context actor.Context) {
	state.Behavior.Receive(context)
}

// Starting state

type UCStartingState struct {
	ActorState
	actor *UnitControlActor
}

func (state UCStartingState) Name() string {
	return "starting"
}

func (state UCStartingState) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.actor.logger.Debug("unit_control@starting started")
		state.actor.loadUnit(ctx)
	case unitLoaded:
		if msg.err != nil {
			state.actor.logger.Error("unit_control@starting could not load unit", zap.Error(msg.err))
			state.actor.Become(UCFailedState{
				actor: state.actor,
				err:   msg.err,
			})
			state.actor.stash.UnstashAll(ctx)
			ctx.Send(ctx.Parent(), unitControlFailed{unitId: state.actor.unitId, who: ctx.Self()})
			return
		}
		state.actor.logger.Debug("unit_control@starting unit loaded")
		state.actor.coordinator = service.NewUnitControlCoordinator(msg.unit)
		state.actor.publish(events.ControlStateUpdateEvents(state.actor.unitId, state.actor.coordinator.State()))
		state.actor.Become(UCReadyState{
			actor: state.actor,
		})
		state.actor.stash.UnstashAll(ctx)
	case *actor.Restarting, *actor.Stopping, *actor.Stopped:
	case domain.ActorHealthRequest:
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_UNIT_CONTROL,
			Healthy: true,
			State:   state.Name(),
		})
	default:
		state.actor.logger.Debug("unit_control@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.actor.stash.Stash(ctx, msg)
	}
}

// Ready state

type UCReadyState struct {
	ActorState
	actor *UnitControlActor
}

func (state UCReadyState) Name() string {
	return "ready"
}

func (state UCReadyState) Receive(ctx actor.Context) {
	act := state.actor
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_UNIT_CONTROL,
			Healthy: true,
			State:   state.Name(),
		})
	case domain.OpenUnitControlRequest:
		act.logger.Debug("unit_control@ready OpenUnitControlRequest")
		ForRequest(msg).Respond(ctx, act.response(nil, nil))
	case domain.GetUnitControlRequest:
		ForRequest(msg).Respond(ctx, act.response(nil, nil))
	case domain.RequestToggleRequest:
		act.logger.Debug("unit_control@ready RequestToggleRequest", zap.String("control", string(msg.Control)), zap.Bool("on", msg.On))
		action, err := domain.NewControlAction(msg.Control, msg.On)
		if err == nil {
			_, err = act.coordinator.Request(action)
		}
		if err != nil {
			act.deps.Metrics.IncControlTransition(string(msg.Control), metrics.ResultRejected)
		}
		ForRequest(msg).Respond(ctx, act.response(nil, err))
	case domain.ConfirmToggleRequest:
		act.logger.Debug("unit_control@ready ConfirmToggleRequest", zap.String("toggle", msg.ToggleId))
		pending := act.coordinator.Pending()
		changes, err := act.coordinator.Confirm(msg.ToggleId)
		if pending != nil && err == nil {
			act.afterCommit(pending.Control, changes)
		} else if pending != nil && domain.IsPreconditionError(err) {
			act.deps.Metrics.IncControlTransition(string(pending.Control), metrics.ResultRejected)
		}
		ForRequest(msg).Respond(ctx, act.response(changes, err))
	case domain.CancelToggleRequest:
		pending := act.coordinator.Pending()
		err := act.coordinator.Cancel(msg.ToggleId)
		if err == nil {
			act.logger.Debug("unit_control@ready toggle canceled", zap.String("control", string(pending.Control)))
			act.deps.Metrics.IncControlTransition(string(pending.Control), metrics.ResultCanceled)
		}
		ForRequest(msg).Respond(ctx, act.response(nil, err))
	case domain.CommitToggleRequest:
		act.logger.Debug("unit_control@ready CommitToggleRequest", zap.String("control", string(msg.Control)), zap.Bool("on", msg.On))
		action, err := domain.NewControlAction(msg.Control, msg.On)
		var changes []domain.ControlChange
		if err == nil {
			changes, err = act.coordinator.Commit(action)
		}
		if err != nil {
			act.logger.Warn("unit_control@ready commit rejected", zap.Error(err))
			act.deps.Metrics.IncControlTransition(string(msg.Control), metrics.ResultRejected)
		} else {
			act.afterCommit(msg.Control, changes)
		}
		ForRequest(msg).Respond(ctx, act.response(changes, err))
	default:
		act.logger.Debug("unit_control@ready recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

// Failed state: the unit could not be loaded. Every request is answered with
// the load error until the master stops the actor.

type UCFailedState struct {
	ActorState
	actor *UnitControlActor
	err   error
}

func (state UCFailedState) Name() string {
	return "failed"
}

func (state UCFailedState) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_UNIT_CONTROL,
			Healthy: false,
			State:   state.Name(),
		})
	case domain.UnitRequest:
		ForRequest(msg).Respond(ctx, domain.UnitControlResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: state.err},
		})
	default:
		state.actor.logger.Debug("unit_control@failed recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *UnitControlActor) loadUnit(ctx actor.Context) {
	srv := state.deps.UnitService
	unitId := state.unitId
	timeout := state.deps.LoadTimeout
	NewBackgroundTask(ctx, func() (*unitLoaded, error) {
		callCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		unit, err := srv.GetUnit(callCtx, unitId)
		if err != nil {
			return nil, err
		}
		return &unitLoaded{unit: *unit}, nil
	}).WithTimeout(timeout).Recover(func(err error) unitLoaded {
		return unitLoaded{err: err}
	}).PipeTo(ctx.Self())
}

// afterCommit emits the state updates, the semantic transition event and the
// audio cue of a committed transition.
func (state *UnitControlActor) afterCommit(control domain.ControlId, changes []domain.ControlChange) {
	if len(changes) == 0 {
		state.deps.Metrics.IncControlTransition(string(control), metrics.ResultNoop)
		return
	}
	state.deps.Metrics.IncControlTransition(string(control), metrics.ResultCommitted)

	transition := domain.ControlTransitionEvent{
		UnitId:  state.unitId,
		Changes: changes,
		State:   state.coordinator.State(),
	}
	state.logger.Info("unit_control@ready " + transition.String())
	state.publish(events.ControlChangesToUpdateEvents(state.unitId, changes))
	state.publish([]any{transition})
	state.playCue(domain.SoundCueFor(changes[0]))
}

func (state *UnitControlActor) playCue(cue domain.SoundCue) {
	if state.deps.Sound == nil || state.deps.Volume == nil {
		return
	}
	gain := state.deps.Volume.NormalizedVolume()
	if gain <= 0 {
		state.logger.Debug("unit_control@ready muted, cue skipped", zap.String("cue", string(cue)))
		return
	}
	state.deps.Sound.Play(cue, gain)
}

func (state *UnitControlActor) publish(evs []any) {
	if state.eventStream == nil {
		return
	}
	for _, ev := range evs {
		state.eventStream.Publish(ev)
	}
}

func (state *UnitControlActor) response(changes []domain.ControlChange, err error) domain.UnitControlResponse {
	return domain.UnitControlResponse{
		ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err},
		Unit:               state.coordinator.Unit(),
		State:              state.coordinator.State(),
		Pending:            state.coordinator.Pending(),
		Changes:            changes,
	}
}
