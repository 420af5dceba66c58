package actor

import (
	"context"
	"fmt"
	"log"
	"math"
	"strconv"
	"time"

	adactor "thermacore/internal/adapter/actor"
	"thermacore/internal/config"
	"thermacore/internal/core/domain"
	"thermacore/internal/mqtt"
	. "thermacore/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"go.uber.org/zap"
)

type MQTTActorProvider func(*eventstream.EventStream) *adactor.MQTTActor

// SettingsCommander is the part of the settings store reachable from MQTT
// commands.
type SettingsCommander interface {
	Settings() domain.Settings
	SetVolume(ctx context.Context, v int) domain.Settings
	ToggleSound(ctx context.Context) domain.Settings
}

type MasterDeps struct {
	UnitControl       UnitControlDeps
	Settings          SettingsCommander
	EventStream       *eventstream.EventStream
	MQTTActorProvider MQTTActorProvider
}

// MasterActor supervises the MQTT bridge and one control actor per open unit
// control view, and routes unit requests to them.
type MasterActor struct {
	config   config.Config
	behavior actor.Behavior
	stash    *Stash
	deps     MasterDeps

	currentHealthCheck healthCheckResult
	mqttActor          *actor.PID
	unitControls       map[string]*actor.PID
	spawned            uint64
	logger             *zap.Logger
}

type healthCheckResult struct {
	expected       int
	healthy        int
	checksReceived int
	respondTo      *actor.PID
}

func NewMasterActor(config config.Config, deps MasterDeps, logger *zap.Logger) *MasterActor {
	if deps.EventStream == nil {
		deps.EventStream = &eventstream.EventStream{}
	}
	if deps.UnitControl.LoadTimeout <= 0 {
		deps.UnitControl.LoadTimeout = time.Duration(config.UnitService.TimeoutMillis) * time.Millisecond
	}
	act := &MasterActor{
		config:       config,
		behavior:     actor.NewBehavior(),
		stash:        &Stash{},
		deps:         deps,
		unitControls: map[string]*actor.PID{},
		logger:       ActorLogger(domain.ACTOR_ID_MASTER, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *MasterActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *MasterActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("master@starting started")

		// start MQTT child
		if state.deps.MQTTActorProvider != nil {
			mqttActorPID, err := state.startMQTTActor(ctx)
			if err != nil {
				panic(err)
			}
			state.mqttActor = mqttActorPID
		}

		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("master@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("master@default ActorHealthRequest")
		state.currentHealthCheck.reset()
		state.currentHealthCheck.respondTo = ctx.Sender()
		if state.mqttActor == nil {
			state.currentHealthCheck.respond(ctx, len(state.unitControls))
			return
		}
		state.currentHealthCheck.expected = 1
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.mqttActor, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_MQTT,
				Healthy: false,
			}
		})

		ctx.SetReceiveTimeout(1 * time.Second)

		state.behavior.BecomeStacked(state.HealthCheckReceive)
	case domain.CloseUnitControlRequest:
		state.logger.Debug("master@default CloseUnitControlRequest", zap.String("unit", msg.UnitId))
		if pid, ok := state.unitControls[msg.UnitId]; ok {
			delete(state.unitControls, msg.UnitId)
			// requests already queued for the unit are still answered
			ctx.Poison(pid)
		}
		ForRequest(msg).Respond(ctx, domain.CloseUnitControlResponse{})
	case domain.UnitRequest:
		state.routeUnitRequest(ctx, msg)
	case adactor.ParsedCommand:
		// redirect parsedCommand to actor
		state.logger.Debug("master@default parsedCommand", zap.Any("command", msg.Command))
		if msg.Command != nil {
			state.handleCommand(ctx, *msg.Command)
		}
	case unitControlFailed:
		if pid, ok := state.unitControls[msg.unitId]; ok && msg.who != nil && pid.Id == msg.who.Id {
			delete(state.unitControls, msg.unitId)
			ctx.Poison(pid)
		}
	case *actor.Terminated:
		for unitId, pid := range state.unitControls {
			if msg.Who != nil && pid.Id == msg.Who.Id && pid.Address == msg.Who.Address {
				state.logger.Debug("master@default unit control terminated", zap.String("unit", unitId))
				delete(state.unitControls, unitId)
			}
		}
	default:
		state.logger.Debug("master@default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *MasterActor) HealthCheckReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.ReceiveTimeout:
		// if some actor does not respond to healthCheck, assume not healthy
		ctx.SetReceiveTimeout(0)
		state.currentHealthCheck.respond(ctx, len(state.unitControls))
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case domain.ActorHealthResponse:
		state.logger.Debug("master@healthcheck ActorHealthResponse", zap.String("sender", msg.Id), zap.Bool("healthy", msg.Healthy))
		state.currentHealthCheck.checksReceived++
		if msg.Healthy {
			state.currentHealthCheck.healthy++
		}
		if state.currentHealthCheck.allReceived() {
			ctx.SetReceiveTimeout(0)
			state.currentHealthCheck.respond(ctx, len(state.unitControls))

			state.behavior.UnbecomeStacked()
			state.stash.UnstashAll(ctx)
		}
	default:
		state.logger.Debug("master@healthcheck stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

// routeUnitRequest forwards msg to the unit's control actor, keeping the
// original sender. Only opening the view or a remote commit starts an actor.
func (state *MasterActor) routeUnitRequest(ctx actor.Context, msg domain.UnitRequest) {
	unitId := msg.TargetUnit()
	pid, ok := state.unitControls[unitId]
	if !ok {
		switch msg.(type) {
		case domain.OpenUnitControlRequest, domain.CommitToggleRequest:
			var err error
			pid, err = state.startUnitControlActor(ctx, unitId)
			if err != nil {
				state.logger.Error("master@default could not start unit control", zap.String("unit", unitId), zap.Error(err))
				ForRequest(msg).Respond(ctx, domain.UnitControlResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err},
				})
				return
			}
		default:
			ForRequest(msg).Respond(ctx, domain.UnitControlResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{
					ResponseError: fmt.Errorf("%w: %s", domain.ErrUnitControlClosed, unitId),
				},
			})
			return
		}
	}
	ctx.RequestWithCustomSender(pid, msg, ctx.Sender())
}

func (state *MasterActor) handleCommand(ctx actor.Context, cmd mqtt.ParsedMQTTCommand) {
	if cmd.UnitId != "" {
		req, err := ParsedMQTTCommandToCommand(cmd)
		if err != nil {
			state.logger.Warn("master@default invalid unit command", zap.Any("command", cmd), zap.Error(err))
			return
		}
		state.routeUnitRequest(ctx, req)
		return
	}
	if state.deps.Settings == nil {
		return
	}
	switch {
	case cmd.Command == mqtt.COMMAND_NUMBER && cmd.DeviceId == domain.SETTINGS_ID_VOLUME:
		value, err := strconv.ParseFloat(cmd.Payload, 64)
		if err != nil {
			return
		}
		state.deps.Settings.SetVolume(context.Background(), int(math.Round(value)))
	case cmd.Command == mqtt.COMMAND_SWITCH && cmd.DeviceId == domain.SETTINGS_ID_SOUND:
		enable := cmd.Payload == mqtt.MQTT_PAYLOAD_ON
		if state.deps.Settings.Settings().SoundEnabled != enable {
			state.deps.Settings.ToggleSound(context.Background())
		}
	default:
		state.logger.Debug("master@default unknown settings command", zap.Any("command", cmd))
	}
}

func (state *MasterActor) startMQTTActor(ctx actor.Context) (*actor.PID, error) {

	supervisor := actor.NewExponentialBackoffStrategy(10*time.Second, 1*time.Second)

	mqttProps := actor.PropsFromProducer(func() actor.Actor {
		return state.deps.MQTTActorProvider(state.deps.EventStream)
	}, actor.WithSupervisor(supervisor))
	mqttActorPID, err := ctx.SpawnNamed(mqttProps, domain.ACTOR_ID_MQTT)
	if err != nil {
		return nil, err
	}

	return mqttActorPID, nil
}

func (state *MasterActor) startUnitControlActor(ctx actor.Context, unitId string) (*actor.PID, error) {

	decider := func(reason interface{}) actor.Directive {
		log.Printf("handling failure for child. reason: %v", reason)
		return actor.RestartDirective
	}
	supervisor := actor.NewOneForOneStrategy(1, 10*time.Second, decider)

	unitControlProps := actor.PropsFromProducer(func() actor.Actor {
		return NewUnitControlActor(unitId, state.deps.UnitControl, state.deps.EventStream, state.logger)
	}, actor.WithSupervisor(supervisor))
	// a closed view's actor may still be stopping, so names are never reused
	state.spawned++
	name := fmt.Sprintf("%s_%s_%d", domain.ACTOR_ID_UNIT_CONTROL, unitId, state.spawned)
	pid, err := ctx.SpawnNamed(unitControlProps, name)
	if err != nil {
		return nil, err
	}
	state.unitControls[unitId] = pid

	return pid, nil
}

func (state *healthCheckResult) reset() {
	state.expected = 0
	state.healthy = 0
	state.checksReceived = 0
	state.respondTo = nil
}

func (state *healthCheckResult) allReceived() bool {
	return state.checksReceived >= state.expected
}

func (state *healthCheckResult) allHealthy() bool {
	return state.healthy == state.expected
}

func (state *healthCheckResult) respond(ctx actor.Context, openViews int) {
	resp := domain.ActorHealthResponse{
		Id:      domain.ACTOR_ID_MASTER,
		Healthy: state.allHealthy(),
		State:   fmt.Sprintf("%d open unit views", openViews),
	}
	if state.respondTo != nil {
		ctx.Send(state.respondTo, resp)
	}
}
