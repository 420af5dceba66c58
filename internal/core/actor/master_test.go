package actor

import (
	"context"
	"sync"
	"testing"
	"time"

	adactor "thermacore/internal/adapter/actor"
	"thermacore/internal/adapter/unitservice"
	"thermacore/internal/core/domain"
	"thermacore/internal/mqtt"
	"thermacore/internal/util"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSink struct {
	mu    sync.Mutex
	cues  []domain.SoundCue
	gains []float64
}

func (s *recordingSink) Play(cue domain.SoundCue, gain float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cues = append(s.cues, cue)
	s.gains = append(s.gains, gain)
}

func (s *recordingSink) played() []domain.SoundCue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.SoundCue(nil), s.cues...)
}

type fixedVolume float64

func (v fixedVolume) NormalizedVolume() float64 { return float64(v) }

type fakeSettings struct {
	mu       sync.Mutex
	settings domain.Settings
}

func (s *fakeSettings) Settings() domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *fakeSettings) SetVolume(_ context.Context, v int) domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Volume = v
	return s.settings
}

func (s *fakeSettings) ToggleSound(_ context.Context) domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.SoundEnabled = !s.settings.SoundEnabled
	return s.settings
}

type masterFixture struct {
	as       *actor.ActorSystem
	root     *actor.RootContext
	pid      *actor.PID
	es       *eventstream.EventStream
	sink     *recordingSink
	settings *fakeSettings
	mu       sync.Mutex
	events   []any
}

func newMasterFixture(t *testing.T, gain float64) *masterFixture {
	cfg := util.LoadTestConfig()
	logger := zap.NewNop()

	f := &masterFixture{
		as:       actor.NewActorSystem(),
		es:       &eventstream.EventStream{},
		sink:     &recordingSink{},
		settings: &fakeSettings{settings: domain.DefaultSettings()},
	}
	f.root = f.as.Root
	f.es.Subscribe(func(evt interface{}) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.events = append(f.events, evt)
	})

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewMasterActor(cfg, MasterDeps{
			UnitControl: UnitControlDeps{
				UnitService: unitservice.NewMockUnitService(),
				Sound:       f.sink,
				Volume:      fixedVolume(gain),
			},
			Settings:    f.settings,
			EventStream: f.es,
			MQTTActorProvider: func(es *eventstream.EventStream) *adactor.MQTTActor {
				return adactor.NewTestMQTTActor(&cfg, es, logger)
			},
		}, logger)
	})
	pid, err := f.root.SpawnNamed(props, domain.ACTOR_ID_MASTER)
	require.NoError(t, err)
	f.pid = pid

	t.Cleanup(func() {
		f.root.Stop(pid)
		f.as.Shutdown()
	})
	return f
}

func (f *masterFixture) request(t *testing.T, msg any) domain.UnitControlResponse {
	res, err := f.root.RequestFuture(f.pid, msg, 5*time.Second).Result()
	require.NoError(t, err)
	resp, ok := res.(domain.UnitControlResponse)
	require.True(t, ok, "unexpected response %T", res)
	return resp
}

func (f *masterFixture) transitions() []domain.ControlTransitionEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ControlTransitionEvent
	for _, ev := range f.events {
		if tr, ok := ev.(domain.ControlTransitionEvent); ok {
			out = append(out, tr)
		}
	}
	return out
}

func unitReq(unitId string) domain.UnitRequestMixIn {
	return domain.UnitRequestMixIn{UnitId: unitId}
}

func TestMasterActorHealth(t *testing.T) {
	f := newMasterFixture(t, 0.35)

	res, err := f.root.RequestFuture(f.pid, domain.ActorHealthRequest{}, 10*time.Second).Result()
	require.NoError(t, err)
	healthResp, ok := res.(domain.ActorHealthResponse)
	assert.True(t, ok)
	assert.True(t, healthResp.Healthy, "healthy is true")
}

func TestUnitControlConfirmThenCommit(t *testing.T) {
	f := newMasterFixture(t, 0.35)

	// unit 2 is online with water production and auto switch on
	resp := f.request(t, domain.OpenUnitControlRequest{UnitRequestMixIn: unitReq("2")})
	require.NoError(t, resp.GetResponseError())
	assert.Equal(t, domain.UnitControlState{MachineOn: true, WaterProductionOn: true, AutoSwitchEnabled: true}, resp.State)

	resp = f.request(t, domain.RequestToggleRequest{UnitRequestMixIn: unitReq("2"), Control: domain.SWITCH_ID_MACHINE, On: false})
	require.NoError(t, resp.GetResponseError())
	require.NotNil(t, resp.Pending)
	// nothing committed until confirmation
	assert.True(t, resp.State.MachineOn)
	assert.Empty(t, f.transitions())

	resp = f.request(t, domain.ConfirmToggleRequest{UnitRequestMixIn: unitReq("2"), ToggleId: resp.Pending.Id})
	require.NoError(t, resp.GetResponseError())
	assert.Equal(t, domain.UnitControlState{}, resp.State)
	assert.Nil(t, resp.Pending)
	assert.Len(t, resp.Changes, 3)

	require.Len(t, f.transitions(), 1)
	assert.Equal(t, "2", f.transitions()[0].UnitId)
	assert.Equal(t, []domain.SoundCue{domain.SOUND_CUE_POWER_OFF}, f.sink.played())
	assert.Equal(t, []float64{0.35}, f.sink.gains)

	// water production cannot be turned on while the machine is off
	resp = f.request(t, domain.RequestToggleRequest{UnitRequestMixIn: unitReq("2"), Control: domain.SWITCH_ID_WATER_PRODUCTION, On: true})
	assert.ErrorIs(t, resp.GetResponseError(), domain.ErrMachineOff)
	assert.Nil(t, resp.Pending)
}

func TestUnitControlCancel(t *testing.T) {
	f := newMasterFixture(t, 0.35)

	f.request(t, domain.OpenUnitControlRequest{UnitRequestMixIn: unitReq("2")})
	resp := f.request(t, domain.RequestToggleRequest{UnitRequestMixIn: unitReq("2"), Control: domain.SWITCH_ID_AUTO_SWITCH, On: false})
	require.NotNil(t, resp.Pending)

	resp = f.request(t, domain.CancelToggleRequest{UnitRequestMixIn: unitReq("2"), ToggleId: resp.Pending.Id})
	require.NoError(t, resp.GetResponseError())
	assert.Nil(t, resp.Pending)
	assert.True(t, resp.State.AutoSwitchEnabled)

	resp = f.request(t, domain.ConfirmToggleRequest{UnitRequestMixIn: unitReq("2"), ToggleId: "gone"})
	assert.ErrorIs(t, resp.GetResponseError(), domain.ErrNoPendingToggle)
	assert.Empty(t, f.transitions())
}

func TestUnitControlMutedSkipsCue(t *testing.T) {
	f := newMasterFixture(t, 0)

	f.request(t, domain.OpenUnitControlRequest{UnitRequestMixIn: unitReq("2")})
	resp := f.request(t, domain.RequestToggleRequest{UnitRequestMixIn: unitReq("2"), Control: domain.SWITCH_ID_WATER_PRODUCTION, On: false})
	resp = f.request(t, domain.ConfirmToggleRequest{UnitRequestMixIn: unitReq("2"), ToggleId: resp.Pending.Id})
	require.NoError(t, resp.GetResponseError())

	assert.Equal(t, domain.UnitControlState{MachineOn: true}, resp.State)
	assert.Len(t, f.transitions(), 1)
	assert.Empty(t, f.sink.played())
}

func TestUnitControlClosedAndUnknown(t *testing.T) {
	f := newMasterFixture(t, 0.35)

	resp := f.request(t, domain.GetUnitControlRequest{UnitRequestMixIn: unitReq("2")})
	assert.ErrorIs(t, resp.GetResponseError(), domain.ErrUnitControlClosed)

	resp = f.request(t, domain.OpenUnitControlRequest{UnitRequestMixIn: unitReq("99")})
	assert.ErrorIs(t, resp.GetResponseError(), domain.ErrUnitNotFound)

	f.request(t, domain.OpenUnitControlRequest{UnitRequestMixIn: unitReq("3")})
	res, err := f.root.RequestFuture(f.pid, domain.CloseUnitControlRequest{UnitRequestMixIn: unitReq("3")}, 5*time.Second).Result()
	require.NoError(t, err)
	assert.IsType(t, domain.CloseUnitControlResponse{}, res)

	resp = f.request(t, domain.GetUnitControlRequest{UnitRequestMixIn: unitReq("3")})
	assert.ErrorIs(t, resp.GetResponseError(), domain.ErrUnitControlClosed)

	// reopening starts from the unit record again
	resp = f.request(t, domain.OpenUnitControlRequest{UnitRequestMixIn: unitReq("3")})
	require.NoError(t, resp.GetResponseError())
	assert.Equal(t, domain.UnitControlState{MachineOn: true}, resp.State)
}

func TestUnitControlRejectsWaterControlsWithoutCapability(t *testing.T) {
	f := newMasterFixture(t, 0.35)

	// unit 3 has no water generation
	f.request(t, domain.OpenUnitControlRequest{UnitRequestMixIn: unitReq("3")})
	resp := f.request(t, domain.RequestToggleRequest{UnitRequestMixIn: unitReq("3"), Control: domain.SWITCH_ID_WATER_PRODUCTION, On: true})
	assert.ErrorIs(t, resp.GetResponseError(), domain.ErrWaterGenerationMissing)
}

func TestMQTTCommandCommitsDirectly(t *testing.T) {
	f := newMasterFixture(t, 0.35)

	f.root.Send(f.pid, adactor.ParsedCommand{Command: &mqtt.ParsedMQTTCommand{
		UnitId:   "14",
		DeviceId: string(domain.SWITCH_ID_AUTO_SWITCH),
		Command:  mqtt.COMMAND_SWITCH,
		Payload:  mqtt.MQTT_PAYLOAD_ON,
	}})

	assert.Eventually(t, func() bool {
		return len(f.transitions()) == 1
	}, 3*time.Second, 50*time.Millisecond)

	resp := f.request(t, domain.GetUnitControlRequest{UnitRequestMixIn: unitReq("14")})
	require.NoError(t, resp.GetResponseError())
	assert.Equal(t, domain.UnitControlState{MachineOn: true, WaterProductionOn: true, AutoSwitchEnabled: true}, resp.State)
	assert.Equal(t, []domain.SoundCue{domain.SOUND_CUE_COOL_TONES}, f.sink.played())
}

func TestMQTTSettingsCommands(t *testing.T) {
	f := newMasterFixture(t, 0.35)

	f.root.Send(f.pid, adactor.ParsedCommand{Command: &mqtt.ParsedMQTTCommand{
		DeviceId: domain.SETTINGS_ID_VOLUME,
		Command:  mqtt.COMMAND_NUMBER,
		Payload:  "42.4",
	}})
	f.root.Send(f.pid, adactor.ParsedCommand{Command: &mqtt.ParsedMQTTCommand{
		DeviceId: domain.SETTINGS_ID_SOUND,
		Command:  mqtt.COMMAND_SWITCH,
		Payload:  mqtt.MQTT_PAYLOAD_OFF,
	}})
	// already off: no second toggle
	f.root.Send(f.pid, adactor.ParsedCommand{Command: &mqtt.ParsedMQTTCommand{
		DeviceId: domain.SETTINGS_ID_SOUND,
		Command:  mqtt.COMMAND_SWITCH,
		Payload:  mqtt.MQTT_PAYLOAD_OFF,
	}})

	assert.Eventually(t, func() bool {
		st := f.settings.Settings()
		return st.Volume == 42 && !st.SoundEnabled
	}, 3*time.Second, 50*time.Millisecond)
}
