package domain

const (
	ACTOR_ID_MASTER       = "master"
	ACTOR_ID_MQTT         = "mqtt"
	ACTOR_ID_UNIT_CONTROL = "unit_control"
)

type ActorHealthRequest struct {
	ActorRequestMixIn
}

type ActorHealthResponse struct {
	ActorResponseMixIn
	Id      string
	Healthy bool
	State   string
}

// Unit control view

type OpenUnitControlRequest struct {
	UnitRequestMixIn
}

type CloseUnitControlRequest struct {
	UnitRequestMixIn
}

type CloseUnitControlResponse struct {
	ActorResponseMixIn
}

type GetUnitControlRequest struct {
	UnitRequestMixIn
}

// UnitControlResponse answers open/get requests and every toggle step.
type UnitControlResponse struct {
	ActorResponseMixIn
	Unit    Unit
	State   UnitControlState
	Pending *PendingToggle
	Changes []ControlChange
}

type RequestToggleRequest struct {
	UnitRequestMixIn
	Control ControlId
	On      bool
}

type ConfirmToggleRequest struct {
	UnitRequestMixIn
	ToggleId string
}

type CancelToggleRequest struct {
	UnitRequestMixIn
	ToggleId string
}

// CommitToggleRequest applies a control change that was already confirmed
// by a remote operator (MQTT command topic).
type CommitToggleRequest struct {
	UnitRequestMixIn
	Control ControlId
	On      bool
}

// MQTT

type PublishMessageRequest struct {
	ActorRequestMixIn
	Topic   string
	Payload string
	Retain  bool
}

type PublishMessageResponse struct {
	ActorResponseMixIn
}

type PublishSensorUpdateRequest struct {
	ActorRequestMixIn
	Retain bool
	Event  SensorUpdateEvent
}

type PublishSensorUpdateResponse struct {
	ActorResponseMixIn
}

// ensure interface compliance
var _ UnitRequest = (*RequestToggleRequest)(nil)
