package domain

import "time"

const (
	ACTOR_ID_MASTER  = "master"
	ACTOR_ID_MONITOR = "monitor"
	ACTOR_ID_SAMPLER = "sampler"
	ACTOR_ID_OUTPUT  = "output"
	ACTOR_ID_INPUT   = "input"
	ACTOR_ID_DISPLAY = "display"
)

// Sampler actor

type GetSnapshotRequest struct {
	ActorRequestMixIn
}

type GetSnapshotResponse struct {
	ActorResponseMixIn
	Samples RawSamples
	At      time.Time
}

// Input actor

type ReadButtonsRequest struct {
	ActorRequestMixIn
}

type ReadButtonsResponse struct {
	ActorResponseMixIn
	ModePressed bool
	TestPressed bool
	At          time.Time
}

// Output actor

type SetOutputsRequest struct {
	ActorRequestMixIn
	Commands []OutputCommand
}

type SetOutputsResponse struct {
	ActorResponseMixIn
}

type AllOutputsOffRequest struct {
	ActorRequestMixIn
}

type AllOutputsOffResponse struct {
	ActorResponseMixIn
}

// Monitor actor

type ForceDiagnosticRequest struct {
	ActorRequestMixIn
}

type ForceDiagnosticResponse struct {
	ActorResponseMixIn
	Faults []FaultHypothesis
	Report string
}

type SetCalibrationRequest struct {
	ActorRequestMixIn
	// Channel is nil for a device-global update.
	Channel *Channel
	Params  CalibrationParameters
}

type SetCalibrationResponse struct {
	ActorResponseMixIn
}

type GetCalibrationRequest struct {
	ActorRequestMixIn
	Channel *Channel
}

type GetCalibrationResponse struct {
	ActorResponseMixIn
	Params CalibrationParameters
}

// Health check

type ActorHealthRequest struct {
	ActorRequestMixIn
}

type ActorHealthResponse struct {
	ActorResponseMixIn
	Id      string
	Healthy bool
	State   string
}
