package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type StatusUpdateEventMixIn struct {
	Id string
}

// StatusUpdateEvent is published on the actor system's event stream and
// consumed by the display/LED sinks.
type StatusUpdateEvent interface {
	StatusUpdateEvent() string
	StatusId() string
}

func (e StatusUpdateEventMixIn) StatusUpdateEvent() string {
	return fmt.Sprintf("%T", e)
}

func (e StatusUpdateEventMixIn) StatusId() string {
	return e.Id
}

type ChannelStatusUpdateEvent struct {
	StatusUpdateEventMixIn
	Status ChannelStatus
	Mode   OperatingMode
}

type ModeUpdateEvent struct {
	StatusUpdateEventMixIn
	Mode OperatingMode
}

type FaultsUpdateEvent struct {
	StatusUpdateEventMixIn
	Faults []FaultHypothesis
	Report string
}

// SequenceUpdateEvent reports output-test progress. RunID groups all
// events of one sequencer run.
type SequenceUpdateEvent struct {
	StatusUpdateEventMixIn
	RunID     uuid.UUID
	Active    bool
	Completed bool
	Aborted   bool
	Step      int
	StepCount int
	Channels  []Channel
	On        bool
}

// DiagnosticsAvailabilityEvent flags total sensor loss: when Available
// is false the operator sees DIAGNOSTIC_UNAVAILABLE instead of stale
// channel statuses.
type DiagnosticsAvailabilityEvent struct {
	StatusUpdateEventMixIn
	Available bool
	At        time.Time
}

type DeviceInfoUpdateEvent struct {
	StatusUpdateEventMixIn
	Name    string
	Version string
}

const (
	STATUS_ID_CHANNEL_PREFIX = "channel_"
	STATUS_ID_MODE           = "mode"
	STATUS_ID_FAULTS         = "faults"
	STATUS_ID_SEQUENCE       = "sequence"
	STATUS_ID_DIAGNOSTICS    = "diagnostics"
	STATUS_ID_DEVICE_INFO    = "device_info"
)
