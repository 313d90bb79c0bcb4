package events

import (
	"fmt"
	"time"

	. "sevenway/internal/core/domain"
	"sevenway/internal/core/service"
)

// PollResultToUpdateEvents flattens one control-loop result into the
// status events published on the actor system's event stream.
func PollResultToUpdateEvents(res service.PollResult) []any {
	var events []any

	if res.ModeChanged {
		events = append(events, ModeUpdateEvent{
			StatusUpdateEventMixIn: StatusUpdateEventMixIn{
				Id: STATUS_ID_MODE,
			},
			Mode: res.Mode,
		})
	}

	if res.StatusesUpdated {
		for _, st := range res.Statuses {
			events = append(events, ChannelStatusUpdateEvent{
				StatusUpdateEventMixIn: StatusUpdateEventMixIn{
					Id: fmt.Sprintf("%s%s", STATUS_ID_CHANNEL_PREFIX, st.Channel),
				},
				Status: st,
				Mode:   res.Mode,
			})
		}
	}

	if res.FaultsUpdated {
		events = append(events, FaultsUpdateEvent{
			StatusUpdateEventMixIn: StatusUpdateEventMixIn{
				Id: STATUS_ID_FAULTS,
			},
			Faults: res.Faults,
			Report: res.Report,
		})
	}

	if res.Sequence.Active || res.Sequence.Completed || res.Sequence.Aborted {
		events = append(events, SequenceUpdateEvent{
			StatusUpdateEventMixIn: StatusUpdateEventMixIn{
				Id: STATUS_ID_SEQUENCE,
			},
			RunID:     res.Sequence.RunID,
			Active:    res.Sequence.Active,
			Completed: res.Sequence.Completed,
			Aborted:   res.Sequence.Aborted,
			Step:      res.Sequence.Step,
			StepCount: res.Sequence.StepCount,
			Channels:  res.Sequence.Channels,
			On:        len(res.Sequence.Channels) > 0,
		})
	}

	if res.DiagnosticsChanged {
		events = append(events, DiagnosticsAvailabilityEvent{
			StatusUpdateEventMixIn: StatusUpdateEventMixIn{
				Id: STATUS_ID_DIAGNOSTICS,
			},
			Available: res.DiagnosticsAvailable,
			At:        time.Now(),
		})
	}

	return events
}

// DeviceInfoUpdateEvents is published once on startup.
func DeviceInfoUpdateEvents(name, version string) []any {
	return []any{DeviceInfoUpdateEvent{
		StatusUpdateEventMixIn: StatusUpdateEventMixIn{
			Id: STATUS_ID_DEVICE_INFO,
		},
		Name:    name,
		Version: version,
	}}
}
