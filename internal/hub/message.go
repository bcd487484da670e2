package hub

import (
	"github.com/soar/xidishim/eventenc"
	"github.com/soar/xidishim/vcontroller"
)

// WSMessage is the single wire shape broadcast to every connected
// inspector tab: a "type" tag plus a payload field per type, carrying
// the engine's own SState/AppEvent shapes.
type WSMessage struct {
	Type      string              `json:"type"` // "state" or "events"
	Seq       uint32              `json:"seq"`
	Timestamp int64               `json:"timestamp"`
	ErrorCode int                 `json:"errorCode,omitempty"`
	State     *StateDTO           `json:"state,omitempty"`
	Events    []eventenc.AppEvent `json:"events,omitempty"`
}

// StateDTO is the JSON-friendly projection of vcontroller.SState.
type StateDTO struct {
	Axis   []int32 `json:"axis"`
	Button []bool  `json:"button"`
	Pov    []int32 `json:"pov"`
}

func newStateDTO(s vcontroller.SState) *StateDTO {
	return &StateDTO{Axis: s.Axis, Button: s.Button, Pov: s.Pov}
}

// NewStateMessage builds a "state" message from the virtual controller's
// latest mapped state and identifier.
func NewStateMessage(id vcontroller.Identifier, s vcontroller.SState, nowMillis int64) *WSMessage {
	return &WSMessage{
		Type:      "state",
		Seq:       id.PacketNumber,
		Timestamp: nowMillis,
		ErrorCode: int(id.ErrorCode),
		State:     newStateDTO(s),
	}
}

// NewEventsMessage builds an "events" message from a batch of encoded
// buffered events.
func NewEventsMessage(events []eventenc.AppEvent, nowMillis int64) *WSMessage {
	return &WSMessage{
		Type:      "events",
		Timestamp: nowMillis,
		Events:    events,
	}
}
