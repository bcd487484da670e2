package hub

import (
	"encoding/json"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/soar/xidishim/engine"
	"github.com/soar/xidishim/eventenc"
	"github.com/soar/xidishim/vcontroller"
)

const (
	pollInterval     = 16 * time.Millisecond // ~60Hz, matches sdlsource's poll cadence
	fullSyncInterval = 5 * time.Second
	eventBatchMax    = 32
)

// Broadcaster polls an engine.Controller on a fixed tick and pushes
// "state" and "events" messages to the Hub: poll, diff against last
// seen, periodic full resync, sourced from
// engine.Controller.GetState/GetBufferedEvents rather than a change
// channel, since the core engine is synchronous and caller-driven rather
// than push-based.
type Broadcaster struct {
	log  hclog.Logger
	ctrl *engine.Controller

	lastID vcontroller.Identifier
	hasLast bool
}

// NewBroadcaster builds a Broadcaster polling ctrl.
func NewBroadcaster(log hclog.Logger, ctrl *engine.Controller) *Broadcaster {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Broadcaster{log: log.Named("broadcaster"), ctrl: ctrl}
}

// Run polls and broadcasts through h until stop is closed. Run it in its
// own goroutine.
func (b *Broadcaster) Run(h *Hub, stop <-chan struct{}) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	fullSync := time.NewTicker(fullSyncInterval)
	defer fullSync.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			b.pollState(h, false)
			b.pollEvents(h)
		case <-fullSync.C:
			b.pollState(h, true)
		}
	}
}

func (b *Broadcaster) pollState(h *Hub, force bool) {
	var s vcontroller.SState
	id, err := b.ctrl.GetState(&s)
	if err != nil {
		b.log.Warn("GetState failed", "error", err)
		return
	}
	if !force && b.hasLast && id == b.lastID {
		return
	}
	b.lastID = id
	b.hasLast = true

	msg := NewStateMessage(id, s, time.Now().UnixMilli())
	data, err := json.Marshal(msg)
	if err != nil {
		b.log.Warn("marshal state message failed", "error", err)
		return
	}
	h.Broadcast(data)
}

func (b *Broadcaster) pollEvents(h *Hub) {
	out := make([]eventenc.AppEvent, eventBatchMax)
	n, overflowed, err := b.ctrl.GetBufferedEvents(out, false)
	if err != nil && n == 0 {
		return
	}
	if overflowed {
		b.log.Warn("event buffer overflowed")
	}
	if n == 0 {
		return
	}
	msg := NewEventsMessage(out[:n], time.Now().UnixMilli())
	data, err := json.Marshal(msg)
	if err != nil {
		b.log.Warn("marshal events message failed", "error", err)
		return
	}
	h.Broadcast(data)
}

// SendInitialState pushes the controller's current state directly to a
// single newly-connected client, bypassing the hub's fan-out.
func (b *Broadcaster) SendInitialState(c *Client) {
	var s vcontroller.SState
	id, err := b.ctrl.GetState(&s)
	if err != nil {
		return
	}
	msg := NewStateMessage(id, s, time.Now().UnixMilli())
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
