// Package eventenc implements the Event Encoder: it turns a FIFO of
// physical-element change events into the mapped-offset event form
// buffered consumers expect, using the same profile/properties/binding
// the State Writer uses for the immediate path so both paths agree. It
// generalises a broadcaster that turns a stream of full state snapshots
// into seq-numbered wire messages — here the stream is per-element
// PhysEvents and the wire form is a single mapped offset/data pair per
// event, with a running trigger cache needed because it diffs individual
// physical elements rather than whole snapshots.
package eventenc

import (
	"fmt"

	"github.com/soar/xidishim/axisprops"
	"github.com/soar/xidishim/dataformat"
	"github.com/soar/xidishim/profile"
	"github.com/soar/xidishim/statewriter"
	"github.com/soar/xidishim/xinput"
)

// AppEvent is one mapped-offset event delivered to a buffered consumer.
type AppEvent struct {
	Seq       uint32
	Timestamp uint32
	Offset    uint32
	Data      int32
}

// Mode selects whether Encode consumes events from the source (Drain) or
// only inspects them (Peek).
type Mode int

const (
	Drain Mode = iota
	Peek
)

// Encoder holds the running per-encoder state the shared-trigger-axis case
// needs: the last raw LT/RT reading, so a change on one trigger can be
// recombined with the other's last known value without re-polling the
// source.
type Encoder struct {
	prof      *profile.Profile
	props     *axisprops.Table
	binding   *dataformat.Binding
	lastLT    uint8
	lastRT    uint8
}

// New builds an Encoder bound to prof/props/binding. binding may be nil,
// in which case every event is skipped (no offsets to write to).
func New(prof *profile.Profile, props *axisprops.Table, binding *dataformat.Binding) *Encoder {
	return &Encoder{prof: prof, props: props, binding: binding}
}

// SetBinding rebinds the encoder to a new (or nil) data format.
func (e *Encoder) SetBinding(binding *dataformat.Binding) {
	e.binding = binding
}

// Encode pulls up to max events from src (Peek or Drain per mode) and
// returns their mapped-offset form plus whether the source's event buffer
// had already overflowed when the lock was acquired.
//
// An unmapped or unbound physical event is skipped and does not consume
// an output slot, but in Drain mode it is still popped off the source.
// Encoder errors (shared-axis direction 0) abort the whole batch and the
// source lock is released before returning.
func (e *Encoder) Encode(src xinput.Source, max uint32, mode Mode) (events []AppEvent, overflow bool, err error) {
	src.LockEventBuffer()
	defer src.UnlockEventBuffer()

	overflow = src.IsOverflowed()
	available := src.BufferedCount()

	events = make([]AppEvent, 0, max)
	var consumed uint32
	for consumed < available && uint32(len(events)) < max {
		var pe xinput.PhysEvent
		if mode == Peek {
			pe = src.Peek(consumed)
		} else {
			pe = src.Pop()
		}
		consumed++

		ev, ok, encErr := e.encodeOne(pe)
		if encErr != nil {
			return nil, overflow, encErr
		}
		if ok {
			events = append(events, ev)
		}
	}
	return events, overflow, nil
}

func (e *Encoder) encodeOne(pe xinput.PhysEvent) (AppEvent, bool, error) {
	if e.binding == nil {
		return AppEvent{}, false, nil
	}

	vid := e.prof.Virt(pe.Elem)
	if vid.IsAbsent() {
		return AppEvent{}, false, nil
	}
	offset, ok := e.binding.OffsetOf(vid)
	if !ok {
		return AppEvent{}, false, nil
	}

	data, err := e.dataFor(pe, vid)
	if err != nil {
		return AppEvent{}, false, err
	}

	return AppEvent{Seq: pe.Seq, Timestamp: pe.Timestamp, Offset: offset, Data: data}, true, nil
}

func (e *Encoder) dataFor(pe xinput.PhysEvent, vid xinput.VId) (int32, error) {
	switch pe.Elem {
	case xinput.TriggerLT, xinput.TriggerRT:
		return e.triggerData(pe, vid)
	case xinput.StickLeftH, xinput.StickRightH:
		return e.axisData(pe.Value, vid, xinput.StickRawMax)
	case xinput.StickLeftV, xinput.StickRightV:
		inverted := xinput.Invert(pe.Value, xinput.StickRawMin, xinput.StickRawMax)
		return e.axisData(inverted, vid, xinput.StickRawMax)
	default:
		return e.buttonOrPOVData(pe, vid)
	}
}

func (e *Encoder) triggerData(pe xinput.PhysEvent, vid xinput.VId) (int32, error) {
	if pe.Elem == xinput.TriggerLT {
		e.lastLT = uint8(pe.Value)
	} else {
		e.lastRT = uint8(pe.Value)
	}

	switch vid.Kind {
	case xinput.KindButton:
		pressed := pe.Value > xinput.TriggerThreshold
		if pressed {
			return int32(xinput.ButtonPressed), nil
		}
		return int32(xinput.ButtonReleased), nil
	case xinput.KindAxis:
		vLT := e.prof.Virt(xinput.TriggerLT)
		vRT := e.prof.Virt(xinput.TriggerRT)
		if !vLT.IsAbsent() && !vRT.IsAbsent() && vLT == vRT {
			m := e.prof.SharedDir(xinput.TriggerLT)
			if m != 1 && m != -1 {
				return 0, fmt.Errorf("eventenc: shared trigger direction %d: %w", m, xinput.ErrGeneric)
			}
			s := int32(m)*int32(e.lastLT) + int32(-m)*int32(e.lastRT)
			return e.axisData(s, vid, xinput.TriggerRawMax)
		}
		return e.axisData(pe.Value, vid, xinput.TriggerRawMax)
	default:
		return 0, fmt.Errorf("eventenc: trigger mapped to %s: %w", vid.Kind, xinput.ErrGeneric)
	}
}

func (e *Encoder) axisData(raw int32, vid xinput.VId, rawHalf int32) (int32, error) {
	p, err := e.props.Get(vid.Index)
	if err != nil {
		return 0, fmt.Errorf("eventenc: %w", xinput.ErrGeneric)
	}
	return axisprops.Apply(raw, rawHalf, p), nil
}

func (e *Encoder) buttonOrPOVData(pe xinput.PhysEvent, vid xinput.VId) (int32, error) {
	switch vid.Kind {
	case xinput.KindButton:
		if pe.Value != 0 {
			return int32(xinput.ButtonPressed), nil
		}
		return int32(xinput.ButtonReleased), nil
	case xinput.KindPOV:
		return statewriter.DpadAngle(uint16(pe.Value)), nil
	default:
		return 0, fmt.Errorf("eventenc: %s event mapped to %s: %w", pe.Elem, vid.Kind, xinput.ErrGeneric)
	}
}
