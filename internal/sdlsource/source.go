// Package sdlsource implements xinput.Source against real hardware using
// SDL3's raw joystick API: SDL init on a locked OS thread, poll events,
// poll axis/button/hat state every tick, producing the eight-element
// XInput snapshot the engine package consumes and emitting queued
// PhysEvents rather than whole-state deltas on a channel. "The first
// connected joystick, promoted on disconnect" is generalised into one
// slot per connection-order position, so engine.New's controllerID
// addresses a stable slot.
//
// This package is optional demo-host infrastructure; the core engine
// packages never import it.
package sdlsource

import (
	"context"
	"runtime"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/jupiterrider/purego-sdl3/sdl"

	"github.com/soar/xidishim/xinput"
)

const (
	pollDelayNS = 16_000_000 // ~60Hz poll cadence

	eventBufferCap = 256

	axisLeftX = 0
	axisLeftY = 1
	axisRightX = 2
	axisRightY = 3
	axisLT     = 4
	axisRT     = 5

	buttonA      = 0
	buttonB      = 1
	buttonX      = 2
	buttonY      = 3
	buttonLB     = 4
	buttonRB     = 5
	buttonBack   = 6
	buttonStart  = 7
	buttonLStick = 8
	buttonRStick = 9

	hatUp    uint8 = 0x01
	hatRight uint8 = 0x02
	hatDown  uint8 = 0x04
	hatLeft  uint8 = 0x08
)

type slot struct {
	id       sdl.JoystickID
	joystick *sdl.Joystick
	name     string
	snap     xinput.Snapshot
	packet   uint32
}

// Source polls SDL3 joysticks in connection order, slot 0 being whichever
// pad connected first.
type Source struct {
	log hclog.Logger

	stateMu sync.Mutex
	order   []sdl.JoystickID
	byID    map[sdl.JoystickID]*slot

	evMu     sync.Mutex
	events   []xinput.PhysEvent
	overflow bool
	global   uint32
}

// New builds an unstarted Source. Run locks its goroutine to one OS
// thread for as long as it runs (SDL's joystick API is not safe to call
// from an arbitrary thread).
func New(log hclog.Logger) *Source {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Source{
		log:  log.Named("sdlsource"),
		byID: make(map[sdl.JoystickID]*slot),
	}
}

// Run initialises SDL and polls until ctx is cancelled. It calls
// runtime.LockOSThread() itself and keeps the thread locked until it
// returns.
func (s *Source) Run(ctx context.Context) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if !sdl.Init(sdl.InitJoystick) {
		s.log.Error("SDL init failed", "error", sdl.GetError())
		return
	}
	defer sdl.Quit()

	for _, id := range sdl.GetJoysticks() {
		s.open(id)
	}

	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return
		default:
		}

		s.processEvents()
		s.pollAll()
		sdl.DelayNS(pollDelayNS)
	}
}

func (s *Source) processEvents() {
	var event sdl.Event
	for sdl.PollEvent(&event) {
		switch event.Type() {
		case sdl.EventJoystickAdded:
			s.open(event.JDevice().Which)
		case sdl.EventJoystickRemoved:
			s.remove(event.JDevice().Which)
		}
	}
}

func (s *Source) open(id sdl.JoystickID) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	if _, exists := s.byID[id]; exists {
		return
	}
	js := sdl.OpenJoystick(id)
	if js == nil {
		s.log.Warn("failed to open joystick", "id", id, "error", sdl.GetError())
		return
	}
	name := sdl.GetJoystickName(js)
	sl := &slot{id: id, joystick: js, name: name}
	s.byID[id] = sl
	s.order = append(s.order, id)
	s.log.Info("joystick connected", "name", name, "id", id, "slot", len(s.order)-1)
}

func (s *Source) remove(id sdl.JoystickID) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	sl, exists := s.byID[id]
	if !exists {
		return
	}
	sdl.CloseJoystick(sl.joystick)
	delete(s.byID, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.log.Info("joystick disconnected", "name", sl.name, "id", id)
}

func (s *Source) closeAll() {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	for id, sl := range s.byID {
		sdl.CloseJoystick(sl.joystick)
		delete(s.byID, id)
	}
	s.order = nil
}

func (s *Source) pollAll() {
	s.stateMu.Lock()
	ids := append([]sdl.JoystickID(nil), s.order...)
	s.stateMu.Unlock()

	for slotIdx, id := range ids {
		s.pollOne(slotIdx, id)
	}
}

func (s *Source) pollOne(slotIdx int, id sdl.JoystickID) {
	s.stateMu.Lock()
	sl, exists := s.byID[id]
	if !exists {
		s.stateMu.Unlock()
		return
	}
	js := sl.joystick
	if !sdl.JoystickConnected(js) {
		s.stateMu.Unlock()
		return
	}

	next := xinput.Snapshot{
		LX: sdl.GetJoystickAxis(js, axisLeftX),
		LY: sdl.GetJoystickAxis(js, axisLeftY),
		RX: sdl.GetJoystickAxis(js, axisRightX),
		RY: sdl.GetJoystickAxis(js, axisRightY),
		LT: triggerByte(sdl.GetJoystickAxis(js, axisLT)),
		RT: triggerByte(sdl.GetJoystickAxis(js, axisRT)),
	}
	next.ButtonBits = s.pollButtons(js)

	prev := sl.snap
	changed := next != prev
	if changed {
		sl.packet++
		sl.snap = next
	}
	packet := sl.packet
	s.stateMu.Unlock()

	if changed {
		s.queueEvents(slotIdx, prev, next, packet)
	}
}

func (s *Source) pollButtons(js *sdl.Joystick) uint16 {
	numButtons := sdl.GetNumJoystickButtons(js)
	var bits uint16
	set := func(idx int, bit uint16) {
		if idx < numButtons && sdl.GetJoystickButton(js, idx) {
			bits |= bit
		}
	}
	set(buttonA, 1<<12)
	set(buttonB, 1<<13)
	set(buttonX, 1<<14)
	set(buttonY, 1<<15)
	set(buttonLB, 1<<8)
	set(buttonRB, 1<<9)
	set(buttonBack, 1<<5)
	set(buttonStart, 1<<4)
	set(buttonLStick, 1<<6)
	set(buttonRStick, 1<<7)

	if sdl.GetNumJoystickHats(js) > 0 {
		hat := sdl.GetJoystickHat(js, 0)
		if hat&hatUp != 0 {
			bits |= xinput.DpadUp
		}
		if hat&hatDown != 0 {
			bits |= xinput.DpadDown
		}
		if hat&hatLeft != 0 {
			bits |= xinput.DpadLeft
		}
		if hat&hatRight != 0 {
			bits |= xinput.DpadRight
		}
	}
	return bits
}

func triggerByte(raw int16) uint8 {
	if raw < 0 {
		return 0
	}
	return uint8(raw >> 7)
}

// queueEvents diffs prev/next and appends one PhysEvent per physical
// element that actually moved. slotIdx is not recorded: every slot feeds
// the same per-source event stream, and its events carry no slot index.
func (s *Source) queueEvents(slotIdx int, prev, next xinput.Snapshot, packet uint32) {
	_ = packet
	s.evMu.Lock()
	defer s.evMu.Unlock()

	push := func(elem xinput.EPhysElem, value int32) {
		s.seqAndPush(elem, value)
	}

	if prev.LX != next.LX {
		push(xinput.StickLeftH, int32(next.LX))
	}
	if prev.LY != next.LY {
		push(xinput.StickLeftV, int32(next.LY))
	}
	if prev.RX != next.RX {
		push(xinput.StickRightH, int32(next.RX))
	}
	if prev.RY != next.RY {
		push(xinput.StickRightV, int32(next.RY))
	}
	if prev.LT != next.LT {
		push(xinput.TriggerLT, int32(next.LT))
	}
	if prev.RT != next.RT {
		push(xinput.TriggerRT, int32(next.RT))
	}
	for _, e := range []xinput.EPhysElem{
		xinput.ButtonA, xinput.ButtonB, xinput.ButtonX, xinput.ButtonY,
		xinput.ButtonLB, xinput.ButtonRB, xinput.ButtonBack, xinput.ButtonStart,
		xinput.ButtonLeftStick, xinput.ButtonRightStick,
	} {
		bit, _ := xinput.ButtonBit(e)
		if prev.ButtonBits&bit != next.ButtonBits&bit {
			v := int32(0)
			if next.ButtonBits&bit != 0 {
				v = 1
			}
			push(e, v)
		}
	}
	if prev.ButtonBits&0xF != next.ButtonBits&0xF {
		push(xinput.Dpad, int32(next.ButtonBits&0xF))
	}
}

// seqAndPush appends one event, dropping the oldest on overflow rather
// than growing unboundedly — the caller observes this via IsOverflowed.
func (s *Source) seqAndPush(elem xinput.EPhysElem, value int32) {
	s.global++
	ev := xinput.PhysEvent{Elem: elem, Value: value, Seq: s.global, Timestamp: s.global}
	if len(s.events) >= eventBufferCap {
		s.events = s.events[1:]
		s.overflow = true
	}
	s.events = append(s.events, ev)
}

// GetState implements xinput.Source.
func (s *Source) GetState(controllerID int) (xinput.ErrorCode, uint32, xinput.Snapshot) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	if controllerID < 0 || controllerID >= len(s.order) {
		return xinput.DeviceNotConnected, 0, xinput.Snapshot{}
	}
	sl := s.byID[s.order[controllerID]]
	if sl == nil || !sdl.JoystickConnected(sl.joystick) {
		return xinput.DeviceNotConnected, 0, xinput.Snapshot{}
	}
	return xinput.Success, sl.packet, sl.snap
}

func (s *Source) LockEventBuffer()   { s.evMu.Lock() }
func (s *Source) UnlockEventBuffer() { s.evMu.Unlock() }

func (s *Source) BufferedCount() uint32 { return uint32(len(s.events)) }

func (s *Source) Peek(i uint32) xinput.PhysEvent {
	if int(i) >= len(s.events) {
		return xinput.PhysEvent{}
	}
	return s.events[i]
}

func (s *Source) Pop() xinput.PhysEvent {
	if len(s.events) == 0 {
		return xinput.PhysEvent{}
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev
}

func (s *Source) IsOverflowed() bool {
	v := s.overflow
	s.overflow = false
	return v
}
