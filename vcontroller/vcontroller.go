// Package vcontroller implements the Virtual Controller: it owns the
// latest mapped state and a state identifier, refreshes from an XInput
// source, detects real change, and serialises access behind a single
// mutex. It generalises a state/prevState pair behind a mutex that only
// emits on real change, from "poll SDL, diff a fixed GamepadState" to
// "poll an abstract xinput.Source, diff the profile+properties-derived
// SState, and track a packetNumber/errorCode identifier."
package vcontroller

import (
	"sync"

	"github.com/soar/xidishim/axisprops"
	"github.com/soar/xidishim/profile"
	"github.com/soar/xidishim/xinput"
)

// SState is the virtual controller's mapped, transformed state.
type SState struct {
	Axis   []int32
	Button []bool
	Pov    []int32
}

func newSState(prof *profile.Profile) SState {
	return SState{
		Axis:   make([]int32, prof.CountOf(xinput.KindAxis)),
		Button: make([]bool, prof.CountOf(xinput.KindButton)),
		Pov:    make([]int32, prof.CountOf(xinput.KindPOV)),
	}
}

func (s SState) equal(o SState) bool {
	if len(s.Axis) != len(o.Axis) || len(s.Button) != len(o.Button) || len(s.Pov) != len(o.Pov) {
		return false
	}
	for i := range s.Axis {
		if s.Axis[i] != o.Axis[i] {
			return false
		}
	}
	for i := range s.Button {
		if s.Button[i] != o.Button[i] {
			return false
		}
	}
	for i := range s.Pov {
		if s.Pov[i] != o.Pov[i] {
			return false
		}
	}
	return true
}

func (s SState) clone() SState {
	c := SState{
		Axis:   make([]int32, len(s.Axis)),
		Button: make([]bool, len(s.Button)),
		Pov:    make([]int32, len(s.Pov)),
	}
	copy(c.Axis, s.Axis)
	copy(c.Button, s.Button)
	copy(c.Pov, s.Pov)
	return c
}

// Identifier is the {packetNumber, errorCode} pair used to detect "new
// state" and connect/disconnect transitions.
type Identifier struct {
	PacketNumber uint32
	ErrorCode    xinput.ErrorCode
}

// Observation describes a connect/disconnect/error transition noticed
// during a refresh.
type Observation int

const (
	ObsNone Observation = iota
	ObsConnectedOrCleared
	ObsDisconnected
	ObsErrorChanged
)

// Controller owns the latest mapped state for one physical controller ID
// and serialises all access to it behind a single mutex. While that mutex
// is held, a refresh also reads the axis properties table, which takes
// its own lock.
type Controller struct {
	mu            sync.Mutex
	src           xinput.Source
	controllerID  int
	prof          *profile.Profile
	props         *axisprops.Table
	latestState   SState
	identifier    Identifier
	haveBaseline  bool
	refreshNeeded bool
}

// New builds a Controller for controllerID, polling src and projecting
// through prof/props. refreshNeeded starts true so the first GetState
// always calls the source.
func New(src xinput.Source, controllerID int, prof *profile.Profile, props *axisprops.Table) *Controller {
	return &Controller{
		src:           src,
		controllerID:  controllerID,
		prof:          prof,
		props:         props,
		latestState:   newSState(prof),
		refreshNeeded: true,
	}
}

// Profile returns the controller's fixed mapping profile.
func (c *Controller) Profile() *profile.Profile { return c.prof }

// Props returns the controller's axis properties table.
func (c *Controller) Props() *axisprops.Table { return c.props }

// GetState copies the latest mapped state into the caller's out parameter,
// refreshing first if needed, then marks refreshNeeded so the next call
// always polls the source at least once.
func (c *Controller) GetState(out *SState) (Identifier, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.refreshNeeded {
		if _, _, err := c.refreshLocked(); err != nil {
			return c.identifier, err
		}
	}
	*out = c.latestState.clone()
	c.refreshNeeded = true
	return c.identifier, nil
}

// Refresh polls the source and updates latestState/identifier if there was
// a real change. It reports whether state changed and what connect/
// disconnect observation (if any) was made.
func (c *Controller) Refresh() (changed bool, obs Observation, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshLocked()
}

func (c *Controller) refreshLocked() (bool, Observation, error) {
	errorCode, packetNumber, snap := c.src.GetState(c.controllerID)
	if errorCode != xinput.Success {
		snap = xinput.Snapshot{}
	}

	obs := c.observe(errorCode)

	samePacket := c.haveBaseline && packetNumber == c.identifier.PacketNumber
	bothSuccess := errorCode == xinput.Success && c.identifier.ErrorCode == xinput.Success
	bothNonSuccess := errorCode != xinput.Success && c.identifier.ErrorCode != xinput.Success
	if c.haveBaseline && samePacket && (bothSuccess || bothNonSuccess) {
		c.identifier.ErrorCode = errorCode
		return false, obs, nil
	}

	next := project(snap, c.prof, c.props)
	noRealChange := c.haveBaseline && next.equal(c.latestState)

	c.identifier = Identifier{PacketNumber: packetNumber, ErrorCode: errorCode}
	c.haveBaseline = true

	if noRealChange {
		return false, obs, nil
	}
	c.latestState = next
	return true, obs, nil
}

// observe runs the three-state connect/disconnect/error machine,
// comparing the freshly-polled errorCode against the controller's current
// identifier.
func (c *Controller) observe(newCode xinput.ErrorCode) Observation {
	if !c.haveBaseline {
		if newCode == xinput.Success {
			return ObsConnectedOrCleared
		}
		return ObsNone
	}

	old := c.identifier.ErrorCode
	switch {
	case newCode == xinput.Success && old != xinput.Success:
		return ObsConnectedOrCleared
	case newCode != xinput.Success && old == xinput.Success:
		return ObsDisconnected
	case newCode != xinput.Success && old != xinput.Success && newCode != old:
		return ObsErrorChanged
	default:
		return ObsNone
	}
}
