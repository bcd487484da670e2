// Package engine composes the mapping profile, axis properties, data
// format binder, state writer, event encoder, virtual controller and
// property façade into the single entry point a legacy-API wrapper calls.
// It is one exported type, built with functional options, logging through
// hclog and delegating the real work to its component packages.
package engine

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/soar/xidishim/axisprops"
	"github.com/soar/xidishim/dataformat"
	"github.com/soar/xidishim/eventenc"
	"github.com/soar/xidishim/profile"
	"github.com/soar/xidishim/propapi"
	"github.com/soar/xidishim/statewriter"
	"github.com/soar/xidishim/vcontroller"
	"github.com/soar/xidishim/xinput"
)

// Option configures a Controller at construction time.
type Option func(*Controller)

// WithLogger attaches a named logger; the default is a null logger so
// library code stays silent unless a caller opts in.
func WithLogger(l hclog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// Controller is the public translation engine for one physical
// controller slot. It owns a fixed profile, a mutable axis properties
// table, an optional data format binding, and the virtual controller
// that refreshes from the source.
type Controller struct {
	log          hclog.Logger
	mu           sync.Mutex
	src          xinput.Source
	prof         *profile.Profile
	props        *axisprops.Table
	binding      *dataformat.Binding
	vc           *vcontroller.Controller
	encoder      *eventenc.Encoder
	propAPI      *propapi.API
	effects      xinput.EffectPassthrough
	controllerID int
}

// New builds a Controller for controllerID against the given profile
// name and XInput source. Unrecognised profile names resolve to
// XInputNative.
func New(controllerID int, profileName profile.Name, src xinput.Source, opts ...Option) *Controller {
	prof := profile.Get(profileName)
	props := axisprops.New(int(prof.CountOf(xinput.KindAxis)))

	c := &Controller{
		log:          hclog.NewNullLogger(),
		src:          src,
		prof:         prof,
		props:        props,
		vc:           vcontroller.New(src, controllerID, prof, props),
		encoder:      eventenc.New(prof, props, nil),
		propAPI:      propapi.New(props),
		controllerID: controllerID,
	}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.Named("engine")
	return c
}

// Profile returns the controller's fixed mapping profile.
func (c *Controller) Profile() *profile.Profile { return c.prof }

// Effects is the force-feedback/effect-table passthrough seam; the
// translation core never implements it.
func (c *Controller) Effects() xinput.EffectPassthrough { return c.effects }

// SetDataFormat binds requests against the controller's profile and
// packetSize, installing the result only on success: on any invalid
// parameter the core state is left unchanged.
func (c *Controller) SetDataFormat(requests []dataformat.ObjectRequest, packetSize uint32) error {
	b, err := dataformat.Bind(c.prof, requests, packetSize)
	if err != nil {
		c.log.Debug("SetDataFormat rejected", "error", err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.binding = b
	c.encoder.SetBinding(b)
	c.propAPI.SetBinding(b)
	return nil
}

// ResetDataFormat clears any installed data format.
func (c *Controller) ResetDataFormat() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.binding = nil
	c.encoder.SetBinding(nil)
	c.propAPI.SetBinding(nil)
}

// Capabilities reports the virtual object counts the profile exposes.
type Capabilities struct {
	Axes, Buttons, Povs uint16
}

// GetCapabilities returns the profile's virtual object counts.
func (c *Controller) GetCapabilities() Capabilities {
	return Capabilities{
		Axes:    c.prof.CountOf(xinput.KindAxis),
		Buttons: c.prof.CountOf(xinput.KindButton),
		Povs:    c.prof.CountOf(xinput.KindPOV),
	}
}

// EnumeratedObject is one row yielded by EnumerateObjects.
type EnumeratedObject struct {
	VId    xinput.VId
	Name   string
	Offset uint32 // xinput.OffsetUnused if the current binding has no slot for it
}

// EnumerateObjects yields every virtual object of the kinds selected by
// mask, stably ordered axes-then-buttons-then-POVs in index order, so
// repeated calls are byte-identical for a debug inspector.
func (c *Controller) EnumerateObjects(mask dataformat.KindMask, visit func(EnumeratedObject)) {
	c.mu.Lock()
	b := c.binding
	c.mu.Unlock()

	if mask&dataformat.MaskAxis != 0 {
		for i := 0; i < int(c.prof.CountOf(xinput.KindAxis)); i++ {
			vid := xinput.VId{Kind: xinput.KindAxis, Index: i}
			visit(EnumeratedObject{VId: vid, Name: c.prof.AxisSemantic(i).Name(), Offset: offsetOrUnused(b, vid)})
		}
	}
	if mask&dataformat.MaskButton != 0 {
		for i := 0; i < int(c.prof.CountOf(xinput.KindButton)); i++ {
			vid := xinput.VId{Kind: xinput.KindButton, Index: i}
			visit(EnumeratedObject{VId: vid, Name: fmt.Sprintf("Button %d", i+1), Offset: offsetOrUnused(b, vid)})
		}
	}
	if mask&dataformat.MaskPOV != 0 {
		for i := 0; i < int(c.prof.CountOf(xinput.KindPOV)); i++ {
			vid := xinput.VId{Kind: xinput.KindPOV, Index: i}
			visit(EnumeratedObject{VId: vid, Name: fmt.Sprintf("POV %d", i+1), Offset: offsetOrUnused(b, vid)})
		}
	}
}

func offsetOrUnused(b *dataformat.Binding, vid xinput.VId) uint32 {
	if b == nil {
		return xinput.OffsetUnused
	}
	off, ok := b.OffsetOf(vid)
	if !ok {
		return xinput.OffsetUnused
	}
	return off
}

// GetProperty reads a property by virtual object target.
func (c *Controller) GetProperty(prop propapi.Property, target propapi.Target) (any, error) {
	return c.propAPI.Get(prop, target)
}

// SetProperty writes a property by virtual object target.
func (c *Controller) SetProperty(prop propapi.Property, target propapi.Target, value any) error {
	return c.propAPI.Set(prop, target, value)
}

// GetPropertyByOffset reads a property keyed by the current data
// format's byte offset.
func (c *Controller) GetPropertyByOffset(prop propapi.Property, offset uint32) (any, error) {
	return c.propAPI.GetByOffset(prop, offset)
}

// SetPropertyByOffset writes a property keyed by the current data
// format's byte offset.
func (c *Controller) SetPropertyByOffset(prop propapi.Property, offset uint32, value any) error {
	return c.propAPI.SetByOffset(prop, offset, value)
}

// GetMappedState polls the source directly and writes the caller's
// data-format-shaped snapshot into buf via the State Writer. Unlike
// GetState, this path always re-polls; it does not go through the Virtual
// Controller's change-detection cache, so it only requires a binding to
// be set and the caller buffer to be large enough — it has no "no real
// change" rule of its own.
func (c *Controller) GetMappedState(buf []byte) (vcontroller.Identifier, error) {
	c.mu.Lock()
	b := c.binding
	c.mu.Unlock()
	if b == nil {
		return vcontroller.Identifier{}, fmt.Errorf("engine: no data format set: %w", xinput.ErrInvalidParam)
	}

	errorCode, packetNumber, snap := c.src.GetState(c.controllerID)
	id := vcontroller.Identifier{PacketNumber: packetNumber, ErrorCode: errorCode}
	if errorCode != xinput.Success {
		snap = xinput.Snapshot{}
	}
	return id, statewriter.Write(buf, snap, c.prof, c.props, b)
}

// GetState returns the Virtual Controller's memoised, change-detected
// mapped state, refreshing first if needed.
func (c *Controller) GetState(out *vcontroller.SState) (vcontroller.Identifier, error) {
	return c.vc.GetState(out)
}

// GetBufferedEvents drains or peeks up to len(out) events from the
// controller's source into out, returning the count written and whether
// the source's event buffer had already overflowed.
func (c *Controller) GetBufferedEvents(out []eventenc.AppEvent, peek bool) (n int, overflowed bool, err error) {
	mode := eventenc.Drain
	if peek {
		mode = eventenc.Peek
	}

	c.mu.Lock()
	enc := c.encoder
	c.mu.Unlock()

	events, overflow, err := enc.Encode(c.src, uint32(len(out)), mode)
	if err != nil {
		return 0, overflow, err
	}
	n = copy(out, events)
	if overflow {
		err = fmt.Errorf("engine: %w", xinput.ErrOverflow)
	}
	return n, overflow, err
}
