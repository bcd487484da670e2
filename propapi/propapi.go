// Package propapi implements the Property API façade: a small set of
// named properties (axis mode, range, deadzone, saturation). Axis mode is
// read from a specific axis and written only for the whole device;
// range/deadzone/saturation are read per axis and written either per axis
// or across the whole device at once. It generalises a SetDeadzone/SetSaturation pair that
// only ever applied to every axis at once into a uniform per-object-or-
// whole-device API, with its own validation rules per property.
package propapi

import (
	"fmt"

	"github.com/soar/xidishim/axisprops"
	"github.com/soar/xidishim/dataformat"
	"github.com/soar/xidishim/xinput"
)

// Property identifies one of the four properties the façade exposes.
type Property int

const (
	PropAxisMode Property = iota
	PropRange
	PropDeadzone
	PropSaturation
)

// AxisMode is the only legal value PropAxisMode ever holds: relative axis
// reporting is out of scope for this engine.
type AxisMode int

const AxisModeAbsolute AxisMode = 0

// Target selects what a Get/Set call addresses: the whole device
// (WholeDevice set, VId ignored) or one specific virtual object.
type Target struct {
	WholeDevice bool
	VId         xinput.VId
}

// WholeDeviceTarget is the sentinel target for whole-device property
// calls.
var WholeDeviceTarget = Target{WholeDevice: true}

// Range is the PropRange value shape.
type Range struct {
	Min, Max int32
}

// API is the property façade bound to one controller's axis table and
// (for offset-addressed legacy callers) its current data format binding.
type API struct {
	props *axisprops.Table
	b     *dataformat.Binding
}

// New builds an API bound to props. SetBinding must be called before any
// offset-addressed call is made.
func New(props *axisprops.Table) *API {
	return &API{props: props}
}

// SetBinding rebinds the façade to a new (or nil) data format, for the
// offset-addressed Get/Set variants.
func (a *API) SetBinding(b *dataformat.Binding) { a.b = b }

// resolveOffset turns an offset-addressed target into a VId, for callers that
// only know the legacy byte offset (not used for whole-device calls).
func (a *API) resolveOffset(offset uint32) (xinput.VId, error) {
	if a.b == nil {
		return xinput.Absent, fmt.Errorf("propapi: no data format bound: %w", xinput.ErrInvalidParam)
	}
	vid, ok := a.b.VidAt(offset)
	if !ok {
		return xinput.Absent, fmt.Errorf("propapi: offset %d unbound: %w", offset, xinput.ErrObjectNotFound)
	}
	return vid, nil
}

// GetByOffset reads prop for the object currently bound at offset.
func (a *API) GetByOffset(prop Property, offset uint32) (any, error) {
	vid, err := a.resolveOffset(offset)
	if err != nil {
		return nil, err
	}
	return a.Get(prop, Target{VId: vid})
}

// SetByOffset writes prop for the object currently bound at offset.
func (a *API) SetByOffset(prop Property, offset uint32, value any) error {
	vid, err := a.resolveOffset(offset)
	if err != nil {
		return err
	}
	return a.Set(prop, Target{VId: vid}, value)
}

// Get reads prop for target. AxisMode and reads of Range/Deadzone/
// Saturation both require a specific
// axis object — whole-device reads of those are rejected, since there is
// no single answer when axes disagree.
func (a *API) Get(prop Property, target Target) (any, error) {
	switch prop {
	case PropAxisMode:
		if target.WholeDevice || target.VId.Kind != xinput.KindAxis {
			return nil, fmt.Errorf("propapi: axis mode requires a specific axis: %w", xinput.ErrInvalidParam)
		}
		return AxisModeAbsolute, nil

	case PropRange, PropDeadzone, PropSaturation:
		if target.WholeDevice {
			return nil, fmt.Errorf("propapi: whole-device read of property %d: %w", prop, xinput.ErrInvalidParam)
		}
		if target.VId.Kind != xinput.KindAxis {
			return nil, fmt.Errorf("propapi: property %d requires an axis: %w", prop, xinput.ErrInvalidParam)
		}
		p, err := a.props.Get(target.VId.Index)
		if err != nil {
			return nil, err
		}
		switch prop {
		case PropRange:
			return Range{Min: p.RangeMin, Max: p.RangeMax}, nil
		case PropDeadzone:
			return p.Deadzone, nil
		default:
			return p.Saturation, nil
		}

	default:
		return nil, fmt.Errorf("propapi: unknown property %d: %w", prop, xinput.ErrInvalidParam)
	}
}

// Set writes prop for target. AxisMode accepts only the whole-device
// target (index 0 in legacy terms) and only AxisModeAbsolute; Range/
// Deadzone/Saturation accept either a specific axis or the whole device.
func (a *API) Set(prop Property, target Target, value any) error {
	switch prop {
	case PropAxisMode:
		if !target.WholeDevice {
			return fmt.Errorf("propapi: axis mode must target the whole device: %w", xinput.ErrInvalidParam)
		}
		mode, ok := value.(AxisMode)
		if !ok || mode != AxisModeAbsolute {
			return fmt.Errorf("propapi: unsupported axis mode %v: %w", value, xinput.ErrUnsupported)
		}
		return fmt.Errorf("propapi: axis mode already absolute: %w", xinput.ErrNoEffect)

	case PropRange:
		r, ok := value.(Range)
		if !ok {
			return fmt.Errorf("propapi: range value has wrong type: %w", xinput.ErrInvalidParam)
		}
		if target.WholeDevice {
			return a.props.SetRangeAll(r.Min, r.Max)
		}
		return a.props.SetRange(target.VId.Index, r.Min, r.Max)

	case PropDeadzone:
		d, ok := value.(uint32)
		if !ok {
			return fmt.Errorf("propapi: deadzone value has wrong type: %w", xinput.ErrInvalidParam)
		}
		if target.WholeDevice {
			return a.props.SetDeadzoneAll(d)
		}
		return a.props.SetDeadzone(target.VId.Index, d)

	case PropSaturation:
		s, ok := value.(uint32)
		if !ok {
			return fmt.Errorf("propapi: saturation value has wrong type: %w", xinput.ErrInvalidParam)
		}
		if target.WholeDevice {
			return a.props.SetSaturationAll(s)
		}
		return a.props.SetSaturation(target.VId.Index, s)

	default:
		return fmt.Errorf("propapi: unknown property %d: %w", prop, xinput.ErrInvalidParam)
	}
}
