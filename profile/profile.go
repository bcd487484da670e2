// Package profile holds the mapping profile: the immutable, per-process
// assignment from physical XInput elements onto virtual DirectInput-style
// objects. It favors a single plain struct carrying plain lookup tables
// over a class hierarchy with per-device overrides — each profile is data,
// not behaviour, so it is trivially copyable and comparable and carries no
// vtable indirection on the hot path. Structurally it plays the role a
// vendor/product mapping table plays elsewhere, generalised to a
// named-profile lookup and a kind-counted, sentinel-aware VId table.
package profile

import "github.com/soar/xidishim/xinput"

// Name identifies one of the four predefined profiles.
type Name string

const (
	StandardGamepad      Name = "StandardGamepad"
	ExtendedGamepad      Name = "ExtendedGamepad"
	XInputNative         Name = "XInputNative"
	XInputSharedTriggers Name = "XInputSharedTriggers"
)

// Profile is the immutable, read-only projection table for one instance of
// the core. Profiles differ only in table contents; there is no behaviour
// beyond lookup.
type Profile struct {
	name         Name
	counts       [3]uint16 // indexed by xinput.EVKind
	axisIdentity []xinput.AxisIdentity
	physToVirt   map[xinput.EPhysElem]xinput.VId
	sharedAxis   bool
	sharedDir    map[xinput.EPhysElem]int
}

// Name returns the profile's name.
func (p *Profile) Name() Name { return p.name }

// CountOf returns how many virtual objects of kind k this profile exposes.
func (p *Profile) CountOf(k xinput.EVKind) uint16 {
	return p.counts[k]
}

// AxisSemantic returns the semantic identity of axis i. Callers must only
// pass i < CountOf(KindAxis).
func (p *Profile) AxisSemantic(i int) xinput.AxisIdentity {
	if i < 0 || i >= len(p.axisIdentity) {
		return xinput.AxisUnknown
	}
	return p.axisIdentity[i]
}

// Virt returns the virtual object phys is assigned to, or xinput.Absent.
func (p *Profile) Virt(phys xinput.EPhysElem) xinput.VId {
	if v, ok := p.physToVirt[phys]; ok {
		return v
	}
	return xinput.Absent
}

// IsSharedTriggerAxis reports whether LT and RT are mapped onto the same
// axis in opposite directions.
func (p *Profile) IsSharedTriggerAxis() bool { return p.sharedAxis }

// SharedDir returns the signed direction (+1/-1) a trigger contributes to
// the shared axis. Only meaningful when IsSharedTriggerAxis is true; a
// direction of 0 is always a construction bug.
func (p *Profile) SharedDir(phys xinput.EPhysElem) int {
	return p.sharedDir[phys]
}

// AxisIndexByIdentity returns the index of the nth (0-based) axis whose
// semantic identity equals identity, or xinput.InvalidIndex if there is no
// such axis.
func (p *Profile) AxisIndexByIdentity(identity xinput.AxisIdentity, nth int) int {
	seen := 0
	for i, id := range p.axisIdentity {
		if id != identity {
			continue
		}
		if seen == nth {
			return i
		}
		seen++
	}
	return xinput.InvalidIndex
}

// Get returns the predefined profile for name, falling back to
// XInputNative for anything unrecognised.
func Get(name Name) *Profile {
	if p, ok := registry[name]; ok {
		return p
	}
	return registry[XInputNative]
}
