// Package xinput holds the physical/virtual vocabulary the rest of the
// engine is built on: the physical elements an XInput-style pad reports,
// the virtual element kinds a legacy DirectInput client expects, the
// geometry primitives used to translate between their ranges, and the
// Source capability the engine polls for snapshots and buffered events.
package xinput

import "fmt"

// EPhysElem enumerates the eight physical controller elements an XInput
// snapshot carries, plus the individual buttons and d-pad reported in the
// button bitmask.
type EPhysElem int

const (
	ButtonA EPhysElem = iota
	ButtonB
	ButtonX
	ButtonY
	ButtonLB
	ButtonRB
	ButtonBack
	ButtonStart
	ButtonLeftStick
	ButtonRightStick
	Dpad
	StickLeftH
	StickLeftV
	StickRightH
	StickRightV
	TriggerLT
	TriggerRT

	numPhysElem
)

func (e EPhysElem) String() string {
	switch e {
	case ButtonA:
		return "ButtonA"
	case ButtonB:
		return "ButtonB"
	case ButtonX:
		return "ButtonX"
	case ButtonY:
		return "ButtonY"
	case ButtonLB:
		return "ButtonLB"
	case ButtonRB:
		return "ButtonRB"
	case ButtonBack:
		return "ButtonBack"
	case ButtonStart:
		return "ButtonStart"
	case ButtonLeftStick:
		return "ButtonLeftStick"
	case ButtonRightStick:
		return "ButtonRightStick"
	case Dpad:
		return "Dpad"
	case StickLeftH:
		return "StickLeftH"
	case StickLeftV:
		return "StickLeftV"
	case StickRightH:
		return "StickRightH"
	case StickRightV:
		return "StickRightV"
	case TriggerLT:
		return "TriggerLT"
	case TriggerRT:
		return "TriggerRT"
	default:
		return fmt.Sprintf("EPhysElem(%d)", int(e))
	}
}

// EVKind enumerates the virtual element kinds a mapping profile projects
// physical elements onto.
type EVKind int

const (
	KindAxis EVKind = iota
	KindButton
	KindPOV

	numVKind
)

func (k EVKind) String() string {
	switch k {
	case KindAxis:
		return "Axis"
	case KindButton:
		return "Button"
	case KindPOV:
		return "POV"
	default:
		return fmt.Sprintf("EVKind(%d)", int(k))
	}
}

// AxisIdentity is the semantic identity a virtual axis carries, drawn from
// the classic DirectInput axis GUID set.
type AxisIdentity int

const (
	AxisX AxisIdentity = iota
	AxisY
	AxisZ
	AxisRX
	AxisRY
	AxisRZ

	// AxisUnknown marks an axis with no recognised semantic identity; it
	// never matches an identity-filtered binder lookup.
	AxisUnknown
)

// Name returns the human-readable object name used for enumeration.
func (a AxisIdentity) Name() string {
	switch a {
	case AxisX:
		return "X Axis"
	case AxisY:
		return "Y Axis"
	case AxisZ:
		return "Z Axis"
	case AxisRX:
		return "RotX Axis"
	case AxisRY:
		return "RotY Axis"
	case AxisRZ:
		return "RotZ Axis"
	default:
		return "Unknown Axis"
	}
}

// InvalidIndex is the sentinel "absent" index for a VId.
const InvalidIndex = -1

// VId identifies a virtual object: a kind plus its dense index within that
// kind. The zero value is not itself a sentinel — use Absent.
type VId struct {
	Kind  EVKind
	Index int
}

// Absent is the sentinel VId denoting "no virtual object".
var Absent = VId{Kind: KindAxis, Index: InvalidIndex}

// IsAbsent reports whether v is the sentinel "no object" value.
func (v VId) IsAbsent() bool {
	return v.Index == InvalidIndex
}

func (v VId) String() string {
	if v.IsAbsent() {
		return "<absent>"
	}
	return fmt.Sprintf("%s[%d]", v.Kind, v.Index)
}

// Geometry constants shared across the engine.
const (
	StickRawMin = -32768
	StickRawMax = 32767

	TriggerRawMin = 0
	TriggerRawMax = 255

	// TriggerThreshold is the raw trigger value above which a
	// trigger-driven button target is considered "pressed".
	TriggerThreshold = 30

	Neutral = 0

	// POVCentered is the sentinel value for a centred (unpressed) POV hat,
	// all bits set (-1 cast to uint32).
	POVCentered = int32(-1)

	// DZMin, DZMax bound a valid deadzone value (logical fixed-point).
	DZMin = 0
	DZMax = 10000

	// SatMin, SatMax bound a valid saturation value (logical fixed-point).
	// SatMax doubles as the 100% scale used by remap-based percentage math.
	SatMin = 0
	SatMax = 10000

	// MaxPacket is the largest data-format packet size the binder accepts.
	MaxPacket = 1024

	// ButtonPressed / ButtonReleased are the byte values written for a
	// DirectInput-style button object.
	ButtonPressed  byte = 0x80
	ButtonReleased byte = 0x00

	// Output object sizes in bytes for the bound data format.
	AxisSize   = 4
	POVSize    = 4
	ButtonSize = 1

	// OffsetUnused is reported for an enumerated object with no slot in
	// the caller's current data format.
	OffsetUnused = uint32(0xFFFFFFFF)
)

// Remap linearly remaps v from [a0,a1] to [b0,b1], preserving endpoints
// exactly: Remap(a0,...) == b0 and Remap(a1,...) == b1. Either range may
// run in either direction. The intermediate product is carried in a
// 64-bit accumulator because it can reach 2^31 * 2^16 before the division.
func Remap(v, a0, a1, b0, b1 int32) int32 {
	if a1 == a0 {
		return b0
	}
	num := int64(v-a0) * int64(b1-b0)
	den := int64(a1 - a0)
	return b0 + int32(num/den)
}

// Invert reflects v across the midpoint of [lo,hi]: Invert(Invert(v)) == v.
func Invert(v, lo, hi int32) int32 {
	return lo + hi - v
}
