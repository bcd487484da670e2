package profile

import "github.com/soar/xidishim/xinput"

// axis builds the VId for axis index i.
func axis(i int) xinput.VId { return xinput.VId{Kind: xinput.KindAxis, Index: i} }

// button builds the VId for button index i.
func button(i int) xinput.VId { return xinput.VId{Kind: xinput.KindButton, Index: i} }

// pov builds the VId for POV index i.
func pov(i int) xinput.VId { return xinput.VId{Kind: xinput.KindPOV, Index: i} }

var registry = map[Name]*Profile{
	StandardGamepad:      newStandardGamepad(),
	ExtendedGamepad:      newExtendedGamepad(),
	XInputNative:         newXInputNative(),
	XInputSharedTriggers: newXInputSharedTriggers(),
}

// newStandardGamepad builds the bare-minimum profile: left stick only, no
// right stick, triggers read as buttons rather than axes.
func newStandardGamepad() *Profile {
	p := &Profile{
		name:         StandardGamepad,
		axisIdentity: []xinput.AxisIdentity{xinput.AxisX, xinput.AxisY},
		physToVirt: map[xinput.EPhysElem]xinput.VId{
			xinput.StickLeftH:  axis(0),
			xinput.StickLeftV:  axis(1),
			xinput.ButtonA:     button(0),
			xinput.ButtonB:     button(1),
			xinput.ButtonX:     button(2),
			xinput.ButtonY:     button(3),
			xinput.ButtonLB:    button(4),
			xinput.ButtonRB:    button(5),
			xinput.ButtonBack:  button(6),
			xinput.ButtonStart: button(7),
			xinput.TriggerLT:   button(8),
			xinput.TriggerRT:   button(9),
			xinput.Dpad:        pov(0),
		},
	}
	p.counts[xinput.KindAxis] = 2
	p.counts[xinput.KindButton] = 10
	p.counts[xinput.KindPOV] = 1
	return p
}

// newExtendedGamepad builds the full two-stick profile with triggers still
// read as buttons (no spare axis slots for them).
func newExtendedGamepad() *Profile {
	p := &Profile{
		name:         ExtendedGamepad,
		axisIdentity: []xinput.AxisIdentity{xinput.AxisX, xinput.AxisY, xinput.AxisRX, xinput.AxisRY},
		physToVirt: map[xinput.EPhysElem]xinput.VId{
			xinput.StickLeftH:       axis(0),
			xinput.StickLeftV:       axis(1),
			xinput.StickRightH:      axis(2),
			xinput.StickRightV:      axis(3),
			xinput.ButtonA:          button(0),
			xinput.ButtonB:          button(1),
			xinput.ButtonX:          button(2),
			xinput.ButtonY:          button(3),
			xinput.ButtonLB:         button(4),
			xinput.ButtonRB:         button(5),
			xinput.ButtonBack:       button(6),
			xinput.ButtonStart:      button(7),
			xinput.ButtonLeftStick:  button(8),
			xinput.ButtonRightStick: button(9),
			xinput.TriggerLT:        button(10),
			xinput.TriggerRT:        button(11),
			xinput.Dpad:             pov(0),
		},
	}
	p.counts[xinput.KindAxis] = 4
	p.counts[xinput.KindButton] = 12
	p.counts[xinput.KindPOV] = 1
	return p
}

// newXInputNative mirrors XInput's native six-axis layout: each trigger
// gets its own axis (Z, RZ) rather than sharing one.
func newXInputNative() *Profile {
	p := &Profile{
		name: XInputNative,
		axisIdentity: []xinput.AxisIdentity{
			xinput.AxisX, xinput.AxisY, xinput.AxisRX, xinput.AxisRY, xinput.AxisZ, xinput.AxisRZ,
		},
		physToVirt: map[xinput.EPhysElem]xinput.VId{
			xinput.StickLeftH:       axis(0),
			xinput.StickLeftV:       axis(1),
			xinput.StickRightH:      axis(2),
			xinput.StickRightV:      axis(3),
			xinput.TriggerLT:        axis(4),
			xinput.TriggerRT:        axis(5),
			xinput.ButtonA:          button(0),
			xinput.ButtonB:          button(1),
			xinput.ButtonX:          button(2),
			xinput.ButtonY:          button(3),
			xinput.ButtonLB:         button(4),
			xinput.ButtonRB:         button(5),
			xinput.ButtonBack:       button(6),
			xinput.ButtonStart:      button(7),
			xinput.ButtonLeftStick:  button(8),
			xinput.ButtonRightStick: button(9),
			xinput.Dpad:             pov(0),
		},
	}
	p.counts[xinput.KindAxis] = 6
	p.counts[xinput.KindButton] = 10
	p.counts[xinput.KindPOV] = 1
	return p
}

// newXInputSharedTriggers is XInputNative with LT and RT folded onto a
// single Z axis in opposite directions — the classic "one Z axis" legacy
// XInput convention.
func newXInputSharedTriggers() *Profile {
	sharedTarget := axis(4)
	p := &Profile{
		name: XInputSharedTriggers,
		axisIdentity: []xinput.AxisIdentity{
			xinput.AxisX, xinput.AxisY, xinput.AxisRX, xinput.AxisRY, xinput.AxisZ,
		},
		physToVirt: map[xinput.EPhysElem]xinput.VId{
			xinput.StickLeftH:       axis(0),
			xinput.StickLeftV:       axis(1),
			xinput.StickRightH:      axis(2),
			xinput.StickRightV:      axis(3),
			xinput.TriggerLT:        sharedTarget,
			xinput.TriggerRT:        sharedTarget,
			xinput.ButtonA:          button(0),
			xinput.ButtonB:          button(1),
			xinput.ButtonX:          button(2),
			xinput.ButtonY:          button(3),
			xinput.ButtonLB:         button(4),
			xinput.ButtonRB:         button(5),
			xinput.ButtonBack:       button(6),
			xinput.ButtonStart:      button(7),
			xinput.ButtonLeftStick:  button(8),
			xinput.ButtonRightStick: button(9),
			xinput.Dpad:             pov(0),
		},
		sharedAxis: true,
		sharedDir: map[xinput.EPhysElem]int{
			xinput.TriggerLT: +1,
			xinput.TriggerRT: -1,
		},
	}
	p.counts[xinput.KindAxis] = 5
	p.counts[xinput.KindButton] = 10
	p.counts[xinput.KindPOV] = 1
	return p
}
