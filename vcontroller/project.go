package vcontroller

import (
	"github.com/soar/xidishim/axisprops"
	"github.com/soar/xidishim/profile"
	"github.com/soar/xidishim/statewriter"
	"github.com/soar/xidishim/xinput"
)

// project runs the same per-element mapping/transform pipeline as
// statewriter.Write, but fills an SState's dense per-kind slices directly
// instead of writing caller byte offsets — this is the projection the
// refresh algorithm diffs against the previous state to decide whether a
// new state has really arrived.
func project(snap xinput.Snapshot, prof *profile.Profile, props *axisprops.Table) SState {
	s := newSState(prof)

	projectTriggers(&s, snap, prof, props)
	projectStick(&s, prof, props, xinput.StickLeftH, snap.LX, false)
	projectStick(&s, prof, props, xinput.StickLeftV, snap.LY, true)
	projectStick(&s, prof, props, xinput.StickRightH, snap.RX, false)
	projectStick(&s, prof, props, xinput.StickRightV, snap.RY, true)
	projectDpad(&s, snap, prof)
	projectButtons(&s, snap, prof)

	return s
}

func axisValue(props *axisprops.Table, vid xinput.VId, raw, rawHalf int32) int32 {
	p, err := props.Get(vid.Index)
	if err != nil {
		return 0
	}
	return axisprops.Apply(raw, rawHalf, p)
}

func projectTriggers(s *SState, snap xinput.Snapshot, prof *profile.Profile, props *axisprops.Table) {
	vLT := prof.Virt(xinput.TriggerLT)
	vRT := prof.Virt(xinput.TriggerRT)

	if !vLT.IsAbsent() && !vRT.IsAbsent() && vLT == vRT && vLT.Kind == xinput.KindAxis {
		m := prof.SharedDir(xinput.TriggerLT)
		if m != 1 && m != -1 {
			return
		}
		combined := int32(m)*int32(snap.LT) + int32(-m)*int32(snap.RT)
		s.Axis[vLT.Index] = axisValue(props, vLT, combined, xinput.TriggerRawMax)
		return
	}

	projectTrigger(s, prof, props, vLT, snap.LT)
	projectTrigger(s, prof, props, vRT, snap.RT)
}

func projectTrigger(s *SState, prof *profile.Profile, props *axisprops.Table, vid xinput.VId, raw uint8) {
	if vid.IsAbsent() {
		return
	}
	switch vid.Kind {
	case xinput.KindAxis:
		s.Axis[vid.Index] = axisValue(props, vid, int32(raw), xinput.TriggerRawMax)
	case xinput.KindButton:
		s.Button[vid.Index] = raw > xinput.TriggerThreshold
	}
}

func projectStick(s *SState, prof *profile.Profile, props *axisprops.Table, elem xinput.EPhysElem, raw int16, vertical bool) {
	vid := prof.Virt(elem)
	if vid.IsAbsent() || vid.Kind != xinput.KindAxis {
		return
	}
	v := int32(raw)
	if vertical {
		v = xinput.Invert(v, xinput.StickRawMin, xinput.StickRawMax)
	}
	s.Axis[vid.Index] = axisValue(props, vid, v, xinput.StickRawMax)
}

func projectDpad(s *SState, snap xinput.Snapshot, prof *profile.Profile) {
	vid := prof.Virt(xinput.Dpad)
	if vid.IsAbsent() || vid.Kind != xinput.KindPOV {
		return
	}
	s.Pov[vid.Index] = statewriter.DpadAngle(snap.ButtonBits)
}

func projectButtons(s *SState, snap xinput.Snapshot, prof *profile.Profile) {
	elems := []xinput.EPhysElem{
		xinput.ButtonA, xinput.ButtonB, xinput.ButtonX, xinput.ButtonY,
		xinput.ButtonLB, xinput.ButtonRB, xinput.ButtonBack, xinput.ButtonStart,
		xinput.ButtonLeftStick, xinput.ButtonRightStick,
	}
	for _, e := range elems {
		vid := prof.Virt(e)
		if vid.IsAbsent() || vid.Kind != xinput.KindButton {
			continue
		}
		bit, _ := xinput.ButtonBit(e)
		s.Button[vid.Index] = snap.ButtonBits&bit != 0
	}
}
