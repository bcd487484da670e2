// Package statewriter implements the State Writer: given an XInput
// snapshot, a bound data format and the profile/properties that produced
// it, it writes the mapped, transformed values into the caller's buffer.
// The per-element dispatch below is the same shape as a polling loop's
// axis/button/hat dispatch, generalised from "write into a fixed state
// struct" to "write into caller-chosen byte offsets from a bound data
// format", and extended with the shared-trigger-axis case as the
// critical one.
package statewriter

import (
	"encoding/binary"
	"fmt"

	"github.com/soar/xidishim/axisprops"
	"github.com/soar/xidishim/dataformat"
	"github.com/soar/xidishim/profile"
	"github.com/soar/xidishim/xinput"
)

// Write zeroes out, then fills buf (which must be at least b.PacketSize
// bytes) with the mapped, transformed view of snap under prof/props/b.
//
// Validation happens before any byte of buf is touched; once writing has
// started only xinput.ErrGeneric can interrupt it — at that point buf is
// indeterminate.
func Write(buf []byte, snap xinput.Snapshot, prof *profile.Profile, props *axisprops.Table, b *dataformat.Binding) error {
	if uint32(len(buf)) < b.PacketSize {
		return fmt.Errorf("statewriter: buffer too small: %w", xinput.ErrInvalidParam)
	}

	for i := range buf[:b.PacketSize] {
		buf[i] = 0
	}

	touched := make(map[xinput.VId]bool)

	if err := writeTriggers(buf, snap, prof, props, b, touched); err != nil {
		return err
	}
	if err := writeStick(buf, prof, props, b, touched, xinput.StickLeftH, snap.LX, false); err != nil {
		return err
	}
	if err := writeStick(buf, prof, props, b, touched, xinput.StickLeftV, snap.LY, true); err != nil {
		return err
	}
	if err := writeStick(buf, prof, props, b, touched, xinput.StickRightH, snap.RX, false); err != nil {
		return err
	}
	if err := writeStick(buf, prof, props, b, touched, xinput.StickRightV, snap.RY, true); err != nil {
		return err
	}
	if err := writeDpad(buf, snap, prof, b, touched); err != nil {
		return err
	}
	if err := writeButtons(buf, snap, prof, b, touched); err != nil {
		return err
	}
	centered := xinput.POVCentered
	for _, off := range b.UnusedOffsets[xinput.KindPOV] {
		binary.LittleEndian.PutUint32(buf[off:], uint32(centered))
	}

	return nil
}

func markTouched(touched map[xinput.VId]bool, vid xinput.VId) error {
	if touched[vid] {
		return fmt.Errorf("statewriter: %s written twice: %w", vid, xinput.ErrGeneric)
	}
	touched[vid] = true
	return nil
}

func writeAxisValue(buf []byte, b *dataformat.Binding, props *axisprops.Table, vid xinput.VId, raw int32, rawHalf int32, touched map[xinput.VId]bool) error {
	if err := markTouched(touched, vid); err != nil {
		return err
	}
	off, ok := b.OffsetOf(vid)
	if !ok {
		return nil
	}
	p, err := props.Get(vid.Index)
	if err != nil {
		return fmt.Errorf("statewriter: %w", xinput.ErrGeneric)
	}
	v := axisprops.Apply(raw, rawHalf, p)
	binary.LittleEndian.PutUint32(buf[off:], uint32(v))
	return nil
}

func writeButtonValue(buf []byte, b *dataformat.Binding, vid xinput.VId, pressed bool, touched map[xinput.VId]bool) error {
	if err := markTouched(touched, vid); err != nil {
		return err
	}
	off, ok := b.OffsetOf(vid)
	if !ok {
		return nil
	}
	if pressed {
		buf[off] = xinput.ButtonPressed
	} else {
		buf[off] = xinput.ButtonReleased
	}
	return nil
}

func writeTriggers(buf []byte, snap xinput.Snapshot, prof *profile.Profile, props *axisprops.Table, b *dataformat.Binding, touched map[xinput.VId]bool) error {
	vLT := prof.Virt(xinput.TriggerLT)
	vRT := prof.Virt(xinput.TriggerRT)

	if !vLT.IsAbsent() && !vRT.IsAbsent() && vLT == vRT {
		if vLT.Kind != xinput.KindAxis {
			return fmt.Errorf("statewriter: shared trigger target not an axis: %w", xinput.ErrGeneric)
		}
		m := prof.SharedDir(xinput.TriggerLT)
		if m != 1 && m != -1 {
			return fmt.Errorf("statewriter: shared trigger direction %d: %w", m, xinput.ErrGeneric)
		}
		s := int32(m)*int32(snap.LT) + int32(-m)*int32(snap.RT)
		return writeAxisValue(buf, b, props, vLT, s, xinput.TriggerRawMax, touched)
	}

	if err := writeTrigger(buf, prof, props, b, touched, xinput.TriggerLT, vLT, snap.LT); err != nil {
		return err
	}
	return writeTrigger(buf, prof, props, b, touched, xinput.TriggerRT, vRT, snap.RT)
}

func writeTrigger(buf []byte, prof *profile.Profile, props *axisprops.Table, b *dataformat.Binding, touched map[xinput.VId]bool, elem xinput.EPhysElem, vid xinput.VId, raw uint8) error {
	if vid.IsAbsent() {
		return nil
	}
	switch vid.Kind {
	case xinput.KindAxis:
		return writeAxisValue(buf, b, props, vid, int32(raw), xinput.TriggerRawMax, touched)
	case xinput.KindButton:
		return writeButtonValue(buf, b, vid, raw > xinput.TriggerThreshold, touched)
	default:
		return fmt.Errorf("statewriter: trigger mapped to %s: %w", vid.Kind, xinput.ErrGeneric)
	}
}

func writeStick(buf []byte, prof *profile.Profile, props *axisprops.Table, b *dataformat.Binding, touched map[xinput.VId]bool, elem xinput.EPhysElem, raw int16, vertical bool) error {
	vid := prof.Virt(elem)
	if vid.IsAbsent() {
		return nil
	}
	if vid.Kind != xinput.KindAxis {
		return fmt.Errorf("statewriter: stick mapped to %s: %w", vid.Kind, xinput.ErrGeneric)
	}
	v := int32(raw)
	if vertical {
		v = xinput.Invert(v, xinput.StickRawMin, xinput.StickRawMax)
	}
	return writeAxisValue(buf, b, props, vid, v, xinput.StickRawMax, touched)
}

func writeButtons(buf []byte, snap xinput.Snapshot, prof *profile.Profile, b *dataformat.Binding, touched map[xinput.VId]bool) error {
	elems := []xinput.EPhysElem{
		xinput.ButtonA, xinput.ButtonB, xinput.ButtonX, xinput.ButtonY,
		xinput.ButtonLB, xinput.ButtonRB, xinput.ButtonBack, xinput.ButtonStart,
		xinput.ButtonLeftStick, xinput.ButtonRightStick,
	}
	for _, e := range elems {
		vid := prof.Virt(e)
		if vid.IsAbsent() {
			continue
		}
		if vid.Kind != xinput.KindButton {
			return fmt.Errorf("statewriter: button mapped to %s: %w", vid.Kind, xinput.ErrGeneric)
		}
		bit, _ := xinput.ButtonBit(e)
		if err := writeButtonValue(buf, b, vid, snap.ButtonBits&bit != 0, touched); err != nil {
			return err
		}
	}
	return nil
}

// DpadAngle converts the four d-pad bits into a POV hundredths-of-a-degree
// angle, or xinput.POVCentered for an unrecognised/neutral combination.
func DpadAngle(bits uint16) int32 {
	up := bits&xinput.DpadUp != 0
	down := bits&xinput.DpadDown != 0
	left := bits&xinput.DpadLeft != 0
	right := bits&xinput.DpadRight != 0

	switch {
	case up && !down && !left && !right:
		return 0
	case up && right && !down && !left:
		return 4500
	case right && !up && !down && !left:
		return 9000
	case down && right && !up && !left:
		return 13500
	case down && !up && !left && !right:
		return 18000
	case down && left && !up && !right:
		return 22500
	case left && !up && !down && !right:
		return 27000
	case up && left && !down && !right:
		return 31500
	default:
		return xinput.POVCentered
	}
}

func writeDpad(buf []byte, snap xinput.Snapshot, prof *profile.Profile, b *dataformat.Binding, touched map[xinput.VId]bool) error {
	vid := prof.Virt(xinput.Dpad)
	if vid.IsAbsent() {
		return nil
	}
	if vid.Kind != xinput.KindPOV {
		return fmt.Errorf("statewriter: dpad mapped to %s: %w", vid.Kind, xinput.ErrGeneric)
	}
	if err := markTouched(touched, vid); err != nil {
		return err
	}
	off, ok := b.OffsetOf(vid)
	if !ok {
		return nil
	}
	binary.LittleEndian.PutUint32(buf[off:], uint32(DpadAngle(snap.ButtonBits)))
	return nil
}
