package profile

import (
	"testing"

	"github.com/soar/xidishim/xinput"
)

func TestGetUnknownFallsBackToXInputNative(t *testing.T) {
	p := Get(Name("not-a-real-profile"))
	if p.Name() != XInputNative {
		t.Errorf("Get(unknown).Name() = %s, want %s", p.Name(), XInputNative)
	}
}

func TestXInputSharedTriggersLayout(t *testing.T) {
	p := Get(XInputSharedTriggers)
	if !p.IsSharedTriggerAxis() {
		t.Fatal("XInputSharedTriggers profile should report IsSharedTriggerAxis() == true")
	}
	lt := p.Virt(xinput.TriggerLT)
	rt := p.Virt(xinput.TriggerRT)
	if lt.IsAbsent() || rt.IsAbsent() || lt != rt {
		t.Errorf("LT/RT should map to the same axis, got LT=%v RT=%v", lt, rt)
	}
	if p.SharedDir(xinput.TriggerLT) != 1 || p.SharedDir(xinput.TriggerRT) != -1 {
		t.Errorf("shared directions = (%d,%d), want (+1,-1)", p.SharedDir(xinput.TriggerLT), p.SharedDir(xinput.TriggerRT))
	}
}

func TestXInputNativeIndependentTriggerAxes(t *testing.T) {
	p := Get(XInputNative)
	if p.IsSharedTriggerAxis() {
		t.Fatal("XInputNative profile should not share a trigger axis")
	}
	lt := p.Virt(xinput.TriggerLT)
	rt := p.Virt(xinput.TriggerRT)
	if lt.IsAbsent() || rt.IsAbsent() || lt == rt {
		t.Errorf("LT/RT should map to distinct axes, got LT=%v RT=%v", lt, rt)
	}
	if p.CountOf(xinput.KindAxis) != 6 {
		t.Errorf("XInputNative axis count = %d, want 6", p.CountOf(xinput.KindAxis))
	}
}

func TestStandardGamepadTriggersAsButtons(t *testing.T) {
	p := Get(StandardGamepad)
	lt := p.Virt(xinput.TriggerLT)
	if lt.IsAbsent() || lt.Kind != xinput.KindButton {
		t.Errorf("StandardGamepad should map triggers to buttons, got %v", lt)
	}
	if !p.Virt(xinput.StickRightH).IsAbsent() {
		t.Error("StandardGamepad should have no right stick")
	}
}

func TestAxisIndexByIdentity(t *testing.T) {
	p := Get(XInputNative)
	idx := p.AxisIndexByIdentity(xinput.AxisX, 0)
	if idx != 0 {
		t.Errorf("AxisIndexByIdentity(AxisX, 0) = %d, want 0", idx)
	}
	if got := p.AxisIndexByIdentity(xinput.AxisX, 1); got != xinput.InvalidIndex {
		t.Errorf("AxisIndexByIdentity(AxisX, 1) = %d, want InvalidIndex (only one X axis)", got)
	}
}

func TestVirtAbsentForUnmappedElement(t *testing.T) {
	p := Get(StandardGamepad)
	if !p.Virt(xinput.StickRightH).IsAbsent() {
		t.Error("Virt on an unmapped element should return Absent")
	}
}
