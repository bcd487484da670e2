package xinput

import "testing"

func TestRemapPreservesEndpoints(t *testing.T) {
	if got := Remap(-32768, -32768, 32767, -10000, 10000); got != -10000 {
		t.Errorf("Remap(a0) = %d, want -10000", got)
	}
	if got := Remap(32767, -32768, 32767, -10000, 10000); got != 10000 {
		t.Errorf("Remap(a1) = %d, want 10000", got)
	}
}

func TestRemapDegenerateRange(t *testing.T) {
	if got := Remap(5, 10, 10, -1, 1); got != -1 {
		t.Errorf("Remap with a0==a1 = %d, want b0 (-1)", got)
	}
}

func TestInvertInvolution(t *testing.T) {
	for _, v := range []int32{-32768, -1, 0, 1, 32767} {
		if got := Invert(Invert(v, StickRawMin, StickRawMax), StickRawMin, StickRawMax); got != v {
			t.Errorf("Invert(Invert(%d)) = %d, want %d", v, got, v)
		}
	}
}

func TestVIdAbsent(t *testing.T) {
	if !Absent.IsAbsent() {
		t.Error("Absent.IsAbsent() = false, want true")
	}
	v := VId{Kind: KindAxis, Index: 0}
	if v.IsAbsent() {
		t.Error("VId{Index:0}.IsAbsent() = true, want false")
	}
}

func TestButtonBitUnknownElement(t *testing.T) {
	if _, ok := ButtonBit(Dpad); ok {
		t.Error("ButtonBit(Dpad) should report ok=false")
	}
	if _, ok := ButtonBit(StickLeftH); ok {
		t.Error("ButtonBit(StickLeftH) should report ok=false")
	}
}
