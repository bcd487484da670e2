package dataformat

import (
	"errors"
	"testing"

	"github.com/soar/xidishim/profile"
	"github.com/soar/xidishim/xinput"
)

func req(kind KindMask, offset uint32) ObjectRequest {
	return ObjectRequest{Kind: kind, Instance: AnyInstance, ByteOffset: offset}
}

// TestBindMutualInverse is universal invariant 1.
func TestBindMutualInverse(t *testing.T) {
	prof := profile.Get(profile.XInputNative)
	b, err := Bind(prof, []ObjectRequest{
		req(MaskAxis, 0),
		req(MaskAxis, 4),
		req(MaskButton, 8),
	}, 16)
	if err != nil {
		t.Fatalf("Bind() unexpected error: %v", err)
	}

	for off := uint32(0); off < b.PacketSize; off++ {
		vid, ok := b.VidAt(off)
		if !ok {
			continue
		}
		back, ok := b.OffsetOf(vid)
		if !ok || back != off {
			t.Errorf("offset %d -> %v -> offset %d, not a mutual inverse", off, vid, back)
		}
	}

	usedOffsets := make(map[uint32]bool)
	for _, kindUnused := range b.UnusedOffsets {
		for _, off := range kindUnused {
			usedOffsets[off] = true
		}
	}
	for off := range usedOffsets {
		if _, ok := b.VidAt(off); ok {
			t.Errorf("offset %d appears in both UnusedOffsets and the bound range", off)
		}
	}
}

// TestBindOverlapFails grounds S6.
func TestBindOverlapFails(t *testing.T) {
	prof := profile.Get(profile.XInputNative)
	_, err := Bind(prof, []ObjectRequest{
		req(MaskAxis, 0),
		req(MaskAxis, 2),
	}, 16)
	if !errors.Is(err, xinput.ErrInvalidParam) {
		t.Errorf("overlapping claim error = %v, want ErrInvalidParam", err)
	}
}

func TestBindRejectsBadPacketSize(t *testing.T) {
	prof := profile.Get(profile.XInputNative)
	cases := []uint32{0, 3, xinput.MaxPacket + 4}
	for _, sz := range cases {
		if _, err := Bind(prof, nil, sz); !errors.Is(err, xinput.ErrInvalidParam) {
			t.Errorf("Bind with packetSize=%d error = %v, want ErrInvalidParam", sz, err)
		}
	}
}

// TestBindSpecificInstanceZero grounds the off-by-one redesign flag: index 0
// must be accepted as a valid specific instance, not silently rejected.
func TestBindSpecificInstanceZero(t *testing.T) {
	prof := profile.Get(profile.XInputNative)
	b, err := Bind(prof, []ObjectRequest{
		{Kind: MaskButton, Instance: 0, ByteOffset: 0},
	}, 4)
	if err != nil {
		t.Fatalf("Bind(instance=0) unexpected error: %v", err)
	}
	vid, ok := b.VidAt(0)
	if !ok || vid.Index != 0 || vid.Kind != xinput.KindButton {
		t.Errorf("Bind(instance=0) -> %v, ok=%v; want button index 0", vid, ok)
	}
}

func TestBindIdentityFilteredAxis(t *testing.T) {
	prof := profile.Get(profile.XInputNative)
	b, err := Bind(prof, []ObjectRequest{
		{Kind: MaskAxis, HasIdentity: true, Identity: xinput.AxisRY, Instance: AnyInstance, ByteOffset: 0},
	}, 4)
	if err != nil {
		t.Fatalf("Bind() unexpected error: %v", err)
	}
	vid, ok := b.VidAt(0)
	if !ok {
		t.Fatal("expected offset 0 bound")
	}
	wantIdx := prof.AxisIndexByIdentity(xinput.AxisRY, 0)
	if vid.Index != wantIdx {
		t.Errorf("identity-filtered bind -> axis %d, want %d", vid.Index, wantIdx)
	}
}

func TestBindUnresolvableIdentityGoesToUnused(t *testing.T) {
	prof := profile.Get(profile.StandardGamepad) // has no RY axis
	b, err := Bind(prof, []ObjectRequest{
		{Kind: MaskAxis, HasIdentity: true, Identity: xinput.AxisRY, Instance: AnyInstance, ByteOffset: 0},
	}, 4)
	if err != nil {
		t.Fatalf("Bind() unexpected error: %v", err)
	}
	if _, ok := b.VidAt(0); ok {
		t.Error("unresolvable identity request should leave offset unbound")
	}
	if len(b.UnusedOffsets[xinput.KindAxis]) != 1 || b.UnusedOffsets[xinput.KindAxis][0] != 0 {
		t.Errorf("UnusedOffsets[KindAxis] = %v, want [0]", b.UnusedOffsets[xinput.KindAxis])
	}
}

// TestBindButtonRejectsAxisIdentity checks that an axis semantic identity
// leaking onto a button/POV request fails the bind rather than silently
// binding as if HasIdentity were false.
func TestBindButtonRejectsAxisIdentity(t *testing.T) {
	prof := profile.Get(profile.XInputNative)
	_, err := Bind(prof, []ObjectRequest{
		{Kind: MaskButton, HasIdentity: true, Identity: xinput.AxisX, Instance: AnyInstance, ByteOffset: 0},
	}, 4)
	if !errors.Is(err, xinput.ErrInvalidParam) {
		t.Errorf("button request with axis identity error = %v, want ErrInvalidParam", err)
	}

	_, err = Bind(prof, []ObjectRequest{
		{Kind: MaskPOV, HasIdentity: true, Identity: xinput.AxisRZ, Instance: AnyInstance, ByteOffset: 0},
	}, 4)
	if !errors.Is(err, xinput.ErrInvalidParam) {
		t.Errorf("POV request with axis identity error = %v, want ErrInvalidParam", err)
	}
}

// TestBindButtonAcceptsCanonicalIdentity checks that HasIdentity=true with
// the canonical (non-axis) sentinel still binds normally, same as
// HasIdentity=false.
func TestBindButtonAcceptsCanonicalIdentity(t *testing.T) {
	prof := profile.Get(profile.XInputNative)
	b, err := Bind(prof, []ObjectRequest{
		{Kind: MaskButton, HasIdentity: true, Identity: xinput.AxisUnknown, Instance: AnyInstance, ByteOffset: 0},
	}, 4)
	if err != nil {
		t.Fatalf("Bind() unexpected error: %v", err)
	}
	if _, ok := b.VidAt(0); !ok {
		t.Error("canonical-identity button request should bind normally")
	}
}

func TestBindAmbiguousKindMaskRejected(t *testing.T) {
	prof := profile.Get(profile.XInputNative)
	_, err := Bind(prof, []ObjectRequest{
		{Kind: MaskAxis | MaskButton, Instance: AnyInstance, ByteOffset: 0},
	}, 4)
	if !errors.Is(err, xinput.ErrInvalidParam) {
		t.Errorf("ambiguous kind mask error = %v, want ErrInvalidParam", err)
	}
}
