package eventenc

import (
	"testing"

	"github.com/soar/xidishim/axisprops"
	"github.com/soar/xidishim/dataformat"
	"github.com/soar/xidishim/profile"
	"github.com/soar/xidishim/xinput"
)

// fakeSource is a minimal in-memory xinput.Source exercising only the
// event-buffer side of the interface Encode needs.
type fakeSource struct {
	events   []xinput.PhysEvent
	overflow bool
}

func (f *fakeSource) GetState(int) (xinput.ErrorCode, uint32, xinput.Snapshot) {
	return xinput.Success, 0, xinput.Snapshot{}
}
func (f *fakeSource) LockEventBuffer()      {}
func (f *fakeSource) UnlockEventBuffer()    {}
func (f *fakeSource) BufferedCount() uint32 { return uint32(len(f.events)) }
func (f *fakeSource) Peek(i uint32) xinput.PhysEvent {
	if int(i) >= len(f.events) {
		return xinput.PhysEvent{}
	}
	return f.events[i]
}
func (f *fakeSource) Pop() xinput.PhysEvent {
	if len(f.events) == 0 {
		return xinput.PhysEvent{}
	}
	ev := f.events[0]
	f.events = f.events[1:]
	return ev
}
func (f *fakeSource) IsOverflowed() bool {
	v := f.overflow
	f.overflow = false
	return v
}

func bindSharedTriggers(t *testing.T) (*profile.Profile, *axisprops.Table, *dataformat.Binding) {
	t.Helper()
	prof := profile.Get(profile.XInputSharedTriggers)
	props := axisprops.New(int(prof.CountOf(xinput.KindAxis)))
	var reqs []dataformat.ObjectRequest
	off := uint32(0)
	for i := uint16(0); i < prof.CountOf(xinput.KindAxis); i++ {
		reqs = append(reqs, dataformat.ObjectRequest{Kind: dataformat.MaskAxis, Instance: dataformat.AnyInstance, ByteOffset: off})
		off += 4
	}
	b, err := dataformat.Bind(prof, reqs, off)
	if err != nil {
		t.Fatalf("Bind() unexpected error: %v", err)
	}
	return prof, props, b
}

// TestPeekLeavesBufferedCountUnchanged grounds invariant 7 (peek half).
func TestPeekLeavesBufferedCountUnchanged(t *testing.T) {
	prof := profile.Get(profile.XInputNative)
	props := axisprops.New(int(prof.CountOf(xinput.KindAxis)))
	enc := New(prof, props, nil)

	src := &fakeSource{events: []xinput.PhysEvent{
		{Elem: xinput.StickLeftH, Value: 100, Seq: 1},
		{Elem: xinput.ButtonA, Value: 1, Seq: 2},
	}}
	before := src.BufferedCount()
	if _, _, err := enc.Encode(src, 10, Peek); err != nil {
		t.Fatalf("Encode(Peek) unexpected error: %v", err)
	}
	if src.BufferedCount() != before {
		t.Errorf("BufferedCount after Peek = %d, want unchanged %d", src.BufferedCount(), before)
	}
}

// TestDrainConsumesExactly grounds invariant 7 (drain half), including that
// skipped-unmapped events still count as consumed.
func TestDrainConsumesExactly(t *testing.T) {
	prof := profile.Get(profile.StandardGamepad) // no right stick: RX/RY unmapped
	props := axisprops.New(int(prof.CountOf(xinput.KindAxis)))
	var reqs []dataformat.ObjectRequest
	reqs = append(reqs, dataformat.ObjectRequest{Kind: dataformat.MaskAxis, Instance: dataformat.AnyInstance, ByteOffset: 0})
	b, err := dataformat.Bind(prof, reqs, 4)
	if err != nil {
		t.Fatalf("Bind() unexpected error: %v", err)
	}
	enc := New(prof, props, b)

	src := &fakeSource{events: []xinput.PhysEvent{
		{Elem: xinput.StickLeftH, Value: 100, Seq: 1},
		{Elem: xinput.StickRightH, Value: 200, Seq: 2}, // unmapped in StandardGamepad
		{Elem: xinput.StickRightV, Value: 300, Seq: 3}, // unmapped
	}}
	events, _, err := enc.Encode(src, 10, Drain)
	if err != nil {
		t.Fatalf("Encode(Drain) unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d mapped events, want 1 (unmapped events skipped but still consumed)", len(events))
	}
	if src.BufferedCount() != 0 {
		t.Errorf("BufferedCount after Drain = %d, want 0 (all 3 consumed)", src.BufferedCount())
	}
}

func TestDrainRespectsMax(t *testing.T) {
	prof := profile.Get(profile.XInputNative)
	props := axisprops.New(int(prof.CountOf(xinput.KindAxis)))
	b, err := dataformat.Bind(prof, []dataformat.ObjectRequest{
		{Kind: dataformat.MaskButton, Instance: dataformat.AnyInstance, ByteOffset: 0},
		{Kind: dataformat.MaskButton, Instance: dataformat.AnyInstance, ByteOffset: 1},
		{Kind: dataformat.MaskButton, Instance: dataformat.AnyInstance, ByteOffset: 2},
	}, 4)
	if err != nil {
		t.Fatalf("Bind() unexpected error: %v", err)
	}
	enc := New(prof, props, b)

	src := &fakeSource{events: []xinput.PhysEvent{
		{Elem: xinput.ButtonA, Value: 1, Seq: 1},
		{Elem: xinput.ButtonB, Value: 1, Seq: 2},
		{Elem: xinput.ButtonX, Value: 1, Seq: 3},
	}}
	_, _, err = enc.Encode(src, 2, Drain)
	if err != nil {
		t.Fatalf("Encode unexpected error: %v", err)
	}
	if src.BufferedCount() != 1 {
		t.Errorf("BufferedCount after Encode(max=2) = %d, want 1 remaining", src.BufferedCount())
	}
}

// TestSharedTriggerEventRecombination checks that a change on one trigger
// recombines with the other trigger's last-known value without needing to
// re-poll the source.
func TestSharedTriggerEventRecombination(t *testing.T) {
	prof, props, b := bindSharedTriggers(t)
	enc := New(prof, props, b)
	vid := prof.Virt(xinput.TriggerLT)
	off, _ := b.OffsetOf(vid)

	src := &fakeSource{events: []xinput.PhysEvent{
		{Elem: xinput.TriggerRT, Value: 0, Seq: 1},
	}}
	events, _, err := enc.Encode(src, 10, Drain)
	if err != nil {
		t.Fatalf("Encode() unexpected error: %v", err)
	}
	if len(events) != 1 || events[0].Offset != off || events[0].Data != 0 {
		t.Fatalf("first RT-only event = %+v, want Data=0 at offset %d", events, off)
	}

	src.events = []xinput.PhysEvent{{Elem: xinput.TriggerLT, Value: 255, Seq: 2}}
	events, _, err = enc.Encode(src, 10, Drain)
	if err != nil {
		t.Fatalf("Encode() unexpected error: %v", err)
	}
	if len(events) != 1 || events[0].Data != 32767 {
		t.Fatalf("LT=255 after RT=0 recombination = %+v, want Data=32767", events)
	}
}

func TestOverflowReportedOnce(t *testing.T) {
	prof := profile.Get(profile.XInputNative)
	props := axisprops.New(int(prof.CountOf(xinput.KindAxis)))
	enc := New(prof, props, nil)

	src := &fakeSource{overflow: true}
	_, overflow, err := enc.Encode(src, 10, Peek)
	if err != nil {
		t.Fatalf("Encode() unexpected error: %v", err)
	}
	if !overflow {
		t.Error("Encode should report overflow = true")
	}
	if src.overflow {
		t.Error("IsOverflowed should have cleared the source's flag")
	}
}
