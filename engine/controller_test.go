package engine

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/soar/xidishim/dataformat"
	"github.com/soar/xidishim/eventenc"
	"github.com/soar/xidishim/profile"
	"github.com/soar/xidishim/propapi"
	"github.com/soar/xidishim/xinput"
)

// fakeSource is a scriptable in-memory xinput.Source.
type fakeSource struct {
	code   xinput.ErrorCode
	packet uint32
	snap   xinput.Snapshot
	events []xinput.PhysEvent
}

func (f *fakeSource) GetState(int) (xinput.ErrorCode, uint32, xinput.Snapshot) {
	return f.code, f.packet, f.snap
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
func (f *fakeSource) IsOverflowed() bool { return false }

func TestNewUnrecognisedProfileFallsBack(t *testing.T) {
	src := &fakeSource{code: xinput.Success}
	c := New(0, profile.Name("bogus"), src)
	if c.Profile().Name() != profile.XInputNative {
		t.Errorf("Profile().Name() = %s, want %s", c.Profile().Name(), profile.XInputNative)
	}
}

func TestSetDataFormatThenGetMappedState(t *testing.T) {
	src := &fakeSource{code: xinput.Success, packet: 5, snap: xinput.Snapshot{LT: 255, RT: 0}}
	c := New(0, profile.XInputSharedTriggers, src)

	var reqs []dataformat.ObjectRequest
	off := uint32(0)
	for i := uint16(0); i < c.Profile().CountOf(xinput.KindAxis); i++ {
		reqs = append(reqs, dataformat.ObjectRequest{Kind: dataformat.MaskAxis, Instance: dataformat.AnyInstance, ByteOffset: off})
		off += xinput.AxisSize
	}
	if err := c.SetDataFormat(reqs, off); err != nil {
		t.Fatalf("SetDataFormat() unexpected error: %v", err)
	}

	vid := c.Profile().Virt(xinput.TriggerLT)
	wantOff, _ := c.binding.OffsetOf(vid)

	buf := make([]byte, off)
	id, err := c.GetMappedState(buf)
	if err != nil {
		t.Fatalf("GetMappedState() unexpected error: %v", err)
	}
	if id.PacketNumber != 5 || id.ErrorCode != xinput.Success {
		t.Errorf("identifier = %+v, want {5, Success}", id)
	}
	got := int32(binary.LittleEndian.Uint32(buf[wantOff:]))
	if got != 32767 {
		t.Errorf("shared trigger axis = %d, want 32767", got)
	}
}

func TestGetMappedStateWithoutDataFormat(t *testing.T) {
	src := &fakeSource{code: xinput.Success}
	c := New(0, profile.XInputNative, src)
	if _, err := c.GetMappedState(make([]byte, 64)); !errors.Is(err, xinput.ErrInvalidParam) {
		t.Errorf("GetMappedState without a data format error = %v, want ErrInvalidParam", err)
	}
}

func TestResetDataFormatClearsBinding(t *testing.T) {
	src := &fakeSource{code: xinput.Success}
	c := New(0, profile.XInputNative, src)
	if err := c.SetDataFormat([]dataformat.ObjectRequest{
		{Kind: dataformat.MaskAxis, Instance: dataformat.AnyInstance, ByteOffset: 0},
	}, 4); err != nil {
		t.Fatalf("SetDataFormat() unexpected error: %v", err)
	}
	c.ResetDataFormat()
	if _, err := c.GetMappedState(make([]byte, 4)); !errors.Is(err, xinput.ErrInvalidParam) {
		t.Errorf("GetMappedState after ResetDataFormat error = %v, want ErrInvalidParam", err)
	}
}

func TestEnumerateObjectsStableOrder(t *testing.T) {
	src := &fakeSource{code: xinput.Success}
	c := New(0, profile.XInputNative, src)

	var order []xinput.VId
	c.EnumerateObjects(dataformat.MaskAxis|dataformat.MaskButton|dataformat.MaskPOV, func(o EnumeratedObject) {
		order = append(order, o.VId)
	})

	axes := int(c.Profile().CountOf(xinput.KindAxis))
	buttons := int(c.Profile().CountOf(xinput.KindButton))
	povs := int(c.Profile().CountOf(xinput.KindPOV))
	if len(order) != axes+buttons+povs {
		t.Fatalf("got %d objects, want %d", len(order), axes+buttons+povs)
	}
	for i := 0; i < axes; i++ {
		if order[i] != (xinput.VId{Kind: xinput.KindAxis, Index: i}) {
			t.Errorf("axis position %d = %v, want axis index %d", i, order[i], i)
		}
	}
	for i := 0; i < buttons; i++ {
		if order[axes+i] != (xinput.VId{Kind: xinput.KindButton, Index: i}) {
			t.Errorf("button position %d = %v, want button index %d", i, order[axes+i], i)
		}
	}
}

func TestEnumerateObjectsOffsetUnusedBeforeBinding(t *testing.T) {
	src := &fakeSource{code: xinput.Success}
	c := New(0, profile.XInputNative, src)

	var offsets []uint32
	c.EnumerateObjects(dataformat.MaskAxis, func(o EnumeratedObject) { offsets = append(offsets, o.Offset) })
	for _, off := range offsets {
		if off != xinput.OffsetUnused {
			t.Errorf("offset = %d before any SetDataFormat, want OffsetUnused", off)
		}
	}
}

func TestPropertyFacadeDelegation(t *testing.T) {
	src := &fakeSource{code: xinput.Success}
	c := New(0, profile.XInputNative, src)

	target := propapi.Target{VId: xinput.VId{Kind: xinput.KindAxis, Index: 0}}
	if err := c.SetProperty(propapi.PropDeadzone, target, uint32(1000)); err != nil {
		t.Fatalf("SetProperty() unexpected error: %v", err)
	}
	v, err := c.GetProperty(propapi.PropDeadzone, target)
	if err != nil {
		t.Fatalf("GetProperty() unexpected error: %v", err)
	}
	if v.(uint32) != 1000 {
		t.Errorf("deadzone = %v, want 1000", v)
	}
}

func TestGetBufferedEventsDrainsMappedEvents(t *testing.T) {
	src := &fakeSource{code: xinput.Success, events: []xinput.PhysEvent{
		{Elem: xinput.ButtonA, Value: 1, Seq: 1},
	}}
	c := New(0, profile.XInputNative, src)
	if err := c.SetDataFormat([]dataformat.ObjectRequest{
		{Kind: dataformat.MaskButton, Instance: dataformat.AnyInstance, ByteOffset: 0},
	}, 4); err != nil {
		t.Fatalf("SetDataFormat() unexpected error: %v", err)
	}

	out := make([]eventenc.AppEvent, 4)
	n, overflowed, err := c.GetBufferedEvents(out, false)
	if err != nil {
		t.Fatalf("GetBufferedEvents() unexpected error: %v", err)
	}
	if overflowed {
		t.Error("GetBufferedEvents should not report overflow")
	}
	if n != 1 || out[0].Data != int32(xinput.ButtonPressed) {
		t.Errorf("GetBufferedEvents n=%d out[0]=%+v, want n=1 Data=ButtonPressed", n, out[0])
	}
}
