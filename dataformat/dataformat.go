// Package dataformat implements the Data Format Binder: it turns a
// caller-supplied list of object requests into bidirectional virtual-
// object↔byte-offset maps, or fails the whole call atomically. It
// generalises a "check before committing" claim-tracking idiom — the
// per-joystick "already opened?" map check a poller runs before
// committing new state — into the overlap-checked, all-or-nothing claims
// the binder needs.
package dataformat

import (
	"fmt"

	"github.com/soar/xidishim/profile"
	"github.com/soar/xidishim/xinput"
)

// KindMask selects which virtual kind an ObjectRequest targets. Exactly one
// bit must be set; anything else is ambiguous/unknown and fails the bind.
type KindMask uint8

const (
	MaskAxis   KindMask = 1 << 0
	MaskButton KindMask = 1 << 1
	MaskPOV    KindMask = 1 << 2
)

// AnyInstance requests "the next free instance of this kind/identity"
// rather than a specific index.
const AnyInstance = -1

// ObjectRequest describes one slot the caller wants bound into their data
// format.
type ObjectRequest struct {
	Kind KindMask
	// HasIdentity selects identity-filtered lookup (an axis semantic GUID,
	// or the canonical button/POV GUID). When false, Identity is ignored.
	HasIdentity bool
	Identity    xinput.AxisIdentity
	// Instance is a specific 0-based index, or AnyInstance.
	Instance int
	// ByteOffset is where this object's value is written in the packet.
	ByteOffset uint32
}

// Binding is the bound result of SetDataFormat: virtual object ↔ byte
// offset maps, plus the reserved-but-unfilled offsets per kind.
type Binding struct {
	PacketSize     uint32
	vidToOffset    map[xinput.VId]uint32
	offsetToVid    map[uint32]xinput.VId
	UnusedOffsets  [3][]uint32 // indexed by xinput.EVKind
}

// OffsetOf returns the byte offset bound to vid, if any.
func (b *Binding) OffsetOf(vid xinput.VId) (uint32, bool) {
	off, ok := b.vidToOffset[vid]
	return off, ok
}

// VidAt returns the virtual object bound at offset, if any.
func (b *Binding) VidAt(offset uint32) (xinput.VId, bool) {
	vid, ok := b.offsetToVid[offset]
	return vid, ok
}

func sizeOf(k xinput.EVKind) uint32 {
	switch k {
	case xinput.KindAxis:
		return xinput.AxisSize
	case xinput.KindPOV:
		return xinput.POVSize
	case xinput.KindButton:
		return xinput.ButtonSize
	default:
		return 0
	}
}

func resolveKind(m KindMask) (xinput.EVKind, error) {
	switch m {
	case MaskAxis:
		return xinput.KindAxis, nil
	case MaskButton:
		return xinput.KindButton, nil
	case MaskPOV:
		return xinput.KindPOV, nil
	default:
		return 0, fmt.Errorf("dataformat: ambiguous or unknown kind mask %#x: %w", m, xinput.ErrInvalidParam)
	}
}

type builder struct {
	prof        *profile.Profile
	packetSize  uint32
	offsetUsed  []bool
	kindUsed    [3][]bool // per kind, per index
	nextFree    [3]int
	vidToOffset map[xinput.VId]uint32
	offsetToVid map[uint32]xinput.VId
	unused      [3][]uint32
}

// Bind runs the binding algorithm against prof. Failure is
// all-or-nothing: on any invalid parameter the caller's previously
// installed binding (if any) is left untouched, because Bind never
// mutates anything outside the Binding it returns.
func Bind(prof *profile.Profile, requests []ObjectRequest, packetSize uint32) (*Binding, error) {
	if packetSize == 0 || packetSize%4 != 0 || packetSize > xinput.MaxPacket {
		return nil, fmt.Errorf("dataformat: packet size %d: %w", packetSize, xinput.ErrInvalidParam)
	}

	b := &builder{
		prof:        prof,
		packetSize:  packetSize,
		offsetUsed:  make([]bool, packetSize),
		vidToOffset: make(map[xinput.VId]uint32),
		offsetToVid: make(map[uint32]xinput.VId),
	}
	for k := xinput.EVKind(0); k < 3; k++ {
		b.kindUsed[k] = make([]bool, prof.CountOf(k))
	}

	for _, req := range requests {
		if err := b.bindOne(req); err != nil {
			return nil, err
		}
	}

	return &Binding{
		PacketSize:    packetSize,
		vidToOffset:   b.vidToOffset,
		offsetToVid:   b.offsetToVid,
		UnusedOffsets: b.unused,
	}, nil
}

func (b *builder) claim(offset uint32, size uint32) error {
	if offset+size > b.packetSize {
		return fmt.Errorf("dataformat: offset %d size %d exceeds packet: %w", offset, size, xinput.ErrInvalidParam)
	}
	for o := offset; o < offset+size; o++ {
		if b.offsetUsed[o] {
			return fmt.Errorf("dataformat: offset %d already claimed: %w", offset, xinput.ErrInvalidParam)
		}
	}
	for o := offset; o < offset+size; o++ {
		b.offsetUsed[o] = true
	}
	return nil
}

// advanceNextFree moves the per-kind next-free cursor past any index
// already marked used.
func (b *builder) advanceNextFree(k xinput.EVKind) {
	used := b.kindUsed[k]
	for b.nextFree[k] < len(used) && used[b.nextFree[k]] {
		b.nextFree[k]++
	}
}

func (b *builder) bindOne(req ObjectRequest) error {
	kind, err := resolveKind(req.Kind)
	if err != nil {
		return err
	}
	if err := b.claim(req.ByteOffset, sizeOf(kind)); err != nil {
		return err
	}

	switch kind {
	case xinput.KindAxis:
		return b.bindAxis(req)
	case xinput.KindButton:
		return b.bindButtonOrPOV(req, xinput.KindButton)
	case xinput.KindPOV:
		return b.bindButtonOrPOV(req, xinput.KindPOV)
	default:
		return fmt.Errorf("dataformat: %w", xinput.ErrGeneric)
	}
}

func (b *builder) bindAxis(req ObjectRequest) error {
	k := xinput.KindAxis
	if req.HasIdentity {
		return b.bindByFinder(req, k, func(nth int) int {
			return b.prof.AxisIndexByIdentity(req.Identity, nth)
		})
	}
	return b.bindByFreeList(req, k)
}

// bindButtonOrPOV handles buttons and POVs, which only accept the
// canonical identity for their kind or none at all: an axis semantic
// identity (AxisX, AxisZ, ...) has no business on a button/POV request.
// xinput.AxisUnknown stands in for "the canonical button/POV GUID" since
// neither kind carries axis semantics of its own.
func (b *builder) bindButtonOrPOV(req ObjectRequest, k xinput.EVKind) error {
	if req.HasIdentity && req.Identity != xinput.AxisUnknown {
		return fmt.Errorf("dataformat: %s request carries axis identity %v: %w", k, req.Identity, xinput.ErrInvalidParam)
	}
	return b.bindByFreeList(req, k)
}

// bindByFreeList binds req against the kind's dense "next free" index
// sequence (used when there is no identity filter, or for button/POV).
func (b *builder) bindByFreeList(req ObjectRequest, k xinput.EVKind) error {
	used := b.kindUsed[k]
	count := len(used)

	if req.Instance == AnyInstance {
		b.advanceNextFree(k)
		idx := b.nextFree[k]
		if idx >= count {
			b.unused[k] = append(b.unused[k], req.ByteOffset)
			return nil
		}
		return b.commit(req, xinput.VId{Kind: k, Index: idx})
	}

	idx := req.Instance
	if idx < 0 || idx >= count || used[idx] {
		return fmt.Errorf("dataformat: specific %s instance %d unavailable: %w", k, idx, xinput.ErrInvalidParam)
	}
	return b.commit(req, xinput.VId{Kind: k, Index: idx})
}

// bindByFinder binds req using an identity-aware finder (used for
// identity-filtered axis lookups). finder(nth) returns the nth axis index
// with the requested identity, or xinput.InvalidIndex.
func (b *builder) bindByFinder(req ObjectRequest, k xinput.EVKind, finder func(nth int) int) error {
	used := b.kindUsed[k]

	if req.Instance == AnyInstance {
		seen := 0
		for {
			idx := finder(seen)
			if idx == xinput.InvalidIndex {
				b.unused[k] = append(b.unused[k], req.ByteOffset)
				return nil
			}
			if !used[idx] {
				return b.commit(req, xinput.VId{Kind: k, Index: idx})
			}
			seen++
		}
	}

	idx := finder(req.Instance)
	if idx == xinput.InvalidIndex || idx < 0 || idx >= len(used) || used[idx] {
		return fmt.Errorf("dataformat: specific identity instance %d unavailable: %w", req.Instance, xinput.ErrInvalidParam)
	}
	return b.commit(req, xinput.VId{Kind: k, Index: idx})
}

func (b *builder) commit(req ObjectRequest, vid xinput.VId) error {
	b.kindUsed[vid.Kind][vid.Index] = true
	b.vidToOffset[vid] = req.ByteOffset
	b.offsetToVid[req.ByteOffset] = vid
	b.advanceNextFree(vid.Kind)
	return nil
}
