// Package axisprops holds the mutable per-axis {range, deadzone,
// saturation} tuple, and the transform that turns a raw physical reading
// into a filtered output value. The bulk setters are atomic — if any
// value is out of range, no change is made — and defaults are applied
// lazily on first touch. It generalises a handful of free-standing
// normalize/deadzone functions into a stateful, validated table.
package axisprops

import (
	"fmt"
	"sync"

	"github.com/soar/xidishim/xinput"
)

// Props is the mutable tuple for one virtual axis.
type Props struct {
	RangeMin, RangeMax int32
	Deadzone           uint32
	Saturation         uint32
}

func defaultProps() Props {
	return Props{
		RangeMin:   xinput.StickRawMin,
		RangeMax:   xinput.StickRawMax,
		Deadzone:   0,
		Saturation: xinput.SatMax,
	}
}

// Table is a lazily-defaulted, mutex-guarded table of Props, one per axis.
type Table struct {
	mu    sync.Mutex
	count int
	props []Props
	init  []bool
}

// New builds a Table sized for count axes. Entries are defaulted lazily on
// first read or write.
func New(count int) *Table {
	return &Table{
		count: count,
		props: make([]Props, count),
		init:  make([]bool, count),
	}
}

func (t *Table) ensureInitLocked(i int) {
	if !t.init[i] {
		t.props[i] = defaultProps()
		t.init[i] = true
	}
}

func (t *Table) valid(i int) bool { return i >= 0 && i < t.count }

// Get returns a copy of axis i's properties, defaulting it first if this
// is its first touch.
func (t *Table) Get(i int) (Props, error) {
	if !t.valid(i) {
		return Props{}, fmt.Errorf("axisprops: axis %d: %w", i, xinput.ErrObjectNotFound)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensureInitLocked(i)
	return t.props[i], nil
}

// SetRange sets axis i's range. Succeeds only if lo < hi.
func (t *Table) SetRange(i int, lo, hi int32) error {
	if !t.valid(i) {
		return fmt.Errorf("axisprops: axis %d: %w", i, xinput.ErrObjectNotFound)
	}
	if lo >= hi {
		return fmt.Errorf("axisprops: range [%d,%d]: %w", lo, hi, xinput.ErrInvalidParam)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensureInitLocked(i)
	t.props[i].RangeMin = lo
	t.props[i].RangeMax = hi
	return nil
}

// SetDeadzone sets axis i's deadzone. Succeeds only if within bounds.
func (t *Table) SetDeadzone(i int, d uint32) error {
	if !t.valid(i) {
		return fmt.Errorf("axisprops: axis %d: %w", i, xinput.ErrObjectNotFound)
	}
	if d < xinput.DZMin || d > xinput.DZMax {
		return fmt.Errorf("axisprops: deadzone %d: %w", d, xinput.ErrInvalidParam)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensureInitLocked(i)
	t.props[i].Deadzone = d
	return nil
}

// SetSaturation sets axis i's saturation. Succeeds only if within bounds.
func (t *Table) SetSaturation(i int, s uint32) error {
	if !t.valid(i) {
		return fmt.Errorf("axisprops: axis %d: %w", i, xinput.ErrObjectNotFound)
	}
	if s < xinput.SatMin || s > xinput.SatMax {
		return fmt.Errorf("axisprops: saturation %d: %w", s, xinput.ErrInvalidParam)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensureInitLocked(i)
	t.props[i].Saturation = s
	return nil
}

// SetRangeAll applies lo/hi to every axis atomically: if the value is
// invalid, no axis is touched.
func (t *Table) SetRangeAll(lo, hi int32) error {
	if lo >= hi {
		return fmt.Errorf("axisprops: range [%d,%d]: %w", lo, hi, xinput.ErrInvalidParam)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := 0; i < t.count; i++ {
		t.ensureInitLocked(i)
		t.props[i].RangeMin = lo
		t.props[i].RangeMax = hi
	}
	return nil
}

// SetDeadzoneAll applies d to every axis atomically.
func (t *Table) SetDeadzoneAll(d uint32) error {
	if d < xinput.DZMin || d > xinput.DZMax {
		return fmt.Errorf("axisprops: deadzone %d: %w", d, xinput.ErrInvalidParam)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := 0; i < t.count; i++ {
		t.ensureInitLocked(i)
		t.props[i].Deadzone = d
	}
	return nil
}

// SetSaturationAll applies s to every axis atomically.
func (t *Table) SetSaturationAll(s uint32) error {
	if s < xinput.SatMin || s > xinput.SatMax {
		return fmt.Errorf("axisprops: saturation %d: %w", s, xinput.ErrInvalidParam)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := 0; i < t.count; i++ {
		t.ensureInitLocked(i)
		t.props[i].Saturation = s
	}
	return nil
}

// Apply runs the deadzone/saturation/range transform: raw is the
// physical reading, rawHalf is the physical source's half-range (stick:
// 32767, trigger: 255), P is the axis's current properties.
func Apply(raw int32, rawHalf int32, p Props) int32 {
	mid := (p.RangeMin + p.RangeMax) / 2
	half := p.RangeMax - mid
	d := raw - xinput.Neutral
	if d == 0 {
		return mid
	}

	absD := d
	if absD < 0 {
		absD = -absD
	}
	pct := absD * int32(xinput.SatMax) / rawHalf

	switch {
	case pct <= int32(p.Deadzone):
		pct = 0
	case pct >= int32(p.Saturation):
		pct = int32(xinput.SatMax)
	default:
		pct = xinput.Remap(pct, int32(p.Deadzone), int32(p.Saturation), 0, int32(xinput.SatMax))
	}

	sign := int32(1)
	if d < 0 {
		sign = -1
	}
	return mid + sign*half*pct/int32(xinput.SatMax)
}
