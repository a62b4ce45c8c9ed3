package disk

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Context represents the device a script is applied to. It carries the
// device geometry, the active label driver and the resulting on-disk table.
//
// A Context is not safe for concurrent use; callers needing concurrent
// access must serialize externally.
type Context struct {
	// DevPath is the device node, e.g. /dev/sda. Informational only.
	DevPath string

	// SectorSize is the logical sector size in bytes.
	SectorSize uint64

	// TotalSectors is the device size in sectors.
	TotalSectors uint64

	// GrainSize is the allocation granularity in bytes.
	GrainSize uint64

	// FirstLBA and LastLBA bound the usable area. Computed by CreateLabel
	// when left zero.
	FirstLBA uint64
	LastLBA  uint64

	// LabelID is the disk label identifier (GPT disk GUID or DOS disk id).
	LabelID string

	label      Label
	entryCount uint64
	table      *Table

	userGrain      uint64
	userSectorSize uint64

	script any
}

// NewContext returns a context for a device with the given size in bytes.
// Sector size and grain fall back to the usual defaults.
func NewContext(devPath string, sizeBytes uint64) *Context {
	return &Context{
		DevPath:      devPath,
		SectorSize:   DefaultSectorSize,
		TotalSectors: sizeBytes / DefaultSectorSize,
		GrainSize:    DefaultGrainBytes,
	}
}

// Label returns the active label driver, nil when no label was created.
func (c *Context) Label() Label {
	return c.label
}

// GetLabel resolves a label driver by name. An empty name returns the
// context's current label.
func (c *Context) GetLabel(name string) (Label, bool) {
	if name == "" {
		return c.label, c.label != nil
	}
	return LookupLabel(name)
}

// Table returns the on-disk table built by ApplyTable. Never nil.
func (c *Context) Table() *Table {
	if c.table == nil {
		c.table = NewTable()
	}
	return c.table
}

// EntryCount returns the size of the label's entry array.
func (c *Context) EntryCount() uint64 {
	if c.entryCount != 0 {
		return c.entryCount
	}
	if c.label != nil {
		return c.label.MaxPartitions()
	}
	return 0
}

// Script returns the script currently bound to the context, if any. The
// context treats the binding as opaque; label drivers may use it to read
// script headers.
func (c *Context) Script() any {
	return c.script
}

// SetScript binds a script to the context, replacing any previous binding.
func (c *Context) SetScript(s any) {
	c.script = s
}

// SaveUserGrain records a user-requested allocation granularity that takes
// effect when device properties are applied.
func (c *Context) SaveUserGrain(grain uint64) error {
	if grain == 0 || grain%512 != 0 {
		return fmt.Errorf("grain %d is not a multiple of 512", grain)
	}
	c.userGrain = grain
	return nil
}

// SaveUserSectorSize records a user-requested sector size override.
func (c *Context) SaveUserSectorSize(size uint64) error {
	switch size {
	case 512, 1024, 2048, 4096:
		c.userSectorSize = size
		return nil
	}
	return fmt.Errorf("unsupported sector size %d", size)
}

// HasUserDeviceProperties reports whether overrides are pending.
func (c *Context) HasUserDeviceProperties() bool {
	return c.userGrain != 0 || c.userSectorSize != 0
}

// ApplyUserDeviceProperties pushes pending geometry overrides into the
// context.
func (c *Context) ApplyUserDeviceProperties() {
	if c.userSectorSize != 0 {
		sizeBytes := c.TotalSectors * c.SectorSize
		c.SectorSize = c.userSectorSize
		c.TotalSectors = sizeBytes / c.SectorSize
		c.userSectorSize = 0
	}
	if c.userGrain != 0 {
		c.GrainSize = c.userGrain
		c.userGrain = 0
	}
}

// CreateLabel replaces any existing label with a fresh, empty label of the
// named type and computes the usable LBA window for it.
func (c *Context) CreateLabel(name string) error {
	lb, ok := LookupLabel(name)
	if !ok {
		return fmt.Errorf("unknown label type %q", name)
	}
	if c.SectorSize == 0 {
		return fmt.Errorf("cannot create label: sector size unknown")
	}

	c.label = lb
	c.entryCount = 0
	c.Table().Reset()

	grainSectors := c.GrainSize / c.SectorSize
	if grainSectors == 0 {
		grainSectors = 1
	}

	switch lb.Kind() {
	case LabelGPT:
		// Reserve the primary header plus entry array in front and the
		// backup copy at the end.
		meta := 1 + (DefaultGPTEntries*128)/c.SectorSize
		c.FirstLBA = alignUp(1+meta, grainSectors)
		if c.TotalSectors > meta+2 {
			c.LastLBA = c.TotalSectors - meta - 2
		}
	default:
		c.FirstLBA = alignUp(1, grainSectors)
		if c.TotalSectors > 0 {
			c.LastLBA = c.TotalSectors - 1
		}
	}

	logrus.WithFields(logrus.Fields{
		"label":     lb.Name(),
		"first-lba": c.FirstLBA,
		"last-lba":  c.LastLBA,
	}).Debug("created empty disk label")

	return nil
}

// SetGPTEntryCount overrides the size of the GPT entry array.
func (c *Context) SetGPTEntryCount(n uint64) error {
	if c.label == nil || c.label.Kind() != LabelGPT {
		return fmt.Errorf("table-length is only supported on gpt labels")
	}
	if n == 0 || n > 1024 {
		return fmt.Errorf("unsupported GPT entry count %d", n)
	}
	c.entryCount = n
	return nil
}

// ApplyTable inserts every partition of the given table into the context's
// on-disk table, resolving defaulted numbers, starts and sizes against the
// usable area. Explicit values are validated against the label bounds.
func (c *Context) ApplyTable(t *Table) error {
	if c.label == nil {
		return fmt.Errorf("cannot apply table: no label created")
	}

	grainSectors := c.GrainSize / c.SectorSize
	if grainSectors == 0 {
		grainSectors = 1
	}

	next := c.FirstLBA
	used := make(map[uint64]bool, len(t.Partitions))
	for _, existing := range c.Table().Partitions {
		used[existing.Partno] = true
		if end := existing.Start + existing.Size; end > next {
			next = alignUp(end, grainSectors)
		}
	}

	for i, src := range t.Partitions {
		pa := src.Clone()

		if !pa.HasPartno {
			pa.Partno = uint64(i)
			pa.HasPartno = true
		}
		if pa.Partno >= c.label.MaxPartitions() && c.EntryCount() <= pa.Partno {
			return fmt.Errorf("partition %d: number out of range for %s label", pa.Partno+1, c.label.Name())
		}
		if used[pa.Partno] {
			return fmt.Errorf("partition %d already exists", pa.Partno+1)
		}

		if !pa.HasStart {
			pa.Start = next
			pa.HasStart = true
			if pa.Start > c.LastLBA {
				return fmt.Errorf("partition %d: no space left", pa.Partno+1)
			}
		} else if pa.Start < c.FirstLBA || pa.Start > c.LastLBA {
			return fmt.Errorf("partition %d: start %d outside usable range %d-%d",
				pa.Partno+1, pa.Start, c.FirstLBA, c.LastLBA)
		}

		// compare sizes rather than end sectors so a huge explicit size
		// cannot wrap around the end-of-range check
		avail := c.LastLBA - pa.Start + 1
		if !pa.HasSize {
			// Defaulted size fills the remaining usable area; the
			// enlarge hint asks for the same thing explicitly.
			pa.Size = avail
			pa.HasSize = true
		} else if pa.Size > avail {
			return fmt.Errorf("partition %d: size %d exceeds the %d usable sectors at %d",
				pa.Partno+1, pa.Size, avail, pa.Start)
		}

		if pa.Type == nil {
			pa.Type = c.label.DefaultPartType()
		}

		c.Table().AddPartition(pa)
		used[pa.Partno] = true
		next = alignUp(pa.Start+pa.Size, grainSectors)

		logrus.WithFields(logrus.Fields{
			"partno": pa.Partno + 1,
			"start":  pa.Start,
			"size":   pa.Size,
			"type":   pa.Type.ID,
		}).Debug("partition applied")
	}

	return nil
}

// alignUp aligns n to the next multiple of grain if not already aligned.
func alignUp(n, grain uint64) uint64 {
	if n%grain == 0 {
		return n
	}
	return ((n + grain) / grain) * grain
}
