package disk

// MoveDirection is the sign hint attached to a start value: an explicit
// "-100" start means "place the start up to 100 sectors below the default",
// a bare "+" means "move the start as far up as the free space allows".
type MoveDirection int

const (
	MoveNone MoveDirection = iota
	MoveUp
	MoveDown
)

// ResizeDirection is the sign hint attached to a size value, analogous to
// MoveDirection: "+100M" enlarges relative to the current size, "-100M"
// reduces it, a bare "+" grows the partition into all available space.
type ResizeDirection int

const (
	ResizeNone ResizeDirection = iota
	ResizeEnlarge
	ResizeReduce
)

// Partition is a single partition table entry. The number, start and size
// are tri-state: when the corresponding Has flag is false the field "follows
// default" and is computed by the label driver when the table is applied,
// possibly steered by the move/resize hint.
type Partition struct {
	// Partition number (0-based). Follows the table position when
	// HasPartno is false.
	Partno    uint64
	HasPartno bool

	// Start sector.
	Start     uint64
	HasStart  bool
	MoveStart MoveDirection

	// Size in sectors. SizeExplicit records that the size was given as a
	// bare sector count rather than a byte quantity with a unit suffix;
	// relayout math treats explicit sector counts as exact.
	Size         uint64
	HasSize      bool
	SizeExplicit bool
	Resize       ResizeDirection

	// `Legacy BIOS bootable` (GPT) or `active` (DOS) flag.
	Bootable bool

	// Free-form label-specific attribute string, e.g. "GUID:63".
	Attrs string

	// ID of the partition, dos doesn't use traditional UUIDs, therefore
	// this is just a string.
	UUID string

	// Partition name (GPT only).
	Name string

	// Resolved partition type, nil when the type follows the label
	// driver's default.
	Type *PartType
}

// NewPartition returns a partition whose number, start and size all follow
// defaults. Parsers seed records with this so that omitted fields are
// well-defined.
func NewPartition() *Partition {
	return &Partition{}
}

// Clone returns a deep copy of the partition.
func (p *Partition) Clone() *Partition {
	if p == nil {
		return nil
	}
	clone := *p
	if p.Type != nil {
		t := *p.Type
		clone.Type = &t
	}
	return &clone
}
