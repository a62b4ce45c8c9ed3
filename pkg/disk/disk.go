// Package disk contains the data-types a partition script operates on.
//
// Table and Partition describe a partition layout independently of any
// on-disk label. Context represents the device being partitioned and owns
// the label driver (gpt or dos) that resolves partition type tokens and
// validates the layout when a table is applied.
package disk

import (
	"strconv"
)

const (
	// DefaultSectorSize is assumed when a device does not report one.
	DefaultSectorSize = uint64(512)

	// DefaultGrainBytes is the default allocation granularity (1 MiB).
	DefaultGrainBytes = uint64(2048 * 512)

	// DefaultGPTEntries is the regular size of a GPT entry array.
	DefaultGPTEntries = uint64(128)
)

// Table is an ordered collection of partitions. The order is semantically
// significant: positional dump formats default the partition number to the
// position within the table and serializers emit entries in insertion
// order.
//
// A Table is shared by pointer between a script and its callers, mutations
// through any holder are visible to all of them.
type Table struct {
	Partitions []*Partition
}

func NewTable() *Table {
	return &Table{}
}

// AddPartition appends a fully parsed partition to the table.
func (t *Table) AddPartition(p *Partition) {
	t.Partitions = append(t.Partitions, p)
}

func (t *Table) IsEmpty() bool {
	return t == nil || len(t.Partitions) == 0
}

// Reset removes all partitions but keeps the table instance alive so that
// callers holding a reference observe the cleared contents.
func (t *Table) Reset() {
	t.Partitions = t.Partitions[:0]
}

// PartName builds the conventional device node name for the n-th partition
// (1-based) of the given disk device, e.g. /dev/sda + 1 = /dev/sda1 and
// /dev/nvme0n1 + 1 = /dev/nvme0n1p1.
func PartName(devname string, n uint64) string {
	if devname == "" {
		return strconv.FormatUint(n, 10)
	}
	last := devname[len(devname)-1]
	if last >= '0' && last <= '9' {
		return devname + "p" + strconv.FormatUint(n, 10)
	}
	return devname + strconv.FormatUint(n, 10)
}
