package script_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osbuild/fdisk-script/pkg/disk"
	"github.com/osbuild/fdisk-script/pkg/script"
)

func TestApply(t *testing.T) {
	dev := newGiBContext(10)
	s := readString(t, dev, `
label: gpt
label-id: 9AC73002-0EA2-4534-9E55-B48B8FD56DAC

start=2048, size=204800, type=U, bootable
size=2097152, type=S
type=L
`)

	require.NoError(t, s.Apply(dev))

	lb := dev.Label()
	require.NotNil(t, lb)
	assert.Equal(t, "gpt", lb.Name())
	assert.Equal(t, "9AC73002-0EA2-4534-9E55-B48B8FD56DAC", dev.LabelID)

	parts := dev.Table().Partitions
	require.Len(t, parts, 3)

	// explicit values survive
	assert.Equal(t, uint64(2048), parts[0].Start)
	assert.Equal(t, uint64(204800), parts[0].Size)
	assert.True(t, parts[0].Bootable)
	assert.Equal(t, disk.EFISystemPartitionGUID, parts[0].Type.ID)

	// defaulted start continues grain-aligned after the previous partition
	assert.Equal(t, uint64(206848), parts[1].Start)
	assert.Equal(t, uint64(2097152), parts[1].Size)

	// fully defaulted partition fills the rest of the usable area
	assert.Equal(t, uint64(2304000), parts[2].Start)
	assert.Equal(t, dev.LastLBA-parts[2].Start+1, parts[2].Size)
	assert.Equal(t, disk.FilesystemDataGUID, parts[2].Type.ID)

	// numbers default to the table position
	for i, pa := range parts {
		assert.True(t, pa.HasPartno)
		assert.Equal(t, uint64(i), pa.Partno)
	}
}

func TestApplyHugeSizeRejected(t *testing.T) {
	dev := newGiBContext(10)
	s := readString(t, dev, `
label: gpt
2048,18446744073709551615,L
`)

	assert.Error(t, s.Apply(dev))
	assert.True(t, dev.Table().IsEmpty())
}

func TestApplyNoLabelHeader(t *testing.T) {
	dev := newGiBContext(1)
	s := readString(t, dev, "start=2048, size=100\n")

	err := s.Apply(dev)
	assert.ErrorIs(t, err, script.ErrInvalidInput)
	assert.Nil(t, dev.Label())
}

func TestApplyHeaderOverrides(t *testing.T) {
	dev := newGiBContext(10)
	s := readString(t, dev, `
label: gpt
sector-size: 4096
grain: 4194304
table-length: 256
`)

	require.NoError(t, s.Apply(dev))

	assert.Equal(t, uint64(4096), dev.SectorSize)
	assert.Equal(t, uint64(4194304), dev.GrainSize)
	assert.Equal(t, uint64(256), dev.EntryCount())
}

func TestApplyTableLengthNeedsGPT(t *testing.T) {
	dev := newGiBContext(10)
	s := readString(t, dev, `
label: dos
table-length: 256
`)

	err := s.Apply(dev)
	assert.ErrorIs(t, err, script.ErrUnresolvable)
}

func TestApplyRestoresBoundScript(t *testing.T) {
	dev := newGiBContext(10)

	bound := script.New(dev)
	dev.SetScript(bound)

	s := readString(t, dev, "label: gpt\n")
	require.NoError(t, s.Apply(dev))

	// the previously bound script is back, success or not
	assert.Same(t, bound, dev.Script())

	bad := script.New(dev)
	assert.Error(t, bad.Apply(dev)) // no label header
	assert.Same(t, bound, dev.Script())
}

func TestApplyThenReadContext(t *testing.T) {
	dev := newGiBContext(10)
	s := readString(t, dev, `
label: gpt
start=2048, size=204800, type=U
`)
	require.NoError(t, s.Apply(dev))

	dump := script.New(dev)
	require.NoError(t, dump.ReadContext(dev))

	assert.Equal(t, "gpt", dump.Header("label"))
	assert.Equal(t, "sectors", dump.Header("unit"))
	assert.Equal(t, "/dev/sda", dump.Header("device"))
	assert.NotEmpty(t, dump.Header("first-lba"))
	assert.NotEmpty(t, dump.Header("last-lba"))
	assert.Equal(t, "512", dump.Header("sector-size"))
	assert.Equal(t, "", dump.Header("table-length")) // default entry count
	require.Len(t, dump.Table().Partitions, 1)
	assert.Same(t, dev.Table().Partitions[0], dump.Table().Partitions[0])
}
