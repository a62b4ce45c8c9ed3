package disk_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osbuild/fdisk-script/pkg/disk"
)

const tenGiB = 10 * 1024 * 1024 * 1024

func TestCreateLabelGPT(t *testing.T) {
	dev := disk.NewContext("/dev/sda", tenGiB)
	require.NoError(t, dev.CreateLabel("gpt"))

	require.NotNil(t, dev.Label())
	assert.Equal(t, "gpt", dev.Label().Name())

	// 33 metadata sectors in front, grain-aligned; 35 reserved at the end
	assert.Equal(t, uint64(2048), dev.FirstLBA)
	assert.Equal(t, dev.TotalSectors-35, dev.LastLBA)
	assert.Equal(t, disk.DefaultGPTEntries, dev.EntryCount())
}

func TestCreateLabelDOS(t *testing.T) {
	dev := disk.NewContext("/dev/sda", tenGiB)
	require.NoError(t, dev.CreateLabel("dos"))

	assert.Equal(t, uint64(2048), dev.FirstLBA)
	assert.Equal(t, dev.TotalSectors-1, dev.LastLBA)
	assert.Equal(t, uint64(4), dev.EntryCount())
}

func TestCreateLabelUnknown(t *testing.T) {
	dev := disk.NewContext("/dev/sda", tenGiB)
	assert.Error(t, dev.CreateLabel("atari"))
	assert.Nil(t, dev.Label())
}

func TestCreateLabelResetsTable(t *testing.T) {
	dev := disk.NewContext("/dev/sda", tenGiB)
	require.NoError(t, dev.CreateLabel("gpt"))

	pa := disk.NewPartition()
	pa.HasStart, pa.Start = true, dev.FirstLBA
	pa.HasSize, pa.Size = true, 100
	t1 := disk.NewTable()
	t1.AddPartition(pa)
	require.NoError(t, dev.ApplyTable(t1))
	require.Len(t, dev.Table().Partitions, 1)

	require.NoError(t, dev.CreateLabel("gpt"))
	assert.True(t, dev.Table().IsEmpty())
}

func TestApplyTableDefaults(t *testing.T) {
	dev := disk.NewContext("/dev/sda", tenGiB)
	require.NoError(t, dev.CreateLabel("gpt"))

	t1 := disk.NewTable()
	t1.AddPartition(disk.NewPartition())
	require.NoError(t, dev.ApplyTable(t1))

	require.Len(t, dev.Table().Partitions, 1)
	pa := dev.Table().Partitions[0]
	assert.Equal(t, uint64(0), pa.Partno)
	assert.Equal(t, dev.FirstLBA, pa.Start)
	assert.Equal(t, dev.LastLBA-dev.FirstLBA+1, pa.Size)
	require.NotNil(t, pa.Type)
	assert.Equal(t, disk.FilesystemDataGUID, pa.Type.ID)

	// the source record is untouched, the applied copy is a clone
	assert.False(t, t1.Partitions[0].HasStart)
	assert.Nil(t, t1.Partitions[0].Type)
}

func TestApplyTableErrors(t *testing.T) {
	newDev := func() *disk.Context {
		dev := disk.NewContext("/dev/sda", tenGiB)
		require.NoError(t, dev.CreateLabel("gpt"))
		return dev
	}
	part := func(mod func(*disk.Partition)) *disk.Table {
		pa := disk.NewPartition()
		mod(pa)
		t1 := disk.NewTable()
		t1.AddPartition(pa)
		return t1
	}

	dev := newDev()
	err := dev.ApplyTable(part(func(pa *disk.Partition) {
		pa.HasStart, pa.Start = true, 100 // below first usable sector
	}))
	assert.Error(t, err)
	assert.True(t, dev.Table().IsEmpty())

	err = dev.ApplyTable(part(func(pa *disk.Partition) {
		pa.HasStart, pa.Start = true, dev.FirstLBA
		pa.HasSize, pa.Size = true, dev.LastLBA // runs past the end
	}))
	assert.Error(t, err)

	err = dev.ApplyTable(part(func(pa *disk.Partition) {
		pa.HasPartno, pa.Partno = true, 500 // beyond the entry array
	}))
	assert.Error(t, err)

	// applying the same number twice
	require.NoError(t, dev.ApplyTable(part(func(pa *disk.Partition) {
		pa.HasPartno, pa.Partno = true, 0
		pa.HasSize, pa.Size = true, 2048
	})))
	err = dev.ApplyTable(part(func(pa *disk.Partition) {
		pa.HasPartno, pa.Partno = true, 0
	}))
	assert.Error(t, err)

	// no label created at all
	fresh := disk.NewContext("/dev/sda", tenGiB)
	assert.Error(t, fresh.ApplyTable(part(func(pa *disk.Partition) {})))
}

func TestApplyTableSizeOverflow(t *testing.T) {
	dev := disk.NewContext("/dev/sda", tenGiB)
	require.NoError(t, dev.CreateLabel("gpt"))

	// a size near 2^64 must not wrap the end sector past the range check
	t1 := disk.NewTable()
	pa := disk.NewPartition()
	pa.HasStart, pa.Start = true, 2048
	pa.HasSize, pa.Size = true, math.MaxUint64
	t1.AddPartition(pa)

	assert.Error(t, dev.ApplyTable(t1))
	assert.True(t, dev.Table().IsEmpty())

	t1 = disk.NewTable()
	pa = disk.NewPartition()
	pa.HasStart, pa.Start = true, 2048
	pa.HasSize, pa.Size = true, math.MaxUint64-2040 // start+size == 8 exactly
	t1.AddPartition(pa)

	assert.Error(t, dev.ApplyTable(t1))
	assert.True(t, dev.Table().IsEmpty())
}

func TestApplyTableDOSNumberRange(t *testing.T) {
	dev := disk.NewContext("/dev/sda", tenGiB)
	require.NoError(t, dev.CreateLabel("dos"))

	t1 := disk.NewTable()
	pa := disk.NewPartition()
	pa.HasPartno, pa.Partno = true, 4 // dos has entries 0..3
	t1.AddPartition(pa)
	assert.Error(t, dev.ApplyTable(t1))
}

func TestSetGPTEntryCount(t *testing.T) {
	dev := disk.NewContext("/dev/sda", tenGiB)

	require.NoError(t, dev.CreateLabel("gpt"))
	require.NoError(t, dev.SetGPTEntryCount(256))
	assert.Equal(t, uint64(256), dev.EntryCount())

	assert.Error(t, dev.SetGPTEntryCount(0))
	assert.Error(t, dev.SetGPTEntryCount(2000))

	require.NoError(t, dev.CreateLabel("dos"))
	assert.Error(t, dev.SetGPTEntryCount(256))
}

func TestUserDeviceProperties(t *testing.T) {
	dev := disk.NewContext("/dev/sda", tenGiB)
	assert.False(t, dev.HasUserDeviceProperties())

	assert.Error(t, dev.SaveUserGrain(1000)) // not a multiple of 512
	assert.Error(t, dev.SaveUserSectorSize(700))

	require.NoError(t, dev.SaveUserGrain(4*1024*1024))
	require.NoError(t, dev.SaveUserSectorSize(4096))
	assert.True(t, dev.HasUserDeviceProperties())

	dev.ApplyUserDeviceProperties()
	assert.Equal(t, uint64(4096), dev.SectorSize)
	assert.Equal(t, uint64(tenGiB/4096), dev.TotalSectors)
	assert.Equal(t, uint64(4*1024*1024), dev.GrainSize)
	assert.False(t, dev.HasUserDeviceProperties())
}

func TestGenerateUUIDsGPT(t *testing.T) {
	dev := disk.NewContext("/dev/sda", tenGiB)
	require.NoError(t, dev.CreateLabel("gpt"))

	t1 := disk.NewTable()
	t1.AddPartition(disk.NewPartition())
	require.NoError(t, dev.ApplyTable(t1))

	rng := rand.New(rand.NewSource(1))
	dev.GenerateUUIDs(rng)

	id, err := uuid.Parse(dev.LabelID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), id.Version())

	pa := dev.Table().Partitions[0]
	_, err = uuid.Parse(pa.UUID)
	require.NoError(t, err)

	// existing identifiers are kept
	before := dev.LabelID
	dev.GenerateUUIDs(rng)
	assert.Equal(t, before, dev.LabelID)
}

func TestGenerateUUIDsDOS(t *testing.T) {
	dev := disk.NewContext("/dev/sda", tenGiB)
	require.NoError(t, dev.CreateLabel("dos"))

	rng := rand.New(rand.NewSource(1))
	dev.GenerateUUIDs(rng)

	assert.Regexp(t, `^0x[0-9a-f]{8}$`, dev.LabelID)
}

func TestPartName(t *testing.T) {
	assert.Equal(t, "/dev/sda1", disk.PartName("/dev/sda", 1))
	assert.Equal(t, "/dev/vdb3", disk.PartName("/dev/vdb", 3))
	assert.Equal(t, "/dev/nvme0n1p2", disk.PartName("/dev/nvme0n1", 2))
	assert.Equal(t, "/dev/loop0p1", disk.PartName("/dev/loop0", 1))
	assert.Equal(t, "2", disk.PartName("", 2))
}
