package disk

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	BIOSBootPartitionDOSID = "ef"
	PRepPartitionDOSID     = "41"
)

var dosTypes = []typeEntry{
	{id: "83", name: "Linux", shortcut: "L", aliases: []string{"linux"}},
	{id: "82", name: "Linux swap / Solaris", shortcut: "S", aliases: []string{"swap"}, deprecated: []string{"linux-swap"}},
	{id: "05", name: "Extended", shortcut: "E", aliases: []string{"extended"}, deprecated: []string{"dos-ext"}},
	{id: "85", name: "Linux extended", shortcut: "X"},
	{id: "ef", name: "EFI (FAT-12/16/32)", shortcut: "U", aliases: []string{"uefi", "esp"}},
	{id: "fd", name: "Linux raid autodetect", shortcut: "R", aliases: []string{"raid"}},
	{id: "8e", name: "Linux LVM", shortcut: "V", aliases: []string{"lvm"}},
	{id: "0c", name: "W95 FAT32 (LBA)"},
	{id: "07", name: "HPFS/NTFS/exFAT"},
	{id: "41", name: "PPC PReP Boot"},
	{id: "ee", name: "GPT"},
}

type dosLabel struct{}

func (l *dosLabel) Name() string { return "dos" }

func (l *dosLabel) Kind() LabelKind { return LabelDOS }

func (l *dosLabel) DefaultPartType() *PartType {
	return &PartType{ID: "83", Name: "Linux"}
}

// MaxPartitions only counts primary entries; logical partitions are out of
// scope for the scripting engine.
func (l *dosLabel) MaxPartitions() uint64 { return 4 }

func (l *dosLabel) ParsePartType(token string, flags ParseFlags) (*PartType, error) {
	return resolveFromCatalogue(dosTypes, token, flags, parseTypeCode)
}

// parseTypeCode accepts a one or two digit hex MBR type code, with or
// without a 0x prefix, normalized to two lowercase digits.
func parseTypeCode(token string) (*PartType, error) {
	t := strings.TrimPrefix(strings.ToLower(token), "0x")
	code, err := strconv.ParseUint(t, 16, 8)
	if err != nil {
		return nil, fmt.Errorf("invalid type code %q: %w", token, err)
	}
	canonical := fmt.Sprintf("%02x", code)
	for i := range dosTypes {
		if dosTypes[i].id == canonical {
			return dosTypes[i].partType(), nil
		}
	}
	return &PartType{ID: canonical}, nil
}
