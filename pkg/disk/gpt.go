package disk

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	BIOSBootPartitionGUID = "21686148-6449-6E6F-744E-656564454649"

	FilesystemDataGUID = "0FC63DAF-8483-4772-8E79-3D69D8477DE4"

	EFISystemPartitionGUID = "C12A7328-F81F-11D2-BA4B-00A0C93EC93B"

	SwapPartitionGUID = "0657FD6D-A4AB-43C4-84E5-0933C84B4F4F"

	HomePartitionGUID = "933AC7E1-2EB4-4F13-B844-0E14E2AEF915"

	RaidPartitionGUID = "A19D880F-05FC-4D3B-A006-743F0F84911E"

	LVMPartitionGUID = "E6D6D379-F507-44C2-A23C-238F2A3DF928"

	ExtendedBootPartitionGUID = "BC13C2FF-59E6-4262-A352-B275FD6F7172"

	PRePartitionGUID = "9E1A2D38-C612-4316-AA26-8B49521E5A8B"
)

// gptTypes is the driver's built-in catalogue. Single letter shortcuts
// follow the sfdisk convention.
var gptTypes = []typeEntry{
	{id: FilesystemDataGUID, name: "Linux filesystem", shortcut: "L", aliases: []string{"linux"}},
	{id: SwapPartitionGUID, name: "Linux swap", shortcut: "S", aliases: []string{"swap"}, deprecated: []string{"linux-swap"}},
	{id: HomePartitionGUID, name: "Linux home", shortcut: "H", aliases: []string{"home"}},
	{id: EFISystemPartitionGUID, name: "EFI System", shortcut: "U", aliases: []string{"uefi", "esp"}},
	{id: RaidPartitionGUID, name: "Linux RAID", shortcut: "R", aliases: []string{"raid"}},
	{id: LVMPartitionGUID, name: "Linux LVM", shortcut: "V", aliases: []string{"lvm"}},
	{id: ExtendedBootPartitionGUID, name: "Linux extended boot", shortcut: "X"},
	{id: BIOSBootPartitionGUID, name: "BIOS boot"},
	{id: PRePartitionGUID, name: "PowerPC PReP boot"},
}

type gptLabel struct{}

func (l *gptLabel) Name() string { return "gpt" }

func (l *gptLabel) Kind() LabelKind { return LabelGPT }

func (l *gptLabel) DefaultPartType() *PartType {
	return &PartType{ID: FilesystemDataGUID, Name: "Linux filesystem"}
}

func (l *gptLabel) MaxPartitions() uint64 { return DefaultGPTEntries }

func (l *gptLabel) ParsePartType(token string, flags ParseFlags) (*PartType, error) {
	return resolveFromCatalogue(gptTypes, token, flags, parseTypeGUID)
}

// parseTypeGUID accepts any valid GUID as a type identifier, normalizing it
// to the canonical uppercase form. Known GUIDs get their name attached.
func parseTypeGUID(token string) (*PartType, error) {
	id, err := uuid.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("invalid type GUID %q: %w", token, err)
	}
	canonical := strings.ToUpper(id.String())
	for i := range gptTypes {
		if gptTypes[i].id == canonical {
			return gptTypes[i].partType(), nil
		}
	}
	return &PartType{ID: canonical}, nil
}
