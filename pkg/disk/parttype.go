package disk

// PartType is a partition type resolved by a label driver.
type PartType struct {
	// ID is the canonical identifier: an uppercase GUID for gpt, a hex
	// code (without 0x prefix) for dos.
	ID string

	// Name is the human readable type name, empty for types the driver
	// does not know by name.
	Name string
}

// ParseFlags select which spellings of a partition type token a label
// driver accepts.
type ParseFlags uint

const (
	// ParseData accepts the native identifier: a GUID for gpt, a hex code
	// for dos.
	ParseData ParseFlags = 1 << iota
	// ParseDataLast tries the native identifier after all other
	// spellings.
	ParseDataLast
	// ParseShortcut accepts the single-letter sfdisk shortcuts (L, S, U,
	// ...).
	ParseShortcut
	// ParseAlias accepts the lowercase alias names (linux, swap, uefi,
	// ...).
	ParseAlias
	// ParseName matches the human readable type name.
	ParseName
	// ParseDeprecated additionally accepts spellings kept for backward
	// compatibility only.
	ParseDeprecated
)

// ParseFlagsDefault is the flag set the scripting engine uses.
const ParseFlagsDefault = ParseData | ParseDataLast | ParseShortcut | ParseAlias | ParseName | ParseDeprecated

// typeEntry is one row of a label driver's built-in type catalogue.
type typeEntry struct {
	id         string
	name       string
	shortcut   string
	aliases    []string
	deprecated []string
}

func (e *typeEntry) partType() *PartType {
	return &PartType{ID: e.id, Name: e.name}
}
