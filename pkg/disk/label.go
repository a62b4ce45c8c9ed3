package disk

import (
	"fmt"
	"strings"
)

// LabelKind distinguishes the supported on-disk label families.
type LabelKind int

const (
	LabelDOS LabelKind = iota
	LabelGPT
)

// Label is a driver for one disk-label type. It resolves partition type
// tokens and knows enough about the label family for serialization and
// layout decisions.
type Label interface {
	// Name is the label name as used in a script header, e.g. "gpt".
	Name() string

	Kind() LabelKind

	// ParsePartType resolves a type token to a type descriptor. The flags
	// control which token spellings are accepted.
	ParsePartType(token string, flags ParseFlags) (*PartType, error)

	// DefaultPartType is the type assigned when a script leaves the type
	// field defaulted.
	DefaultPartType() *PartType

	// MaxPartitions is the largest entry count the label supports.
	MaxPartitions() uint64
}

var labels = map[string]Label{
	"dos": &dosLabel{},
	"mbr": &dosLabel{}, // accepted alias for dos
	"gpt": &gptLabel{},
}

// LookupLabel resolves a label name to its driver.
func LookupLabel(name string) (Label, bool) {
	lb, ok := labels[strings.ToLower(name)]
	return lb, ok
}

// resolveFromCatalogue implements the shared token matching order used by
// both label drivers: shortcut, alias, name, deprecated spellings, and the
// native identifier either first or last depending on the flags.
func resolveFromCatalogue(entries []typeEntry, token string, flags ParseFlags,
	parseData func(string) (*PartType, error)) (*PartType, error) {

	if flags&ParseData != 0 && flags&ParseDataLast == 0 {
		if pt, err := parseData(token); err == nil {
			return pt, nil
		}
	}

	for i := range entries {
		e := &entries[i]
		if flags&ParseShortcut != 0 && e.shortcut != "" && token == e.shortcut {
			return e.partType(), nil
		}
		if flags&ParseAlias != 0 {
			for _, a := range e.aliases {
				if strings.EqualFold(token, a) {
					return e.partType(), nil
				}
			}
		}
		if flags&ParseName != 0 && e.name != "" && strings.EqualFold(token, e.name) {
			return e.partType(), nil
		}
		if flags&ParseDeprecated != 0 {
			for _, d := range e.deprecated {
				if strings.EqualFold(token, d) {
					return e.partType(), nil
				}
			}
		}
	}

	if flags&ParseData != 0 && flags&ParseDataLast != 0 {
		if pt, err := parseData(token); err == nil {
			return pt, nil
		}
	}

	return nil, fmt.Errorf("unknown partition type %q", token)
}
