package script

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/osbuild/fdisk-script/pkg/datasizes"
	"github.com/osbuild/fdisk-script/pkg/disk"
)

// isHeaderLine reports whether the line matches "name: value": a colon
// that is neither the first character nor the last, and no '=' anywhere on
// the line (key=value grammars may contain colons in a device prefix).
func isHeaderLine(s string) bool {
	i := strings.IndexByte(s, ':')
	if i <= 0 || i+1 >= len(s) || strings.IndexByte(s, '=') >= 0 {
		return false
	}
	return true
}

// parseLineHeader handles "<name>: <value>" lines.
func parseLineHeader(s *Script, line string) error {
	name, value, ok := strings.Cut(line, ":")
	if !ok {
		return fmt.Errorf("%w: malformed header line", ErrInvalidInput)
	}
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)
	if name == "" || value == "" {
		return fmt.Errorf("%w: malformed header line", ErrInvalidInput)
	}

	supported := false
	for _, n := range supportedHeaders {
		if name == n {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("%w: %q", ErrUnsupportedHeader, name)
	}

	// header specific validation
	switch name {
	case "label":
		if s.dev != nil {
			if _, ok := disk.LookupLabel(value); !ok {
				return fmt.Errorf("%w: unknown label name %q", ErrUnresolvable, value)
			}
		}
		s.forceLabel = true
	case "unit":
		if value != "sectors" {
			return fmt.Errorf("%w: unsupported unit %q, only \"sectors\"", ErrInvalidInput, value)
		}
	}

	return s.SetHeader(name, value)
}

// partnoFromDevname extracts a 1-based partition number from a device name
// or plain index, e.g. "/dev/sda2" and "2" both yield 1. Reports false
// when the token carries no trailing digits.
func partnoFromDevname(s string) (uint64, bool) {
	s = strings.TrimRight(s, " \t")
	if s == "" {
		return 0, false
	}

	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	if i == len(s) {
		return 0, false
	}

	num, err := strconv.ParseUint(s[i:], 10, 32)
	if err != nil || num == 0 {
		return 0, false
	}
	return num - 1, true
}

// parseStartValue parses the start field: the default sentinel, a bare "+"
// (follow default, move up), or an optionally signed number with an
// optional byte-unit suffix.
func parseStartValue(s *Script, pa *disk.Partition, cursor *string) error {
	if isDefaultValue(cursor) {
		pa.HasStart = false
		return nil
	}

	tk, ok := nextToken(cursor)
	if !ok {
		return fmt.Errorf("%w: missing start value", ErrInvalidInput)
	}

	if tk == "+" {
		pa.HasStart = false
		pa.MoveStart = disk.MoveUp
		return nil
	}

	sign := skipOptionalSign(&tk)
	num, suffixed, err := datasizes.ParseSuffixed(tk)
	if err != nil {
		return fmt.Errorf("%w: start: %v", ErrInvalidInput, err)
	}
	if suffixed {
		// a byte quantity needs the device sector size to become a
		// sector number
		secsz := s.sectorSize()
		if secsz == 0 {
			return fmt.Errorf("%w: start given in bytes but sector size unknown", ErrUnresolvable)
		}
		num /= secsz
	}

	pa.Start = num
	pa.HasStart = true
	switch sign {
	case '-':
		pa.MoveStart = disk.MoveDown
	case '+':
		pa.MoveStart = disk.MoveUp
	default:
		pa.MoveStart = disk.MoveNone
	}
	return nil
}

// parseSizeValue parses the size field: the default sentinel, a bare "+"
// (follow default, enlarge), or an optionally signed magnitude. A bare
// number is a sector count and is flagged explicit; a suffixed quantity is
// converted to sectors using the device sector size.
func parseSizeValue(s *Script, pa *disk.Partition, cursor *string) error {
	if isDefaultValue(cursor) {
		pa.HasSize = false
		return nil
	}

	tk, ok := nextToken(cursor)
	if !ok {
		return fmt.Errorf("%w: missing size value", ErrInvalidInput)
	}

	if tk == "+" {
		pa.HasSize = false
		pa.Resize = disk.ResizeEnlarge
		return nil
	}

	sign := skipOptionalSign(&tk)
	num, suffixed, err := datasizes.ParseSuffixed(tk)
	if err != nil {
		return fmt.Errorf("%w: size: %v", ErrInvalidInput, err)
	}
	if suffixed {
		secsz := s.sectorSize()
		if secsz == 0 {
			return fmt.Errorf("%w: size given in bytes but sector size unknown", ErrUnresolvable)
		}
		num /= secsz
	} else {
		pa.SizeExplicit = true
	}

	pa.Size = num
	pa.HasSize = true
	switch sign {
	case '-':
		pa.Resize = disk.ResizeReduce
	case '+':
		pa.Resize = disk.ResizeEnlarge
	default:
		pa.Resize = disk.ResizeNone
	}
	return nil
}

// resolveType resolves a partition type token through the script's label
// driver, accepting all spellings the dump grammar allows.
func (s *Script) resolveType(token string) (*disk.PartType, error) {
	lb := s.labelDriver()
	if lb == nil {
		return nil, fmt.Errorf("%w: no label to resolve type %q against", ErrUnresolvable, token)
	}
	pt, err := lb.ParsePartType(token, disk.ParseFlagsDefault)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnresolvable, err)
	}
	return pt, nil
}

// parseLineNameval handles the dump format:
//
//	<device>: start=<num>, size=<num>, type=<string>, ...
func parseLineNameval(s *Script, line string) error {
	pa := disk.NewPartition()

	// an optional "<device-or-index>:" prefix overrides the partition
	// number
	rest := line
	ci := strings.IndexByte(line, ':')
	ei := strings.IndexByte(line, '=')
	if ci >= 0 && (ei < 0 || ci < ei) {
		if pno, ok := partnoFromDevname(line[:ci]); ok {
			pa.Partno = pno
			pa.HasPartno = true
		}
		rest = line[ci+1:]
	}

	var err error
	for err == nil {
		rest = skipBlank(rest)
		if rest == "" {
			break
		}

		lower := strings.ToLower(rest)
		switch {
		case strings.HasPrefix(lower, "start="):
			rest = rest[6:]
			err = parseStartValue(s, pa, &rest)

		case strings.HasPrefix(lower, "size="):
			rest = rest[5:]
			err = parseSizeValue(s, pa, &rest)

		case strings.HasPrefix(lower, "bootable"):
			// tokenized to skip possible extra space
			tk, ok := nextToken(&rest)
			if ok && strings.EqualFold(tk, "bootable") {
				pa.Bootable = true
			} else {
				err = fmt.Errorf("%w: malformed bootable flag", ErrInvalidInput)
			}

		case strings.HasPrefix(lower, "attrs="):
			rest = rest[6:]
			pa.Attrs, err = nextString(&rest)

		case strings.HasPrefix(lower, "uuid="):
			rest = rest[5:]
			pa.UUID, err = nextString(&rest)

		case strings.HasPrefix(lower, "name="):
			rest = rest[5:]
			pa.Name, err = nextString(&rest)
			if err == nil {
				pa.Name = unhexmangle(pa.Name)
			}

		case strings.HasPrefix(lower, "type="), strings.HasPrefix(lower, "id="):
			// "Id=" is kept for backward compatibility
			if lower[0] == 'i' {
				rest = rest[3:]
			} else {
				rest = rest[5:]
			}
			var token string
			token, err = nextString(&rest)
			if err == nil {
				pa.Type, err = s.resolveType(token)
			}

		default:
			err = fmt.Errorf("%w: unknown field at %q", ErrInvalidInput, rest)
		}
	}

	if err != nil {
		return err
	}
	s.Table().AddPartition(pa)
	return nil
}

func nextString(cursor *string) (string, error) {
	tk, ok := nextToken(cursor)
	if !ok {
		return "", fmt.Errorf("%w: missing value", ErrInvalidInput)
	}
	return tk, nil
}

// parseLineFields handles the simple positional format:
//
//	<start>, <size>, <type>, <bootable>
//
// Every field is optional through the default sentinel or early line
// termination. When a sub-parser makes no progress the cursor is advanced
// by one byte over the separator; this deliberately preserves the lenient
// behavior of the original sfdisk grammar (trailing junk after the fourth
// field is skipped silently).
func parseLineFields(s *Script, line string) error {
	pa := disk.NewPartition()

	const (
		itemStart = iota
		itemSize
		itemType
		itemBootable
	)

	var err error
	item := -1
	rest := line

	for err == nil && rest != "" {
		rest = skipBlank(rest)
		item++
		before := rest

		switch item {
		case itemStart:
			err = parseStartValue(s, pa, &rest)

		case itemSize:
			err = parseSizeValue(s, pa, &rest)

		case itemType:
			if strings.HasPrefix(rest, ",") || strings.HasPrefix(rest, ";") || isDefaultValue(&rest) {
				break // use default type
			}
			var token string
			token, err = nextString(&rest)
			if err != nil {
				break
			}
			pa.Type, err = s.resolveType(token)

		case itemBootable:
			if strings.HasPrefix(rest, ",") || strings.HasPrefix(rest, ";") {
				break
			}
			tk, ok := nextToken(&rest)
			switch {
			case ok && (tk == "*" || tk == "+"):
				pa.Bootable = true
			case ok && tk == "-":
				pa.Bootable = false
			default:
				err = fmt.Errorf("%w: bad bootable token", ErrInvalidInput)
			}
		}

		if before == rest && rest != "" {
			rest = rest[1:]
		}
	}

	if err != nil {
		return err
	}
	s.Table().AddPartition(pa)
	return nil
}

// ReadBuffer parses a single script line: a header line (only while the
// table is still empty), a key=value line, or a positional value line. On
// success a data line appends one partition to the script's table; on
// failure the partial record is discarded.
func (s *Script) ReadBuffer(line string) error {
	line = skipBlank(line)
	if line == "" {
		return nil // nothing, ignore
	}

	// header lines are only accepted before the first partition
	if s.Table().IsEmpty() && isHeaderLine(line) {
		return parseLineHeader(s, line)
	}

	if strings.IndexByte(line, '=') >= 0 {
		return parseLineNameval(s, line)
	}

	return parseLineFields(s, line)
}
