package datasizes

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var sizeNumber = regexp.MustCompile(`^[[:digit:]]+`)

// List of all supported unit spellings. Single letters are binary
// multipliers (sfdisk dump convention), two-letter forms with a capital B
// are decimal, the *iB forms are binary.
var supportedUnits = []struct {
	re       *regexp.Regexp
	multiple uint64
}{
	{regexp.MustCompile(`^\s*(K|KiB)$`), KibiByte},
	{regexp.MustCompile(`^\s*kB$`), KiloByte},
	{regexp.MustCompile(`^\s*(M|MiB)$`), MebiByte},
	{regexp.MustCompile(`^\s*MB$`), MegaByte},
	{regexp.MustCompile(`^\s*(G|GiB)$`), GibiByte},
	{regexp.MustCompile(`^\s*GB$`), GigaByte},
	{regexp.MustCompile(`^\s*(T|TiB)$`), TebiByte},
	{regexp.MustCompile(`^\s*TB$`), TeraByte},
	{regexp.MustCompile(`^\s*(P|PiB)$`), PebiByte},
	{regexp.MustCompile(`^\s*PB$`), PetaByte},
}

// Parse converts a size specified as a string in K/KiB/kB/MB/etc. to a
// number of bytes represented by uint64. A plain number is returned
// unchanged.
func Parse(size string) (uint64, error) {
	n, _, err := ParseSuffixed(size)
	return n, err
}

// ParseSuffixed behaves like Parse and additionally reports whether the
// string carried a unit suffix. Callers use this to distinguish a quantity
// given in bytes from a bare number whose unit is implied by context (for
// example sectors in a partition dump).
func ParseSuffixed(size string) (uint64, bool, error) {
	size = strings.TrimSpace(size)

	numberAsStr := sizeNumber.FindString(size)
	if numberAsStr == "" {
		return 0, false, fmt.Errorf("the size string doesn't contain any number: %s", size)
	}

	returnSize, err := strconv.ParseUint(numberAsStr, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("failed to parse size as integer: %s", numberAsStr)
	}

	rest := size[len(numberAsStr):]
	if strings.TrimSpace(rest) == "" {
		return returnSize, false, nil
	}

	for _, unit := range supportedUnits {
		if unit.re.MatchString(rest) {
			return returnSize * unit.multiple, true, nil
		}
	}

	// A number was found but the trailing characters are not a known
	// unit. Reject the whole string rather than guessing.
	return 0, false, fmt.Errorf("unknown data size units in string: %s", size)
}
