package disk

import (
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/google/uuid"
)

// GenerateUUIDs fills in the disk label id and, for GPT labels, per
// partition UUIDs. Existing identifiers are never overwritten.
func (c *Context) GenerateUUIDs(rng *rand.Rand) {
	if c.label == nil {
		return
	}

	// dos doesn't use a traditional UUID as its label id, just a 32 bit
	// value rendered in hex.
	if c.label.Kind() != LabelGPT {
		if c.LabelID == "" {
			c.LabelID = fmt.Sprintf("0x%08x", rng.Uint32())
		}
		return
	}

	if c.LabelID == "" {
		c.LabelID = strings.ToUpper(uuid.Must(newRandomUUIDFromReader(rng)).String())
	}

	for _, pa := range c.Table().Partitions {
		if pa.UUID == "" {
			pa.UUID = strings.ToUpper(uuid.Must(newRandomUUIDFromReader(rng)).String())
		}
	}
}

func newRandomUUIDFromReader(r io.Reader) (uuid.UUID, error) {
	var id uuid.UUID
	_, err := io.ReadFull(r, id[:])
	if err != nil {
		return uuid.Nil, err
	}
	id[6] = (id[6] & 0x0f) | 0x40 // Version 4
	id[8] = (id[8] & 0x3f) | 0x80 // Variant is 10
	return id, nil
}
