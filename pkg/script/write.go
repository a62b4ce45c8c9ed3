package script

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/osbuild/fdisk-script/pkg/disk"
)

// WriteFile writes the script to w in the configured output format: the
// sfdisk text dump by default, JSON when EnableJSON was called. Both
// formats render the same headers and partitions; re-reading a text dump
// reproduces an equivalent script.
func (s *Script) WriteFile(w io.Writer) error {
	if s.json {
		return s.writeJSON(w)
	}
	return s.writeText(w)
}

// partNode renders the partition's device node (when a device header is
// present) or its 1-based number.
func (s *Script) partNode(pa *disk.Partition, idx int, devname string) string {
	number := uint64(idx)
	if pa.HasPartno {
		number = pa.Partno
	}
	if devname != "" {
		return disk.PartName(devname, number+1)
	}
	return strconv.FormatUint(number+1, 10)
}

// suppressAttrs reports whether the attrs field should be dropped on
// output: for MBR attr=80 overlaps with the bootable flag.
func (s *Script) suppressAttrs() bool {
	lb := s.labelDriver()
	return lb != nil && lb.Kind() == disk.LabelDOS
}

func (s *Script) writeText(w io.Writer) error {
	devname := ""
	for _, h := range s.headers {
		if _, err := fmt.Fprintf(w, "%s: %s\n", h.Name, h.Data); err != nil {
			return err
		}
		if h.Name == "device" {
			devname = h.Data
		}
	}

	if s.table.IsEmpty() {
		return nil
	}

	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	for i, pa := range s.table.Partitions {
		var sb strings.Builder
		sb.WriteString(s.partNode(pa, i, devname))
		sb.WriteString(" :")

		if pa.HasStart {
			fmt.Fprintf(&sb, " start=%12d", pa.Start)
		}
		if pa.HasSize {
			fmt.Fprintf(&sb, ", size=%12d", pa.Size)
		}
		if pa.Type != nil {
			fmt.Fprintf(&sb, ", type=%s", pa.Type.ID)
		}
		if pa.UUID != "" {
			fmt.Fprintf(&sb, ", uuid=%s", pa.UUID)
		}
		if pa.Name != "" {
			fmt.Fprintf(&sb, ", name=%s", quoted(pa.Name))
		}
		if pa.Attrs != "" && !s.suppressAttrs() {
			// verbatim between plain quotes, the only quoting the
			// tokenizer understands
			fmt.Fprintf(&sb, ", attrs=\"%s\"", pa.Attrs)
		}
		if pa.Bootable {
			sb.WriteString(", bootable")
		}

		if _, err := fmt.Fprintln(w, sb.String()); err != nil {
			return err
		}
	}

	return nil
}

// The JSON schema renames a few header fields and renders the LBA bounds
// and sector size as raw numbers. The structure mirrors the text dump, a
// root "partitiontable" object with an optional partitions array.
type jsonPartition struct {
	Node     string  `json:"node,omitempty"`
	Start    *uint64 `json:"start,omitempty"`
	Size     *uint64 `json:"size,omitempty"`
	Type     string  `json:"type,omitempty"`
	UUID     string  `json:"uuid,omitempty"`
	Name     string  `json:"name,omitempty"`
	Attrs    string  `json:"attrs,omitempty"`
	Bootable bool    `json:"bootable,omitempty"`
}

type jsonPartitionTable struct {
	Label       string          `json:"label,omitempty"`
	ID          string          `json:"id,omitempty"`
	Device      string          `json:"device,omitempty"`
	Unit        string          `json:"unit,omitempty"`
	FirstLBA    *uint64         `json:"firstlba,omitempty"`
	LastLBA     *uint64         `json:"lastlba,omitempty"`
	TableLength string          `json:"table-length,omitempty"`
	Grain       string          `json:"grain,omitempty"`
	SectorSize  *uint64         `json:"sectorsize,omitempty"`
	Partitions  []jsonPartition `json:"partitions,omitempty"`
}

type jsonRoot struct {
	PartitionTable jsonPartitionTable `json:"partitiontable"`
}

func (s *Script) writeJSON(w io.Writer) error {
	var pt jsonPartitionTable

	for _, h := range s.headers {
		switch strings.ToLower(h.Name) {
		case "label":
			pt.Label = h.Data
		case "label-id":
			pt.ID = h.Data
		case "device":
			pt.Device = h.Data
		case "unit":
			pt.Unit = h.Data
		case "first-lba":
			pt.FirstLBA = parseNumHeader(h.Data)
		case "last-lba":
			pt.LastLBA = parseNumHeader(h.Data)
		case "table-length":
			pt.TableLength = h.Data
		case "grain":
			pt.Grain = h.Data
		case "sector-size":
			pt.SectorSize = parseNumHeader(h.Data)
		}
	}

	if !s.table.IsEmpty() {
		for i, pa := range s.table.Partitions {
			jp := jsonPartition{
				UUID:     pa.UUID,
				Name:     pa.Name,
				Bootable: pa.Bootable,
			}
			if pt.Device != "" {
				jp.Node = s.partNode(pa, i, pt.Device)
			}
			if pa.HasStart {
				start := pa.Start
				jp.Start = &start
			}
			if pa.HasSize {
				size := pa.Size
				jp.Size = &size
			}
			if pa.Type != nil {
				jp.Type = pa.Type.ID
			}
			if pa.Attrs != "" && !s.suppressAttrs() {
				jp.Attrs = pa.Attrs
			}
			pt.Partitions = append(pt.Partitions, jp)
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "   ")
	return enc.Encode(jsonRoot{PartitionTable: pt})
}

func parseNumHeader(data string) *uint64 {
	n, err := strconv.ParseUint(data, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
