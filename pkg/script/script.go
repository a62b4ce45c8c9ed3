// Package script reads, edits, serializes and applies sfdisk-style
// partition table dumps.
//
// A script has two parts: named headers (label type, unit, device
// geometry) and partition table entries. Scripts are built four ways: read
// from a dump file, read line by line from an interactive source, read
// from a device context, or composed in code through SetHeader and the
// table accessor. A finished script can be written back out as a text dump
// or JSON, or applied to a device context to create a fresh label and
// partitions.
package script

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/osbuild/fdisk-script/pkg/disk"
)

// Header is one piece of script-level metadata, e.g. "unit: sectors".
// Header names are unique within a script; lookups are case-insensitive.
type Header struct {
	Name string
	Data string
}

// supportedHeaders is the closed set of header names the parser accepts.
var supportedHeaders = []string{
	"label", "unit", "label-id", "device", "grain",
	"first-lba", "last-lba", "table-length", "sector-size",
}

// LineSourceFunc replaces the default buffered line reads, e.g. for
// interactive input. It returns one line per call (a trailing newline is
// tolerated) and io.EOF when the source is exhausted.
type LineSourceFunc func(s *Script) (string, error)

// Script is an in-memory, serializable representation of a partition table
// plus descriptive headers.
//
// A Script is not safe for concurrent use.
type Script struct {
	headers []*Header
	table   *disk.Table
	dev     *disk.Context

	// parser state
	nlines int
	label  disk.Label // cached, invalidated when the label header changes

	json       bool
	forceLabel bool // label: <name> was explicitly specified

	lineSource LineSourceFunc
	userdata   any
}

// New returns an empty script bound to the given device context. The
// context may be nil for parse-only use; type and label resolution then
// fall back to the built-in label registry.
func New(dev *disk.Context) *Script {
	return &Script{dev: dev}
}

// NewFromFile allocates a new script and reads it from the given dump
// file.
func NewFromFile(dev *disk.Context, path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s := New(dev)
	if err := s.ReadStream(f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Reset clears all headers and removes the partitions from the table. The
// table instance itself survives so callers holding a reference observe
// the cleared contents.
func (s *Script) Reset() {
	s.headers = nil
	s.label = nil
	s.forceLabel = false
	if s.table != nil {
		s.table.Reset()
	}
}

// Device returns the device context the script is bound to, or nil.
func (s *Script) Device() *disk.Context {
	return s.dev
}

func (s *Script) findHeader(name string) *Header {
	for _, h := range s.headers {
		if strings.EqualFold(h.Name, name) {
			return h
		}
	}
	return nil
}

// Header returns the data of the named header, or the empty string when it
// is not set.
func (s *Script) Header(name string) string {
	if h := s.findHeader(name); h != nil {
		return h.Data
	}
	return ""
}

// Headers returns the headers in insertion order.
func (s *Script) Headers() []*Header {
	return s.headers
}

// SetHeader adds or updates the named header. Empty data removes the
// header. Setting the label header invalidates the cached label driver.
//
// Unlike the parser, SetHeader accepts arbitrary names so that callers can
// compose scripts with custom metadata. Custom headers appear in text dumps
// only; the JSON serializer renders the recognized set.
func (s *Script) SetHeader(name, data string) error {
	if name == "" {
		return fmt.Errorf("%w: empty header name", ErrInvalidInput)
	}

	h := s.findHeader(name)

	if data == "" {
		// removing a header that does not exist is fine
		if h != nil {
			s.removeHeader(h)
		}
	} else if h != nil {
		h.Data = data
	} else {
		s.headers = append(s.headers, &Header{Name: name, Data: data})
	}

	if strings.EqualFold(name, "label") {
		s.label = nil
	}
	return nil
}

func (s *Script) removeHeader(h *Header) {
	for i, cur := range s.headers {
		if cur == h {
			s.headers = append(s.headers[:i], s.headers[i+1:]...)
			return
		}
	}
}

// Table returns the partition table held by the script, materializing an
// empty one on first access. The table is shared: the caller and the
// script observe the same live contents.
func (s *Script) Table() *disk.Table {
	if s.table == nil {
		s.table = disk.NewTable()
	}
	return s.table
}

// SetTable replaces the table used by the script. This is useful to keep
// the basic settings (label, label-id, device) but describe a different
// layout. A nil table detaches the current one; the next Table call
// materializes a fresh empty table.
func (s *Script) SetTable(t *disk.Table) {
	s.table = t
}

// EnableJSON selects JSON output for WriteFile.
func (s *Script) EnableJSON(enable bool) {
	s.json = enable
}

// NLines returns the number of physical input lines consumed so far,
// including blank and comment lines. Useful for diagnostics.
func (s *Script) NLines() int {
	return s.nlines
}

// HasForceLabel reports whether a "label: <name>" header was explicitly
// parsed, as opposed to defaulted.
func (s *Script) HasForceLabel() bool {
	return s.forceLabel
}

// SetLineSource overrides the default buffered line reads.
func (s *Script) SetLineSource(fn LineSourceFunc) {
	s.lineSource = fn
}

// SetUserdata attaches opaque data, usable for example in a line source
// callback.
func (s *Script) SetUserdata(data any) {
	s.userdata = data
}

func (s *Script) Userdata() any {
	return s.userdata
}

// labelDriver resolves the label driver for the script's label header,
// caching the result until the header changes.
func (s *Script) labelDriver() disk.Label {
	if s.label != nil {
		return s.label
	}
	name := s.Header("label")
	if s.dev != nil {
		if lb, ok := s.dev.GetLabel(name); ok {
			s.label = lb
		}
	} else if name != "" {
		if lb, ok := disk.LookupLabel(name); ok {
			s.label = lb
		}
	}
	return s.label
}

// sectorSize returns the bound device's sector size, or 0 when the script
// has no context to resolve byte quantities against.
func (s *Script) sectorSize() uint64 {
	if s.dev == nil {
		return 0
	}
	return s.dev.SectorSize
}

// ReadContext resets the script and fills it from the given device context
// (its on-disk partition table and geometry). A nil context defaults to
// the context the script was created with.
func (s *Script) ReadContext(dev *disk.Context) error {
	if dev == nil {
		dev = s.dev
	}
	if dev == nil {
		return fmt.Errorf("%w: no device context", ErrInvalidInput)
	}

	s.Reset()

	lb := dev.Label()
	if lb == nil {
		return fmt.Errorf("%w: device has no label", ErrInvalidInput)
	}

	// share the context's live partitions
	t := s.Table()
	t.Reset()
	for _, pa := range dev.Table().Partitions {
		t.AddPartition(pa)
	}

	if err := s.SetHeader("label", lb.Name()); err != nil {
		return err
	}
	if dev.LabelID != "" {
		if err := s.SetHeader("label-id", dev.LabelID); err != nil {
			return err
		}
	}
	if dev.DevPath != "" {
		if err := s.SetHeader("device", dev.DevPath); err != nil {
			return err
		}
	}
	if err := s.SetHeader("unit", "sectors"); err != nil {
		return err
	}

	if lb.Kind() == disk.LabelGPT {
		if err := s.SetHeader("first-lba", strconv.FormatUint(dev.FirstLBA, 10)); err != nil {
			return err
		}
		if err := s.SetHeader("last-lba", strconv.FormatUint(dev.LastLBA, 10)); err != nil {
			return err
		}
		if n := dev.EntryCount(); n != disk.DefaultGPTEntries {
			if err := s.SetHeader("table-length", strconv.FormatUint(n, 10)); err != nil {
				return err
			}
		}
	}

	if dev.GrainSize != disk.DefaultGrainBytes {
		if err := s.SetHeader("grain", strconv.FormatUint(dev.GrainSize, 10)); err != nil {
			return err
		}
	}

	return s.SetHeader("sector-size", strconv.FormatUint(dev.SectorSize, 10))
}
