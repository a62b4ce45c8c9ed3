package script

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/osbuild/fdisk-script/pkg/datasizes"
	"github.com/osbuild/fdisk-script/pkg/disk"
)

// ApplyHeaders binds the script to the device context and creates a new
// empty label of the type named by the (mandatory) label header. Script
// level settings are pushed first: a grain header becomes the context's
// user grain, pending device property overrides are applied, and a
// table-length header overrides the GPT entry count.
//
// Any failure here is fully fatal: no label is created and no partitions
// are applied.
func (s *Script) ApplyHeaders(dev *disk.Context) error {
	dev.SetScript(s)

	if grain := s.Header("grain"); grain != "" {
		sz, err := datasizes.Parse(grain)
		if err != nil {
			return fmt.Errorf("%w: grain: %v", ErrUnresolvable, err)
		}
		if err := dev.SaveUserGrain(sz); err != nil {
			return fmt.Errorf("%w: grain: %v", ErrUnresolvable, err)
		}
	}

	if secsz := s.Header("sector-size"); secsz != "" {
		sz, err := datasizes.Parse(secsz)
		if err != nil {
			return fmt.Errorf("%w: sector-size: %v", ErrUnresolvable, err)
		}
		if err := dev.SaveUserSectorSize(sz); err != nil {
			return fmt.Errorf("%w: sector-size: %v", ErrUnresolvable, err)
		}
	}

	if dev.HasUserDeviceProperties() {
		dev.ApplyUserDeviceProperties()
	}

	name := s.Header("label")
	if name == "" {
		return fmt.Errorf("%w: script has no label header", ErrInvalidInput)
	}
	if err := dev.CreateLabel(name); err != nil {
		return fmt.Errorf("%w: %v", ErrUnresolvable, err)
	}
	if id := s.Header("label-id"); id != "" {
		dev.LabelID = id
	}

	if tl := s.Header("table-length"); tl != "" {
		n, err := datasizes.Parse(tl)
		if err != nil {
			return fmt.Errorf("%w: table-length: %v", ErrUnresolvable, err)
		}
		if err := dev.SetGPTEntryCount(n); err != nil {
			return fmt.Errorf("%w: %v", ErrUnresolvable, err)
		}
	}

	return nil
}

// Apply creates a new disklabel and partitions within the device context
// from the script's headers and table. The context's previously bound
// script is restored afterwards, whether the apply succeeded or not, so
// the operation is non-destructive to a caller's own in-flight script.
func (s *Script) Apply(dev *disk.Context) error {
	old := dev.Script()
	defer dev.SetScript(old)

	if err := s.ApplyHeaders(dev); err != nil {
		return err
	}

	if !s.table.IsEmpty() {
		if err := dev.ApplyTable(s.table); err != nil {
			return err
		}
	}

	logrus.WithFields(logrus.Fields{
		"label":      s.Header("label"),
		"partitions": len(dev.Table().Partitions),
	}).Debug("script applied")

	return nil
}
