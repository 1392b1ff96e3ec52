package apkicons

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// ReplaceResource overwrites the source file behind the icon at idx with
// the content of the file at path. The projection changes only through the
// notification the source emits for the write.
func (m *Model) ReplaceResource(idx Index, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("apkicons: replace resource: %w", err)
	}
	return m.ReplaceResourceData(idx, data)
}

// ReplaceResourceData overwrites the source file behind the icon at idx
// with data.
func (m *Model) ReplaceResourceData(idx Index, data []byte) error {
	target, err := m.target(idx)
	if err != nil {
		return fmt.Errorf("apkicons: replace resource: %w", err)
	}
	if err := m.src.WriteContent(target, data); err != nil {
		m.log.WithError(err).WithField("path", target).Warn("replace failed")
		return fmt.Errorf("apkicons: replace resource %s: %w", target, err)
	}
	return nil
}

// RemoveResource deletes the source file behind the icon at idx. The icon
// row disappears once the source reports the removal.
func (m *Model) RemoveResource(idx Index) error {
	target, err := m.target(idx)
	if err != nil {
		return fmt.Errorf("apkicons: remove resource: %w", err)
	}
	if err := m.src.Remove(target); err != nil {
		m.log.WithError(err).WithField("path", target).Warn("remove failed")
		return fmt.Errorf("apkicons: remove resource %s: %w", target, err)
	}
	return nil
}

// RemoveRows removes the source files behind count icon rows of parent,
// starting at row. It stops at the first failure.
func (m *Model) RemoveRows(row, count int, parent Index) error {
	if row < 0 || count < 0 || row+count > m.RowCount(parent) {
		return fmt.Errorf("apkicons: remove rows %d+%d: %w", row, count, ErrInvalidIndex)
	}
	// Resolve every target first: each removal shifts the remaining rows.
	var targets []Handle
	for r := row; r < row+count; r++ {
		h, ok := m.MapToSource(m.Index(r, 0, parent))
		if !ok {
			return fmt.Errorf("apkicons: remove rows: row %d: %w", r, ErrInvalidIndex)
		}
		targets = append(targets, h)
	}
	for _, h := range targets {
		if err := m.RemoveResource(m.MapFromSource(h)); err != nil {
			return err
		}
	}
	return nil
}

// target returns the source path of the icon at idx.
func (m *Model) target(idx Index) (string, error) {
	if m.src == nil {
		return "", ErrNoSource
	}
	h, ok := m.MapToSource(idx)
	if !ok || !m.src.Valid(h) {
		return "", ErrInvalidIndex
	}
	return m.src.PathOf(h), nil
}

// ReplaceReport lists the application icon files a replacement wrote,
// skipped as vector resources, or failed to write.
type ReplaceReport struct {
	Written []string
	Skipped []string
	Failed  []string
}

// ReplaceApplicationIcons writes a scaled copy of the image at path over
// every raster variant of every application icon slot. Slots that were
// written stay written when others fail; the report says which, and the
// returned error joins every failure.
func (m *Model) ReplaceApplicationIcons(path string) (ReplaceReport, error) {
	var report ReplaceReport
	if m.src == nil {
		return report, fmt.Errorf("apkicons: replace application icons: %w", ErrNoSource)
	}
	img, err := decodeFile(path)
	if err != nil {
		return report, fmt.Errorf("apkicons: replace application icons: %w", err)
	}

	type slot struct {
		path     string
		iconType IconType
		current  []byte
	}
	var slots []slot
	for _, icon := range m.app.Children() {
		h, _ := m.proxies.Key(icon)
		data, err := m.src.ContentOf(h)
		if err != nil {
			data = nil
		}
		slots = append(slots, slot{path: m.src.PathOf(h), iconType: icon.iconType, current: data})
	}

	var errs []error
	for _, s := range slots {
		if isVectorResource(s.path) {
			m.log.WithField("path", s.path).Debug("skip vector icon")
			report.Skipped = append(report.Skipped, s.path)
			continue
		}
		data, err := renderVariant(img, s.path, s.iconType, s.current)
		if err == nil {
			err = m.src.WriteContent(s.path, data)
		}
		if err != nil {
			m.log.WithError(err).WithField("path", s.path).Warn("replace failed")
			errs = append(errs, fmt.Errorf("%s: %w", s.path, err))
			report.Failed = append(report.Failed, s.path)
			continue
		}
		report.Written = append(report.Written, s.path)
	}
	m.log.WithFields(logrus.Fields{
		"written": len(report.Written),
		"skipped": len(report.Skipped),
		"failed":  len(report.Failed),
	}).Info("replaced application icons")
	if len(errs) > 0 {
		return report, fmt.Errorf("apkicons: replace application icons: %w", errors.Join(errs...))
	}
	return report, nil
}
