package sexp

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/armgong/rbridge/errors"
)

// Option keys consulted when a device is opened. The graphics pipeline
// installs these as standing options; the engine reads them on each open,
// translating the abstract "open a device" request into a file-backed
// device of the selected kind.
const (
	OptDeviceKind    = "rbridge.device.kind"
	OptDevicePattern = "rbridge.device.pattern"
	OptDeviceWidth   = "rbridge.device.width"
	OptDeviceHeight  = "rbridge.device.height"
)

// NullDevice is the reserved index meaning "no device open".
const NullDevice = 0

// Device is a file-backed graphics output target. Each page writes to the
// next file in the configured zero-padded sequence, so lexicographic
// filename order equals creation order.
type Device struct {
	kind    string
	pattern string
	width   float64
	height  float64
	page    int
	cur     *os.File
}

// OpenDevice opens a file-backed device according to the standing device
// options. Only one device slot exists; opening while a device is active is
// an error.
func (e *Engine) OpenDevice() (*Device, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.device != nil {
		return nil, errors.InvalidInput(errors.PhaseDevice, "device already open")
	}
	pattern, _ := e.options[OptDevicePattern].(string)
	if pattern == "" {
		return nil, errors.NotInitialized(errors.PhaseDevice, "device file pattern option")
	}
	kind, _ := e.options[OptDeviceKind].(string)
	if kind == "" {
		kind = "png"
	}
	width, _ := e.options[OptDeviceWidth].(float64)
	height, _ := e.options[OptDeviceHeight].(float64)

	d := &Device{kind: kind, pattern: pattern, width: width, height: height}
	e.device = d
	e.deviceSeq++
	e.logger.Debug("device opened",
		zap.String("kind", kind), zap.String("pattern", pattern))
	return d, nil
}

// CurrentDevice returns the active device index, or NullDevice when none is
// open.
func (e *Engine) CurrentDevice() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.device == nil {
		return NullDevice
	}
	return e.deviceSeq
}

// CloseDevice closes the active device, flushing its current page file.
// Closing with no device open is a no-op.
func (e *Engine) CloseDevice() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.device == nil {
		return nil
	}
	err := e.device.close()
	e.device = nil
	return err
}

// Kind returns the device kind recorded at open time.
func (d *Device) Kind() string { return d.kind }

// Size returns the physical dimensions recorded at open time.
func (d *Device) Size() (width, height float64) { return d.width, d.height }

// Write appends bytes to the current page, opening the page's file on first
// use.
func (d *Device) Write(p []byte) (int, error) {
	if d.cur == nil {
		path := fmt.Sprintf(d.pattern, d.page+1)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return 0, errors.IOFailure(errors.PhaseDevice, path, err)
		}
		d.cur = f
		d.page++
	}
	return d.cur.Write(p)
}

// NewPage finishes the current page file; the next Write opens the next
// file in the sequence.
func (d *Device) NewPage() error {
	if d.cur == nil {
		return nil
	}
	err := d.cur.Close()
	d.cur = nil
	if err != nil {
		return errors.IOFailure(errors.PhaseDevice, d.pattern, err)
	}
	return nil
}

func (d *Device) close() error {
	if d.cur == nil {
		return nil
	}
	err := d.cur.Close()
	d.cur = nil
	if err != nil {
		return errors.IOFailure(errors.PhaseDevice, d.pattern, err)
	}
	return nil
}
