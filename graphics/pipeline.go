package graphics

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/armgong/rbridge"
	"github.com/armgong/rbridge/errors"
	"github.com/armgong/rbridge/sexp"
)

// Kind selects the graphics device and the MIME type of displayed output.
type Kind string

const (
	// KindPNG is the raster kind: file bytes pass through unmodified.
	KindPNG Kind = "png"
	// KindSVG is the vector-markup kind: ids are rewritten before display.
	KindSVG Kind = "svg"
)

// Kind-appropriate default physical dimensions: raster in device units
// (72 dpi), vector in abstract units.
const (
	defaultPNGWidth  = 432
	defaultPNGHeight = 360
	defaultSVGWidth  = 6
	defaultSVGHeight = 5
)

// Pipeline captures engine plot output into a per-session temp directory
// and hands it to the display sink after each evaluation unit. It moves
// between three states: Idle (no device), DeviceOpen (engine is writing
// pages), and Draining (device closed, files being displayed and removed);
// the state is carried by the engine's device slot and the directory's
// contents, serialized under one lock.
type Pipeline struct {
	mu     sync.Mutex
	e      *sexp.Engine
	sink   rbridge.DisplaySink
	dir    string
	kind   Kind
	logger *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger attaches a logger to the pipeline.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// New creates the capture pipeline: a fresh temp directory for the session,
// standing device options pushed into the engine so each abstract "open a
// device" request becomes a file-backed device writing the next templated
// filename, and drain/cleanup callbacks registered once with the notebook's
// post-execute and post-error hooks. The default kind is PNG at 432x360
// device units (6x5 inches at 72 dpi).
func New(e *sexp.Engine, sink rbridge.DisplaySink, hooks rbridge.NotebookHooks, opts ...Option) (*Pipeline, error) {
	dir, err := os.MkdirTemp("", "rbridge-plots-")
	if err != nil {
		return nil, errors.IOFailure(errors.PhaseDevice, "temp directory", err)
	}

	p := &Pipeline{
		e:      e,
		sink:   sink,
		dir:    dir,
		logger: sexp.Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if err := p.SetDeviceKind(KindPNG); err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	hooks.PushPostExecuteHook(func() {
		if err := p.Drain(); err != nil {
			p.logger.Warn("plot drain failed", zap.Error(err))
		}
	})
	hooks.PushPostErrorHook(p.Cleanup)

	p.logger.Debug("graphics pipeline initialized", zap.String("dir", dir))
	return p, nil
}

// DeviceOption adjusts device parameters for SetDeviceKind.
type DeviceOption func(*deviceConfig)

type deviceConfig struct {
	width, height float64
}

// Width overrides the kind's default width (device units for raster,
// abstract units for vector).
func Width(w float64) DeviceOption {
	return func(c *deviceConfig) { c.width = w }
}

// Height overrides the kind's default height.
func Height(h float64) DeviceOption {
	return func(c *deviceConfig) { c.height = h }
}

// SetDeviceKind records the active image kind and forwards size and format
// options to the engine as standing options. It never opens or closes a
// device itself.
func (p *Pipeline) SetDeviceKind(kind Kind, opts ...DeviceOption) error {
	var cfg deviceConfig
	switch kind {
	case KindPNG:
		cfg = deviceConfig{width: defaultPNGWidth, height: defaultPNGHeight}
	case KindSVG:
		cfg = deviceConfig{width: defaultSVGWidth, height: defaultSVGHeight}
	default:
		return errors.InvalidInput(errors.PhaseDevice, "unknown device kind "+string(kind))
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.kind = kind
	p.e.SetOption(sexp.OptDeviceKind, string(kind))
	p.e.SetOption(sexp.OptDevicePattern, filepath.Join(p.dir, "plot%03d."+string(kind)))
	p.e.SetOption(sexp.OptDeviceWidth, cfg.width)
	p.e.SetOption(sexp.OptDeviceHeight, cfg.height)
	return nil
}

// Kind returns the active image kind.
func (p *Pipeline) Kind() Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.kind
}

// Dir returns the session temp directory.
func (p *Pipeline) Dir() string { return p.dir }

// Drain is the post-execute action: if no device is active it is a no-op;
// otherwise the device is closed and every produced file is post-processed
// per the active kind, displayed, and deleted, in lexicographic filename
// order (the zero-padded template makes that creation order). An I/O
// failure aborts the drain cycle; files it did not reach are removed by the
// next Cleanup, never left to accumulate silently.
func (p *Pipeline) Drain() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.e.CurrentDevice() == sexp.NullDevice {
		return nil
	}
	if err := p.e.CloseDevice(); err != nil {
		return err
	}

	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return errors.IOFailure(errors.PhaseDrain, p.dir, err)
	}
	// os.ReadDir sorts by filename
	for _, entry := range entries {
		path := filepath.Join(p.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.IOFailure(errors.PhaseDrain, path, err)
		}
		mime, payload := postprocess(entry.Name(), data)
		if err := p.sink.Display(mime, payload); err != nil {
			return errors.Wrap(errors.PhaseDrain, errors.KindIOFailure, err, "display "+entry.Name())
		}
		if err := os.Remove(path); err != nil {
			return errors.IOFailure(errors.PhaseDrain, path, err)
		}
		p.logger.Debug("plot displayed", zap.String("file", entry.Name()), zap.String("mime", mime))
	}
	return nil
}

// Cleanup is the post-error action: close any active device without
// processing its output and delete every file in the temp directory, so
// partial output from a failed evaluation unit never reaches the sink.
// Cleanup is silent apart from debug logging.
func (p *Pipeline) Cleanup() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.e.CurrentDevice() != sexp.NullDevice {
		if err := p.e.CloseDevice(); err != nil {
			p.logger.Debug("device close during cleanup", zap.Error(err))
		}
	}
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		p.logger.Debug("cleanup readdir", zap.Error(err))
		return
	}
	for _, entry := range entries {
		if err := os.Remove(filepath.Join(p.dir, entry.Name())); err != nil {
			p.logger.Debug("cleanup remove", zap.String("file", entry.Name()), zap.Error(err))
		}
	}
}

// Close discards pending output and removes the session temp directory.
func (p *Pipeline) Close() error {
	p.Cleanup()
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := os.RemoveAll(p.dir); err != nil {
		return errors.IOFailure(errors.PhaseDrain, p.dir, err)
	}
	return nil
}

// postprocess applies kind-specific handling: raster bytes pass through
// unmodified; vector markup gets its glyph ids rewritten with a suffix
// unique to this display call.
func postprocess(name string, data []byte) (mime string, payload []byte) {
	if filepath.Ext(name) == ".svg" {
		return rbridge.MIMESVG, rewriteGlyphIDs(data, randomSuffix())
	}
	return rbridge.MIMEPNG, data
}
