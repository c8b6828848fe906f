package graphics

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/armgong/rbridge/sexp"
)

type displayCall struct {
	mime    string
	payload string
}

type captureSink struct {
	calls []displayCall
	fail  error
}

func (s *captureSink) Display(mime string, payload []byte) error {
	if s.fail != nil {
		return s.fail
	}
	s.calls = append(s.calls, displayCall{mime: mime, payload: string(payload)})
	return nil
}

type stubHooks struct {
	postExecute []func()
	postError   []func()
}

func (h *stubHooks) PushPostExecuteHook(fn func()) { h.postExecute = append(h.postExecute, fn) }
func (h *stubHooks) PushPostErrorHook(fn func())   { h.postError = append(h.postError, fn) }

func (h *stubHooks) runPostExecute() {
	for _, fn := range h.postExecute {
		fn()
	}
}

func (h *stubHooks) runPostError() {
	for _, fn := range h.postError {
		fn()
	}
}

func newPipeline(t *testing.T) (*sexp.Engine, *Pipeline, *captureSink, *stubHooks) {
	t.Helper()
	e := sexp.New()
	sink := &captureSink{}
	hooks := &stubHooks{}
	p, err := New(e, sink, hooks)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { p.Close() })
	return e, p, sink, hooks
}

func TestNew_RegistersHooksOnceAndDefaults(t *testing.T) {
	e, p, _, hooks := newPipeline(t)

	if len(hooks.postExecute) != 1 || len(hooks.postError) != 1 {
		t.Fatalf("hooks registered %d/%d times, want 1/1",
			len(hooks.postExecute), len(hooks.postError))
	}
	if p.Kind() != KindPNG {
		t.Fatalf("default kind = %q", p.Kind())
	}
	if e.Option(sexp.OptDeviceWidth) != 432.0 || e.Option(sexp.OptDeviceHeight) != 360.0 {
		t.Fatal("raster defaults should be 432x360 device units")
	}
	pattern, _ := e.Option(sexp.OptDevicePattern).(string)
	if !strings.Contains(pattern, "plot%03d.png") {
		t.Fatalf("pattern = %q", pattern)
	}
}

func TestSetDeviceKind_Options(t *testing.T) {
	e, p, _, _ := newPipeline(t)

	if err := p.SetDeviceKind(KindSVG); err != nil {
		t.Fatal(err)
	}
	if e.Option(sexp.OptDeviceWidth) != 6.0 || e.Option(sexp.OptDeviceHeight) != 5.0 {
		t.Fatal("vector defaults should be 6x5 abstract units")
	}
	pattern, _ := e.Option(sexp.OptDevicePattern).(string)
	if !strings.HasSuffix(pattern, "plot%03d.svg") {
		t.Fatalf("pattern = %q", pattern)
	}

	if err := p.SetDeviceKind(KindPNG, Width(800), Height(600)); err != nil {
		t.Fatal(err)
	}
	if e.Option(sexp.OptDeviceWidth) != 800.0 {
		t.Fatal("width option not forwarded")
	}

	if err := p.SetDeviceKind(Kind("pdf")); err == nil {
		t.Fatal("unknown kind should be rejected")
	}
}

func TestDrain_NoDeviceIsNoop(t *testing.T) {
	_, p, sink, _ := newPipeline(t)
	if err := p.Drain(); err != nil {
		t.Fatal(err)
	}
	if len(sink.calls) != 0 {
		t.Fatal("idle drain must not display anything")
	}
}

func TestDrain_DisplaysInSequenceOrder(t *testing.T) {
	e, p, sink, _ := newPipeline(t)

	if _, err := e.OpenDevice(); err != nil {
		t.Fatal(err)
	}
	// create the sequence files out of filesystem creation order; drain
	// must still display them in zero-padded name order
	for _, name := range []string{"plot003.png", "plot001.png", "plot002.png"} {
		if err := os.WriteFile(filepath.Join(p.Dir(), name), []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if err := p.Drain(); err != nil {
		t.Fatal(err)
	}
	if len(sink.calls) != 3 {
		t.Fatalf("displayed %d files, want 3", len(sink.calls))
	}
	for i, want := range []string{"plot001.png", "plot002.png", "plot003.png"} {
		if sink.calls[i].payload != want {
			t.Fatalf("display %d = %q, want %q", i, sink.calls[i].payload, want)
		}
		if sink.calls[i].mime != "image/png" {
			t.Fatalf("display %d mime = %q", i, sink.calls[i].mime)
		}
	}

	entries, _ := os.ReadDir(p.Dir())
	if len(entries) != 0 {
		t.Fatalf("%d files left after drain", len(entries))
	}
	if e.CurrentDevice() != sexp.NullDevice {
		t.Fatal("drain should close the device")
	}
}

func TestDrain_RasterBytesPassThrough(t *testing.T) {
	e, p, sink, _ := newPipeline(t)

	d, err := e.OpenDevice()
	if err != nil {
		t.Fatal(err)
	}
	raw := []byte{0x89, 'P', 'N', 'G', 0x00, 0xFF}
	if _, err := d.Write(raw); err != nil {
		t.Fatal(err)
	}
	if err := p.Drain(); err != nil {
		t.Fatal(err)
	}
	if len(sink.calls) != 1 || sink.calls[0].payload != string(raw) {
		t.Fatal("raster payload must pass through unmodified")
	}
}

const svgDoc = `<svg><defs><g id="glyph1"><path d="M0 0"/></g></defs>` +
	`<use href="#glyph1"/><use xlink:href="#glyph1"/></svg>`

var idPattern = regexp.MustCompile(`id="([^"]+)"`)

func TestDrain_SVGIDRewrite(t *testing.T) {
	e, p, sink, _ := newPipeline(t)
	if err := p.SetDeviceKind(KindSVG); err != nil {
		t.Fatal(err)
	}

	display := func() string {
		d, err := e.OpenDevice()
		if err != nil {
			t.Fatal(err)
		}
		if _, err := d.Write([]byte(svgDoc)); err != nil {
			t.Fatal(err)
		}
		if err := p.Drain(); err != nil {
			t.Fatal(err)
		}
		return sink.calls[len(sink.calls)-1].payload
	}

	first := display()
	second := display()

	firstIDs := idPattern.FindStringSubmatch(first)
	secondIDs := idPattern.FindStringSubmatch(second)
	if firstIDs == nil || secondIDs == nil {
		t.Fatal("rewritten documents lost their id attributes")
	}
	if firstIDs[1] == "glyph1" {
		t.Fatal("id was not rewritten")
	}
	if firstIDs[1] == secondIDs[1] {
		t.Fatal("two displays must not share an id")
	}

	// definition/reference pairs stay linked within each document
	for _, doc := range []string{first, second} {
		id := idPattern.FindStringSubmatch(doc)[1]
		if !strings.Contains(doc, `href="#`+id+`"`) {
			t.Fatalf("reference does not follow its rewritten id in %q", doc)
		}
	}
	if sink.calls[0].mime != "image/svg+xml" {
		t.Fatalf("svg mime = %q", sink.calls[0].mime)
	}
}

func TestCleanup_DiscardsWithoutDisplay(t *testing.T) {
	e, p, sink, hooks := newPipeline(t)

	d, err := e.OpenDevice()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Write([]byte("partial output")); err != nil {
		t.Fatal(err)
	}

	// evaluation unit fails: the notebook fires the post-error hook
	hooks.runPostError()

	if len(sink.calls) != 0 {
		t.Fatal("failed evaluation unit must produce zero display calls")
	}
	entries, _ := os.ReadDir(p.Dir())
	if len(entries) != 0 {
		t.Fatalf("%d files left after cleanup", len(entries))
	}
	if e.CurrentDevice() != sexp.NullDevice {
		t.Fatal("cleanup should close the device")
	}
}

func TestHooks_DriveDrain(t *testing.T) {
	e, _, sink, hooks := newPipeline(t)

	d, err := e.OpenDevice()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Write([]byte("page")); err != nil {
		t.Fatal(err)
	}
	hooks.runPostExecute()

	if len(sink.calls) != 1 {
		t.Fatalf("post-execute hook displayed %d files, want 1", len(sink.calls))
	}
}

func TestDrain_SinkFailureAbortsCycle(t *testing.T) {
	e, p, sink, _ := newPipeline(t)
	sink.fail = os.ErrPermission

	d, _ := e.OpenDevice()
	if _, err := d.Write([]byte("page")); err != nil {
		t.Fatal(err)
	}
	if err := p.Drain(); err == nil {
		t.Fatal("sink failure must fail the drain cycle")
	}
	// stale files are swept by the next cleanup, never accumulated
	p.Cleanup()
	entries, _ := os.ReadDir(p.Dir())
	if len(entries) != 0 {
		t.Fatal("cleanup after failed drain left files behind")
	}
}

func TestClose_RemovesTempDir(t *testing.T) {
	e := sexp.New()
	sink := &captureSink{}
	hooks := &stubHooks{}
	p, err := New(e, sink, hooks)
	if err != nil {
		t.Fatal(err)
	}
	dir := p.Dir()
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatal("temp directory should be removed on close")
	}
}

func TestRewriteGlyphIDs(t *testing.T) {
	in := []byte(`<g id="glyph0-1"/><use href="#glyph0-1"/><g id="other"/>`)
	out := string(rewriteGlyphIDs(in, "abc123"))
	if !strings.Contains(out, `id="glyphabc123-0-1"`) {
		t.Fatalf("definition not rewritten: %s", out)
	}
	if !strings.Contains(out, `href="#glyphabc123-0-1"`) {
		t.Fatalf("reference not rewritten: %s", out)
	}
	if !strings.Contains(out, `id="other"`) {
		t.Fatal("non-glyph ids must be left alone")
	}
}
