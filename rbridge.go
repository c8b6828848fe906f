package rbridge

// MIME types handed to a DisplaySink by the graphics pipeline.
const (
	MIMEPNG = "image/png"
	MIMESVG = "image/svg+xml"
)

// DisplaySink receives rendered output for the host's presentation layer.
// Payload is raw bytes for raster kinds and markup text for vector kinds.
// This is the only place output crosses back to the host.
type DisplaySink interface {
	Display(mimeType string, payload []byte) error
}

// NotebookHooks is the notebook's execution-cycle hook registry. The
// graphics pipeline registers its drain and cleanup callbacks exactly once
// during initialization; the hook mechanism itself belongs to the notebook.
type NotebookHooks interface {
	// PushPostExecuteHook runs fn after each successful evaluation unit.
	PushPostExecuteHook(fn func())
	// PushPostErrorHook runs fn after an evaluation unit fails.
	PushPostErrorHook(fn func())
}

// DisplayFunc adapts a plain function to the DisplaySink interface.
type DisplayFunc func(mimeType string, payload []byte) error

// Display implements DisplaySink.
func (f DisplayFunc) Display(mimeType string, payload []byte) error {
	return f(mimeType, payload)
}
