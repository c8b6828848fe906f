// Package graphics captures the engine's plot output for inline notebook
// display.
//
// The pipeline owns one temp directory per embedding session. It installs
// standing device options so that each "open a device" request inside the
// engine becomes a file-backed device of the selected kind, writing pages
// to a zero-padded filename sequence. The notebook's lifecycle hooks drive
// the rest:
//
//   - after a successful evaluation unit, Drain closes the device,
//     post-processes every produced file in creation order, hands each to
//     the display sink with its MIME type, and deletes it;
//   - after a failed evaluation unit, Cleanup closes the device and
//     discards all files silently, so partial output never reaches the
//     sink.
//
// Raster output (PNG) passes through byte-for-byte. Vector output (SVG)
// has its glyph ids salted with a per-display random suffix so sibling
// images embedded in one document cannot collide.
//
// All pipeline operations serialize on one lock: drain or cleanup for
// evaluation unit N completes before the device for unit N+1 opens, since
// both share the temp directory and the engine's single device slot.
package graphics
