package graphics

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// The engine's vector device assigns glyph definitions ids with a fixed
// prefix ("glyph0-1", ...) and references them via same-document links
// (href="#glyph0-1"). Two plots embedded in one rendered document would
// collide on those ids, a known defect class in markup viewers, so every
// displayed document gets the prefix salted with a fresh random suffix.

const glyphIDPrefix = "glyph"

// rewriteGlyphIDs rewrites every id definition and same-document reference
// carrying the glyph prefix. Definition and reference sites are rewritten
// identically, keeping each pair linked within the document.
func rewriteGlyphIDs(doc []byte, suffix string) []byte {
	s := string(doc)
	s = strings.ReplaceAll(s, `id="`+glyphIDPrefix, `id="`+glyphIDPrefix+suffix+`-`)
	s = strings.ReplaceAll(s, `href="#`+glyphIDPrefix, `href="#`+glyphIDPrefix+suffix+`-`)
	return []byte(s)
}

// randomSuffix returns a short random token, fresh per display call.
func randomSuffix() string {
	var b [6]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(b[:])
}
