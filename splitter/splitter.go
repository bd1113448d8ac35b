// Package splitter implements the first-level XML splitting state machine:
// it watches the token events produced by xmlstream.Parser and, every time
// a direct child of the document root closes, cuts that child's verbatim
// byte range out of a window.Window and wraps it into a standalone XML
// document.
package splitter

import (
	"fmt"
	"strings"

	"github.com/georocket/georocket-go/window"
	"github.com/georocket/georocket-go/xmlstream"
)

// Chunk is a standalone, well-formed XML document carved out of one
// first-level child of the source's root element.
type Chunk string

// Splitter is the FirstLevelSplitter state machine described by the
// ingest pipeline: it owns no byte data itself, only offsets and a small
// namespace stack, and defers to a window.Window to produce the verbatim
// chunk text.
//
// A Splitter is created once per ingest and is not safe for concurrent
// use.
type Splitter struct {
	win *window.Window

	depth int
	decl  *xmlstream.Decl

	rootName  xmlstream.QName
	hasRoot   bool
	nsStack   [][]xmlstream.NSBinding
	chunkAt   int64
	inChunk   bool
	chunkName xmlstream.QName
}

// New creates a Splitter that slices chunk text out of win.
func New(win *window.Window) *Splitter {
	return &Splitter{win: win}
}

// OnEvent feeds one tokenizer event to the state machine. It returns a
// Chunk and ok=true exactly when ev closes a first-level element; every
// other event returns ok=false.
func (s *Splitter) OnEvent(ev xmlstream.Event) (Chunk, bool, error) {
	switch ev.Kind {
	case xmlstream.StartDocument:
		s.decl = ev.Decl
		return "", false, nil

	case xmlstream.StartElement:
		return s.onStart(ev)

	case xmlstream.EndElement:
		return s.onEnd(ev)

	default:
		// Characters/Comment/ProcessingInstruction/EndDocument never
		// affect chunk boundaries; prolog/epilog material is discarded.
		return "", false, nil
	}
}

func (s *Splitter) onStart(ev xmlstream.Event) (Chunk, bool, error) {
	switch s.depth {
	case 0:
		s.rootName = ev.Name
		s.hasRoot = true
		s.pushNamespaces(ev.Namespaces)
		s.depth = 1
	case 1:
		s.chunkAt = ev.StartOffset
		s.chunkName = ev.Name
		s.inChunk = true
		s.pushNamespaces(ev.Namespaces)
		s.depth = 2
	default:
		s.pushNamespaces(ev.Namespaces)
		s.depth++
	}
	return "", false, nil
}

func (s *Splitter) onEnd(ev xmlstream.Event) (Chunk, bool, error) {
	switch {
	case s.depth <= 0:
		return "", false, fmt.Errorf("splitter: unbalanced end tag %q at depth 0", ev.Name)
	case s.depth == 1:
		s.popNamespaces()
		s.depth = 0
		return "", false, nil
	default:
		s.depth--
		s.popNamespaces()
		if s.depth != 1 {
			return "", false, nil
		}
		chunk, err := s.emit(ev.Offset)
		s.inChunk = false
		return chunk, err == nil, err
	}
}

func (s *Splitter) emit(end int64) (Chunk, error) {
	if !s.inChunk {
		return "", fmt.Errorf("splitter: emit called with no open first-level element")
	}
	text, err := s.win.TextSlice(s.chunkAt, end)
	if err != nil {
		return "", fmt.Errorf("splitter: slicing chunk [%d, %d): %w", s.chunkAt, end, err)
	}

	var b strings.Builder
	b.WriteString(declString(s.decl))
	b.WriteByte('\n')
	b.WriteByte('<')
	b.WriteString(s.rootName.String())
	s.writeNamespaces(&b)
	b.WriteString(">\n")
	b.WriteString(text)
	b.WriteString("\n</")
	b.WriteString(s.rootName.String())
	b.WriteString(">\n")

	return Chunk(b.String()), nil
}

func (s *Splitter) pushNamespaces(bindings []xmlstream.NSBinding) {
	s.nsStack = append(s.nsStack, bindings)
}

func (s *Splitter) popNamespaces() {
	if len(s.nsStack) == 0 {
		return
	}
	s.nsStack = s.nsStack[:len(s.nsStack)-1]
}

// writeNamespaces renders every binding currently on the stack — root down
// to the parent of the in-progress first-level element, since that
// element's own frame has already been popped by the time emit runs — in
// declaration order.
func (s *Splitter) writeNamespaces(b *strings.Builder) {
	for _, frame := range s.nsStack {
		for _, ns := range frame {
			b.WriteByte(' ')
			b.WriteString("xmlns")
			if ns.Prefix != "" {
				b.WriteByte(':')
				b.WriteString(ns.Prefix)
			}
			b.WriteString(`="`)
			b.WriteString(escapeAttr(ns.URI))
			b.WriteString(`"`)
		}
	}
}

// declString renders the XML declaration to place at the top of each
// chunk, preserving the source declaration's attributes when one was
// seen and falling back to a bare version-only declaration otherwise.
func declString(d *xmlstream.Decl) string {
	if d == nil || d.Version == "" {
		return `<?xml version="1.0"?>`
	}
	var b strings.Builder
	b.WriteString(`<?xml version="`)
	b.WriteString(d.Version)
	b.WriteByte('"')
	if d.Encoding != "" {
		b.WriteString(` encoding="`)
		b.WriteString(d.Encoding)
		b.WriteByte('"')
	}
	if d.Standalone != "" {
		b.WriteString(` standalone="`)
		b.WriteString(d.Standalone)
		b.WriteByte('"')
	}
	b.WriteString("?>")
	return b.String()
}

func escapeAttr(s string) string {
	if !strings.ContainsAny(s, "&<>\"") {
		return s
	}
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}

// Depth reports the splitter's current nesting level: 0 before/after the
// root, 1 inside the root between first-level children, 2+ inside a
// first-level element's own subtree.
func (s *Splitter) Depth() int { return s.depth }

// HasRoot reports whether a root start tag has been observed yet.
func (s *Splitter) HasRoot() bool { return s.hasRoot }

// OpenChunkStart reports the absolute offset of the first-level element
// currently being accumulated, if any. The driver uses this to compute
// how far the window's head may safely advance: bytes at or after this
// offset must stay retained until the chunk is emitted.
func (s *Splitter) OpenChunkStart() (int64, bool) {
	return s.chunkAt, s.inChunk
}
