// Package ingest orchestrates the streaming ingest pipeline: it reads an
// inbound XML body, drives the xmlstream.Parser and splitter.Splitter
// over it, and hands each resulting chunk to a store.Store, enforcing
// the backpressure rule that inbound bytes are never read ahead of the
// parser-and-store's ability to keep up.
package ingest

import (
	"context"
	"fmt"
	"io"

	"github.com/georocket/georocket-go/splitter"
	"github.com/georocket/georocket-go/store"
	"github.com/georocket/georocket-go/window"
	"github.com/georocket/georocket-go/xmlstream"
	"github.com/yaoapp/kun/log"
)

// readBufferSize bounds how many inbound bytes are read per Read call.
// It has no bearing on correctness, only on how finely the drain loop
// interleaves with inbound reads.
const readBufferSize = 32 * 1024

// Result summarizes a completed ingest.
type Result struct {
	// ChunkNames holds the store-assigned name of every chunk emitted,
	// in document order.
	ChunkNames []string
}

// Ingest reads inbound to completion, splitting it into first-level
// chunks and persisting each one to st before resuming inbound. It
// returns once EOF has been observed and every resulting chunk has been
// acknowledged by the store, or as soon as any step fails.
func Ingest(ctx context.Context, inbound io.Reader, st store.Store) (*Result, error) {
	win := window.New()
	p := xmlstream.New()
	sp := splitter.New(win)

	defer func() {
		if err := p.Close(); err != nil {
			log.Warn("ingest: parser close: %s", err.Error())
		}
	}()

	result := &Result{}
	buf := make([]byte, readBufferSize)
	var total int64

	for {
		if err := ctx.Err(); err != nil {
			return nil, ErrCancelled
		}

		n, readErr := inbound.Read(buf)
		if n > 0 {
			total += int64(n)
			win.Append(buf[:n])
			p.Feed(buf[:n])
			if err := drain(ctx, p, sp, st, win, result); err != nil {
				return nil, err
			}
		}

		if readErr == io.EOF {
			if total == 0 {
				return nil, &InvalidArgument{Cause: fmt.Errorf("empty request body")}
			}
			p.EndOfInput()
			if err := drainToEnd(ctx, p, sp, st, win, result); err != nil {
				return nil, err
			}
			return result, nil
		}
		if readErr != nil {
			return nil, &IoError{Cause: readErr}
		}
	}
}

// drain pulls events until the parser reports Incomplete — i.e. it has
// fully consumed the bytes fed so far and needs more before it can make
// further progress.
func drain(ctx context.Context, p *xmlstream.Parser, sp *splitter.Splitter, st store.Store, win *window.Window, result *Result) error {
	for {
		ev, err := p.Next()
		if err != nil {
			return fromParseError(err)
		}
		if ev.Kind == xmlstream.Incomplete {
			return nil
		}
		if err := handleEvent(ctx, ev, sp, st, win, result); err != nil {
			return err
		}
	}
}

// drainToEnd pulls events until EndDocument, used after EndOfInput when
// no further Incomplete is possible (a non-whitespace remainder that
// still can't form a token is a ParseError, not Incomplete).
func drainToEnd(ctx context.Context, p *xmlstream.Parser, sp *splitter.Splitter, st store.Store, win *window.Window, result *Result) error {
	for {
		ev, err := p.Next()
		if err != nil {
			return fromParseError(err)
		}
		if err := handleEvent(ctx, ev, sp, st, win, result); err != nil {
			return err
		}
		if ev.Kind == xmlstream.EndDocument {
			return nil
		}
	}
}

func handleEvent(ctx context.Context, ev xmlstream.Event, sp *splitter.Splitter, st store.Store, win *window.Window, result *Result) error {
	chunk, ok, err := sp.OnEvent(ev)
	if err != nil {
		return &ParseError{Offset: ev.Offset, Cause: err}
	}
	if ok {
		// The only suspension point in the drain loop: inbound stays
		// paused (no further Read calls happen) until this add is
		// acknowledged, keeping at most one store.Add in flight.
		name, err := st.Add(ctx, string(chunk))
		if err != nil {
			return classifyStoreError(err)
		}
		result.ChunkNames = append(result.ChunkNames, name)
	}
	advanceWindow(sp, win, ev.Offset)
	return nil
}

// advanceWindow releases window bytes no longer reachable by either the
// splitter or the parser. Bytes from an in-progress first-level
// element's start onward must stay retained until its chunk is emitted;
// everything strictly before that (or before the current offset, when no
// chunk is in progress) can go.
func advanceWindow(sp *splitter.Splitter, win *window.Window, parserOffset int64) {
	floor := parserOffset
	if start, inChunk := sp.OpenChunkStart(); inChunk && start < floor {
		floor = start
	}
	if floor > win.Head() {
		_ = win.Advance(floor) // best effort; a stale floor is harmless
	}
}

func classifyStoreError(err error) error {
	switch err.(type) {
	case *store.TransientError, *store.PermanentError:
		return err
	default:
		return fmt.Errorf("ingest: store add failed: %w", err)
	}
}
