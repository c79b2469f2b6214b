// Package source provides the copy-on-write text buffer the engine parses.
// A Buffer couples a backing byte region with a cursor that tracks absolute
// offset plus 1-based line and column. Clones share the backing region;
// the first write through any sharer detaches it by copying the bytes.
package source

import (
	"github.com/macrolang/mpt/internal/types"
)

// Buffer is a character span over a NUL-terminated backing region together
// with a cursor position. The terminating sentinel is part of the region but
// is never considered content: ReachedEnd holds at the last valid index.
type Buffer struct {
	data  []byte
	owned bool
	pos   types.Position
}

// New copies text into a fresh owned backing region and appends the NUL
// sentinel. The cursor starts at offset 0, line 1, column 1.
func New(text string) *Buffer {
	data := make([]byte, len(text)+1)
	copy(data, text)
	return &Buffer{
		data:  data,
		owned: true,
		pos:   types.Position{Offset: 0, Line: 1, Column: 1},
	}
}

// Clone returns a buffer sharing this buffer's backing region. The clone has
// its own cursor and is not owned: a later write through either sharer
// detaches that sharer first.
func (b *Buffer) Clone() *Buffer {
	return &Buffer{data: b.data, owned: false, pos: b.pos}
}

// Len reports the size of the backing region including the sentinel.
func (b *Buffer) Len() int { return len(b.data) }

// Empty reports whether the buffer holds no content (sentinel only).
func (b *Buffer) Empty() bool { return len(b.data) <= 1 }

// ReachedEnd holds once the cursor sits on the sentinel.
func (b *Buffer) ReachedEnd() bool { return b.pos.Offset >= len(b.data)-1 }

// Pos returns the current cursor position.
func (b *Buffer) Pos() types.Position { return b.pos }

// At returns the byte at absolute offset i, or NUL past the region.
// Scanning loops rely on the sentinel semantics: any out-of-range read
// behaves like the terminator.
func (b *Buffer) At(i int) byte {
	if i < 0 || i >= len(b.data) {
		return 0
	}
	return b.data[i]
}

// Cur returns the byte under the cursor.
func (b *Buffer) Cur() byte { return b.At(b.pos.Offset) }

// Advance moves the cursor one character forward, updating line and column.
// Advancing over '\n' increments the line and resets the column. At the end
// of the buffer it is a no-op.
func (b *Buffer) Advance() {
	if b.ReachedEnd() {
		return
	}
	if b.data[b.pos.Offset] == '\n' {
		b.pos.Line++
		b.pos.Column = 1
	} else {
		b.pos.Column++
	}
	b.pos.Offset++
}

// AdvanceBy moves the cursor up to n characters forward, stopping at the end.
func (b *Buffer) AdvanceBy(n int) {
	for n > 0 && !b.ReachedEnd() {
		b.Advance()
		n--
	}
}

// AdvanceTo moves the cursor forward to the absolute offset off. Offsets at
// or behind the cursor leave it unchanged; line/column stay consistent
// because movement is always character by character.
func (b *Buffer) AdvanceTo(off int) {
	if off > b.pos.Offset {
		b.AdvanceBy(off - b.pos.Offset)
	}
}

// Matches reports whether the text at the cursor literally equals lit.
// The comparison is bounds-checked and never reads past the region.
func (b *Buffer) Matches(lit string) bool {
	if len(lit) > len(b.data)-b.pos.Offset {
		return false
	}
	for i := 0; i < len(lit); i++ {
		if b.data[b.pos.Offset+i] != lit[i] {
			return false
		}
	}
	return true
}

// MatchesAt is Matches anchored at an arbitrary absolute offset.
func (b *Buffer) MatchesAt(off int, lit string) bool {
	if off < 0 || len(lit) > len(b.data)-off {
		return false
	}
	for i := 0; i < len(lit); i++ {
		if b.data[off+i] != lit[i] {
			return false
		}
	}
	return true
}

// Substr returns the content of the half-open offset range [start, end).
// The range is clamped to the backing region excluding the sentinel.
func (b *Buffer) Substr(start, end int) string {
	limit := len(b.data) - 1
	if start < 0 {
		start = 0
	}
	if end > limit {
		end = limit
	}
	if start >= end {
		return ""
	}
	return string(b.data[start:end])
}

// SetByte writes c at absolute offset i. A buffer sharing its backing region
// detaches by copying the bytes before the write, so no other sharer ever
// observes the mutation.
func (b *Buffer) SetByte(i int, c byte) {
	if i < 0 || i >= len(b.data)-1 {
		return
	}
	if !b.owned {
		detached := make([]byte, len(b.data))
		copy(detached, b.data)
		b.data = detached
		b.owned = true
	}
	b.data[i] = c
}
