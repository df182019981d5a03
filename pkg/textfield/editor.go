// Package textfield implements bounded, cursor based text editing for the operand fields of a session and the set
// of fields a user can type into.
package textfield

import (
	"golang.org/x/exp/slices"
)

// DefaultCapacity is the capacity of a field when none is given. One slot is always kept free, so a field of
// DefaultCapacity holds at most DefaultCapacity-1 characters.
const DefaultCapacity = 20

// Editor is a single line text buffer with a movable cursor. The number of characters is bounded by the capacity
// minus one, the cursor is always within [0, Len()].
type Editor struct {
	buf      []rune
	cursor   int
	capacity int
}

// NewEditor creates an empty editor. A capacity smaller than 1 is replaced by DefaultCapacity.
func NewEditor(capacity int) *Editor {
	if capacity < 1 {
		capacity = DefaultCapacity
	}

	return &Editor{
		buf:      make([]rune, 0, capacity),
		capacity: capacity,
	}
}

// Insert writes ch at the cursor and moves the cursor past it. Insert is a no-op if the buffer is full.
func (e *Editor) Insert(ch rune) {
	if len(e.buf) >= e.capacity-1 {
		return
	}

	e.buf = slices.Insert(e.buf, e.cursor, ch)
	e.cursor++
}

// DeleteBefore removes the character left of the cursor, like a backspace.
func (e *Editor) DeleteBefore() {
	if e.cursor == 0 {
		return
	}

	e.buf = slices.Delete(e.buf, e.cursor-1, e.cursor)
	e.cursor--
}

// DeleteAt removes the character under the cursor, like a forward delete. The cursor doesn't move.
func (e *Editor) DeleteAt() {
	if e.cursor >= len(e.buf) {
		return
	}

	e.buf = slices.Delete(e.buf, e.cursor, e.cursor+1)
}

func (e *Editor) MoveLeft() {
	if e.cursor > 0 {
		e.cursor--
	}
}

func (e *Editor) MoveRight() {
	if e.cursor < len(e.buf) {
		e.cursor++
	}
}

func (e *Editor) MoveHome() {
	e.cursor = 0
}

func (e *Editor) MoveEnd() {
	e.cursor = len(e.buf)
}

// Clear empties the buffer and resets the cursor.
func (e *Editor) Clear() {
	e.buf = e.buf[:0]
	e.cursor = 0
}

// SetText replaces the contents of the buffer as if s was typed into an empty field, characters that don't fit are
// dropped.
func (e *Editor) SetText(s string) {
	e.Clear()
	for _, r := range s {
		e.Insert(r)
	}
}

func (e *Editor) String() string {
	return string(e.buf)
}

func (e *Editor) Len() int {
	return len(e.buf)
}

func (e *Editor) Cursor() int {
	return e.cursor
}

func (e *Editor) Cap() int {
	return e.capacity
}

func (e *Editor) Empty() bool {
	return len(e.buf) == 0
}
