package textfield

import (
	"fmt"
	"strings"
)

// FieldID identifies one of the fields in a FieldSet. The numeric order is the focus cycle order.
type FieldID int

const (
	FieldRegister FieldID = iota
	FieldMemory
	FieldValue

	fieldCount
)

func (id FieldID) String() string {
	switch id {
	case FieldRegister:
		return "register"
	case FieldMemory:
		return "memory"
	case FieldValue:
		return "value"
	}

	return fmt.Sprintf("FieldID(%d)", int(id))
}

// FieldIDs lists all fields in focus order.
var FieldIDs = []FieldID{FieldRegister, FieldMemory, FieldValue}

// ParseFieldID parses a field name or one of its short forms.
func ParseFieldID(s string) (FieldID, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "register", "reg", "r":
		return FieldRegister, nil
	case "memory", "mem", "m", "address", "addr":
		return FieldMemory, nil
	case "value", "val", "v":
		return FieldValue, nil
	}

	return 0, fmt.Errorf("unknown field '%s', pick from: register, memory, value", s)
}

// Role describes what kind of number a field is expected to hold.
type Role int

const (
	RoleRegisterIndex Role = iota
	RoleMemoryAddress
	RoleRawValue
)

// Field is a labeled editor with activity and visibility state.
type Field struct {
	Label   string
	Hint    string
	Role    Role
	Active  bool
	Visible bool
	Editor  *Editor
}

// Key is a non printable editing key which can be dispatched to the active field.
type Key int

const (
	KeyBackspace Key = iota
	KeyDelete
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyClear
	// KeyTab moves focus to the next field.
	KeyTab
)

// ParseKey maps a key name to a Key.
func ParseKey(s string) (Key, error) {
	switch strings.ToLower(s) {
	case "backspace", "bs":
		return KeyBackspace, nil
	case "delete", "del":
		return KeyDelete, nil
	case "left":
		return KeyLeft, nil
	case "right":
		return KeyRight, nil
	case "home":
		return KeyHome, nil
	case "end":
		return KeyEnd, nil
	case "clear":
		return KeyClear, nil
	case "tab":
		return KeyTab, nil
	}

	return 0, fmt.Errorf("unknown key '%s'", s)
}

// KeyNames contains the names accepted by ParseKey.
var KeyNames = []string{"backspace", "delete", "left", "right", "home", "end", "clear", "tab"}

// FieldSet owns the register, memory address and value fields and tracks which one, if any, receives input.
type FieldSet struct {
	fields [fieldCount]Field
	active FieldID
	// hasActive is false when no field has focus
	hasActive bool
}

// NewFieldSet creates the three fields, each with the given capacity.
func NewFieldSet(capacity int) *FieldSet {
	fs := &FieldSet{}
	fs.fields[FieldRegister] = Field{
		Label:  "Register",
		Hint:   "0-32",
		Role:   RoleRegisterIndex,
		Editor: NewEditor(capacity),
	}
	fs.fields[FieldMemory] = Field{
		Label:  "Memory Address",
		Hint:   "0xAddress",
		Role:   RoleMemoryAddress,
		Editor: NewEditor(capacity),
	}
	fs.fields[FieldValue] = Field{
		Label:  "Value",
		Hint:   "Value",
		Role:   RoleRawValue,
		Editor: NewEditor(capacity),
	}

	return fs
}

func (fs *FieldSet) valid(id FieldID) bool {
	return id >= 0 && id < fieldCount
}

// Activate gives focus to the field, taking it away from the previously active field.
func (fs *FieldSet) Activate(id FieldID) {
	if !fs.valid(id) {
		return
	}

	if fs.hasActive {
		fs.fields[fs.active].Active = false
	}

	fs.active = id
	fs.hasActive = true
	fs.fields[id].Active = true
}

// Release removes focus from all fields.
func (fs *FieldSet) Release() {
	if fs.hasActive {
		fs.fields[fs.active].Active = false
	}
	fs.hasActive = false
}

// CycleFocus activates the next field in focus order, or the first field if none is active.
func (fs *FieldSet) CycleFocus() {
	if !fs.hasActive {
		fs.Activate(FieldRegister)
		return
	}

	fs.Activate((fs.active + 1) % fieldCount)
}

// Active returns the field which has focus.
func (fs *FieldSet) Active() (FieldID, bool) {
	return fs.active, fs.hasActive
}

// DispatchChar inserts ch into the active field.
func (fs *FieldSet) DispatchChar(ch rune) {
	if !fs.hasActive {
		return
	}

	fs.fields[fs.active].Editor.Insert(ch)
}

// DispatchKey applies an editing key to the active field. KeyTab works even when no field is active.
func (fs *FieldSet) DispatchKey(key Key) {
	if key == KeyTab {
		fs.CycleFocus()
		return
	}

	if !fs.hasActive {
		return
	}

	e := fs.fields[fs.active].Editor
	switch key {
	case KeyBackspace:
		e.DeleteBefore()
	case KeyDelete:
		e.DeleteAt()
	case KeyLeft:
		e.MoveLeft()
	case KeyRight:
		e.MoveRight()
	case KeyHome:
		e.MoveHome()
	case KeyEnd:
		e.MoveEnd()
	case KeyClear:
		e.Clear()
	}
}

// Field returns the field with the given id. The returned pointer stays valid for the lifetime of the set.
func (fs *FieldSet) Field(id FieldID) *Field {
	if !fs.valid(id) {
		return nil
	}

	return &fs.fields[id]
}

// Text returns the contents of a field.
func (fs *FieldSet) Text(id FieldID) string {
	f := fs.Field(id)
	if f == nil {
		return ""
	}

	return f.Editor.String()
}

// ClearAll empties every field and releases focus.
func (fs *FieldSet) ClearAll() {
	for i := range fs.fields {
		fs.fields[i].Editor.Clear()
	}
	fs.Release()
}

// ShowAll marks all fields as visible.
func (fs *FieldSet) ShowAll() {
	for i := range fs.fields {
		fs.fields[i].Visible = true
	}
}

// FieldState is a read only copy of a field.
type FieldState struct {
	ID      FieldID
	Label   string
	Hint    string
	Text    string
	Cursor  int
	Active  bool
	Visible bool
}

// States returns a copy of every field in focus order.
func (fs *FieldSet) States() []FieldState {
	states := make([]FieldState, 0, fieldCount)
	for _, id := range FieldIDs {
		f := fs.fields[id]
		states = append(states, FieldState{
			ID:      id,
			Label:   f.Label,
			Hint:    f.Hint,
			Text:    f.Editor.String(),
			Cursor:  f.Editor.Cursor(),
			Active:  f.Active,
			Visible: f.Visible,
		})
	}

	return states
}
