package session

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dylandreimerink/asmviz/pkg/machine"
	"github.com/dylandreimerink/asmviz/pkg/textfield"
)

// Edit is a single edit of the active field, either a typed character or an editing key.
type Edit struct {
	Char  rune
	Key   textfield.Key
	isKey bool
}

// Char returns an edit which types ch.
func Char(ch rune) Edit {
	return Edit{Char: ch}
}

// Key returns an edit which presses k.
func Key(k textfield.Key) Edit {
	return Edit{Key: k, isKey: true}
}

// ActivateField gives input focus to a field.
func (c *Controller) ActivateField(id textfield.FieldID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fields.Activate(id)
}

// ReleaseFields removes focus from the active field, if any.
func (c *Controller) ReleaseFields() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fields.Release()
}

// ActiveField returns the field which has focus.
func (c *Controller) ActiveField() (textfield.FieldID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fields.Active()
}

// EditActiveField applies edits to the active field, edits are dropped if no field is active.
func (c *Controller) EditActiveField(edits ...Edit) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range edits {
		if e.isKey {
			c.fields.DispatchKey(e.Key)
		} else {
			c.fields.DispatchChar(e.Char)
		}
	}
}

// SetField replaces the text of a field as if it was typed, without changing focus.
func (c *Controller) SetField(id textfield.FieldID, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f := c.fields.Field(id); f != nil {
		f.Editor.SetText(text)
	}
}

// ShowFields marks all fields as visible, front-ends call it once they render the input area.
func (c *Controller) ShowFields() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fields.ShowAll()
}

// FieldStates returns a copy of all fields.
func (c *Controller) FieldStates() []textfield.FieldState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fields.States()
}

// CommitResult describes which parts of a commit were applied.
type CommitResult struct {
	RegisterSet   bool
	Register      int
	RegisterValue uint64

	MemorySet   bool
	Address     uint64
	MemoryValue uint64
}

// CommitValue writes the value field to the register in the register field and to the stack word at the address
// in the memory field. Both writes are independent and are skipped silently if their inputs are missing or out of
// range. Afterwards all fields are cleared and focus is released.
func (c *Controller) CommitValue() CommitResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	var res CommitResult

	regText := c.fields.Text(textfield.FieldRegister)
	memText := c.fields.Text(textfield.FieldMemory)
	valText := c.fields.Text(textfield.FieldValue)

	if c.initialized && valText != "" {
		if regText != "" {
			idx := ParseRegisterIndex(regText)
			if idx >= 0 && idx < machine.NumRegisters {
				value := ParseValue(valText)
				if err := c.m.Registers().Set(int(idx), value); err == nil {
					res.RegisterSet = true
					res.Register = int(idx)
					res.RegisterValue = value

					c.log.WithFields(logrus.Fields{
						"register": machine.RegisterName(int(idx)),
						"value":    fmt.Sprintf("0x%x", value),
					}).Info("register set")
				}
			} else {
				c.log.WithField("register", regText).Debug("register index out of range, skipped")
			}
		}

		if memText != "" {
			addr := ParseValue(memText)
			value := ParseValue(valText)
			if err := c.m.Stack().SetWordAt(addr, value); err == nil {
				res.MemorySet = true
				res.Address = addr
				res.MemoryValue = value

				c.log.WithFields(logrus.Fields{
					"address": fmt.Sprintf("0x%x", addr),
					"value":   fmt.Sprintf("0x%x", value),
				}).Info("memory set")
			} else {
				c.log.WithError(err).Debug("memory write skipped")
			}
		}
	}

	c.fields.ClearAll()

	return res
}
