// Package flags contains the command line flags shared by all commands which start a session.
package flags

import (
	"fmt"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/dylandreimerink/asmviz/pkg/session"
)

// Addr is an address flag, it accepts decimal, 0x hexadecimal, 0o octal and 0b binary notation.
type Addr uint64

var _ pflag.Value = (*Addr)(nil)

func (a *Addr) String() string {
	return fmt.Sprintf("0x%X", uint64(*a))
}

func (a *Addr) Set(s string) error {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return fmt.Errorf("invalid address '%s': %w", s, err)
	}

	*a = Addr(v)
	return nil
}

func (a *Addr) Type() string {
	return "address"
}

// Session holds the addresses used to load a listing.
type Session struct {
	PCStart Addr
	PCEnd   Addr
	SPStart Addr
}

// Defaults returns the session flags with their default values.
func Defaults() Session {
	return Session{
		PCStart: Addr(session.DefaultPCStart),
		PCEnd:   Addr(session.DefaultPCEnd),
		SPStart: Addr(session.DefaultSPStart),
	}
}

// Register adds the --pc-start, --pc-end and --sp-start flags to fs.
func (s *Session) Register(fs *pflag.FlagSet) {
	fs.Var(&s.PCStart, "pc-start", "Address of the first instruction of the listing")
	fs.Var(&s.PCEnd, "pc-end", "Execution halts once the program counter reaches this address")
	fs.Var(&s.SPStart, "sp-start", "Initial stack pointer, the stack grows down from here")
}

// Load loads the listing at path into c using the flag values.
func (s *Session) Load(c *session.Controller, path string) error {
	return c.Load(path, uint64(s.PCStart), uint64(s.PCEnd), uint64(s.SPStart))
}
