package machine

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrOutOfRange is returned when accessing an address or index which isn't backed by memory.
var ErrOutOfRange = errors.New("out of range")

// Stack is a contiguous byte region covering the addresses [Bot, Top), accessed as little endian 8 byte words.
type Stack struct {
	Bot uint64
	Top uint64
	mem []byte
}

// NewStack allocates a zeroed stack region covering [bot, top).
func NewStack(bot, top uint64) *Stack {
	if top < bot {
		top = bot
	}

	return &Stack{
		Bot: bot,
		Top: top,
		mem: make([]byte, top-bot),
	}
}

// Contains returns true if addr falls within [Bot, Top).
func (s *Stack) Contains(addr uint64) bool {
	return s != nil && addr >= s.Bot && addr < s.Top
}

// Len returns the amount of whole words in the region.
func (s *Stack) Len() int {
	if s == nil {
		return 0
	}

	return len(s.mem) / WordSize
}

// Word returns the word at index i, where index 0 is the word at Bot.
func (s *Stack) Word(i int) uint64 {
	if i < 0 || i >= s.Len() {
		return 0
	}

	return binary.LittleEndian.Uint64(s.mem[i*WordSize:])
}

// WordAddr returns the address of the word at index i.
func (s *Stack) WordAddr(i int) uint64 {
	return s.Bot + uint64(i)*WordSize
}

// WordIndex returns the index of the word containing addr.
func (s *Stack) WordIndex(addr uint64) (int, error) {
	if s == nil {
		return 0, fmt.Errorf("no stack: %w", ErrOutOfRange)
	}

	if !s.Contains(addr) {
		return 0, fmt.Errorf("address 0x%x not in stack [0x%x, 0x%x): %w", addr, s.Bot, s.Top, ErrOutOfRange)
	}

	i := int((addr - s.Bot) / WordSize)
	if i >= s.Len() {
		return 0, fmt.Errorf("address 0x%x is past the last whole word: %w", addr, ErrOutOfRange)
	}

	return i, nil
}

// WordAt returns the word containing addr.
func (s *Stack) WordAt(addr uint64) (uint64, error) {
	i, err := s.WordIndex(addr)
	if err != nil {
		return 0, err
	}

	return s.Word(i), nil
}

// SetWordAt overwrites the word containing addr.
func (s *Stack) SetWordAt(addr, v uint64) error {
	i, err := s.WordIndex(addr)
	if err != nil {
		return err
	}

	binary.LittleEndian.PutUint64(s.mem[i*WordSize:], v)
	return nil
}

// Load reads a value of size bytes (1, 2, 4 or 8) at the exact address addr.
func (s *Stack) Load(addr uint64, size int) (uint64, error) {
	b, err := s.slice(addr, size)
	if err != nil {
		return 0, err
	}

	switch size {
	case 1:
		return uint64(b[0]), nil
	case 2:
		return uint64(binary.LittleEndian.Uint16(b)), nil
	case 4:
		return uint64(binary.LittleEndian.Uint32(b)), nil
	default:
		return binary.LittleEndian.Uint64(b), nil
	}
}

// Store writes the lower size bytes of v at the exact address addr.
func (s *Stack) Store(addr uint64, size int, v uint64) error {
	b, err := s.slice(addr, size)
	if err != nil {
		return err
	}

	switch size {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(v))
	default:
		binary.LittleEndian.PutUint64(b, v)
	}

	return nil
}

func (s *Stack) slice(addr uint64, size int) ([]byte, error) {
	switch size {
	case 1, 2, 4, 8:
	default:
		return nil, fmt.Errorf("invalid access size %d", size)
	}

	if s == nil {
		return nil, fmt.Errorf("no stack: %w", ErrOutOfRange)
	}

	if !s.Contains(addr) || addr+uint64(size) > s.Top || addr+uint64(size) < addr {
		return nil, fmt.Errorf("%d byte access at 0x%x not in stack [0x%x, 0x%x): %w",
			size, addr, s.Bot, s.Top, ErrOutOfRange)
	}

	off := addr - s.Bot
	return s.mem[off : off+uint64(size)], nil
}
