// Package view calculates which part of a long sequence, like an instruction listing or a stack, fits on screen.
package view

const (
	// CodeCapacity is the amount of instruction lines shown at once
	CodeCapacity = 20
	// CodeLookBehind is the amount of lines shown before the current instruction
	CodeLookBehind = 5
	// StackCapacity is the amount of stack words shown at once
	StackCapacity = 20
)

// Window is a contiguous slice [Start, Start+Count) of a sequence.
type Window struct {
	Start int
	Count int
}

// End returns the index one past the last visible element.
func (w Window) End() int {
	return w.Start + w.Count
}

// Contains returns true if index i is visible.
func (w Window) Contains(i int) bool {
	return i >= w.Start && i < w.End()
}

// Compute returns a window of at most capacity elements which shows focus with up to lookBehind elements before it.
// Unlike a plain max(0, focus-lookBehind) start, the window is pulled back when it would run past the end of the
// sequence so it stays as full as possible. Focus 99 of 100 with capacity 20 gives {80 20}, not {94 6}.
func Compute(focus, length, capacity, lookBehind int) Window {
	if length <= 0 || capacity <= 0 {
		return Window{}
	}

	start := focus - lookBehind
	if start > length-capacity {
		start = length - capacity
	}
	if start < 0 {
		start = 0
	}

	return Window{
		Start: start,
		Count: min(capacity, length-start),
	}
}

// Tail returns a window of at most capacity elements anchored to the end of the sequence.
func Tail(length, capacity int) Window {
	if length <= 0 || capacity <= 0 {
		return Window{}
	}

	start := length - capacity
	if start < 0 {
		start = 0
	}

	return Window{
		Start: start,
		Count: min(capacity, length),
	}
}

// Code is Compute with the code listing settings.
func Code(pcIndex, length int) Window {
	return Compute(pcIndex, length, CodeCapacity, CodeLookBehind)
}

// Stack is Tail with the stack settings.
func Stack(length int) Window {
	return Tail(length, StackCapacity)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
