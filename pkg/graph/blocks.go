// Package graph splits an instruction listing into basic blocks and renders its control flow.
package graph

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/dylandreimerink/asmviz/pkg/machine"
)

// Flow is implemented by instructions which can change the flow of execution.
type Flow interface {
	Branch() (target uint64, conditional bool, ok bool)
	Call() bool
	Terminates() bool
}

// Line is a single line of the listing.
type Line struct {
	Index int
	Text  string
	// Inst is nil if the line could not be decoded
	Inst machine.Instruction
}

type Block struct {
	Index int
	Lines []Line

	// The next block if we don't branch
	NoBranch *Block
	// The next block if we do branch
	Branch *Block
}

// Last returns the last line of the block.
func (b *Block) Last() Line {
	return b.Lines[len(b.Lines)-1]
}

// Calls returns true if the block ends with a function call.
func (b *Block) Calls() bool {
	f, ok := b.Last().Inst.(Flow)
	return ok && f.Call()
}

func (b *Block) String() string {
	noBranch := -1
	if b.NoBranch != nil {
		noBranch = b.NoBranch.Index
	}

	branch := -1
	if b.Branch != nil {
		branch = b.Branch.Index
	}

	var sb strings.Builder
	for _, l := range b.Lines {
		fmt.Fprintf(&sb, "%d %s\n", l.Index, l.Text)
	}

	return fmt.Sprintf("Block %d:\n%sNo-Branch: %d\nBranch: %d\n", b.Index, sb.String(), noBranch, branch)
}

// Blocks decodes the loaded listing of m and splits it into basic blocks. A new block starts at every branch target
// and after every instruction which can change the flow of execution.
func Blocks(m machine.Machine) []*Block {
	code := m.Code()
	if len(code) == 0 {
		return nil
	}

	start := m.CodeStart()
	toIndex := func(addr uint64) (int, bool) {
		if addr < start || (addr-start)%machine.InstructionSize != 0 {
			return 0, false
		}
		idx := (addr - start) / machine.InstructionSize
		if idx >= uint64(len(code)) {
			return 0, false
		}
		return int(idx), true
	}

	lines := make([]Line, len(code))
	targets := make(map[int]int)
	leaders := map[int]bool{0: true}
	for i, text := range code {
		lines[i] = Line{Index: i, Text: text}

		inst, err := m.Parse(text)
		if err != nil {
			continue
		}
		lines[i].Inst = inst

		f, ok := inst.(Flow)
		if !ok {
			continue
		}

		if target, _, ok := f.Branch(); ok {
			leaders[i+1] = true
			if idx, ok := toIndex(target); ok {
				targets[i] = idx
				leaders[idx] = true
			}
		}

		if f.Terminates() {
			leaders[i+1] = true
		}
	}

	var (
		blocks  []*Block
		byStart = make(map[int]*Block)
	)
	for i, line := range lines {
		if leaders[i] {
			b := &Block{Index: len(blocks)}
			blocks = append(blocks, b)
			byStart[i] = b
		}

		cur := blocks[len(blocks)-1]
		cur.Lines = append(cur.Lines, line)
	}

	for i, b := range blocks {
		last := b.Last()

		var next *Block
		if i+1 < len(blocks) {
			next = blocks[i+1]
		}

		f, ok := last.Inst.(Flow)
		if !ok {
			b.NoBranch = next
			continue
		}

		if f.Terminates() {
			continue
		}

		_, conditional, isBranch := f.Branch()
		if !isBranch || conditional {
			b.NoBranch = next
		}

		if idx, ok := targets[last.Index]; ok {
			b.Branch = byStart[idx]
		}
	}

	return blocks
}

// Leaders returns the listing index of the first line of every block, in order.
func Leaders(blocks []*Block) []int {
	idx := make([]int, 0, len(blocks))
	for _, b := range blocks {
		idx = append(idx, b.Lines[0].Index)
	}

	slices.Sort(idx)
	return idx
}
