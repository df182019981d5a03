package graph

import (
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/dylandreimerink/asmviz/pkg/interp"
)

const callListing = `
	mov x0, #3
	bl double
	cbz x0, done
	b end
double:
	add x0, x0, x0
	ret
done:
	nop
end:
	nop
`

func load(t *testing.T, listing string) *interp.Machine {
	t.Helper()

	code, labels, err := interp.ReadListing(strings.NewReader(listing), 0x4000)
	if err != nil {
		t.Fatal(err)
	}

	m := interp.New()
	m.Reset(0xFF00, 0x4000, code, labels)
	return m
}

func TestBlocks(t *testing.T) {
	blocks := Blocks(load(t, callListing))

	type edges struct {
		start    int
		lines    int
		noBranch int
		branch   int
	}
	expected := []edges{
		{start: 0, lines: 2, noBranch: 1, branch: 3},
		{start: 2, lines: 1, noBranch: 2, branch: 4},
		{start: 3, lines: 1, noBranch: -1, branch: 5},
		{start: 4, lines: 2, noBranch: -1, branch: -1},
		{start: 6, lines: 1, noBranch: 5, branch: -1},
		{start: 7, lines: 1, noBranch: -1, branch: -1},
	}

	if len(blocks) != len(expected) {
		t.Fatalf("expected %d blocks, got %d:\n%s", len(expected), len(blocks), spew.Sdump(blocks))
	}

	idx := func(b *Block) int {
		if b == nil {
			return -1
		}
		return b.Index
	}

	for i, e := range expected {
		b := blocks[i]
		got := edges{
			start:    b.Lines[0].Index,
			lines:    len(b.Lines),
			noBranch: idx(b.NoBranch),
			branch:   idx(b.Branch),
		}
		if got != e {
			t.Errorf("block %d: expected %+v, got %+v\n%s", i, e, got, b)
		}
	}

	if !blocks[0].Calls() || blocks[1].Calls() {
		t.Error("only the first block should end in a call")
	}

	leaders := Leaders(blocks)
	if len(leaders) != 6 || leaders[3] != 4 {
		t.Errorf("unexpected leaders %v", leaders)
	}
}

func TestBlocksUndecodable(t *testing.T) {
	blocks := Blocks(load(t, "nop\nbogus x0\nnop\n"))
	if len(blocks) != 1 || len(blocks[0].Lines) != 3 {
		t.Fatalf("expected a single block, got %d", len(blocks))
	}
	if blocks[0].Lines[1].Inst != nil {
		t.Fatal("undecodable line should have no instruction")
	}
}

func TestListingToGraph(t *testing.T) {
	out := ListingToGraph(load(t, callListing)).String()

	for _, want := range []string{
		"4000: mov x0, #3",
		"4010: add x0, x0, x0",
		"orange",
		"darkgreen",
		"red",
		"func 4010",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("graph is missing %q:\n%s", want, out)
		}
	}
}

func TestListingToGraphEmpty(t *testing.T) {
	out := ListingToGraph(interp.New()).String()
	if strings.Contains(out, "Block") {
		t.Fatalf("expected no blocks for an empty listing:\n%s", out)
	}
}
