package chunker_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/bz-cogs/aiuser-rag/pkg/service/chunker"
)

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"The quick brown fox",
		"  leading and trailing  ",
		"tabs\tand\nnewlines\r\n  mixed",
		"UPPER Case MiXeD",
		"",
		"   \t\n ",
	}

	for _, in := range inputs {
		once := chunker.Normalize(in)
		twice := chunker.Normalize(once)
		gt.Value(t, twice).Equal(once)
	}
}

func TestCollapseKeepsCasing(t *testing.T) {
	gt.Value(t, chunker.Collapse("The   Quick\tBrown\nFox")).Equal("The Quick Brown Fox")
	gt.Value(t, chunker.Collapse("  MiXeD Case ")).Equal("MiXeD Case")
	gt.Value(t, chunker.Collapse("  \t ")).Equal("")
}

func TestNormalizeCollapsesWhitespaceAndCase(t *testing.T) {
	gt.Value(t, chunker.Normalize("The   quick\tbrown\nfox")).Equal("the quick brown fox")
	gt.Value(t, chunker.Normalize("  THE QUICK brown fox ")).Equal("the quick brown fox")
	gt.Value(t, chunker.Normalize("")).Equal("")
	gt.Value(t, chunker.Normalize("  \t ")).Equal("")
}

func TestHashEqualForNormalizedEquivalents(t *testing.T) {
	h1 := chunker.Hash("The quick brown fox")
	h2 := chunker.Hash("the   quick brown fox")
	h3 := chunker.Hash("\tTHE QUICK\nBROWN FOX  ")

	gt.Value(t, h2).Equal(h1)
	gt.Value(t, h3).Equal(h1)
	gt.Value(t, chunker.Hash("the quick brown dog")).NotEqual(h1)
}

func TestIsEmoteOnly(t *testing.T) {
	gt.B(t, chunker.IsEmoteOnly("")).True()
	gt.B(t, chunker.IsEmoteOnly("   ")).True()
	gt.B(t, chunker.IsEmoteOnly("<:pepe:123456789>")).True()
	gt.B(t, chunker.IsEmoteOnly("<a:wave:42> <:hi:43>!!")).True()
	gt.B(t, chunker.IsEmoteOnly("?!... ---")).True()
	gt.B(t, chunker.IsEmoteOnly("hello <:pepe:123456789>")).False()
	gt.B(t, chunker.IsEmoteOnly("42")).False()
}
