package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/bz-cogs/aiuser-rag/pkg/domain/types"
)

func TestNewContentHash(t *testing.T) {
	h := types.NewContentHash("the quick brown fox")
	gt.NoError(t, h.Validate())

	// Same input always digests to the same hash
	gt.Value(t, types.NewContentHash("the quick brown fox")).Equal(h)

	// Different input yields a different hash
	gt.Value(t, types.NewContentHash("the quick brown dog")).NotEqual(h)
}

func TestContentHashValidate(t *testing.T) {
	gt.Error(t, types.ContentHash("").Validate())
	gt.Error(t, types.ContentHash("not-a-hash").Validate())
	gt.Error(t, types.ContentHash("ABCDEF").Validate())
}

func TestPointIDIsDeterministic(t *testing.T) {
	h := types.NewContentHash("some chunk text")
	id1 := h.PointID()
	id2 := h.PointID()

	gt.Value(t, id1).Equal(id2)
	// UUID format: 36 chars with hyphens
	gt.Value(t, len(id1)).Equal(36)

	other := types.NewContentHash("other chunk text")
	gt.Value(t, other.PointID()).NotEqual(id1)
}
