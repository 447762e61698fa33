package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var janRange = span(2025, time.January, 1, 2025, time.January, 31)

func TestRebalance_ReductionWhenNoReceiverFits(t *testing.T) {
	snap := &Snapshot{
		Resources: []Resource{{ID: "over", Name: "Over"}, {ID: "under", Name: "Under"}},
		Allocations: []Allocation{
			alloc("a1", "over", "p1", janRange, 50),
			alloc("a2", "over", "p2", janRange, 50),
			alloc("a3", "over", "p3", janRange, 20),
			alloc("u1", "under", "p1", janRange, 60),
		},
	}
	plan, err := New().Rebalance(snap, janRange)
	require.NoError(t, err)
	require.Len(t, plan.OverAllocated, 1)
	require.Len(t, plan.UnderAllocated, 1)
	require.Len(t, plan.Suggestions, 1)

	s := plan.Suggestions[0]
	assert.Equal(t, SuggestionReduction, s.Type)
	assert.Equal(t, "a1", s.AllocationID)
	assert.InDelta(t, 12.5, s.UtilizationAmount, 1e-9)
	require.Len(t, s.Impact, 1)
	assert.InDelta(t, 120.0, s.Impact[0].Before, 1e-9)
	assert.InDelta(t, 107.5, s.Impact[0].After, 1e-9)
}

func TestRebalance_TransferInvariants(t *testing.T) {
	snap := &Snapshot{
		Resources: []Resource{
			{ID: "over", Name: "Over"},
			{ID: "light", Name: "Light"},
			{ID: "free", Name: "Free"},
		},
		Allocations: []Allocation{
			alloc("a1", "over", "p1", janRange, 30),
			alloc("a2", "over", "p2", janRange, 90),
			alloc("l1", "light", "p1", janRange, 50),
		},
	}
	plan, err := New().Rebalance(snap, janRange)
	require.NoError(t, err)
	require.Len(t, plan.Suggestions, 1)

	s := plan.Suggestions[0]
	assert.Equal(t, SuggestionTransfer, s.Type)
	assert.Equal(t, "a2", s.AllocationID)
	assert.Equal(t, "over", s.FromResourceID)
	assert.Equal(t, "free", s.ToResourceID)
	assert.NotEqual(t, s.FromResourceID, s.ToResourceID)

	ids := make(map[string]bool)
	for _, a := range snap.Allocations {
		ids[a.ID] = true
	}
	for _, sg := range plan.Suggestions {
		assert.True(t, ids[sg.AllocationID], "建议只能引用已有分配")
		for _, imp := range sg.Impact {
			if imp.ResourceID == sg.ToResourceID {
				assert.LessOrEqual(t, imp.After, fullUtilization)
			}
		}
	}
	// 建议只是数据
	assert.Equal(t, "over", snap.Allocations[1].ResourceID)
}

func TestRebalance_NothingToDo(t *testing.T) {
	balanced := &Snapshot{
		Resources:   []Resource{{ID: "r1"}, {ID: "r2"}},
		Allocations: []Allocation{alloc("a1", "r1", "p1", janRange, 90)},
	}
	plan, err := New().Rebalance(balanced, janRange)
	require.NoError(t, err)
	assert.Empty(t, plan.Suggestions)
	assert.NotEmpty(t, plan.Message)

	allBusy := &Snapshot{
		Resources: []Resource{{ID: "r1"}, {ID: "r2"}},
		Allocations: []Allocation{
			alloc("a1", "r1", "p1", janRange, 130),
			alloc("a2", "r2", "p1", janRange, 85),
		},
	}
	plan, err = New().Rebalance(allBusy, janRange)
	require.NoError(t, err)
	assert.Len(t, plan.OverAllocated, 1)
	assert.Empty(t, plan.UnderAllocated)
	assert.Empty(t, plan.Suggestions)
}

func TestRebalance_ReceiverCapacityNotReused(t *testing.T) {
	snap := &Snapshot{
		Resources: []Resource{{ID: "o1"}, {ID: "o2"}, {ID: "u"}},
		Allocations: []Allocation{
			alloc("x1", "o1", "p1", janRange, 60),
			alloc("x2", "o1", "p2", janRange, 60),
			alloc("y1", "o2", "p1", janRange, 60),
			alloc("y2", "o2", "p2", janRange, 50),
		},
	}
	plan, err := New().Rebalance(snap, janRange)
	require.NoError(t, err)

	received := 0.0
	for _, s := range plan.Suggestions {
		if s.Type == SuggestionTransfer && s.ToResourceID == "u" {
			received += s.UtilizationAmount
		}
	}
	assert.LessOrEqual(t, received, fullUtilization)
	require.Len(t, plan.Suggestions, 2)
	assert.Equal(t, SuggestionTransfer, plan.Suggestions[0].Type)
	assert.Equal(t, SuggestionReduction, plan.Suggestions[1].Type)
}
