package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/freeup86/resource-pulse-sub001/pkg/errors"
)

func TestNewIndex_RejectsInvertedAllocation(t *testing.T) {
	snap := &Snapshot{
		Resources: []Resource{{ID: "r1"}},
		Allocations: []Allocation{
			alloc("a1", "r1", "p1", DateRange{Start: date(2025, time.March, 1), End: date(2025, time.February, 1)}, 50),
		},
	}
	_, err := newIndex(snap)
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidRange))
}

func TestNewIndex_RejectsNegativeCapacity(t *testing.T) {
	snap := &Snapshot{
		Resources: []Resource{{ID: "r1"}},
		Capacity:  []CapacityEntry{{ResourceID: "r1", Year: 2025, Month: time.March, AvailableCapacity: -10}},
	}
	_, err := newIndex(snap)
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidRange))
}

func TestIndex_CapacityAndLoad(t *testing.T) {
	snap := &Snapshot{
		Resources: []Resource{{ID: "r1"}},
		Allocations: []Allocation{
			alloc("a1", "r1", "p1", span(2025, time.March, 1, 2025, time.March, 31), 40),
			alloc("a2", "r1", "p2", span(2025, time.March, 15, 2025, time.April, 15), 30),
		},
		Capacity: []CapacityEntry{
			{ResourceID: "r1", Year: 2025, Month: time.March, AvailableCapacity: 90, PlannedTimeOff: 10},
		},
	}
	idx, err := newIndex(snap)
	require.NoError(t, err)

	assert.Equal(t, 80.0, idx.capacityOn("r1", date(2025, time.March, 2)))
	assert.Equal(t, 100.0, idx.capacityOn("r1", date(2025, time.April, 2)))
	assert.Equal(t, 40.0, idx.loadOn("r1", date(2025, time.March, 14)))
	assert.Equal(t, 70.0, idx.loadOn("r1", date(2025, time.March, 15)))
	assert.Equal(t, 30.0, idx.loadOn("r1", date(2025, time.April, 15)))
	assert.Equal(t, 0.0, idx.loadOn("r1", date(2025, time.April, 16)))
}

func TestIndex_SelectResources(t *testing.T) {
	snap := &Snapshot{
		Resources: []Resource{{ID: "r1"}, {ID: "r2"}, {ID: "r3"}},
		Failures:  []ResourceFailure{{ResourceID: "r3", Reason: "加载失败"}},
	}
	idx, err := newIndex(snap)
	require.NoError(t, err)

	all, failures := idx.selectResources(nil)
	require.Len(t, all, 2)
	assert.Equal(t, "r1", all[0].ID)
	assert.Len(t, failures, 1)

	some, failures := idx.selectResources([]string{"r2", "ghost", "r2"})
	require.Len(t, some, 1)
	assert.Equal(t, "r2", some[0].ID)
	require.Len(t, failures, 2)
	assert.Equal(t, "ghost", failures[0].ResourceID)
	assert.Equal(t, "r3", failures[1].ResourceID)
}

func TestProject_MarginPercent(t *testing.T) {
	budget, actual := rates(100000, 85000)
	p := Project{Budget: budget, ActualCost: actual}
	assert.InDelta(t, 15.0, p.MarginPercent(), 1e-9)
	assert.Equal(t, 0.0, Project{}.MarginPercent())
}
