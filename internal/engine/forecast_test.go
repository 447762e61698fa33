package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/freeup86/resource-pulse-sub001/pkg/errors"
)

// overlappingSnapshot 两段 60% 分配在 2–3 月重叠，叠加后 120%
func overlappingSnapshot() *Snapshot {
	return &Snapshot{
		Resources: []Resource{{ID: "r1", Name: "Alice"}, {ID: "idle", Name: "Idle"}},
		Allocations: []Allocation{
			alloc("a", "r1", "pa", span(2025, time.January, 1, 2025, time.March, 31), 60),
			alloc("b", "r1", "pb", span(2025, time.February, 1, 2025, time.April, 30), 60),
		},
	}
}

func TestForecast_PeakFromOverlap(t *testing.T) {
	e := New()
	r := span(2025, time.January, 1, 2025, time.April, 30)

	fc, err := e.Forecast(overlappingSnapshot(), []string{"r1"}, r, ForecastOptions{IncludeDaily: true, IncludeWeekly: true})
	require.NoError(t, err)
	require.Len(t, fc.Resources, 1)

	rf := fc.Resources[0]
	assert.Len(t, rf.Daily, 120)
	assert.Len(t, rf.Weekly, 18)
	assert.InDelta(t, 120.0, rf.PeakThreshold, 1e-9)
	assert.InDelta(t, 120.0, rf.PeakUtilization, 1e-9)
	assert.InDelta(t, (61*60.0+59*120.0)/120.0, rf.AverageUtilization, 1e-9)
	assert.Equal(t, StatusOptimal, rf.Status)

	require.Len(t, rf.PeakPeriods, 1)
	peak := rf.PeakPeriods[0]
	assert.Equal(t, date(2025, time.February, 1), peak.Start)
	assert.Equal(t, date(2025, time.March, 31), peak.End)
	assert.Equal(t, 59, peak.Days)
	assert.InDelta(t, 120.0, peak.AverageUtilization, 1e-9)
	assert.Equal(t, StatusCritical, peak.Status)

	last := rf.Weekly[len(rf.Weekly)-1]
	assert.Equal(t, date(2025, time.April, 30), last.WeekStart)
	assert.Equal(t, last.WeekStart, last.WeekEnd)
}

func TestForecast_IdleResourceHasNoPeaks(t *testing.T) {
	e := New()
	fc, err := e.Forecast(overlappingSnapshot(), []string{"idle"},
		span(2025, time.January, 1, 2025, time.January, 31), ForecastOptions{})
	require.NoError(t, err)
	require.Len(t, fc.Resources, 1)

	rf := fc.Resources[0]
	assert.Empty(t, rf.PeakPeriods)
	assert.Equal(t, StatusBench, rf.Status)
	assert.Nil(t, rf.Daily)
	assert.Nil(t, rf.Weekly)
}

func TestForecast_OrganizationSummary(t *testing.T) {
	e := New()
	snap := overlappingSnapshot()
	year := span(2025, time.January, 1, 2025, time.December, 31)
	snap.Resources = append(snap.Resources, Resource{ID: "hot", Name: "Hot"}, Resource{ID: "steady", Name: "Steady"})
	snap.Allocations = append(snap.Allocations,
		alloc("h", "hot", "pa", year, 115),
		alloc("s", "steady", "pa", year, 90))

	fc, err := e.Forecast(snap, nil, span(2025, time.January, 1, 2025, time.January, 31), ForecastOptions{})
	require.NoError(t, err)

	assert.Equal(t, 4, fc.TotalResources)
	assert.Equal(t, 1, fc.OverAllocated)
	assert.Equal(t, 1, fc.OptimallyAllocated)
	assert.Equal(t, 2, fc.UnderAllocated) // r1 一月仅 60%，idle 为 0
	assert.InDelta(t, (60+0+115+90)/4.0, fc.AverageUtilization, 1e-9)
}

func TestForecast_PartialFailure(t *testing.T) {
	e := New()
	snap := overlappingSnapshot()
	snap.IsFallbackData = true

	fc, err := e.Forecast(snap, []string{"r1", "ghost"}, span(2025, time.January, 1, 2025, time.January, 31), ForecastOptions{})
	require.NoError(t, err)
	assert.Len(t, fc.Resources, 1)
	require.Len(t, fc.Failures, 1)
	assert.Equal(t, "ghost", fc.Failures[0].ResourceID)
	assert.True(t, fc.IsFallbackData)
}

func TestForecast_InvalidRange(t *testing.T) {
	_, err := New().Forecast(overlappingSnapshot(), nil, span(2025, time.February, 1, 2025, time.January, 1), ForecastOptions{})
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidRange))
}

func TestForecast_Deterministic(t *testing.T) {
	e := New()
	r := span(2025, time.January, 1, 2025, time.April, 30)
	opts := ForecastOptions{IncludeDaily: true, IncludeWeekly: true}
	first, err := e.Forecast(overlappingSnapshot(), nil, r, opts)
	require.NoError(t, err)
	second, err := e.Forecast(overlappingSnapshot(), nil, r, opts)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// 组织健康度 (>110 / <70) 与逐日状态 (110/100/80/50) 两套阈值并存：
// 105% 的人员自身状态为过载，但在组织汇总中计为合理
func TestForecast_OrganizationAndDailyThresholdsDiffer(t *testing.T) {
	e := New()
	r := span(2025, time.January, 1, 2025, time.January, 31)
	snap := &Snapshot{
		Resources:   []Resource{{ID: "r1", Name: "Alice"}},
		Allocations: []Allocation{alloc("a", "r1", "pa", r, 105)},
	}

	fc, err := e.Forecast(snap, nil, r, ForecastOptions{})
	require.NoError(t, err)
	require.Len(t, fc.Resources, 1)

	assert.Equal(t, StatusOverallocated, fc.Resources[0].Status)
	assert.Equal(t, StatusOverallocated, ClassifyUtilization(fc.AverageUtilization))
	assert.Equal(t, 0, fc.OverAllocated)
	assert.Equal(t, 1, fc.OptimallyAllocated)
}
