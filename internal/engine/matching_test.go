package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/freeup86/resource-pulse-sub001/pkg/errors"
)

// matchingSnapshot
//
//	full:    技能全中、完全空闲
//	busy:    技能半中、被其他项目占满
//	novice:  无技能、完全空闲
func matchingSnapshot() *Snapshot {
	q1 := span(2025, time.January, 1, 2025, time.March, 31)
	return &Snapshot{
		AsOf: date(2025, time.January, 1),
		Resources: []Resource{
			{ID: "busy", Name: "Busy", Skills: skills("go")},
			{ID: "novice", Name: "Novice"},
			{ID: "full", Name: "Full", Skills: skills("go", "sql")},
		},
		Projects: []Project{
			{ID: "p", Name: "Billing Revamp", Status: ProjectStatusActive,
				StartDate: q1.Start, EndDate: q1.End, RequiredSkills: skills("go", "sql")},
			{ID: "x", Name: "Internal Tools", Status: ProjectStatusActive,
				StartDate: q1.Start, EndDate: q1.End},
			{ID: "done", Name: "Legacy Sunset", Status: ProjectStatusCompleted,
				StartDate: date(2024, time.January, 1), EndDate: date(2024, time.June, 30)},
			{ID: "undated", Name: "Someday", Status: ProjectStatusPlanning},
		},
		Allocations: []Allocation{
			alloc("a1", "busy", "x", q1, 100),
		},
	}
}

func TestMatchResourcesForProject_Ranking(t *testing.T) {
	e := New()
	list, err := e.MatchResourcesForProject(matchingSnapshot(), "p", MatchQuery{})
	require.NoError(t, err)
	assert.Empty(t, list.Failures)
	got := list.Matches
	require.Len(t, got, 3)

	assert.Equal(t, "full", got[0].ResourceID)
	assert.InDelta(t, 0.75, got[0].Overall, 1e-9)
	assert.Equal(t, "novice", got[1].ResourceID)
	assert.InDelta(t, 0.35, got[1].Overall, 1e-9)
	assert.Equal(t, "busy", got[2].ResourceID)
	assert.InDelta(t, 0.25, got[2].Overall, 1e-9)

	for _, m := range got {
		for _, v := range []float64{m.Skills, m.Availability, m.Experience, m.TeamCompatibility, m.Overall} {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
}

func TestMatchResourcesForProject_LimitAndMinScore(t *testing.T) {
	e := New()
	snap := matchingSnapshot()

	got, err := e.MatchResourcesForProject(snap, "p", MatchQuery{MinScore: 0.3})
	require.NoError(t, err)
	require.Len(t, got.Matches, 2)
	assert.Equal(t, "novice", got.Matches[1].ResourceID)

	got, err = e.MatchResourcesForProject(snap, "p", MatchQuery{Limit: 1})
	require.NoError(t, err)
	require.Len(t, got.Matches, 1)
	assert.Equal(t, "full", got.Matches[0].ResourceID)
}

func TestMatchResourcesForProject_Window(t *testing.T) {
	e := New()
	// 四月 busy 已释放
	got, err := e.MatchResourcesForProject(matchingSnapshot(), "p", MatchQuery{
		Window: span(2025, time.April, 1, 2025, time.April, 30),
	})
	require.NoError(t, err)
	for _, m := range got.Matches {
		assert.Equal(t, 1.0, m.Availability, m.ResourceID)
	}
}

func TestMatchResourcesForProject_Errors(t *testing.T) {
	e := New()
	snap := matchingSnapshot()

	_, err := e.MatchResourcesForProject(snap, "ghost", MatchQuery{})
	assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))

	_, err = e.MatchResourcesForProject(snap, "undated", MatchQuery{})
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidRange))

	_, err = e.MatchResourcesForProject(snap, "p", MatchQuery{
		Window: span(2025, time.April, 30, 2025, time.April, 1),
	})
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidRange))
}

func TestMatchProjectsForResource(t *testing.T) {
	e := New()
	got, err := e.MatchProjectsForResource(matchingSnapshot(), "full", MatchQuery{})
	require.NoError(t, err)
	require.Len(t, got, 2, "已完结与无日期项目不参与")

	assert.Equal(t, "p", got[0].ProjectID)
	assert.InDelta(t, 0.4+0.3+0.5*0.3, got[0].Overall, 1e-9)
	assert.Equal(t, 0.0, got[0].Experience)
	assert.Equal(t, "x", got[1].ProjectID)
	// x 的团队成员 busy 与 full 从未共事
	assert.InDelta(t, 0.3+0.5*0.3, got[1].Overall, 1e-9)

	_, err = e.MatchProjectsForResource(matchingSnapshot(), "ghost", MatchQuery{})
	assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
}

func TestScorePair(t *testing.T) {
	e := New()
	snap := matchingSnapshot()

	m, err := e.ScorePair(snap, "full", "p", DateRange{})
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.Skills)
	assert.Equal(t, 1.0, m.Availability)
	assert.Equal(t, 0.5, m.TeamCompatibility)
	assert.InDelta(t, 0.75, m.Overall, 1e-9)

	_, err = e.ScorePair(snap, "full", "ghost", DateRange{})
	assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	_, err = e.ScorePair(snap, "ghost", "p", DateRange{})
	assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
}

type fixedTeamFit float64

func (f fixedTeamFit) TeamFit(*Snapshot, string, string) float64 { return float64(f) }

func TestScorePair_CustomTeamFitClamped(t *testing.T) {
	e := New(WithTeamFitScorer(fixedTeamFit(3)))
	m, err := e.ScorePair(matchingSnapshot(), "full", "p", DateRange{})
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.TeamCompatibility)
	assert.InDelta(t, 0.4+0.3+0.1, m.Overall, 1e-9)
}

func TestMatching_Deterministic(t *testing.T) {
	e := New()
	snap := matchingSnapshot()
	first, err := e.MatchResourcesForProject(snap, "p", MatchQuery{})
	require.NoError(t, err)
	second, err := e.MatchResourcesForProject(snap, "p", MatchQuery{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// ── 加载失败的人员 ──

// failedSnapshot broken 技能全中，但分配加载失败，快照中没有它的分配
func failedSnapshot() *Snapshot {
	snap := matchingSnapshot()
	snap.Resources = append(snap.Resources, Resource{ID: "broken", Name: "Broken", Skills: skills("go", "sql")})
	snap.Failures = []ResourceFailure{{ResourceID: "broken", Reason: "connection refused"}}
	return snap
}

func TestMatchResourcesForProject_SkipsFailedResources(t *testing.T) {
	e := New()
	list, err := e.MatchResourcesForProject(failedSnapshot(), "p", MatchQuery{})
	require.NoError(t, err)

	require.Len(t, list.Matches, 3)
	for _, m := range list.Matches {
		assert.NotEqual(t, "broken", m.ResourceID)
	}
	assert.Equal(t, "full", list.Matches[0].ResourceID)
	require.Len(t, list.Failures, 1)
	assert.Equal(t, "broken", list.Failures[0].ResourceID)
}

func TestMatching_FailedResourceIsUpstreamError(t *testing.T) {
	e := New()
	snap := failedSnapshot()

	_, err := e.MatchProjectsForResource(snap, "broken", MatchQuery{})
	assert.True(t, errors.Is(err, pkgerrors.ErrUpstreamUnavailable))

	_, err = e.ScorePair(snap, "broken", "p", DateRange{})
	assert.True(t, errors.Is(err, pkgerrors.ErrUpstreamUnavailable))

	_, err = e.AvailabilityScore(snap, "broken", span(2025, time.January, 1, 2025, time.January, 31))
	assert.True(t, errors.Is(err, pkgerrors.ErrUpstreamUnavailable))
}

// ── 查询窗口 ──

func TestMatchProjectsForResource_InvalidWindow(t *testing.T) {
	e := New()
	got, err := e.MatchProjectsForResource(matchingSnapshot(), "full", MatchQuery{
		Window: span(2025, time.March, 31, 2025, time.March, 1),
	})
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidRange))
	assert.Nil(t, got)
}

func TestMatchProjectsForResource_WindowIncludesUndated(t *testing.T) {
	e := New()
	got, err := e.MatchProjectsForResource(matchingSnapshot(), "busy", MatchQuery{
		Window: span(2025, time.April, 1, 2025, time.April, 30),
	})
	require.NoError(t, err)
	// 显式窗口下无日期项目也可评估，已完结项目仍不参与
	require.Len(t, got, 3)
	for _, m := range got {
		assert.NotEqual(t, "done", m.ProjectID)
		assert.Equal(t, 1.0, m.Availability, m.ProjectID)
	}
}

func TestScorePair_Window(t *testing.T) {
	e := New()
	snap := matchingSnapshot()

	// undated 没有起止日期，只能按显式窗口评分
	_, err := e.ScorePair(snap, "busy", "undated", DateRange{})
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidRange))

	m, err := e.ScorePair(snap, "busy", "undated", span(2025, time.April, 1, 2025, time.April, 30))
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.Availability)

	m, err = e.ScorePair(snap, "busy", "p", span(2025, time.January, 1, 2025, time.January, 31))
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.Availability)

	_, err = e.ScorePair(snap, "busy", "p", span(2025, time.January, 31, 2025, time.January, 1))
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidRange))
}
