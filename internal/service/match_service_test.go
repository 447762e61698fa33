package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/freeup86/resource-pulse-sub001/internal/dto"
	"github.com/freeup86/resource-pulse-sub001/internal/engine"
	pkgerrors "github.com/freeup86/resource-pulse-sub001/pkg/errors"
)

// failedBobSnapshot bob 的分配加载失败
func failedBobSnapshot(t *testing.T) *engine.Snapshot {
	t.Helper()
	store := newMockStore()
	store.allocations.failFor["bob"] = true
	snap, err := setupTestSnapshotService(store, false).Load(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, snap.Failures, 1)
	return snap
}

func setupTestMatchService(t *testing.T) (MatchService, *stubSnapshots) {
	t.Helper()
	snaps := &stubSnapshots{snap: loadTestSnapshot(t)}
	return NewMatchService(snaps, engine.New(), newPeriodResolver(90), zap.NewNop()), snaps
}

func scoreOf(matches []engine.MatchScore, resourceID string) *engine.MatchScore {
	for i := range matches {
		if matches[i].ResourceID == resourceID {
			return &matches[i]
		}
	}
	return nil
}

// ── ResourcesForProject 测试 ──

func TestMatchService_ResourcesForProject(t *testing.T) {
	svc, _ := setupTestMatchService(t)

	resp, err := svc.ResourcesForProject(context.Background(), "p1", &dto.MatchQueryRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Matches, 2)
	assert.False(t, resp.IsFallbackData)

	alice := scoreOf(resp.Matches, "alice")
	require.NotNil(t, alice)
	assert.Equal(t, 1.0, alice.Skills)
	bob := scoreOf(resp.Matches, "bob")
	require.NotNil(t, bob)
	assert.Equal(t, 0.0, bob.Skills)
	assert.Equal(t, 1.0, bob.Availability)

	assert.GreaterOrEqual(t, resp.Matches[0].Overall, resp.Matches[1].Overall)
}

func TestMatchService_ResourcesForProject_Window(t *testing.T) {
	svc, _ := setupTestMatchService(t)

	// 2 月 alice 无分配
	resp, err := svc.ResourcesForProject(context.Background(), "p1", &dto.MatchQueryRequest{
		Start: "2025-02-01",
		End:   "2025-02-28",
		Limit: 1,
	})
	require.NoError(t, err)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "alice", resp.Matches[0].ResourceID)
	assert.Equal(t, 1.0, resp.Matches[0].Availability)
}

func TestMatchService_ResourcesForProject_MinScore(t *testing.T) {
	svc, _ := setupTestMatchService(t)

	resp, err := svc.ResourcesForProject(context.Background(), "p1", &dto.MatchQueryRequest{MinScore: 1})
	require.NoError(t, err)
	assert.Empty(t, resp.Matches)
}

func TestMatchService_ResourcesForProject_NotFound(t *testing.T) {
	svc, _ := setupTestMatchService(t)

	_, err := svc.ResourcesForProject(context.Background(), "nope", &dto.MatchQueryRequest{})
	assert.ErrorIs(t, err, pkgerrors.ErrNotFound)
}

func TestMatchService_ResourcesForProject_InvalidWindow(t *testing.T) {
	svc, _ := setupTestMatchService(t)

	_, err := svc.ResourcesForProject(context.Background(), "p1", &dto.MatchQueryRequest{
		Start: "2025-03-01",
		End:   "2025-02-01",
	})
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidRange)
}

// ── ProjectsForResource / Pair 测试 ──

func TestMatchService_ProjectsForResource(t *testing.T) {
	svc, _ := setupTestMatchService(t)

	resp, err := svc.ProjectsForResource(context.Background(), "bob", nil)
	require.NoError(t, err)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "p1", resp.Matches[0].ProjectID)

	_, err = svc.ProjectsForResource(context.Background(), "ghost", nil)
	assert.ErrorIs(t, err, pkgerrors.ErrNotFound)
}

func TestMatchService_Pair(t *testing.T) {
	svc, _ := setupTestMatchService(t)

	resp, err := svc.Pair(context.Background(), "alice", "p1", nil)
	require.NoError(t, err)
	assert.Equal(t, "Alice", resp.Score.ResourceName)
	assert.Equal(t, "Payments", resp.Score.ProjectName)
	assert.Equal(t, 1.0, resp.Score.Skills)
	assert.True(t, resp.Score.Overall > 0 && resp.Score.Overall <= 1)
}

func TestMatchService_UpstreamError(t *testing.T) {
	svc, snaps := setupTestMatchService(t)
	snaps.err = pkgerrors.ErrUpstreamUnavailable

	_, err := svc.Pair(context.Background(), "alice", "p1", nil)
	assert.ErrorIs(t, err, pkgerrors.ErrUpstreamUnavailable)
}

func TestMatchService_Pair_Window(t *testing.T) {
	svc, _ := setupTestMatchService(t)

	// alice 1 月 120%，2 月无分配
	resp, err := svc.Pair(context.Background(), "alice", "p1", &dto.PairQueryRequest{Start: "2025-01-01", End: "2025-01-31"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, resp.Score.Availability)

	resp, err = svc.Pair(context.Background(), "alice", "p1", &dto.PairQueryRequest{Start: "2025-02-01", End: "2025-02-28"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, resp.Score.Availability)

	_, err = svc.Pair(context.Background(), "alice", "p1", &dto.PairQueryRequest{Start: "2025-02-28", End: "2025-02-01"})
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidRange)
}

// ── 部分人员加载失败 ──

func TestMatchService_ResourcesForProject_ReportsFailures(t *testing.T) {
	svc, snaps := setupTestMatchService(t)
	snaps.snap = failedBobSnapshot(t)

	resp, err := svc.ResourcesForProject(context.Background(), "p1", &dto.MatchQueryRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "alice", resp.Matches[0].ResourceID)
	assert.Nil(t, scoreOf(resp.Matches, "bob"))
	require.Len(t, resp.Failures, 1)
	assert.Equal(t, "bob", resp.Failures[0].ResourceID)
}

func TestMatchService_FailedResourceIsUpstreamError(t *testing.T) {
	svc, snaps := setupTestMatchService(t)
	snaps.snap = failedBobSnapshot(t)

	_, err := svc.ProjectsForResource(context.Background(), "bob", nil)
	assert.ErrorIs(t, err, pkgerrors.ErrUpstreamUnavailable)

	_, err = svc.Pair(context.Background(), "bob", "p1", nil)
	assert.ErrorIs(t, err, pkgerrors.ErrUpstreamUnavailable)

	// 其他人员不受影响
	resp, err := svc.ProjectsForResource(context.Background(), "alice", nil)
	require.NoError(t, err)
	require.Len(t, resp.Matches, 1)
}

func TestMatchService_ProjectsForResource_InvalidWindow(t *testing.T) {
	svc, _ := setupTestMatchService(t)

	_, err := svc.ProjectsForResource(context.Background(), "bob", &dto.MatchQueryRequest{
		Start: "2025-03-31",
		End:   "2025-03-01",
	})
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidRange)
}
