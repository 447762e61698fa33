package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// ── 测试辅助 ──

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func span(y1 int, m1 time.Month, d1 int, y2 int, m2 time.Month, d2 int) DateRange {
	return DateRange{Start: date(y1, m1, d1), End: date(y2, m2, d2)}
}

func skills(ids ...string) []Skill {
	out := make([]Skill, 0, len(ids))
	for _, id := range ids {
		out = append(out, Skill{ID: id, Name: id})
	}
	return out
}

func alloc(id, resourceID, projectID string, r DateRange, pct float64) Allocation {
	return Allocation{
		ID:          id,
		ResourceID:  resourceID,
		ProjectID:   projectID,
		StartDate:   r.Start,
		EndDate:     r.End,
		Utilization: pct,
	}
}

func rates(billing, cost float64) (decimal.Decimal, decimal.Decimal) {
	return decimal.NewFromFloat(billing), decimal.NewFromFloat(cost)
}

// ── ClassifyUtilization ──

func TestClassifyUtilization(t *testing.T) {
	cases := []struct {
		pct  float64
		want Status
	}{
		{120, StatusCritical},
		{110.5, StatusCritical},
		{110, StatusOverallocated},
		{100.1, StatusOverallocated},
		{100, StatusOptimal},
		{80, StatusOptimal},
		{79.9, StatusAdequate},
		{50, StatusAdequate},
		{10, StatusUnderallocated},
		{0, StatusBench},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ClassifyUtilization(c.pct), "pct=%v", c.pct)
	}
}

func TestNew_Options(t *testing.T) {
	e := New()
	assert.Equal(t, DefaultBenchThreshold, e.BenchThreshold())
	assert.False(t, e.tokenizer.Stem)

	e = New(WithBenchThreshold(35), WithStemming(true), WithTeamFitScorer(nil))
	assert.Equal(t, 35.0, e.BenchThreshold())
	assert.True(t, e.tokenizer.Stem)
	assert.IsType(t, CoAllocationTeamFit{}, e.teamFit)

	e = New(WithBenchThreshold(-1))
	assert.Equal(t, DefaultBenchThreshold, e.BenchThreshold())
}
