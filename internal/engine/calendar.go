package engine

import (
	"fmt"
	"time"

	pkgerrors "github.com/freeup86/resource-pulse-sub001/pkg/errors"
)

// ── 日历 / 区间工具 ──

const hoursPerDay = 24

// Day 将时间截断到 UTC 零点，所有按天计算都以此为准
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// YearMonth 容量日历的月份键
type YearMonth struct {
	Year  int
	Month time.Month
}

// MonthKey 返回某一天所属月份
func MonthKey(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// DateRange 闭区间 [Start, End]，按天计
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateRange 规范化并校验日期范围
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: Day(start), End: Day(end)}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// Validate 结束日期早于开始日期时返回 ErrInvalidRange
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("日期范围缺少起止日期: %w", pkgerrors.ErrInvalidRange)
	}
	if Day(r.End).Before(Day(r.Start)) {
		return fmt.Errorf("结束日期 %s 早于开始日期 %s: %w",
			r.End.Format(time.DateOnly), r.Start.Format(time.DateOnly), pkgerrors.ErrInvalidRange)
	}
	return nil
}

// Days 区间包含的天数（含首尾）
func (r DateRange) Days() int {
	return daysBetween(r.Start, r.End) + 1
}

// Contains 判断某天是否落在区间内
func (r DateRange) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(Day(r.Start)) && !d.After(Day(r.End))
}

// Overlaps 两个区间是否有交集
func (r DateRange) Overlaps(o DateRange) bool {
	return !Day(r.Start).After(Day(o.End)) && !Day(o.Start).After(Day(r.End))
}

// Intersect 返回交集；无交集时 ok=false
func (r DateRange) Intersect(o DateRange) (DateRange, bool) {
	if !r.Overlaps(o) {
		return DateRange{}, false
	}
	start, end := Day(r.Start), Day(r.End)
	if s := Day(o.Start); s.After(start) {
		start = s
	}
	if e := Day(o.End); e.Before(end) {
		end = e
	}
	return DateRange{Start: start, End: end}, true
}

// EachDay 依次访问区间内每一天。循环实现，长区间不增加栈深度
func (r DateRange) EachDay(fn func(day time.Time)) {
	end := Day(r.End)
	for d := Day(r.Start); !d.After(end); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}

// Weeks 从区间起始日开始按 7 天切分，最后一段截断到 End
func (r DateRange) Weeks() []DateRange {
	end := Day(r.End)
	weeks := make([]DateRange, 0, r.Days()/7+1)
	for s := Day(r.Start); !s.After(end); s = s.AddDate(0, 0, 7) {
		e := s.AddDate(0, 0, 6)
		if e.After(end) {
			e = end
		}
		weeks = append(weeks, DateRange{Start: s, End: e})
	}
	return weeks
}

// Months 区间覆盖的所有月份（升序）
func (r DateRange) Months() []YearMonth {
	var months []YearMonth
	end := MonthKey(r.End)
	cur := time.Date(r.Start.Year(), r.Start.Month(), 1, 0, 0, 0, 0, time.UTC)
	for {
		ym := MonthKey(cur)
		months = append(months, ym)
		if ym == end {
			break
		}
		cur = cur.AddDate(0, 1, 0)
	}
	return months
}

func daysBetween(from, to time.Time) int {
	return int(Day(to).Sub(Day(from)).Hours() / hoursPerDay)
}

// monthsSince 以 30 天为一个月计算经过的月数，未来时间记为 0
func monthsSince(t, asOf time.Time) float64 {
	days := daysBetween(t, asOf)
	if days <= 0 {
		return 0
	}
	return float64(days) / 30.0
}
