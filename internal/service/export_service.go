package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/freeup86/resource-pulse-sub001/internal/dto"
	"github.com/freeup86/resource-pulse-sub001/internal/engine"
	"github.com/freeup86/resource-pulse-sub001/internal/metrics"
)

// ErrExportGenerateFail 生成 Excel 文件失败
var ErrExportGenerateFail = errors.New("生成 Excel 文件失败")

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - 预测导出：「利用率预测」汇总 Sheet + 「周利用率」人员 × 周矩阵
//   - 空闲期导出：每个空闲期一行
//   - 样例数据生成的文件在标题行注明
type ExportService interface {
	ExportForecast(ctx context.Context, req *dto.ForecastRequest) (*bytes.Buffer, string, error)
	ExportBench(ctx context.Context, req *dto.BenchRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	snapshots SnapshotService
	engine    *engine.Engine
	periods   periodResolver
	logger    *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(snapshots SnapshotService, eng *engine.Engine, periods periodResolver, logger *zap.Logger) ExportService {
	return &exportService{snapshots: snapshots, engine: eng, periods: periods, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportForecast 导出利用率预测
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportForecast(ctx context.Context, req *dto.ForecastRequest) (*bytes.Buffer, string, error) {
	snap, err := s.snapshots.Load(ctx, req.ResourceIDs)
	if err != nil {
		return nil, "", err
	}
	r, err := s.periods.resolve(req.PeriodRequest, snap.AsOf)
	if err != nil {
		return nil, "", err
	}
	start := time.Now()
	fc, err := s.engine.Forecast(snap, req.ResourceIDs, r, engine.ForecastOptions{IncludeWeekly: true})
	metrics.ObserveRun("export_forecast", start, err)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()
	styles := newSheetStyles(f)

	// 1. 汇总 Sheet
	summary := "利用率预测"
	idx, _ := f.NewSheet(summary)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(summary, "A", "A", 24)
	f.SetColWidth(summary, "B", "F", 14)
	writeTitle(f, summary, styles, 6, title("利用率预测", r, fc.IsFallbackData))

	headers := []string{"人员", "平均利用率", "峰值利用率", "状态", "高峰阈值", "高峰天数"}
	writeHeader(f, summary, styles, 2, headers)
	row := 3
	for _, rf := range fc.Resources {
		peakDays := 0
		for _, p := range rf.PeakPeriods {
			peakDays += p.Days
		}
		f.SetCellValue(summary, cell("A", row), rf.ResourceName)
		f.SetCellValue(summary, cell("B", row), round1(rf.AverageUtilization))
		f.SetCellValue(summary, cell("C", row), round1(rf.PeakUtilization))
		f.SetCellValue(summary, cell("D", row), string(rf.Status))
		f.SetCellValue(summary, cell("E", row), round1(rf.PeakThreshold))
		f.SetCellValue(summary, cell("F", row), peakDays)
		row++
	}
	row++
	f.SetCellValue(summary, cell("A", row), "组织平均")
	f.SetCellValue(summary, cell("B", row), round1(fc.AverageUtilization))
	f.SetCellValue(summary, cell("C", row), fmt.Sprintf("过载 %d / 合理 %d / 不足 %d",
		fc.OverAllocated, fc.OptimallyAllocated, fc.UnderAllocated))

	// 2. 周利用率 Sheet：行 = 人员，列 = 周
	weekly := "周利用率"
	f.NewSheet(weekly)
	weeks := r.Weeks()
	f.SetColWidth(weekly, "A", "A", 24)
	if len(weeks) > 0 {
		f.SetColWidth(weekly, colName(1), colName(len(weeks)), 12)
	}
	writeTitle(f, weekly, styles, len(weeks)+1, title("周利用率", r, fc.IsFallbackData))

	weekHeaders := make([]string, 0, len(weeks)+1)
	weekHeaders = append(weekHeaders, "人员")
	for _, w := range weeks {
		weekHeaders = append(weekHeaders, w.Start.Format("01-02"))
	}
	writeHeader(f, weekly, styles, 2, weekHeaders)
	row = 3
	for _, rf := range fc.Resources {
		f.SetCellValue(weekly, cell("A", row), rf.ResourceName)
		for i, w := range rf.Weekly {
			c := cell(colName(1+i), row)
			f.SetCellValue(weekly, c, round1(w.UtilizationPercentage))
			if w.Status == engine.StatusOverallocated || w.Status == engine.StatusCritical {
				f.SetCellStyle(weekly, c, c, styles.over)
			}
		}
		row++
	}

	return s.write(f, fmt.Sprintf("利用率预测_%s_%s.xlsx", r.Start.Format(time.DateOnly), r.End.Format(time.DateOnly)))
}

// ═══════════════════════════════════════════════════════════
// ExportBench 导出空闲期预测
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportBench(ctx context.Context, req *dto.BenchRequest) (*bytes.Buffer, string, error) {
	snap, err := s.snapshots.Load(ctx, req.ResourceIDs)
	if err != nil {
		return nil, "", err
	}
	r, err := s.periods.resolve(req.PeriodRequest, snap.AsOf)
	if err != nil {
		return nil, "", err
	}
	start := time.Now()
	pred, err := s.engine.PredictBench(snap, req.ResourceIDs, r, engine.BenchOptions{Threshold: req.Threshold})
	metrics.ObserveRun("export_bench", start, err)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()
	styles := newSheetStyles(f)

	sheet := "空闲期"
	idx, _ := f.NewSheet(sheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheet, "A", "A", 24)
	f.SetColWidth(sheet, "B", "E", 14)
	writeTitle(f, sheet, styles, 5,
		fmt.Sprintf("%s（阈值 %.0f%%）", title("空闲期预测", r, pred.IsFallbackData), pred.Threshold))
	writeHeader(f, sheet, styles, 2, []string{"人员", "开始", "结束", "天数", "空闲占比"})

	row := 3
	for _, rb := range pred.Resources {
		for _, p := range rb.Periods {
			f.SetCellValue(sheet, cell("A", row), rb.ResourceName)
			f.SetCellValue(sheet, cell("B", row), p.Start.Format(time.DateOnly))
			f.SetCellValue(sheet, cell("C", row), p.End.Format(time.DateOnly))
			f.SetCellValue(sheet, cell("D", row), p.Days)
			f.SetCellValue(sheet, cell("E", row), round1(rb.BenchPercentage))
			row++
		}
	}
	if row == 3 {
		f.SetCellValue(sheet, cell("A", row), "区间内无空闲期")
	}

	return s.write(f, fmt.Sprintf("空闲期预测_%s_%s.xlsx", r.Start.Format(time.DateOnly), r.End.Format(time.DateOnly)))
}

func (s *exportService) write(f *excelize.File, filename string) (*bytes.Buffer, string, error) {
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, filename, nil
}

// ── 辅助函数 ──

type sheetStyles struct {
	header int
	over   int
}

func newSheetStyles(f *excelize.File) sheetStyles {
	header, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	over, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F4B183"}, Pattern: 1},
	})
	return sheetStyles{header: header, over: over}
}

func title(name string, r engine.DateRange, fallback bool) string {
	t := fmt.Sprintf("%s %s ~ %s", name, r.Start.Format(time.DateOnly), r.End.Format(time.DateOnly))
	if fallback {
		t += "（样例数据）"
	}
	return t
}

func writeTitle(f *excelize.File, sheet string, styles sheetStyles, width int, text string) {
	f.SetCellValue(sheet, "A1", text)
	if width > 1 {
		f.MergeCell(sheet, "A1", cell(colName(width-1), 1))
	}
	f.SetCellStyle(sheet, "A1", "A1", styles.header)
}

func writeHeader(f *excelize.File, sheet string, styles sheetStyles, row int, headers []string) {
	for i, h := range headers {
		f.SetCellValue(sheet, cell(colName(i), row), h)
	}
	f.SetCellStyle(sheet, cell("A", row), cell(colName(len(headers)-1), row), styles.header)
}

func round1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
