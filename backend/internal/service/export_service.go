package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"hotel-survey/backend/internal/dto"
	"hotel-survey/backend/internal/model"
)

// ExportFile 导出文件
type ExportFile struct {
	Filename    string
	ContentType string
	Data        *bytes.Buffer
}

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置下载响应头后写入 Response。
// 列为两代问卷表单字段的并集，缺失字段留空。
type ExportService interface {
	Export(ctx context.Context, req *dto.ExportRequest) (*ExportFile, error)
}

type exportService struct {
	query  QueryService
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(query QueryService, logger *zap.Logger) ExportService {
	return &exportService{query: query, logger: logger, now: time.Now}
}

// exportColumn 表头与 surveyData 中的字段路径
type exportColumn struct {
	header string
	path   string
}

var exportColumns = []exportColumn{
	// 早期表单
	{"Owner Name", "ownerName"},
	{"Phone Number", "phoneNumber"},
	{"Alternate Number", "alternateNumber"},
	{"Number of Rooms", "numberOfRooms"},
	{"AC Rooms Available", "acRoomsAvailable"},
	{"Star Rating", "starRating"},
	{"Available Dates", "availableDates"},
	// 现行表单
	{"Address", "address"},
	{"Manager Email", "managerEmail"},
	{"Contact Number", "managerContactNumber"},
	{"WhatsApp", "whatsappNumber"},
	{"AC/Non-AC", "acNonAc"},
	{"Total Rooms", "numberOfRoomsInHotel"},
	{"Room Tariff", "roomTariff"},
	{"Breakfast", "breakfast"},
	{"Rooms for Adshsra", "numberOfRoomsOfferedDuringAdshsra"},
	{"Visiting Card Collected", "visitingCard"},
	{"Number of Guests", "numberOfGuests"},
	{"Comments", "comments"},
}

func exportHeaders() []string {
	headers := []string{"Survey ID", "Hotel Name", "Surveyed By", "Submitted At"}
	for _, c := range exportColumns {
		headers = append(headers, c.header)
	}
	return headers
}

func exportRow(sv *model.Survey) []string {
	row := []string{
		escapeFormula(sv.ID),
		escapeFormula(sv.HotelName),
		escapeFormula(sv.Username),
		sv.SubmittedAt.UTC().Format(time.RFC3339),
	}
	doc := gjson.ParseBytes(sv.SurveyData)
	for _, c := range exportColumns {
		row = append(row, cellText(doc.Get(c.path)))
	}
	return row
}

func cellText(v gjson.Result) string {
	switch v.Type {
	case gjson.True:
		return "Yes"
	case gjson.False:
		return "No"
	case gjson.Null:
		return ""
	case gjson.Number:
		return v.Raw
	default:
		if v.IsArray() {
			parts := v.Array()
			out := make([]string, 0, len(parts))
			for _, p := range parts {
				out = append(out, p.String())
			}
			return escapeFormula(joinNonEmpty(out, "; "))
		}
		return escapeFormula(v.String())
	}
}

// escapeFormula 以公式触发字符开头的文本加 ' 前缀，表格软件打开时按文本显示
func escapeFormula(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

func joinNonEmpty(parts []string, sep string) string {
	var buf bytes.Buffer
	for _, p := range parts {
		if p == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString(sep)
		}
		buf.WriteString(p)
	}
	return buf.String()
}

func (s *exportService) Export(ctx context.Context, req *dto.ExportRequest) (*ExportFile, error) {
	format := req.Format
	if format == "" {
		format = dto.ExportFormatJSON
	}

	surveys := s.query.ListSurveys(ctx, req.SurveyFilter)
	base := fmt.Sprintf("hotel_surveys_%s", s.now().UTC().Format("2006-01-02"))

	var (
		file *ExportFile
		err  error
	)
	switch format {
	case dto.ExportFormatJSON:
		file, err = s.exportJSON(surveys, base)
	case dto.ExportFormatCSV:
		file, err = s.exportCSV(surveys, base)
	case dto.ExportFormatXLSX:
		file, err = s.exportXLSX(surveys, base)
	default:
		return nil, ErrUnsupportedExportFormat
	}
	if err != nil {
		s.logger.Error("生成导出文件失败", zap.String("format", format), zap.Error(err))
		return nil, fmt.Errorf("生成导出文件失败: %w", err)
	}

	s.logger.Info("导出问卷", zap.String("format", format), zap.Int("rows", len(surveys)))
	return file, nil
}

func (s *exportService) exportJSON(surveys []model.Survey, base string) (*ExportFile, error) {
	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(surveys); err != nil {
		return nil, err
	}
	return &ExportFile{Filename: base + ".json", ContentType: "application/json", Data: buf}, nil
}

func (s *exportService) exportCSV(surveys []model.Survey, base string) (*ExportFile, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	if err := w.Write(exportHeaders()); err != nil {
		return nil, err
	}
	for i := range surveys {
		if err := w.Write(exportRow(&surveys[i])); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return &ExportFile{Filename: base + ".csv", ContentType: "text/csv; charset=utf-8", Data: buf}, nil
}

func (s *exportService) exportXLSX(surveys []model.Survey, base string) (*ExportFile, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Surveys"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("创建表头样式失败: %w", err)
	}

	headers := exportHeaders()
	for i, h := range headers {
		if err := f.SetCellValue(sheetName, cell(colName(i), 1), h); err != nil {
			return nil, err
		}
	}
	first, last := colName(0), colName(len(headers)-1)
	if err := f.SetCellStyle(sheetName, cell(first, 1), cell(last, 1), headerStyle); err != nil {
		return nil, fmt.Errorf("设置表头样式失败: %w", err)
	}
	if err := f.SetColWidth(sheetName, first, last, 20); err != nil {
		return nil, err
	}
	// 冻结表头
	if err := f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, fmt.Errorf("冻结表头失败: %w", err)
	}

	for r := range surveys {
		for c, v := range exportRow(&surveys[r]) {
			if err := f.SetCellValue(sheetName, cell(colName(c), r+2), v); err != nil {
				return nil, err
			}
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return &ExportFile{
		Filename:    base + ".xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        buf,
	}, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
