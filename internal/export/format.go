package export

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const (
	minColWidth = 12
	maxColWidth = 40
	// ширину считаем по заголовку и первым строкам
	widthSampleRows = 50
	maxSheetTitle   = 31
)

// formatSheet: жирный заголовок, автофильтр по первой строке, приблизительная ширина колонок.
func formatSheet(f *excelize.File, sheet string, headerStyle int, header []string, rows [][]string) {
	end := colName(len(header)) + "1"
	_ = f.SetCellStyle(sheet, "A1", end, headerStyle)
	_ = f.AutoFilter(sheet, "A1:"+end, nil)

	for c := 1; c <= len(header); c++ {
		w := float64(visualLen(header[c-1])) + 1.5
		for r := 0; r < len(rows) && r < widthSampleRows; r++ {
			if c-1 >= len(rows[r]) {
				continue
			}
			if l := float64(visualLen(rows[r][c-1])) * 1.1; l > w {
				w = l
			}
		}
		if w < minColWidth {
			w = minColWidth
		}
		if w > maxColWidth {
			w = maxColWidth
		}
		_ = f.SetColWidth(sheet, colName(c), colName(c), w)
	}
}

// visualLen approximates text width by counting runes, treating tabs as 4 chars.
func visualLen(s string) int {
	return utf8.RuneCountInString(s) + 3*strings.Count(s, "\t")
}

var invalidFileRe = regexp.MustCompile(`[\\/:*?"<>|]+`)

func sanitizeFileName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Join(strings.Fields(s), " ")
	return invalidFileRe.ReplaceAllString(s, "_")
}

var invalidSheetRe = regexp.MustCompile(`[\[\]:*?/\\]+`)

func sheetTitle(s string, idx int) string {
	s = strings.TrimSpace(invalidSheetRe.ReplaceAllString(s, " "))
	if s == "" {
		return fmt.Sprintf("Sheet%d", idx+1)
	}
	if utf8.RuneCountInString(s) > maxSheetTitle {
		s = string([]rune(s)[:maxSheetTitle])
	}
	return s
}

// Filename builds a download name such as "marks_2024-01-25.xlsx".
func Filename(resource string, at time.Time) string {
	return sanitizeFileName(fmt.Sprintf("%s_%s.xlsx", resource, at.Format("2006-01-02")))
}
