package admin

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Spok95/school-records/internal/apierr"
)

const (
	defaultPerPage = 50
	maxPerPage     = 500
	// выгрузка не пагинируется, но ограничена
	exportHardCap = 10_000
)

type Page struct {
	Page    int
	PerPage int
}

func (p Page) Offset() int { return (p.Page - 1) * p.PerPage }

func parsePage(c *fiber.Ctx) Page {
	page := atoiDefault(c.Query("page"), 1)
	if page < 1 {
		page = 1
	}
	per := atoiDefault(c.Query("per_page"), defaultPerPage)
	if per < 1 {
		per = defaultPerPage
	}
	if per > maxPerPage {
		per = maxPerPage
	}
	return Page{Page: page, PerPage: per}
}

type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func newPagination(p Page, total int64) Pagination {
	pages := int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
	return Pagination{Page: p.Page, PerPage: p.PerPage, Total: total, TotalPages: pages}
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// applySearch splits q on whitespace; every term has to match at least one of
// the (text) expressions, case-insensitively.
func applySearch(tx *gorm.DB, q string, exprs []string) *gorm.DB {
	if len(exprs) == 0 {
		return tx
	}
	for _, term := range strings.Fields(q) {
		pattern := "%" + likeEscaper.Replace(term) + "%"
		conds := make([]string, len(exprs))
		args := make([]any, len(exprs))
		for i, e := range exprs {
			conds[i] = e + " ILIKE ?"
			args[i] = pattern
		}
		tx = tx.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
	return tx
}

// queryID reads an optional positive integer query parameter.
func queryID(c *fiber.Ctx, name string) (int64, bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, false, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false, apierr.BadRequest("invalid "+name+" filter", apierr.Field{Field: name, Error: "Enter a whole number."})
	}
	return id, true, nil
}
