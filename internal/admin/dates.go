package admin

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Spok95/school-records/internal/apierr"
)

// drillDown is the year → month → day navigation over a date column.
type drillDown struct {
	Year, Month, Day int
}

func parseDrillDown(c *fiber.Ctx) (drillDown, error) {
	var dd drillDown
	for _, p := range []struct {
		name     string
		dst      *int
		min, max int
	}{
		{"year", &dd.Year, 1, 9999},
		{"month", &dd.Month, 1, 12},
		{"day", &dd.Day, 1, 31},
	} {
		raw := strings.TrimSpace(c.Query(p.name))
		if raw == "" {
			continue
		}
		n := atoiDefault(raw, 0)
		if n < p.min || n > p.max {
			return drillDown{}, apierr.BadRequest("invalid "+p.name, apierr.Field{Field: p.name, Error: fmt.Sprintf("Enter a number between %d and %d.", p.min, p.max)})
		}
		*p.dst = n
	}
	if dd.Month != 0 && dd.Year == 0 {
		return drillDown{}, apierr.BadRequest("month requires year", apierr.Field{Field: "month", Error: "Select a year first."})
	}
	if dd.Day != 0 && dd.Month == 0 {
		return drillDown{}, apierr.BadRequest("day requires month", apierr.Field{Field: "day", Error: "Select a month first."})
	}
	return dd, nil
}

func (dd drillDown) apply(tx *gorm.DB, col string) *gorm.DB {
	if dd.Year != 0 {
		tx = tx.Where("EXTRACT(YEAR FROM "+col+") = ?", dd.Year)
	}
	if dd.Month != 0 {
		tx = tx.Where("EXTRACT(MONTH FROM "+col+") = ?", dd.Month)
	}
	if dd.Day != 0 {
		tx = tx.Where("EXTRACT(DAY FROM "+col+") = ?", dd.Day)
	}
	return tx
}

// level is the unit of the next step down: years, then months of a year, then days.
func (dd drillDown) level() string {
	switch {
	case dd.Year == 0:
		return "year"
	case dd.Month == 0:
		return "month"
	default:
		return "day"
	}
}

type dateBucket struct {
	Value int    `json:"value"`
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// markDates lists the drill-down buckets of date_recorded under the current
// search and filters.
func (h *Handler) markDates(c *fiber.Ctx) error {
	dd, err := parseDrillDown(c)
	if err != nil {
		return err
	}
	tx, err := h.marks.query(c)
	if err != nil {
		return err
	}

	level := dd.level()
	var buckets []dateBucket
	err = tx.
		Select("CAST(EXTRACT(" + strings.ToUpper(level) + " FROM marks.date_recorded) AS INTEGER) AS value, COUNT(*) AS count").
		Group("value").
		Order("value").
		Scan(&buckets).Error
	if err != nil {
		return fmt.Errorf("mark dates: %w", err)
	}
	for i := range buckets {
		buckets[i].Label = bucketLabel(level, dd, buckets[i].Value)
	}
	if buckets == nil {
		buckets = []dateBucket{}
	}
	return c.JSON(fiber.Map{
		"field":   "date_recorded",
		"level":   level,
		"year":    dd.Year,
		"month":   dd.Month,
		"buckets": buckets,
	})
}

func bucketLabel(level string, dd drillDown, v int) string {
	switch level {
	case "month":
		return fmt.Sprintf("%s %d", time.Month(v), dd.Year)
	case "day":
		return fmt.Sprintf("%s %d, %d", time.Month(dd.Month), v, dd.Year)
	default:
		return fmt.Sprint(v)
	}
}
