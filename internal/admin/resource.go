package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Spok95/school-records/internal/apierr"
	"github.com/Spok95/school-records/internal/export"
)

type registrar interface {
	register(r fiber.Router)
}

// form is the writable part of a model, decoded from the request body.
type form[M any] interface {
	normalize(h *Handler)
	apply(m *M)
}

// resource describes one admin model: how it is listed, searched, filtered and written.
type resource[M any] struct {
	h       *Handler
	name    string
	label   string
	table   string
	joins   []string
	preload []string
	order   string
	columns []string
	search  []string
	filter  func(c *fiber.Ctx, tx *gorm.DB) (*gorm.DB, error)
	display func(m *M) []any
	newForm func() form[M]
}

func (rs *resource[M]) register(r fiber.Router) {
	g := r.Group("/" + rs.name)
	g.Get("/", rs.list)
	g.Get("/export", rs.export)
	g.Post("/", rs.create)
	g.Get("/:id", rs.get)
	g.Put("/:id", rs.update)
	g.Delete("/:id", rs.remove)
}

// query is the filtered, searched, unpaginated list query, safe to reuse.
func (rs *resource[M]) query(c *fiber.Ctx) (*gorm.DB, error) {
	tx := rs.h.db.WithContext(c.UserContext()).Model(new(M))
	for _, j := range rs.joins {
		tx = tx.Joins(j)
	}
	tx = applySearch(tx, c.Query("q"), rs.search)
	if rs.filter != nil {
		var err error
		if tx, err = rs.filter(c, tx); err != nil {
			return nil, err
		}
	}
	return tx.Session(&gorm.Session{}), nil
}

func (rs *resource[M]) fetch(tx *gorm.DB, limit, offset int) ([]M, error) {
	q := tx.Select(rs.table + ".*").Order(rs.order).Limit(limit).Offset(offset)
	for _, p := range rs.preload {
		q = q.Preload(p)
	}
	var rows []M
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", rs.name, err)
	}
	return rows, nil
}

// rows renders the list display; every row also carries its id.
func (rs *resource[M]) rows(items []M) []fiber.Map {
	out := make([]fiber.Map, 0, len(items))
	for i := range items {
		vals := rs.display(&items[i])
		row := fiber.Map{"id": idOf(&items[i])}
		for j, col := range rs.columns {
			row[col] = vals[j]
		}
		out = append(out, row)
	}
	return out
}

func (rs *resource[M]) list(c *fiber.Ctx) error {
	tx, err := rs.query(c)
	if err != nil {
		return err
	}
	page := parsePage(c)

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return fmt.Errorf("count %s: %w", rs.name, err)
	}
	items, err := rs.fetch(tx, page.PerPage, page.Offset())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"columns":    rs.columns,
		"data":       rs.rows(items),
		"pagination": newPagination(page, total),
	})
}

func (rs *resource[M]) export(c *fiber.Ctx) error {
	tx, err := rs.query(c)
	if err != nil {
		return err
	}
	items, err := rs.fetch(tx, exportHardCap, 0)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(items))
	for i := range items {
		vals := rs.display(&items[i])
		row := make([]string, len(vals))
		for j, v := range vals {
			row[j] = cellText(v)
		}
		rows = append(rows, row)
	}

	wb, err := export.NewWorkbook([]export.Sheet{{Title: rs.label, Header: rs.columns, Rows: rows}})
	if err != nil {
		return err
	}
	defer func() { _ = wb.Close() }()
	b, err := wb.Bytes()
	if err != nil {
		return fmt.Errorf("export %s: %w", rs.name, err)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Attachment(export.Filename(rs.name, rs.h.now().In(rs.h.loc)))
	return c.Send(b)
}

func (rs *resource[M]) load(ctx context.Context, tx *gorm.DB, id int64) (*M, error) {
	q := tx.WithContext(ctx)
	for _, p := range rs.preload {
		q = q.Preload(p)
	}
	m := new(M)
	if err := q.First(m, id).Error; err != nil {
		return nil, storageErr(err, rs.label, "")
	}
	return m, nil
}

func (rs *resource[M]) get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	m, err := rs.load(c.UserContext(), rs.h.db, id)
	if err != nil {
		return err
	}
	return c.JSON(m)
}

func (rs *resource[M]) decode(c *fiber.Ctx) (form[M], error) {
	f := rs.newForm()
	if err := c.BodyParser(f); err != nil {
		return nil, apierr.BadRequest("invalid request body: " + err.Error())
	}
	f.normalize(rs.h)
	if fields := rs.h.check(f, ""); len(fields) > 0 {
		return nil, apierr.Validation(fields)
	}
	return f, nil
}

func (rs *resource[M]) create(c *fiber.Ctx) (err error) {
	defer func() { rs.h.recordWrite(c.UserContext(), rs.name, "create", err) }()

	f, err := rs.decode(c)
	if err != nil {
		return err
	}
	m := new(M)
	f.apply(m)
	if err := rs.h.db.WithContext(c.UserContext()).Omit(clause.Associations).Create(m).Error; err != nil {
		return storageErr(err, rs.label, "")
	}
	saved, err := rs.load(c.UserContext(), rs.h.db, idOf(m))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(saved)
}

func (rs *resource[M]) update(c *fiber.Ctx) (err error) {
	defer func() { rs.h.recordWrite(c.UserContext(), rs.name, "update", err) }()

	id, err := parseID(c)
	if err != nil {
		return err
	}
	f, err := rs.decode(c)
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	err = rs.h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m := new(M)
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(m, id).Error; err != nil {
			return err
		}
		f.apply(m)
		return tx.Omit(clause.Associations).Save(m).Error
	})
	if err != nil {
		return storageErr(err, rs.label, "")
	}
	saved, err := rs.load(ctx, rs.h.db, id)
	if err != nil {
		return err
	}
	return c.JSON(saved)
}

func (rs *resource[M]) remove(c *fiber.Ctx) (err error) {
	defer func() { rs.h.recordWrite(c.UserContext(), rs.name, "delete", err) }()

	id, err := parseID(c)
	if err != nil {
		return err
	}
	res := rs.h.db.WithContext(c.UserContext()).Delete(new(M), id)
	if res.Error != nil {
		return storageErr(res.Error, rs.label, "")
	}
	if res.RowsAffected == 0 {
		return apierr.NotFound(rs.label)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type identified interface{ PrimaryKey() int64 }

func idOf(m any) int64 {
	if v, ok := m.(identified); ok {
		return v.PrimaryKey()
	}
	return 0
}

func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}
