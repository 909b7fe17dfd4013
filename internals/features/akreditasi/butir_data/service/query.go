package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"akreditasi_backend/internals/constants"
	dataModel "akreditasi_backend/internals/features/akreditasi/butir_data/model"
	pengisianModel "akreditasi_backend/internals/features/akreditasi/pengisian_butir/model"
)

// Filter memakai nama field logis; kolom fisiknya dicari lewat mapping.
type Filter struct {
	Field    string
	Operator string
	Value    any
}

type QueryParams struct {
	ButirID          uuid.UUID
	PengisianButirID *uuid.UUID
	Filters          []Filter
	OrderBy          string
	OrderDirection   string
	Page             int
	PerPage          int
}

type QueryResult struct {
	Rows    []map[string]any
	Total   int64
	Page    int
	PerPage int
}

const (
	DefaultQueryPerPage = 15
	MaxQueryPerPage     = 100
)

// Query: filter/sort/paginate berdasarkan field logis. Field yang belum dipetakan
// membuat query gagal (ErrFieldNotMapped), bukan diabaikan diam-diam.
func (s *ButirDataService) Query(ctx context.Context, qp QueryParams) (*QueryResult, error) {
	db := s.DB.WithContext(ctx)
	p := NewProjector(db)
	if _, err := p.registry.EnsureItem(ctx, qp.ButirID); err != nil {
		return nil, err
	}
	ms, err := p.Mappings(ctx, qp.ButirID)
	if err != nil {
		return nil, err
	}
	dialect := db.Dialector.Name()
	byName := make(map[string]Mapping, len(ms))
	for _, m := range ms {
		byName[m.FieldName] = m
	}

	conds := make([]cond, 0, len(qp.Filters))
	for _, f := range qp.Filters {
		m, ok := byName[f.Field]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrFieldNotMapped, f.Field)
		}
		c, err := buildCond(dialect, m, f)
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}

	orderExpr, err := buildOrder(dialect, byName, qp.OrderBy, qp.OrderDirection)
	if err != nil {
		return nil, err
	}

	page, perPage := qp.Page, qp.PerPage
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultQueryPerPage
	}
	if perPage > MaxQueryPerPage {
		perPage = MaxQueryPerPage
	}

	build := func() *gorm.DB {
		instances := db.Model(&pengisianModel.PengisianButirModel{}).
			Select("pengisian_butir_id").
			Where("pengisian_butir_butir_id = ?", qp.ButirID)
		q := db.Model(&dataModel.ButirDataModel{}).
			Where("butir_data_pengisian_butir_id IN (?)", instances)
		if qp.PengisianButirID != nil {
			q = q.Where("butir_data_pengisian_butir_id = ?", *qp.PengisianButirID)
		}
		for _, c := range conds {
			q = q.Where(c.sql, c.args...)
		}
		return q
	}

	var total int64
	if err := build().Count(&total).Error; err != nil {
		return nil, err
	}

	rows := make([]dataModel.ButirDataModel, 0)
	if err := build().
		Order(orderExpr).
		Order("butir_data_created_at ASC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(rows))
	for i := range rows {
		out = append(out, ToNamedFields(&rows[i], ms))
	}
	return &QueryResult{Rows: out, Total: total, Page: page, PerPage: perPage}, nil
}

type cond struct {
	sql  string
	args []any
}

// numericExpr: kolom teks dibandingkan sebagai angka. Di Postgres teks yang bukan
// angka (data lama, tipe field diubah belakangan) jadi NULL alih-alih error 22P02.
// Pola regex tanpa '?' karena '?' dibaca gorm sebagai placeholder.
func numericExpr(dialect, col string) string {
	if dialect == "postgres" {
		return "(CASE WHEN TRIM(" + col + `) ~ '^-{0,1}[0-9]+(\.[0-9]+){0,1}$' THEN CAST(TRIM(` + col + ") AS NUMERIC) END)"
	}
	return "CAST(NULLIF(" + col + ", '') AS NUMERIC)"
}

// likePattern: % dan _ dari user dianggap literal, lalu dibungkus %...%.
func likePattern(v string) string {
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return "%" + r.Replace(strings.ToLower(v)) + "%"
}

func buildCond(dialect string, m Mapping, f Filter) (cond, error) {
	col := m.ColumnName // sudah pasti kolom pool (c1..c30), aman masuk SQL
	op := strings.ToLower(strings.TrimSpace(f.Operator))
	if op == "" {
		op = "="
	}
	numeric := constants.IsNumericFieldType(m.FieldType)

	switch op {
	case "=", "eq", "!=", "<>", "ne":
		sqlOp := "="
		if op != "=" && op != "eq" {
			sqlOp = "<>"
		}
		v, err := scalarArg(f)
		if err != nil {
			return cond{}, err
		}
		return cond{sql: col + " " + sqlOp + " ?", args: []any{v}}, nil

	case ">", ">=", "<", "<=", "gt", "gte", "lt", "lte":
		sqlOp := map[string]string{"gt": ">", "gte": ">=", "lt": "<", "lte": "<="}[op]
		if sqlOp == "" {
			sqlOp = op
		}
		if numeric {
			n, err := numberArg(f)
			if err != nil {
				return cond{}, err
			}
			return cond{sql: numericExpr(dialect, col) + " " + sqlOp + " ?", args: []any{n}}, nil
		}
		v, err := scalarArg(f)
		if err != nil {
			return cond{}, err
		}
		return cond{sql: col + " " + sqlOp + " ?", args: []any{v}}, nil

	case "like", "not_like":
		v, err := scalarArg(f)
		if err != nil {
			return cond{}, err
		}
		sqlOp := "LIKE"
		if op == "not_like" {
			sqlOp = "NOT LIKE"
		}
		return cond{sql: "LOWER(" + col + ") " + sqlOp + ` ? ESCAPE '\'`, args: []any{likePattern(v)}}, nil

	case "in", "not_in":
		list, ok := f.Value.([]any)
		if !ok || len(list) == 0 {
			return cond{}, fmt.Errorf("%w: %q butuh array tidak kosong", ErrInvalidFilter, f.Field)
		}
		vals := make([]string, 0, len(list))
		for _, it := range list {
			c, err := ToCell(it)
			if err != nil || c == nil {
				return cond{}, fmt.Errorf("%w: %q berisi nilai kosong", ErrInvalidFilter, f.Field)
			}
			vals = append(vals, *c)
		}
		sqlOp := "IN"
		if op == "not_in" {
			sqlOp = "NOT IN"
		}
		return cond{sql: col + " " + sqlOp + " ?", args: []any{vals}}, nil

	case "null", "is_null":
		return cond{sql: "(" + col + " IS NULL OR " + col + " = '')"}, nil

	case "not_null", "is_not_null":
		return cond{sql: "(" + col + " IS NOT NULL AND " + col + " <> '')"}, nil
	}
	return cond{}, fmt.Errorf("%w: %q", ErrInvalidOperator, f.Operator)
}

func scalarArg(f Filter) (string, error) {
	c, err := ToCell(f.Value)
	if err != nil || c == nil {
		return "", fmt.Errorf("%w: %q butuh nilai", ErrInvalidFilter, f.Field)
	}
	return *c, nil
}

func numberArg(f Filter) (float64, error) {
	s, err := scalarArg(f)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q butuh angka", ErrInvalidFilter, f.Field)
	}
	return n, nil
}

func buildOrder(dialect string, byName map[string]Mapping, orderBy, direction string) (string, error) {
	dir := "ASC"
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "", "asc":
	case "desc":
		dir = "DESC"
	default:
		return "", fmt.Errorf("%w: order_direction %q", ErrInvalidFilter, direction)
	}

	switch orderBy = strings.TrimSpace(orderBy); orderBy {
	case "", "row_number":
		return "butir_data_row_number " + dir, nil
	case "created_at":
		return "butir_data_created_at " + dir, nil
	}
	m, ok := byName[orderBy]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrFieldNotMapped, orderBy)
	}
	if constants.IsNumericFieldType(m.FieldType) {
		return numericExpr(dialect, m.ColumnName) + " " + dir, nil
	}
	return m.ColumnName + " " + dir, nil
}
