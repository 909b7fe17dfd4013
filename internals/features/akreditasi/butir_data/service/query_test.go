package service

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func seedQueryRows(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	rows := []map[string]any{
		{"nama_mitra": "Universitas Indonesia", "tingkat": "Nasional", "tahun": 2019},
		{"nama_mitra": "Kyoto University", "tingkat": "Internasional", "tahun": 2022},
		{"nama_mitra": "Pemkot Bandung", "tingkat": "Lokal", "tahun": 9},
		{"nama_mitra": "Universitas Airlangga", "tingkat": "Nasional", "tahun": 2023},
	}
	if _, err := f.svc.BulkCreate(ctx, f.pengisian, rows, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestQueryNumericRangeFilter(t *testing.T) {
	f := newFixture(t)
	seedQueryRows(t, f)

	res, err := f.svc.Query(context.Background(), QueryParams{
		ButirID: f.butirID,
		Filters: []Filter{{Field: "tahun", Operator: ">=", Value: 2020}},
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	// "9" >= "2020" benar kalau dibandingkan sebagai teks
	if res.Total != 2 || len(res.Rows) != 2 {
		t.Fatalf("expected 2 rows, got total=%d rows=%d", res.Total, len(res.Rows))
	}
	for _, r := range res.Rows {
		if r["tahun"] != "2022" && r["tahun"] != "2023" {
			t.Fatalf("unexpected row %v", r)
		}
	}
}

func TestQueryLikeAndEquality(t *testing.T) {
	f := newFixture(t)
	seedQueryRows(t, f)
	ctx := context.Background()

	res, err := f.svc.Query(ctx, QueryParams{
		ButirID: f.butirID,
		Filters: []Filter{
			{Field: "nama_mitra", Operator: "like", Value: "universitas"},
			{Field: "tingkat", Operator: "=", Value: "Nasional"},
		},
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if res.Total != 2 {
		t.Fatalf("expected 2 rows, got %d", res.Total)
	}

	res, err = f.svc.Query(ctx, QueryParams{
		ButirID: f.butirID,
		Filters: []Filter{{Field: "tingkat", Operator: "in", Value: []any{"Lokal", "Internasional"}}},
	})
	if err != nil {
		t.Fatalf("query in: %v", err)
	}
	if res.Total != 2 {
		t.Fatalf("in: expected 2 rows, got %d", res.Total)
	}
}

func TestQueryOrderAndPaging(t *testing.T) {
	f := newFixture(t)
	seedQueryRows(t, f)

	res, err := f.svc.Query(context.Background(), QueryParams{
		ButirID:        f.butirID,
		OrderBy:        "tahun",
		OrderDirection: "desc",
		Page:           1,
		PerPage:        2,
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if res.Total != 4 || len(res.Rows) != 2 || res.PerPage != 2 {
		t.Fatalf("paging wrong: total=%d rows=%d per_page=%d", res.Total, len(res.Rows), res.PerPage)
	}
	if res.Rows[0]["tahun"] != "2023" || res.Rows[1]["tahun"] != "2022" {
		t.Fatalf("order wrong: %v, %v", res.Rows[0]["tahun"], res.Rows[1]["tahun"])
	}

	res, err = f.svc.Query(context.Background(), QueryParams{
		ButirID:        f.butirID,
		OrderBy:        "tahun",
		OrderDirection: "desc",
		Page:           2,
		PerPage:        2,
	})
	if err != nil {
		t.Fatalf("query page 2: %v", err)
	}
	if len(res.Rows) != 2 || res.Rows[1]["tahun"] != "9" {
		t.Fatalf("page 2 wrong: %v", res.Rows)
	}
}

func TestQueryScopesToInstance(t *testing.T) {
	f := newFixture(t)
	seedQueryRows(t, f)
	other := newPengisian(t, f.db, f.butirID, "2025")
	if _, err := f.svc.Create(context.Background(), other, map[string]any{"nama_mitra": "Lain"}, nil); err != nil {
		t.Fatalf("create: %v", err)
	}

	all, err := f.svc.Query(context.Background(), QueryParams{ButirID: f.butirID})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if all.Total != 5 {
		t.Fatalf("expected 5 rows across instances, got %d", all.Total)
	}

	one, err := f.svc.Query(context.Background(), QueryParams{ButirID: f.butirID, PengisianButirID: &other})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if one.Total != 1 || one.Rows[0]["nama_mitra"] != "Lain" {
		t.Fatalf("instance scope wrong: %v", one.Rows)
	}
}

func TestQueryRejectsUnmappedField(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Query(ctx, QueryParams{
		ButirID: f.butirID,
		Filters: []Filter{{Field: "asal", Operator: "=", Value: "x"}},
	})
	if !errors.Is(err, ErrFieldNotMapped) {
		t.Fatalf("filter: expected ErrFieldNotMapped, got %v", err)
	}

	_, err = f.svc.Query(ctx, QueryParams{ButirID: f.butirID, OrderBy: "asal"})
	if !errors.Is(err, ErrFieldNotMapped) {
		t.Fatalf("order: expected ErrFieldNotMapped, got %v", err)
	}
}

func TestQueryInvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		filter Filter
		want   error
	}{
		{"unknown operator", Filter{Field: "tahun", Operator: "between", Value: 1}, ErrInvalidOperator},
		{"non numeric", Filter{Field: "tahun", Operator: ">", Value: "abc"}, ErrInvalidFilter},
		{"empty in", Filter{Field: "tingkat", Operator: "in", Value: []any{}}, ErrInvalidFilter},
		{"missing value", Filter{Field: "tingkat", Operator: "="}, ErrInvalidFilter},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Query(ctx, QueryParams{ButirID: f.butirID, Filters: []Filter{tc.filter}})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestQueryLikeTreatsWildcardsLiterally(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rows := []map[string]any{
		{"nama_mitra": "nama_mitra"},
		{"nama_mitra": "namaXmitra"},
		{"nama_mitra": "diskon 50%"},
		{"nama_mitra": "diskon 500"},
	}
	if _, err := f.svc.BulkCreate(ctx, f.pengisian, rows, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}

	cases := map[string]int64{"a_m": 1, "50%": 1, "NAMA": 2}
	for v, want := range cases {
		res, err := f.svc.Query(ctx, QueryParams{
			ButirID: f.butirID,
			Filters: []Filter{{Field: "nama_mitra", Operator: "like", Value: v}},
		})
		if err != nil {
			t.Fatalf("like %q: %v", v, err)
		}
		if res.Total != want {
			t.Fatalf("like %q: expected %d rows, got %d", v, want, res.Total)
		}
	}
}

func TestNumericExprGuardsPostgresCast(t *testing.T) {
	pg := numericExpr("postgres", "c3")
	if !strings.Contains(pg, "CASE WHEN TRIM(c3) ~") || strings.Contains(pg, "?") {
		t.Fatalf("postgres expr: %s", pg)
	}
	if got := numericExpr("sqlite", "c3"); got != "CAST(NULLIF(c3, '') AS NUMERIC)" {
		t.Fatalf("sqlite expr: %s", got)
	}
	if got := likePattern(`A_b%c\`); got != `%a\_b\%c\\%` {
		t.Fatalf("like pattern: %s", got)
	}
}
