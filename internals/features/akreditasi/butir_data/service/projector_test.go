package service

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"

	dataModel "akreditasi_backend/internals/features/akreditasi/butir_data/model"
)

func testMappings() []Mapping {
	return []Mapping{
		{FieldName: "judul", ColumnName: "c1", FieldType: "text"},
		{FieldName: "nilai", ColumnName: "c4", FieldType: "decimal"},
	}
}

func TestToCell(t *testing.T) {
	cases := []struct {
		in   any
		want *string
	}{
		{nil, nil},
		{"teks", strPtr("teks")},
		{float64(2023), strPtr("2023")},
		{3.25, strPtr("3.25")},
		{true, strPtr("true")},
		{json.Number("12.50"), strPtr("12.50")},
		{[]any{"a", "b"}, strPtr(`["a","b"]`)},
	}
	for _, tc := range cases {
		got, err := ToCell(tc.in)
		if err != nil {
			t.Fatalf("ToCell(%v): %v", tc.in, err)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("ToCell(%v) = %v, want %v", tc.in, deref(got), deref(tc.want))
		}
	}
}

func TestFromNamedFieldsDropsUnknownKeys(t *testing.T) {
	var row dataModel.ButirDataModel
	dropped, err := FromNamedFields(&row, testMappings(), map[string]any{
		"id":         uuid.NewString(),
		"judul":      "MoU",
		"nilai":      3.5,
		"zeta":       1,
		"alpha":      "x",
		"notes":      "catatan",
		"row_number": "7",
	})
	if err != nil {
		t.Fatalf("from named: %v", err)
	}
	if !reflect.DeepEqual(dropped, []string{"alpha", "zeta"}) {
		t.Fatalf("dropped = %v", dropped)
	}
	if deref(row.C1) != "MoU" || deref(row.C4) != "3.5" || row.C2 != nil {
		t.Fatalf("columns wrong: c1=%q c2=%v c4=%q", deref(row.C1), row.C2, deref(row.C4))
	}
	if row.ButirDataRowNumber != 7 {
		t.Fatalf("row_number = %d", row.ButirDataRowNumber)
	}
	if row.ButirDataID != uuid.Nil {
		t.Fatalf("id from input must be ignored")
	}
	if row.Metadata()["notes"] != "catatan" {
		t.Fatalf("metadata = %v", row.Metadata())
	}
}

func TestFromNamedFieldsRejectsBadRowNumber(t *testing.T) {
	var row dataModel.ButirDataModel
	_, err := FromNamedFields(&row, testMappings(), map[string]any{"row_number": []any{1}})
	if !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}

func TestToNamedFieldsOnlyExposesMappedColumns(t *testing.T) {
	row := dataModel.ButirDataModel{
		ButirDataID:        uuid.New(),
		ButirDataRowNumber: 3,
		C1:                 strPtr("Laporan"),
		C2:                 strPtr("yatim"),
		ButirDataMetadata:  []byte(`{"dokumen":"a.pdf","lain":"x"}`),
	}
	out := ToNamedFields(&row, testMappings())

	want := map[string]any{
		"id":         row.ButirDataID,
		"row_number": 3,
		"judul":      "Laporan",
		"nilai":      nil,
		"dokumen":    "a.pdf",
	}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("got %v\nwant %v", out, want)
	}
}

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}

func strPtr(s string) *string { return &s }

func TestToRowNumber(t *testing.T) {
	ok := []struct {
		in   any
		want int
	}{
		{float64(3), 3},
		{json.Number("12"), 12},
		{" 7 ", 7},
		{int64(MaxRowNumber), MaxRowNumber},
	}
	for _, tc := range ok {
		got, err := toRowNumber(tc.in)
		if err != nil || got != tc.want {
			t.Fatalf("toRowNumber(%v) = %d, %v", tc.in, got, err)
		}
	}

	bad := []any{2.7, 1e20, float64(-1), json.Number("1.5"), json.Number("99999999999999999999"), "-3", int64(MaxRowNumber) + 1, true}
	for _, in := range bad {
		if _, err := toRowNumber(in); !errors.Is(err, ErrInvalidPayload) {
			t.Fatalf("toRowNumber(%v): expected ErrInvalidPayload, got %v", in, err)
		}
	}
}

func TestFromNamedFieldsNullRowNumberIsIgnored(t *testing.T) {
	row := dataModel.ButirDataModel{ButirDataRowNumber: 4}
	if _, err := FromNamedFields(&row, testMappings(), map[string]any{"row_number": nil}); err != nil {
		t.Fatalf("from named: %v", err)
	}
	if row.ButirDataRowNumber != 4 {
		t.Fatalf("row_number = %d", row.ButirDataRowNumber)
	}
}

func TestFromNamedFieldsNumericCells(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{json.Number("12345678901234567"), "12345678901234567"},
		{json.Number("1e3"), "1000"},
		{"-2.50", "-2.50"},
		{"", ""},
	}
	for _, tc := range cases {
		var row dataModel.ButirDataModel
		if _, err := FromNamedFields(&row, testMappings(), map[string]any{"nilai": tc.in}); err != nil {
			t.Fatalf("nilai=%v: %v", tc.in, err)
		}
		if deref(row.C4) != tc.want {
			t.Fatalf("nilai=%v stored %q want %q", tc.in, deref(row.C4), tc.want)
		}
	}

	for _, in := range []any{"abc", "1.000.000", "1,5"} {
		var row dataModel.ButirDataModel
		if _, err := FromNamedFields(&row, testMappings(), map[string]any{"nilai": in}); !errors.Is(err, ErrInvalidPayload) {
			t.Fatalf("nilai=%v: expected ErrInvalidPayload, got %v", in, err)
		}
	}

	// kolom teks tidak diperiksa
	var row dataModel.ButirDataModel
	if _, err := FromNamedFields(&row, testMappings(), map[string]any{"judul": "1.000.000"}); err != nil {
		t.Fatalf("text field: %v", err)
	}
}
