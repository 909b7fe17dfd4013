package service

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	database "akreditasi_backend/internals/databases"
	butirModel "akreditasi_backend/internals/features/akreditasi/butir/model"
	dataModel "akreditasi_backend/internals/features/akreditasi/butir_data/model"
	mappingService "akreditasi_backend/internals/features/akreditasi/column_mappings/service"
	pengisianModel "akreditasi_backend/internals/features/akreditasi/pengisian_butir/model"
)

type fixture struct {
	db        *gorm.DB
	svc       *ButirDataService
	butirID   uuid.UUID
	pengisian uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "butir_data.sqlite")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	b := butirModel.ButirAkreditasiModel{ButirAkreditasiKode: "C.1.4", ButirAkreditasiNama: "Kerjasama"}
	if err := db.Create(&b).Error; err != nil {
		t.Fatalf("create butir: %v", err)
	}
	if _, err := mappingService.NewColumnMappingService(db).UpdateMappings(context.Background(), b.ButirAkreditasiID, []mappingService.FieldSpec{
		{Name: "nama_mitra", Label: "Nama Mitra", Type: "text"},
		{Name: "tingkat", Label: "Tingkat", Type: "select"},
		{Name: "tahun", Label: "Tahun", Type: "number"},
	}); err != nil {
		t.Fatalf("mappings: %v", err)
	}

	return &fixture{
		db:        db,
		svc:       NewButirDataService(db),
		butirID:   b.ButirAkreditasiID,
		pengisian: newPengisian(t, db, b.ButirAkreditasiID, "2024"),
	}
}

func newPengisian(t *testing.T, db *gorm.DB, butirID uuid.UUID, periode string) uuid.UUID {
	t.Helper()
	p := pengisianModel.PengisianButirModel{PengisianButirButirID: butirID, PengisianButirPeriode: periode}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("create pengisian: %v", err)
	}
	return p.PengisianButirID
}

func TestCreateDropsUnmappedFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.svc.Create(ctx, f.pengisian, map[string]any{
		"nama_mitra": "Universitas Gadjah Mada",
		"tahun":      float64(2023),
		"asal":       "tidak dipetakan",
		"notes":      "catatan",
	}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if out["nama_mitra"] != "Universitas Gadjah Mada" || out["tahun"] != "2023" {
		t.Fatalf("unexpected projection: %v", out)
	}
	if _, ok := out["asal"]; ok {
		t.Fatalf("unmapped field leaked into output: %v", out)
	}
	if out["tingkat"] != nil {
		t.Fatalf("unset field should be nil, got %v", out["tingkat"])
	}
	if out["notes"] != "catatan" || out["row_number"] != 1 {
		t.Fatalf("metadata / row_number wrong: %v", out)
	}

	var row dataModel.ButirDataModel
	if err := f.db.First(&row, "butir_data_id = ?", out["id"]).Error; err != nil {
		t.Fatalf("load row: %v", err)
	}
	if row.C1 == nil || *row.C1 != "Universitas Gadjah Mada" || row.C3 == nil || *row.C3 != "2023" {
		t.Fatalf("physical columns wrong: c1=%v c3=%v", row.C1, row.C3)
	}
	for i := 4; i <= 30; i++ {
		if row.Column("c"+strconv.Itoa(i)) != nil {
			t.Fatalf("c%d should stay empty", i)
		}
	}
}

func TestCreateThenListRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := map[string]any{"nama_mitra": "ITB", "tingkat": "Nasional", "tahun": "2021"}
	if _, err := f.svc.Create(ctx, f.pengisian, in, nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	rows, err := f.svc.List(ctx, f.pengisian)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	for k, v := range in {
		if rows[0][k] != v {
			t.Fatalf("%s: got %v want %v", k, rows[0][k], v)
		}
	}
}

func TestUpdateIsPartialAndMergesMetadata(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := uuid.New()

	created, err := f.svc.Create(ctx, f.pengisian, map[string]any{
		"nama_mitra": "UI", "tingkat": "Lokal", "notes": "awal",
	}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	rowID := created["id"].(uuid.UUID)

	out, err := f.svc.Update(ctx, rowID, map[string]any{
		"tingkat": "Nasional",
		"dokumen": "mou.pdf",
		"bogus":   1,
	}, &actor)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if out["nama_mitra"] != "UI" || out["tingkat"] != "Nasional" {
		t.Fatalf("partial update wrong: %v", out)
	}
	if out["notes"] != "awal" || out["dokumen"] != "mou.pdf" {
		t.Fatalf("metadata not merged: %v", out)
	}

	var row dataModel.ButirDataModel
	if err := f.db.First(&row, "butir_data_id = ?", rowID).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if row.ButirDataUpdatedBy == nil || *row.ButirDataUpdatedBy != actor {
		t.Fatalf("updated_by not set")
	}
}

func TestUpdateExplicitNullClearsColumn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.pengisian, map[string]any{"nama_mitra": "UI", "tahun": 2020}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	out, err := f.svc.Update(ctx, created["id"].(uuid.UUID), map[string]any{"tahun": nil}, nil)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if out["tahun"] != nil || out["nama_mitra"] != "UI" {
		t.Fatalf("unexpected: %v", out)
	}
}

func TestUpdateAndDeleteUnknownRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Update(ctx, uuid.New(), map[string]any{"tingkat": "x"}, nil); !errors.Is(err, ErrRowNotFound) {
		t.Fatalf("update: expected ErrRowNotFound, got %v", err)
	}
	if err := f.svc.Delete(ctx, uuid.New()); !errors.Is(err, ErrRowNotFound) {
		t.Fatalf("delete: expected ErrRowNotFound, got %v", err)
	}
}

func TestDeleteRemovesRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.pengisian, map[string]any{"nama_mitra": "UNAIR"}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := f.svc.Delete(ctx, created["id"].(uuid.UUID)); err != nil {
		t.Fatalf("delete: %v", err)
	}
	rows, err := f.svc.List(ctx, f.pengisian)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}

func TestUnknownInstance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, uuid.New(), map[string]any{"nama_mitra": "x"}, nil); !errors.Is(err, ErrInstanceNotFound) {
		t.Fatalf("create: expected ErrInstanceNotFound, got %v", err)
	}
	if _, err := f.svc.List(ctx, uuid.New()); !errors.Is(err, ErrInstanceNotFound) {
		t.Fatalf("list: expected ErrInstanceNotFound, got %v", err)
	}
}

func TestSyncReplacesAllRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	five := make([]map[string]any, 0, 5)
	for i := 0; i < 5; i++ {
		five = append(five, map[string]any{"nama_mitra": "lama " + strconv.Itoa(i)})
	}
	if _, err := f.svc.BulkCreate(ctx, f.pengisian, five, nil); err != nil {
		t.Fatalf("bulk: %v", err)
	}

	out, err := f.svc.Sync(ctx, f.pengisian, []map[string]any{
		{"nama_mitra": "baru 1"},
		{"nama_mitra": "baru 2", "tahun": 2024},
	}, nil)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("sync returned %d rows", len(out))
	}

	rows, err := f.svc.List(ctx, f.pengisian)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows after sync, got %d", len(rows))
	}
	if rows[0]["nama_mitra"] != "baru 1" || rows[1]["tahun"] != "2024" {
		t.Fatalf("unexpected rows: %v", rows)
	}
	if rows[0]["row_number"] != 1 || rows[1]["row_number"] != 2 {
		t.Fatalf("row numbers not restarted: %v, %v", rows[0]["row_number"], rows[1]["row_number"])
	}
}

func TestSyncEmptyClearsRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, f.pengisian, map[string]any{"nama_mitra": "x"}, nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.Sync(ctx, f.pengisian, []map[string]any{}, nil); err != nil {
		t.Fatalf("sync: %v", err)
	}
	var n int64
	f.db.Model(&dataModel.ButirDataModel{}).Where("butir_data_pengisian_butir_id = ?", f.pengisian).Count(&n)
	if n != 0 {
		t.Fatalf("expected 0 rows, got %d", n)
	}
}

func TestBulkCreateWithUnmappedValue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.svc.BulkCreate(ctx, f.pengisian, []map[string]any{
		{"nama_mitra": "A", "foo": "bar"},
		{"nama_mitra": "B"},
		{"nama_mitra": "C", "row_number": 10},
		{"nama_mitra": "D"},
	}, nil)
	if err != nil {
		t.Fatalf("bulk: %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(out))
	}
	if _, ok := out[0]["foo"]; ok {
		t.Fatalf("unmapped key kept: %v", out[0])
	}
	wantNumbers := []int{1, 2, 10, 11}
	for i, w := range wantNumbers {
		if out[i]["row_number"] != w {
			t.Fatalf("row %d: row_number %v want %d", i, out[i]["row_number"], w)
		}
	}
}

func TestBulkCreateIsAtomic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.BulkCreate(ctx, f.pengisian, []map[string]any{
		{"nama_mitra": "A"},
		{"nama_mitra": "B", "row_number": "bukan angka"},
	}, nil)
	if !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
	rows, err := f.svc.List(ctx, f.pengisian)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("partial bulk persisted %d rows", len(rows))
	}
}

func TestExportIncludesColumns(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, f.pengisian, map[string]any{"nama_mitra": "A"}, nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	rows, cols, err := f.svc.Export(ctx, f.pengisian)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(rows) != 1 || len(cols) != 3 {
		t.Fatalf("rows=%d cols=%d", len(rows), len(cols))
	}
	if cols[0].FieldName != "nama_mitra" || cols[2].FieldName != "tahun" {
		t.Fatalf("columns out of order: %s, %s", cols[0].FieldName, cols[2].FieldName)
	}
}
