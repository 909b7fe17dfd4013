package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	database "akreditasi_backend/internals/databases"
	butirModel "akreditasi_backend/internals/features/akreditasi/butir/model"
	"akreditasi_backend/internals/features/akreditasi/column_mappings/model"
)

type env struct {
	app *fiber.App
	db  *gorm.DB
}

func setup(t *testing.T) env {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "mapping_ctl.sqlite")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	h := NewColumnMappingController(db, nil)
	app := fiber.New()
	g := app.Group("/butir/:id/column-mappings")
	g.Get("/", h.GetByButir)
	g.Put("/", h.Update)
	g.Post("/setup", h.Setup)
	g.Get("/next", h.NextColumn)
	return env{app: app, db: db}
}

func (e env) butir(t *testing.T, cols ...butirModel.FieldDef) string {
	t.Helper()
	b := butirModel.ButirAkreditasiModel{ButirAkreditasiKode: "K." + uuid.NewString()[:6], ButirAkreditasiNama: "Butir"}
	if len(cols) > 0 {
		if err := b.SetFormConfig(&butirModel.FormConfig{
			Kind:  butirModel.KindTable,
			Table: &butirModel.TableSchema{Columns: cols},
		}); err != nil {
			t.Fatalf("form config: %v", err)
		}
	}
	if err := e.db.Create(&b).Error; err != nil {
		t.Fatalf("create butir: %v", err)
	}
	return "/butir/" + b.ButirAkreditasiID.String() + "/column-mappings"
}

func (e env) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode %s %s: %v", method, path, err)
	}
	return resp.StatusCode, out
}

func TestSetupThenNextColumn(t *testing.T) {
	e := setup(t)
	base := e.butir(t, butirModel.FieldDef{Label: "Nama Mitra"}, butirModel.FieldDef{Label: "Tahun", Type: "number"})

	status, body := e.do(t, http.MethodPost, base+"/setup", nil)
	if status != fiber.StatusOK {
		t.Fatalf("setup %d: %v", status, body)
	}
	rows := body["data"].([]any)
	if len(rows) != 2 || rows[1].(map[string]any)["column_name"] != "c2" {
		t.Fatalf("setup rows: %v", rows)
	}

	status, body = e.do(t, http.MethodGet, base+"/next", nil)
	data := body["data"].(map[string]any)
	if status != fiber.StatusOK || data["column_name"] != "c3" || data["remaining"] != float64(model.MaxColumns-2) {
		t.Fatalf("next %d: %v", status, data)
	}

	status, body = e.do(t, http.MethodGet, base, nil)
	if status != fiber.StatusOK || len(body["data"].([]any)) != 2 {
		t.Fatalf("get %d: %v", status, body)
	}
}

func TestSetupErrorStatuses(t *testing.T) {
	e := setup(t)

	status, _ := e.do(t, http.MethodPost, e.butir(t)+"/setup", nil)
	if status != fiber.StatusBadRequest {
		t.Fatalf("missing template status %d", status)
	}

	many := make([]butirModel.FieldDef, 0, model.MaxColumns+1)
	for i := 1; i <= model.MaxColumns+1; i++ {
		many = append(many, butirModel.FieldDef{Label: fmt.Sprintf("Kolom %d", i)})
	}
	if status, body := e.do(t, http.MethodPost, e.butir(t, many...)+"/setup", nil); status != fiber.StatusBadRequest {
		t.Fatalf("pool exhausted status %d: %v", status, body)
	}

	if status, body := e.do(t, http.MethodPost, e.butir(t, butirModel.FieldDef{Name: "notes", Label: "Catatan"})+"/setup", nil); status != fiber.StatusUnprocessableEntity {
		t.Fatalf("reserved name status %d: %v", status, body)
	}

	unknown := "/butir/" + uuid.NewString() + "/column-mappings"
	if status, _ := e.do(t, http.MethodPost, unknown+"/setup", nil); status != fiber.StatusNotFound {
		t.Fatalf("unknown butir setup status %d", status)
	}
	if status, _ := e.do(t, http.MethodGet, unknown, nil); status != fiber.StatusNotFound {
		t.Fatalf("unknown butir get status %d", status)
	}
	if status, _ := e.do(t, http.MethodGet, "/butir/bukan-uuid/column-mappings/next", nil); status != fiber.StatusBadRequest {
		t.Fatalf("bad uuid status %d", status)
	}
}

func TestUpdateMappingsEndpoint(t *testing.T) {
	e := setup(t)
	base := e.butir(t)

	status, body := e.do(t, http.MethodPut, base, map[string]any{"fields": []any{
		map[string]any{"name": "row_number", "label": "No", "type": "number"},
		map[string]any{"name": "Judul", "label": "Judul", "type": "text"},
	}})
	if status != fiber.StatusUnprocessableEntity {
		t.Fatalf("invalid names status %d: %v", status, body)
	}
	errs := body["errors"].(map[string]any)
	if _, ok := errs["fields[0].name"]; !ok {
		t.Fatalf("errors: %v", errs)
	}
	if _, ok := errs["fields[1].name"]; !ok {
		t.Fatalf("errors: %v", errs)
	}

	status, body = e.do(t, http.MethodPut, base, map[string]any{"fields": []any{
		map[string]any{"name": "judul", "label": "Judul", "type": "text", "column_name": "c5"},
	}})
	rows := body["data"].([]any)
	if status != fiber.StatusOK || len(rows) != 1 || rows[0].(map[string]any)["column_name"] != "c5" {
		t.Fatalf("update %d: %v", status, body)
	}

	fields := make([]any, 0, model.MaxColumns)
	for i := 1; i <= model.MaxColumns; i++ {
		fields = append(fields, map[string]any{"name": fmt.Sprintf("f%d", i), "label": "F", "type": "text"})
	}
	if status, body = e.do(t, http.MethodPut, base, map[string]any{"fields": fields}); status != fiber.StatusBadRequest {
		t.Fatalf("pool exhausted status %d: %v", status, body)
	}
}
