package controller

import (
	"bytes"
	"encoding/json"
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
	pengisianModel "akreditasi_backend/internals/features/akreditasi/pengisian_butir/model"
)

type env struct {
	app *fiber.App
	db  *gorm.DB
}

func setup(t *testing.T) env {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "butir_ctl.sqlite")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	h := NewButirController(db, nil)
	app := fiber.New()
	g := app.Group("/butir")
	g.Get("/", h.List)
	g.Post("/", h.Create)
	g.Get("/:id", h.Detail)
	g.Patch("/:id", h.Patch)
	g.Delete("/:id", h.Delete)
	g.Get("/:id/form-config", h.GetFormConfig)
	g.Put("/:id/form-config", h.UpdateFormConfig)
	return env{app: app, db: db}
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

func tableConfig(names ...string) map[string]any {
	cols := make([]any, 0, len(names))
	for _, n := range names {
		cols = append(cols, map[string]any{"name": n, "label": n})
	}
	return map[string]any{"type": "table", "columns": cols}
}

func TestCreateWithSyncAndConflict(t *testing.T) {
	e := setup(t)

	status, body := e.do(t, http.MethodPost, "/butir?sync_mappings=true", map[string]any{
		"butir_akreditasi_kode": "C.1.4",
		"butir_akreditasi_nama": "Kerjasama",
		"form_config":           tableConfig("nama_mitra", "tahun"),
	})
	if status != fiber.StatusCreated {
		t.Fatalf("create %d: %v", status, body)
	}
	data := body["data"].(map[string]any)
	if ms := data["column_mappings"].([]any); len(ms) != 2 {
		t.Fatalf("mappings: %v", ms)
	}

	status, _ = e.do(t, http.MethodPost, "/butir", map[string]any{
		"butir_akreditasi_kode": "C.1.4",
		"butir_akreditasi_nama": "Lain",
	})
	if status != fiber.StatusConflict {
		t.Fatalf("duplicate kode status %d", status)
	}

	status, body = e.do(t, http.MethodPost, "/butir", map[string]any{
		"butir_akreditasi_kode": "C.9",
		"butir_akreditasi_nama": "Rusak",
		"form_config":           tableConfig("notes"),
	})
	if status != fiber.StatusUnprocessableEntity {
		t.Fatalf("reserved field status %d: %v", status, body)
	}
}

func TestFormConfigEndpoints(t *testing.T) {
	e := setup(t)
	_, body := e.do(t, http.MethodPost, "/butir", map[string]any{
		"butir_akreditasi_kode": "C.2",
		"butir_akreditasi_nama": "Narasi",
	})
	id := body["data"].(map[string]any)["butir"].(map[string]any)["butir_akreditasi_id"].(string)
	path := "/butir/" + id + "/form-config"

	status, body := e.do(t, http.MethodPut, path, map[string]any{"form_config": tableConfig("judul", "judul")})
	if status != fiber.StatusUnprocessableEntity {
		t.Fatalf("duplicate field status %d: %v", status, body)
	}

	status, body = e.do(t, http.MethodPut, path+"?sync_mappings=true", map[string]any{"form_config": tableConfig("judul", "tahun")})
	if status != fiber.StatusOK {
		t.Fatalf("update %d: %v", status, body)
	}
	if ms := body["data"].(map[string]any)["column_mappings"].([]any); len(ms) != 2 {
		t.Fatalf("mappings: %v", ms)
	}

	status, body = e.do(t, http.MethodGet, path, nil)
	if status != fiber.StatusOK || len(body["data"].(map[string]any)["fields"].([]any)) != 2 {
		t.Fatalf("get %d: %v", status, body)
	}

	if status, _ = e.do(t, http.MethodPut, "/butir/"+uuid.NewString()+"/form-config", map[string]any{"form_config": tableConfig("x")}); status != fiber.StatusNotFound {
		t.Fatalf("unknown butir status %d", status)
	}
}

func TestDetailPatchDeleteStatuses(t *testing.T) {
	e := setup(t)
	_, body := e.do(t, http.MethodPost, "/butir", map[string]any{"butir_akreditasi_kode": "A", "butir_akreditasi_nama": "A"})
	idA := body["data"].(map[string]any)["butir"].(map[string]any)["butir_akreditasi_id"].(string)
	e.do(t, http.MethodPost, "/butir", map[string]any{"butir_akreditasi_kode": "B", "butir_akreditasi_nama": "B"})

	if status, _ := e.do(t, http.MethodGet, "/butir/bukan-uuid", nil); status != fiber.StatusBadRequest {
		t.Fatalf("bad uuid status %d", status)
	}
	if status, _ := e.do(t, http.MethodGet, "/butir/"+uuid.NewString(), nil); status != fiber.StatusNotFound {
		t.Fatalf("unknown status %d", status)
	}
	if status, _ := e.do(t, http.MethodPatch, "/butir/"+idA, map[string]any{"butir_akreditasi_kode": "B"}); status != fiber.StatusConflict {
		t.Fatalf("patch taken kode status %d", status)
	}

	p := pengisianModel.PengisianButirModel{PengisianButirButirID: uuid.MustParse(idA), PengisianButirPeriode: "2024"}
	if err := e.db.Create(&p).Error; err != nil {
		t.Fatalf("pengisian: %v", err)
	}
	if status, _ := e.do(t, http.MethodDelete, "/butir/"+idA, nil); status != fiber.StatusConflict {
		t.Fatalf("delete in use status %d", status)
	}
	if err := e.db.Delete(&p).Error; err != nil {
		t.Fatalf("delete pengisian: %v", err)
	}
	if status, _ := e.do(t, http.MethodDelete, "/butir/"+idA, nil); status != fiber.StatusOK {
		t.Fatalf("delete status %d", status)
	}

	status, body := e.do(t, http.MethodGet, "/butir?q=b", nil)
	if status != fiber.StatusOK || len(body["data"].([]any)) != 1 {
		t.Fatalf("list %d: %v", status, body)
	}
}
