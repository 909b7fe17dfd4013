// file: internals/features/akreditasi/butir/controller/butir_controller.go
package controller

import (
	"errors"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	dto "akreditasi_backend/internals/features/akreditasi/butir/dto"
	"akreditasi_backend/internals/features/akreditasi/butir/model"
	"akreditasi_backend/internals/features/akreditasi/butir/service"
	mappingDTO "akreditasi_backend/internals/features/akreditasi/column_mappings/dto"
	mappingService "akreditasi_backend/internals/features/akreditasi/column_mappings/service"
	helper "akreditasi_backend/internals/helpers"
)

type ButirController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	svc       *service.ButirService
}

func NewButirController(db *gorm.DB, v *validator.Validate) *ButirController {
	if v == nil {
		v = helper.NewValidator()
	}
	return &ButirController{DB: db, Validator: v, svc: service.NewButirService(db)}
}

func writeErr(c *fiber.Ctx, op string, err error) error {
	switch {
	case errors.Is(err, service.ErrButirNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Butir akreditasi tidak ditemukan")
	case errors.Is(err, service.ErrKodeTaken):
		return helper.JsonError(c, fiber.StatusConflict, "Kode butir sudah dipakai")
	case errors.Is(err, service.ErrButirInUse):
		return helper.JsonError(c, fiber.StatusConflict, "Butir masih memiliki pengisian, tidak bisa dihapus")
	case errors.Is(err, mappingService.ErrColumnPoolExhausted),
		errors.Is(err, mappingService.ErrTemplateMissing):
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, mappingService.ErrInvalidFieldName):
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, mappingService.ErrMappingConflict):
		return helper.JsonError(c, fiber.StatusConflict, "Mapping bentrok dengan perubahan lain, silakan ulangi")
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return helper.JsonError(c, fe.Code, fe.Message)
	}
	log.Printf("[BUTIR][%s] error: %v", op, err)
	return helper.JsonError(c, fiber.StatusInternalServerError, "Terjadi kesalahan pada server")
}

/*
POST /api/a/butir?sync_mappings=true
*/
func (ctl *ButirController) Create(c *fiber.Ctx) error {
	var req dto.CreateButirRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid: "+err.Error())
	}
	if errs := req.Validate(ctl.Validator); len(errs) > 0 {
		return helper.JsonValidationError(c, errs)
	}
	m, err := req.ToModel()
	if err != nil {
		return writeErr(c, "CREATE", err)
	}
	mappings, err := ctl.svc.Create(c.UserContext(), m, c.QueryBool("sync_mappings", false))
	if err != nil {
		return writeErr(c, "CREATE", err)
	}
	return helper.JsonCreated(c, "Butir akreditasi dibuat", fiber.Map{
		"butir":           dto.FromModel(*m),
		"column_mappings": mappingDTO.FromModels(mappings),
	})
}

/*
GET /api/a/butir?q=&kategori=&page=&per_page=
*/
func (ctl *ButirController) List(c *fiber.Ctx) error {
	pg := helper.ResolvePaging(c, 20, 200)
	rows, total, err := ctl.svc.List(c.UserContext(), service.ListQuery{
		Q:        c.Query("q"),
		Kategori: c.Query("kategori"),
		Offset:   pg.Offset,
		Limit:    pg.PerPage,
	})
	if err != nil {
		return writeErr(c, "LIST", err)
	}
	p := helper.BuildPaginationFromPage(total, pg.Page, pg.PerPage)
	return helper.JsonList(c, "Daftar butir akreditasi", dto.FromModels(rows), &p)
}

func (ctl *ButirController) Detail(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	m, err := ctl.svc.Get(c.UserContext(), id)
	if err != nil {
		return writeErr(c, "DETAIL", err)
	}
	return helper.JsonOK(c, "Detail butir akreditasi", dto.FromModel(*m))
}

/*
PATCH /api/a/butir/:id
*/
func (ctl *ButirController) Patch(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.PatchButirRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if errs := req.Validate(ctl.Validator); len(errs) > 0 {
		return helper.JsonValidationError(c, errs)
	}
	m, err := ctl.svc.Patch(c.UserContext(), id, req.Apply)
	if err != nil {
		return writeErr(c, "PATCH", err)
	}
	return helper.JsonUpdated(c, "Butir akreditasi diperbarui", dto.FromModel(*m))
}

func (ctl *ButirController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := ctl.svc.Delete(c.UserContext(), id); err != nil {
		return writeErr(c, "DELETE", err)
	}
	return helper.JsonDeleted(c, "Butir akreditasi dihapus", fiber.Map{"butir_akreditasi_id": id})
}

/* =========================================================
   FORM CONFIG
   ========================================================= */

/*
GET /api/a/butir/:id/form-config
*/
func (ctl *ButirController) GetFormConfig(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	m, err := ctl.svc.Get(c.UserContext(), id)
	if err != nil {
		return writeErr(c, "FORM_CONFIG", err)
	}
	cfg, err := m.FormConfig()
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, "form_config tersimpan tidak valid: "+err.Error())
	}
	return helper.JsonOK(c, "Form config butir", dto.FormConfigResponse{
		ButirID:    id.String(),
		FormConfig: cfg,
		Fields:     dto.PreviewFields(cfg),
	})
}

/*
PUT /api/a/butir/:id/form-config?sync_mappings=true
Body: { "form_config": { "type": "table", "columns": [...] } }  (null = hapus template)
*/
func (ctl *ButirController) UpdateFormConfig(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateFormConfigRequest
	if err := c.BodyParser(&req); err != nil {
		msg := err.Error()
		if strings.Contains(msg, "form_config") {
			return helper.JsonValidationError(c, map[string][]string{"form_config": {msg}})
		}
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if req.FormConfig != nil {
		if errs := dto.ValidateFormConfig(ctl.Validator, req.FormConfig, "form_config"); len(errs) > 0 {
			return helper.JsonValidationError(c, errs)
		}
	}

	m, mappings, err := ctl.svc.UpdateFormConfig(c.UserContext(), id, req.FormConfig, c.QueryBool("sync_mappings", false))
	if err != nil {
		return writeErr(c, "FORM_CONFIG", err)
	}
	var cfg *model.FormConfig
	if cfg, err = m.FormConfig(); err != nil {
		return writeErr(c, "FORM_CONFIG", err)
	}
	return helper.JsonUpdated(c, "Form config diperbarui", fiber.Map{
		"butir_id":        id,
		"form_config":     cfg,
		"fields":          dto.PreviewFields(cfg),
		"column_mappings": mappingDTO.FromModels(mappings),
	})
}
