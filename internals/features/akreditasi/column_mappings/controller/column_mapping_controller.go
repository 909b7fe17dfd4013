// file: internals/features/akreditasi/column_mappings/controller/column_mapping_controller.go
package controller

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	dto "akreditasi_backend/internals/features/akreditasi/column_mappings/dto"
	"akreditasi_backend/internals/features/akreditasi/column_mappings/model"
	"akreditasi_backend/internals/features/akreditasi/column_mappings/service"
	helper "akreditasi_backend/internals/helpers"
)

type ColumnMappingController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	svc       *service.ColumnMappingService
}

func NewColumnMappingController(db *gorm.DB, v *validator.Validate) *ColumnMappingController {
	if v == nil {
		v = helper.NewValidator()
	}
	return &ColumnMappingController{
		DB:        db,
		Validator: v,
		svc:       service.NewColumnMappingService(db),
	}
}

// writeErr: sentinel service -> status HTTP
func writeErr(c *fiber.Ctx, op string, err error) error {
	switch {
	case errors.Is(err, service.ErrItemNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Butir akreditasi tidak ditemukan")
	case errors.Is(err, service.ErrTemplateMissing):
		return helper.JsonError(c, fiber.StatusBadRequest, "Butir belum memiliki form_config yang berisi field")
	case errors.Is(err, service.ErrInvalidFieldName):
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrColumnPoolExhausted):
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrMappingConflict):
		return helper.JsonError(c, fiber.StatusConflict, "Mapping bentrok dengan perubahan lain, silakan ulangi")
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return helper.JsonError(c, fe.Code, fe.Message)
	}
	log.Printf("[MAPPING][%s] error: %v", op, err)
	return helper.JsonError(c, fiber.StatusInternalServerError, "Terjadi kesalahan pada server")
}

/*
GET /api/a/butir/:id/column-mappings
*/
func (ctl *ColumnMappingController) GetByButir(c *fiber.Ctx) error {
	butirID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if _, err := ctl.svc.EnsureItem(c.UserContext(), butirID); err != nil {
		return writeErr(c, "GET", err)
	}
	rows, err := ctl.svc.GetByItem(c.UserContext(), butirID)
	if err != nil {
		return writeErr(c, "GET", err)
	}
	return helper.JsonOK(c, "Daftar column mapping", dto.FromModels(rows))
}

/*
POST /api/a/butir/:id/column-mappings/setup

	Sinkronkan mapping dari form_config butir. Idempoten.
*/
func (ctl *ColumnMappingController) Setup(c *fiber.Ctx) error {
	butirID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	rows, err := ctl.svc.SetupFromTemplate(c.UserContext(), butirID)
	if err != nil {
		return writeErr(c, "SETUP", err)
	}
	return helper.JsonUpdated(c, "Column mapping disinkronkan dari form_config", dto.FromModels(rows))
}

/*
PUT /api/a/butir/:id/column-mappings
Body: { "fields": [ {name,label,type,...} ] }
*/
func (ctl *ColumnMappingController) Update(c *fiber.Ctx) error {
	butirID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req dto.UpdateMappingsRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if errs := req.Validate(ctl.Validator); len(errs) > 0 {
		return helper.JsonValidationError(c, errs)
	}

	rows, err := ctl.svc.UpdateMappings(c.UserContext(), butirID, req.ToSpecs())
	if err != nil {
		return writeErr(c, "UPDATE", err)
	}
	return helper.JsonUpdated(c, "Column mapping diperbarui", dto.FromModels(rows))
}

/*
GET /api/a/butir/:id/column-mappings/next
*/
func (ctl *ColumnMappingController) NextColumn(c *fiber.Ctx) error {
	butirID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if _, err := ctl.svc.EnsureItem(c.UserContext(), butirID); err != nil {
		return writeErr(c, "NEXT", err)
	}
	col, ok, err := ctl.svc.NextAvailableColumn(c.UserContext(), butirID)
	if err != nil {
		return writeErr(c, "NEXT", err)
	}
	rows, err := ctl.svc.GetByItem(c.UserContext(), butirID)
	if err != nil {
		return writeErr(c, "NEXT", err)
	}

	out := dto.NextColumnResponse{Available: ok, Remaining: model.MaxColumns - len(rows)}
	if ok {
		out.ColumnName = &col
	}
	if out.Remaining < 0 {
		out.Remaining = 0
	}
	return helper.JsonOK(c, "Kolom berikutnya", out)
}
