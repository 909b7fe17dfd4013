// file: internals/features/akreditasi/pengisian_butir/controller/pengisian_butir_controller.go
package controller

import (
	"errors"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	dataModel "akreditasi_backend/internals/features/akreditasi/butir_data/model"
	mappingService "akreditasi_backend/internals/features/akreditasi/column_mappings/service"
	dto "akreditasi_backend/internals/features/akreditasi/pengisian_butir/dto"
	"akreditasi_backend/internals/features/akreditasi/pengisian_butir/model"
	helper "akreditasi_backend/internals/helpers"
)

type PengisianButirController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewPengisianButirController(db *gorm.DB, v *validator.Validate) *PengisianButirController {
	if v == nil {
		v = helper.NewValidator()
	}
	return &PengisianButirController{DB: db, Validator: v}
}

func (ctl *PengisianButirController) findByID(c *fiber.Ctx, id uuid.UUID) (*model.PengisianButirModel, error) {
	var m model.PengisianButirModel
	if err := ctl.DB.WithContext(c.UserContext()).
		Where("pengisian_butir_id = ?", id).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Pengisian butir tidak ditemukan")
		}
		log.Printf("[PENGISIAN][FIND] id=%s error: %v", id, err)
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Gagal mengambil pengisian butir")
	}
	return &m, nil
}

/*
POST /api/a/pengisian-butir
*/
func (ctl *PengisianButirController) Create(c *fiber.Ctx) error {
	var req dto.CreatePengisianRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	req.Normalize()
	if err := ctl.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationErrorsToMap(err))
	}

	if _, err := mappingService.NewColumnMappingService(ctl.DB).EnsureItem(c.UserContext(), req.ButirID); err != nil {
		if errors.Is(err, mappingService.ErrItemNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Butir akreditasi tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memeriksa butir")
	}

	m := req.ToModel(helper.ActorID(c))
	if err := ctl.DB.WithContext(c.UserContext()).Create(m).Error; err != nil {
		log.Printf("[PENGISIAN][CREATE] error: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat pengisian butir")
	}
	return helper.JsonCreated(c, "Pengisian butir dibuat", dto.FromModel(*m))
}

/*
GET /api/a/pengisian-butir/:id
*/
func (ctl *PengisianButirController) Detail(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	m, err := ctl.findByID(c, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var n int64
	if err := ctl.DB.WithContext(c.UserContext()).
		Model(&dataModel.ButirDataModel{}).
		Where("butir_data_pengisian_butir_id = ?", id).
		Count(&n).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung baris data")
	}
	out := dto.FromModel(*m)
	out.RowCount = &n
	return helper.JsonOK(c, "Detail pengisian butir", out)
}

/*
PATCH /api/a/pengisian-butir/:id
*/
func (ctl *PengisianButirController) Patch(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.PatchPengisianRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if req.Periode != nil {
		p := strings.TrimSpace(*req.Periode)
		if p == "" {
			return helper.JsonValidationError(c, map[string][]string{"pengisian_butir_periode": {"periode tidak boleh kosong"}})
		}
		req.Periode = &p
	}
	if req.Status != nil {
		s := strings.ToLower(strings.TrimSpace(*req.Status))
		req.Status = &s
	}
	if err := ctl.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationErrorsToMap(err))
	}

	m, err := ctl.findByID(c, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	upd := map[string]any{}
	if req.Periode != nil {
		m.PengisianButirPeriode = *req.Periode
		upd["pengisian_butir_periode"] = *req.Periode
	}
	if req.Status != nil {
		m.PengisianButirStatus = model.PengisianStatus(*req.Status)
		upd["pengisian_butir_status"] = *req.Status
	}
	if req.Konten != nil {
		m.PengisianButirKonten = req.Konten
		upd["pengisian_butir_konten"] = *req.Konten
	}
	if len(upd) > 0 {
		if err := ctl.DB.WithContext(c.UserContext()).Model(m).Updates(upd).Error; err != nil {
			log.Printf("[PENGISIAN][PATCH] id=%s error: %v", id, err)
			return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memperbarui pengisian butir")
		}
	}
	return helper.JsonUpdated(c, "Pengisian butir diperbarui", dto.FromModel(*m))
}

/*
GET /api/a/butir/:id/pengisian?periode=&status=
*/
func (ctl *PengisianButirController) ListByButir(c *fiber.Ctx) error {
	butirID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	pg := helper.ResolvePaging(c, 20, 100)

	tx := ctl.DB.WithContext(c.UserContext()).
		Model(&model.PengisianButirModel{}).
		Where("pengisian_butir_butir_id = ?", butirID)
	if v := strings.TrimSpace(c.Query("periode")); v != "" {
		tx = tx.Where("pengisian_butir_periode = ?", v)
	}
	if v := strings.ToLower(strings.TrimSpace(c.Query("status"))); v != "" {
		tx = tx.Where("pengisian_butir_status = ?", v)
	}
	tx = tx.Session(&gorm.Session{})

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung pengisian")
	}
	rows := make([]model.PengisianButirModel, 0)
	if err := tx.
		Order("pengisian_butir_periode DESC").
		Order("pengisian_butir_created_at DESC").
		Offset(pg.Offset).
		Limit(pg.PerPage).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil pengisian")
	}

	out := make([]dto.PengisianResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.FromModel(r))
	}
	p := helper.BuildPaginationFromPage(total, pg.Page, pg.PerPage)
	return helper.JsonList(c, "Daftar pengisian butir", out, &p)
}
