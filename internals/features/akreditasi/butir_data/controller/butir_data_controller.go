// file: internals/features/akreditasi/butir_data/controller/butir_data_controller.go
package controller

import (
	"errors"
	"log"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	dto "akreditasi_backend/internals/features/akreditasi/butir_data/dto"
	"akreditasi_backend/internals/features/akreditasi/butir_data/service"
	mappingService "akreditasi_backend/internals/features/akreditasi/column_mappings/service"
	helper "akreditasi_backend/internals/helpers"
)

type ButirDataController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	svc       *service.ButirDataService
}

func NewButirDataController(db *gorm.DB, v *validator.Validate) *ButirDataController {
	if v == nil {
		v = helper.NewValidator()
	}
	return &ButirDataController{
		DB:        db,
		Validator: v,
		svc:       service.NewButirDataService(db),
	}
}

func writeErr(c *fiber.Ctx, op string, err error) error {
	switch {
	case errors.Is(err, service.ErrRowNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Baris data tidak ditemukan")
	case errors.Is(err, service.ErrInstanceNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Pengisian butir tidak ditemukan")
	case errors.Is(err, mappingService.ErrItemNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Butir akreditasi tidak ditemukan")
	case errors.Is(err, service.ErrFieldNotMapped),
		errors.Is(err, service.ErrInvalidOperator),
		errors.Is(err, service.ErrInvalidFilter),
		errors.Is(err, service.ErrInvalidPayload):
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return helper.JsonError(c, fe.Code, fe.Message)
	}
	log.Printf("[BUTIR_DATA][%s] error: %v", op, err)
	return helper.JsonError(c, fiber.StatusInternalServerError, "Terjadi kesalahan pada server")
}

// rowCodec: angka di body baris dibaca sebagai json.Number supaya
// nilai seperti 12345678901234567 tersimpan utuh (float64 membulatkannya).
var rowCodec = sonic.Config{UseNumber: true}.Froze()

func decodeBody(c *fiber.Ctx, out any) error {
	return rowCodec.Unmarshal(c.Body(), out)
}

// parseRow: body harus objek JSON
func parseRow(c *fiber.Ctx) (map[string]any, error) {
	var in map[string]any
	if err := decodeBody(c, &in); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Payload harus berupa objek JSON")
	}
	if in == nil {
		in = map[string]any{}
	}
	return in, nil
}

/*
GET /api/a/pengisian-butir/:id/data
*/
func (ctl *ButirDataController) List(c *fiber.Ctx) error {
	instanceID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	rows, err := ctl.svc.List(c.UserContext(), instanceID)
	if err != nil {
		return writeErr(c, "LIST", err)
	}
	return helper.JsonList(c, "Daftar data butir", rows, nil)
}

/*
POST /api/a/pengisian-butir/:id/data
*/
func (ctl *ButirDataController) Create(c *fiber.Ctx) error {
	instanceID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	in, err := parseRow(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	row, err := ctl.svc.Create(c.UserContext(), instanceID, in, helper.ActorID(c))
	if err != nil {
		return writeErr(c, "CREATE", err)
	}
	return helper.JsonCreated(c, "Baris data ditambahkan", row)
}

/*
POST /api/a/pengisian-butir/:id/data/bulk
Body: { "rows": [ {...}, ... ] }
*/
func (ctl *ButirDataController) Bulk(c *fiber.Ctx) error {
	instanceID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.BulkRequest
	if err := decodeBody(c, &req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if errs := req.Validate(ctl.Validator); len(errs) > 0 {
		return helper.JsonValidationError(c, errs)
	}
	rows, err := ctl.svc.BulkCreate(c.UserContext(), instanceID, req.Rows, helper.ActorID(c))
	if err != nil {
		return writeErr(c, "BULK", err)
	}
	return helper.JsonCreated(c, "Baris data ditambahkan", rows)
}

/*
PUT /api/a/pengisian-butir/:id/data/sync
Body: { "rows": [ ... ] }  (mengganti seluruh baris)
*/
func (ctl *ButirDataController) Sync(c *fiber.Ctx) error {
	instanceID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.SyncRequest
	if err := decodeBody(c, &req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if errs := req.Validate(ctl.Validator); len(errs) > 0 {
		return helper.JsonValidationError(c, errs)
	}
	rows, err := ctl.svc.Sync(c.UserContext(), instanceID, req.Rows, helper.ActorID(c))
	if err != nil {
		return writeErr(c, "SYNC", err)
	}
	return helper.JsonUpdated(c, "Data butir disinkronkan", rows)
}

/*
GET /api/a/pengisian-butir/:id/data/export
*/
func (ctl *ButirDataController) Export(c *fiber.Ctx) error {
	instanceID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	rows, columns, err := ctl.svc.Export(c.UserContext(), instanceID)
	if err != nil {
		return writeErr(c, "EXPORT", err)
	}
	return helper.JsonListEx(c, "Export data butir", rows, nil, dto.NewExportIncludes(columns))
}

/*
PUT /api/a/butir-data/:id
*/
func (ctl *ButirDataController) Update(c *fiber.Ctx) error {
	rowID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	in, err := parseRow(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	row, err := ctl.svc.Update(c.UserContext(), rowID, in, helper.ActorID(c))
	if err != nil {
		return writeErr(c, "UPDATE", err)
	}
	return helper.JsonUpdated(c, "Baris data diperbarui", row)
}

/*
DELETE /api/a/butir-data/:id
*/
func (ctl *ButirDataController) Delete(c *fiber.Ctx) error {
	rowID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := ctl.svc.Delete(c.UserContext(), rowID); err != nil {
		return writeErr(c, "DELETE", err)
	}
	return helper.JsonDeleted(c, "Baris data dihapus", fiber.Map{"id": rowID})
}

/*
POST /api/a/butir-data/query
Body: { butir_id, pengisian_butir_id?, filters:[{field,operator,value}], order_by, order_direction, page, per_page }
*/
func (ctl *ButirDataController) Query(c *fiber.Ctx) error {
	var req dto.QueryRequest
	if err := decodeBody(c, &req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if errs := req.Validate(ctl.Validator); len(errs) > 0 {
		return helper.JsonValidationError(c, errs)
	}
	res, err := ctl.svc.Query(c.UserContext(), req.ToParams())
	if err != nil {
		return writeErr(c, "QUERY", err)
	}
	pg := helper.BuildPaginationFromPage(res.Total, res.Page, res.PerPage)
	return helper.JsonList(c, "Hasil query data butir", res.Rows, &pg)
}
