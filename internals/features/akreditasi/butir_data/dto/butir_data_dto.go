// file: internals/features/akreditasi/butir_data/dto/butir_data_dto.go
package dto

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	mappingDTO "akreditasi_backend/internals/features/akreditasi/column_mappings/dto"
	"akreditasi_backend/internals/features/akreditasi/butir_data/service"
	helper "akreditasi_backend/internals/helpers"
)

// Baris dikirim & dikembalikan sebagai objek bebas berkunci nama field logis,
// jadi create/update memakai map langsung (tanpa struct DTO).

/* ========================== BULK / SYNC ========================== */

type BulkRequest struct {
	Rows []map[string]any `json:"rows" validate:"required,min=1,max=1000"`
}

// SyncRequest: rows kosong = kosongkan semua baris pengisian.
type SyncRequest struct {
	Rows []map[string]any `json:"rows" validate:"max=1000"`
}

func validateRows(v *validator.Validate, s any, rows []map[string]any) map[string][]string {
	var errs map[string][]string
	if err := v.Struct(s); err != nil {
		errs = helper.ValidationErrorsToMap(err)
	}
	for i, r := range rows {
		if r == nil {
			errs = helper.AddFieldError(errs, fmt.Sprintf("rows[%d]", i), "harus berupa objek")
		}
	}
	return errs
}

func (r *BulkRequest) Validate(v *validator.Validate) map[string][]string {
	return validateRows(v, r, r.Rows)
}

func (r *SyncRequest) Validate(v *validator.Validate) map[string][]string {
	if r.Rows == nil {
		r.Rows = []map[string]any{}
	}
	return validateRows(v, r, r.Rows)
}

/* ========================== QUERY ========================== */

type FilterRequest struct {
	Field    string `json:"field" validate:"required"`
	Operator string `json:"operator" validate:"omitempty,max=16"` // dicek service (ErrInvalidOperator)
	Value    any    `json:"value"`
}

type QueryRequest struct {
	ButirID          uuid.UUID       `json:"butir_id"`
	PengisianButirID *uuid.UUID      `json:"pengisian_butir_id"`
	Filters          []FilterRequest `json:"filters" validate:"omitempty,max=30,dive"`
	OrderBy          string          `json:"order_by"`
	OrderDirection   string          `json:"order_direction" validate:"omitempty,oneof=asc desc ASC DESC"`
	Page             int             `json:"page" validate:"omitempty,min=1"`
	PerPage          int             `json:"per_page" validate:"omitempty,min=1,max=100"`
}

func (r *QueryRequest) Validate(v *validator.Validate) map[string][]string {
	for i := range r.Filters {
		r.Filters[i].Field = strings.TrimSpace(r.Filters[i].Field)
		r.Filters[i].Operator = strings.ToLower(strings.TrimSpace(r.Filters[i].Operator))
	}
	var errs map[string][]string
	if err := v.Struct(r); err != nil {
		errs = helper.ValidationErrorsToMap(err)
	}
	if r.ButirID == uuid.Nil {
		errs = helper.AddFieldError(errs, "butir_id", "wajib diisi")
	}
	return errs
}

func (r QueryRequest) ToParams() service.QueryParams {
	fs := make([]service.Filter, 0, len(r.Filters))
	for _, f := range r.Filters {
		fs = append(fs, service.Filter{Field: f.Field, Operator: f.Operator, Value: f.Value})
	}
	return service.QueryParams{
		ButirID:          r.ButirID,
		PengisianButirID: r.PengisianButirID,
		Filters:          fs,
		OrderBy:          r.OrderBy,
		OrderDirection:   r.OrderDirection,
		Page:             r.Page,
		PerPage:          r.PerPage,
	}
}

/* ========================== EXPORT ========================== */

type ExportIncludes struct {
	Columns []mappingDTO.ColumnMappingResponse `json:"columns"`
}

func NewExportIncludes(ms []service.Mapping) ExportIncludes {
	return ExportIncludes{Columns: mappingDTO.FromModels(ms)}
}
