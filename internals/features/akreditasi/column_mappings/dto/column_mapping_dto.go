package dto

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"akreditasi_backend/internals/constants"
	"akreditasi_backend/internals/features/akreditasi/column_mappings/model"
	"akreditasi_backend/internals/features/akreditasi/column_mappings/service"
	helper "akreditasi_backend/internals/helpers"
)

/* ========================== RESPONSE ========================== */

type ColumnMappingResponse struct {
	ID           uuid.UUID      `json:"id"`
	ButirID      uuid.UUID      `json:"butir_id"`
	FieldName    string         `json:"field_name"`
	FieldLabel   string         `json:"field_label"`
	ColumnName   string         `json:"column_name"`
	FieldType    string         `json:"field_type"`
	DisplayOrder int            `json:"display_order"`
	IsRequired   bool           `json:"is_required"`
	Width        *string        `json:"width"`
	Placeholder  *string        `json:"placeholder"`
	HelpText     *string        `json:"help_text"`
	FieldConfig  map[string]any `json:"field_config,omitempty"`
}

func FromModel(m model.ButirColumnMappingModel) ColumnMappingResponse {
	out := ColumnMappingResponse{
		ID:           m.ButirColumnMappingID,
		ButirID:      m.ButirColumnMappingButirID,
		FieldName:    m.FieldName,
		FieldLabel:   m.FieldLabel,
		ColumnName:   m.ColumnName,
		FieldType:    m.FieldType,
		DisplayOrder: m.DisplayOrder,
		IsRequired:   m.IsRequired,
		Width:        m.Width,
		Placeholder:  m.Placeholder,
		HelpText:     m.HelpText,
	}
	if len(m.FieldConfig) > 0 {
		_ = json.Unmarshal(m.FieldConfig, &out.FieldConfig)
	}
	return out
}

func FromModels(rows []model.ButirColumnMappingModel) []ColumnMappingResponse {
	out := make([]ColumnMappingResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromModel(r))
	}
	return out
}

/* ========================== UPDATE ========================== */

type MappingFieldRequest struct {
	Name         string         `json:"name" validate:"required,max=64"`
	Label        string         `json:"label" validate:"required,max=255"`
	Type         string         `json:"type" validate:"required,oneof=text number currency decimal percentage select date"`
	ColumnName   *string        `json:"column_name" validate:"omitempty,max=5"`
	DisplayOrder *int           `json:"display_order" validate:"omitempty,min=0"`
	IsRequired   *bool          `json:"is_required"`
	Width        *string        `json:"width" validate:"omitempty,max=20"`
	Placeholder  *string        `json:"placeholder" validate:"omitempty,max=255"`
	HelpText     *string        `json:"help_text"`
	FieldConfig  map[string]any `json:"field_config"`
}

type UpdateMappingsRequest struct {
	Fields []MappingFieldRequest `json:"fields" validate:"required,min=1,dive"`
}

// Validate: tag validator + aturan nama field (format, reserved, unik dalam request).
func (r *UpdateMappingsRequest) Validate(v *validator.Validate) map[string][]string {
	for i := range r.Fields {
		r.Fields[i].Name = strings.TrimSpace(r.Fields[i].Name)
		r.Fields[i].Type = strings.ToLower(strings.TrimSpace(r.Fields[i].Type))
	}

	var errs map[string][]string
	if err := v.Struct(r); err != nil {
		errs = helper.ValidationErrorsToMap(err)
	}

	seen := map[string]int{}
	for i, f := range r.Fields {
		key := fmt.Sprintf("fields[%d].name", i)
		if f.Name == "" {
			continue
		}
		if !helper.IsValidFieldName(f.Name) {
			errs = helper.AddFieldError(errs, key, "hanya huruf kecil, angka, dan underscore, diawali huruf")
		}
		if constants.ReservedFieldNames[f.Name] {
			errs = helper.AddFieldError(errs, key, "nama field sudah dipakai sistem")
		}
		if j, dup := seen[f.Name]; dup {
			errs = helper.AddFieldError(errs, key, fmt.Sprintf("duplikat dengan fields[%d]", j))
		} else {
			seen[f.Name] = i
		}
		if f.ColumnName != nil && *f.ColumnName != "" && !model.IsPoolColumn(*f.ColumnName) {
			errs = helper.AddFieldError(errs, fmt.Sprintf("fields[%d].column_name", i),
				fmt.Sprintf("harus c1..c%d", model.MaxColumns))
		}
	}
	return errs
}

func (r UpdateMappingsRequest) ToSpecs() []service.FieldSpec {
	out := make([]service.FieldSpec, 0, len(r.Fields))
	for _, f := range r.Fields {
		spec := service.FieldSpec{
			Name:         f.Name,
			Label:        strings.TrimSpace(f.Label),
			Type:         f.Type,
			DisplayOrder: f.DisplayOrder,
			IsRequired:   f.IsRequired,
			Width:        f.Width,
			Placeholder:  f.Placeholder,
			HelpText:     f.HelpText,
			FieldConfig:  f.FieldConfig,
		}
		if f.ColumnName != nil {
			spec.ColumnName = strings.TrimSpace(*f.ColumnName)
		}
		out = append(out, spec)
	}
	return out
}

/* ========================== NEXT COLUMN ========================== */

type NextColumnResponse struct {
	ColumnName *string `json:"column_name"`
	Available  bool    `json:"available"`
	Remaining  int     `json:"remaining"`
}
