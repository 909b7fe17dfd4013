// file: internals/features/akreditasi/butir/dto/form_config_dto.go
package dto

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"akreditasi_backend/internals/constants"
	"akreditasi_backend/internals/features/akreditasi/butir/model"
	mappingModel "akreditasi_backend/internals/features/akreditasi/column_mappings/model"
	helper "akreditasi_backend/internals/helpers"
)

// PUT /butir/:id/form-config
type UpdateFormConfigRequest struct {
	FormConfig *model.FormConfig `json:"form_config"`
}

type FormConfigResponse struct {
	ButirID    string                `json:"butir_id"`
	FormConfig *model.FormConfig     `json:"form_config"`
	Fields     []TemplateFieldPreview `json:"fields"`
}

// TemplateFieldPreview: field hasil turunan template (nama final + tipe).
type TemplateFieldPreview struct {
	Name     string         `json:"name"`
	Label    string         `json:"label"`
	Type     string         `json:"type"`
	Required bool           `json:"required"`
	Path     string         `json:"path"`
	Config   map[string]any `json:"config,omitempty"`
}

func PreviewFields(cfg *model.FormConfig) []TemplateFieldPreview {
	out := []TemplateFieldPreview{}
	if cfg == nil {
		return out
	}
	for _, f := range cfg.Fields() {
		out = append(out, TemplateFieldPreview{
			Name:     f.Name,
			Label:    f.Label,
			Type:     f.Type,
			Required: f.Required,
			Path:     f.Path,
			Config:   f.Config,
		})
	}
	return out
}

// ValidateFormConfig memeriksa skema per jenis template dan field turunannya.
// Key error diawali prefix (mis. "form_config.columns[0].name").
func ValidateFormConfig(v *validator.Validate, cfg *model.FormConfig, prefix string) map[string][]string {
	var errs map[string][]string
	if cfg == nil {
		return helper.AddFieldError(errs, prefix, "wajib diisi")
	}

	errs = validateSchema(v, *cfg, prefix, errs, true)

	fields := cfg.Fields()
	if len(fields) > mappingModel.MaxColumns {
		errs = helper.AddFieldError(errs, prefix,
			fmt.Sprintf("maksimal %d field per butir (ada %d)", mappingModel.MaxColumns, len(fields)))
	}

	seen := map[string]string{}
	for _, f := range fields {
		key := prefix + "." + f.Path + ".name"
		switch {
		case f.Name == "":
			errs = helper.AddFieldError(errs, key, "name atau label wajib diisi")
			continue
		case !helper.IsValidFieldName(f.Name):
			errs = helper.AddFieldError(errs, key, "hanya huruf kecil, angka, dan underscore, diawali huruf")
		case constants.ReservedFieldNames[f.Name]:
			errs = helper.AddFieldError(errs, key, "nama field sudah dipakai sistem")
		}
		if other, dup := seen[f.Name]; dup {
			errs = helper.AddFieldError(errs, key, "duplikat dengan "+other)
		} else {
			seen[f.Name] = f.Path
		}
		if !constants.IsValidFieldType(f.Type) {
			errs = helper.AddFieldError(errs, prefix+"."+f.Path+".type", "harus salah satu dari: "+constants.FieldTypesOneOf)
		}
		if f.Type == constants.FieldTypeSelect {
			if opts, _ := f.Config["options"].([]string); len(opts) == 0 {
				errs = helper.AddFieldError(errs, prefix+"."+f.Path+".options", "wajib diisi untuk tipe select")
			}
		}
	}
	return errs
}

func validateSchema(v *validator.Validate, cfg model.FormConfig, prefix string, errs map[string][]string, top bool) map[string][]string {
	var schema any
	switch cfg.Kind {
	case model.KindTable:
		schema = cfg.Table
	case model.KindNarrative:
		schema = cfg.Narrative
	case model.KindChecklist:
		schema = cfg.Checklist
	case model.KindMetric:
		schema = cfg.Metric
	case model.KindMixed:
		if !top {
			return helper.AddFieldError(errs, prefix+".type", "section tidak boleh bertipe mixed")
		}
		if cfg.Mixed == nil || len(cfg.Mixed.Sections) == 0 {
			return helper.AddFieldError(errs, prefix+".sections", "wajib diisi")
		}
		for i, s := range cfg.Mixed.Sections {
			errs = validateSchema(v, s.FormConfig, fmt.Sprintf("%s.sections[%d]", prefix, i), errs, false)
		}
		return errs
	default:
		return helper.AddFieldError(errs, prefix+".type", "harus salah satu dari: table narrative checklist metric mixed")
	}

	if err := v.Struct(schema); err != nil {
		for k, msgs := range helper.ValidationErrorsToMap(err) {
			for _, m := range msgs {
				errs = helper.AddFieldError(errs, prefix+"."+k, m)
			}
		}
	}
	return errs
}
