// file: internals/features/akreditasi/butir/dto/butir_dto.go
package dto

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"akreditasi_backend/internals/features/akreditasi/butir/model"
	helper "akreditasi_backend/internals/helpers"
)

/* =========================================================
   CREATE
   ========================================================= */

type CreateButirRequest struct {
	Kode       string            `json:"butir_akreditasi_kode" validate:"required,max=50"`
	Nama       string            `json:"butir_akreditasi_nama" validate:"required"`
	Deskripsi  *string           `json:"butir_akreditasi_deskripsi"`
	Kategori   *string           `json:"butir_akreditasi_kategori" validate:"omitempty,max=100"`
	Urutan     *int              `json:"butir_akreditasi_urutan" validate:"omitempty,min=0"`
	FormConfig *model.FormConfig `json:"form_config" validate:"-"`
}

func (r *CreateButirRequest) Normalize() {
	r.Kode = strings.TrimSpace(r.Kode)
	r.Nama = strings.TrimSpace(r.Nama)
	r.Deskripsi = trimPtr(r.Deskripsi)
	r.Kategori = trimPtr(r.Kategori)
}

func (r *CreateButirRequest) Validate(v *validator.Validate) map[string][]string {
	r.Normalize()
	var errs map[string][]string
	if err := v.Struct(r); err != nil {
		errs = helper.ValidationErrorsToMap(err)
	}
	if r.FormConfig != nil {
		for k, msgs := range ValidateFormConfig(v, r.FormConfig, "form_config") {
			for _, m := range msgs {
				errs = helper.AddFieldError(errs, k, m)
			}
		}
	}
	return errs
}

func (r CreateButirRequest) ToModel() (*model.ButirAkreditasiModel, error) {
	m := &model.ButirAkreditasiModel{
		ButirAkreditasiKode:      r.Kode,
		ButirAkreditasiNama:      r.Nama,
		ButirAkreditasiDeskripsi: r.Deskripsi,
		ButirAkreditasiKategori:  r.Kategori,
	}
	if r.Urutan != nil {
		m.ButirAkreditasiUrutan = *r.Urutan
	}
	if r.FormConfig != nil {
		if err := m.SetFormConfig(r.FormConfig); err != nil {
			return nil, err
		}
	}
	return m, nil
}

/* =========================================================
   PATCH (pointer = opsional)
   ========================================================= */

type PatchButirRequest struct {
	Kode      *string `json:"butir_akreditasi_kode" validate:"omitempty,min=1,max=50"`
	Nama      *string `json:"butir_akreditasi_nama" validate:"omitempty,min=1"`
	Deskripsi *string `json:"butir_akreditasi_deskripsi"`
	Kategori  *string `json:"butir_akreditasi_kategori" validate:"omitempty,max=100"`
	Urutan    *int    `json:"butir_akreditasi_urutan" validate:"omitempty,min=0"`
}

func (r *PatchButirRequest) Validate(v *validator.Validate) map[string][]string {
	r.Kode = trimPtr(r.Kode)
	r.Nama = trimPtr(r.Nama)
	if err := v.Struct(r); err != nil {
		return helper.ValidationErrorsToMap(err)
	}
	return nil
}

// Apply mengembalikan map kolom yang berubah (untuk Updates).
func (r PatchButirRequest) Apply(m *model.ButirAkreditasiModel) map[string]any {
	upd := map[string]any{}
	if r.Kode != nil {
		m.ButirAkreditasiKode = *r.Kode
		upd["butir_akreditasi_kode"] = *r.Kode
	}
	if r.Nama != nil {
		m.ButirAkreditasiNama = *r.Nama
		upd["butir_akreditasi_nama"] = *r.Nama
	}
	if r.Deskripsi != nil {
		m.ButirAkreditasiDeskripsi = r.Deskripsi
		upd["butir_akreditasi_deskripsi"] = *r.Deskripsi
	}
	if r.Kategori != nil {
		m.ButirAkreditasiKategori = r.Kategori
		upd["butir_akreditasi_kategori"] = *r.Kategori
	}
	if r.Urutan != nil {
		m.ButirAkreditasiUrutan = *r.Urutan
		upd["butir_akreditasi_urutan"] = *r.Urutan
	}
	return upd
}

/* =========================================================
   RESPONSE
   ========================================================= */

type ButirResponse struct {
	ID         uuid.UUID         `json:"butir_akreditasi_id"`
	Kode       string            `json:"butir_akreditasi_kode"`
	Nama       string            `json:"butir_akreditasi_nama"`
	Deskripsi  *string           `json:"butir_akreditasi_deskripsi,omitempty"`
	Kategori   *string           `json:"butir_akreditasi_kategori,omitempty"`
	Urutan     int               `json:"butir_akreditasi_urutan"`
	Metadata   map[string]any    `json:"butir_akreditasi_metadata,omitempty"`
	FormConfig *model.FormConfig `json:"form_config"`
	CreatedAt  time.Time         `json:"butir_akreditasi_created_at"`
	UpdatedAt  time.Time         `json:"butir_akreditasi_updated_at"`
}

// FromModel: form_config dipisah dari metadata; form_config rusak ditampilkan null.
func FromModel(m model.ButirAkreditasiModel) ButirResponse {
	out := ButirResponse{
		ID:        m.ButirAkreditasiID,
		Kode:      m.ButirAkreditasiKode,
		Nama:      m.ButirAkreditasiNama,
		Deskripsi: m.ButirAkreditasiDeskripsi,
		Kategori:  m.ButirAkreditasiKategori,
		Urutan:    m.ButirAkreditasiUrutan,
		CreatedAt: m.ButirAkreditasiCreatedAt,
		UpdatedAt: m.ButirAkreditasiUpdatedAt,
	}
	if cfg, err := m.FormConfig(); err == nil {
		out.FormConfig = cfg
	}
	if len(m.ButirAkreditasiMetadata) > 0 {
		var meta map[string]any
		if err := json.Unmarshal(m.ButirAkreditasiMetadata, &meta); err == nil {
			delete(meta, model.MetaFormConfig)
			if len(meta) > 0 {
				out.Metadata = meta
			}
		}
	}
	return out
}

func FromModels(rows []model.ButirAkreditasiModel) []ButirResponse {
	out := make([]ButirResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromModel(r))
	}
	return out
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
