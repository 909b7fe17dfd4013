// file: internals/features/akreditasi/pengisian_butir/dto/pengisian_butir_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"akreditasi_backend/internals/features/akreditasi/pengisian_butir/model"
)

type CreatePengisianRequest struct {
	ButirID uuid.UUID `json:"pengisian_butir_butir_id" validate:"required"`
	Periode string    `json:"pengisian_butir_periode" validate:"required,max=20"`
	Status  string    `json:"pengisian_butir_status" validate:"omitempty,oneof=draft submitted verified"`
	Konten  *string   `json:"pengisian_butir_konten"`
}

func (r *CreatePengisianRequest) Normalize() {
	r.Periode = strings.TrimSpace(r.Periode)
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
}

func (r CreatePengisianRequest) ToModel(actor *uuid.UUID) *model.PengisianButirModel {
	st := model.PengisianDraft
	if r.Status != "" {
		st = model.PengisianStatus(r.Status)
	}
	return &model.PengisianButirModel{
		PengisianButirButirID:   r.ButirID,
		PengisianButirPeriode:   r.Periode,
		PengisianButirStatus:    st,
		PengisianButirKonten:    r.Konten,
		PengisianButirCreatedBy: actor,
	}
}

type PatchPengisianRequest struct {
	Periode *string `json:"pengisian_butir_periode" validate:"omitempty,max=20"`
	Status  *string `json:"pengisian_butir_status" validate:"omitempty,oneof=draft submitted verified"`
	Konten  *string `json:"pengisian_butir_konten"`
}

type PengisianResponse struct {
	ID        uuid.UUID             `json:"pengisian_butir_id"`
	ButirID   uuid.UUID             `json:"pengisian_butir_butir_id"`
	Periode   string                `json:"pengisian_butir_periode"`
	Status    model.PengisianStatus `json:"pengisian_butir_status"`
	Konten    *string               `json:"pengisian_butir_konten,omitempty"`
	CreatedBy *uuid.UUID            `json:"pengisian_butir_created_by,omitempty"`
	RowCount  *int64                `json:"row_count,omitempty"`
	CreatedAt time.Time             `json:"pengisian_butir_created_at"`
	UpdatedAt time.Time             `json:"pengisian_butir_updated_at"`
}

func FromModel(m model.PengisianButirModel) PengisianResponse {
	return PengisianResponse{
		ID:        m.PengisianButirID,
		ButirID:   m.PengisianButirButirID,
		Periode:   m.PengisianButirPeriode,
		Status:    m.PengisianButirStatus,
		Konten:    m.PengisianButirKonten,
		CreatedBy: m.PengisianButirCreatedBy,
		CreatedAt: m.PengisianButirCreatedAt,
		UpdatedAt: m.PengisianButirUpdatedAt,
	}
}
