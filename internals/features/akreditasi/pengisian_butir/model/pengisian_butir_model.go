package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PengisianStatus string

const (
	PengisianDraft     PengisianStatus = "draft"
	PengisianSubmitted PengisianStatus = "submitted"
	PengisianVerified  PengisianStatus = "verified"
)

// PengisianButirModel: satu pengisian (instance) sebuah butir untuk satu periode.
// Baris data terstruktur (butir_data) menempel ke sini.
type PengisianButirModel struct {
	PengisianButirID      uuid.UUID `gorm:"column:pengisian_butir_id;type:uuid;primaryKey" json:"pengisian_butir_id"`
	PengisianButirButirID uuid.UUID `gorm:"column:pengisian_butir_butir_id;type:uuid;not null;index" json:"pengisian_butir_butir_id"`

	PengisianButirPeriode string          `gorm:"column:pengisian_butir_periode;type:varchar(20);not null" json:"pengisian_butir_periode"`
	PengisianButirStatus  PengisianStatus `gorm:"column:pengisian_butir_status;type:varchar(20);not null;default:'draft'" json:"pengisian_butir_status"`

	// Konten naratif lama (butir tanpa baris terstruktur).
	PengisianButirKonten *string `gorm:"column:pengisian_butir_konten;type:text" json:"pengisian_butir_konten,omitempty"`

	PengisianButirCreatedBy *uuid.UUID `gorm:"column:pengisian_butir_created_by;type:uuid" json:"pengisian_butir_created_by,omitempty"`

	PengisianButirCreatedAt time.Time      `gorm:"column:pengisian_butir_created_at;autoCreateTime" json:"pengisian_butir_created_at"`
	PengisianButirUpdatedAt time.Time      `gorm:"column:pengisian_butir_updated_at;autoUpdateTime" json:"pengisian_butir_updated_at"`
	PengisianButirDeletedAt gorm.DeletedAt `gorm:"column:pengisian_butir_deleted_at;index" json:"pengisian_butir_deleted_at,omitempty"`
}

func (PengisianButirModel) TableName() string { return "pengisian_butir" }

func (m *PengisianButirModel) BeforeCreate(tx *gorm.DB) error {
	if m.PengisianButirID == uuid.Nil {
		m.PengisianButirID = uuid.New()
	}
	return nil
}
