// file: internals/features/akreditasi/butir/model/butir_model.go
package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Key form_config di dalam metadata butir.
const MetaFormConfig = "form_config"

// ButirAkreditasiModel merepresentasikan tabel butir_akreditasi
type ButirAkreditasiModel struct {
	ButirAkreditasiID uuid.UUID `gorm:"column:butir_akreditasi_id;type:uuid;primaryKey" json:"butir_akreditasi_id"`

	ButirAkreditasiKode      string  `gorm:"column:butir_akreditasi_kode;type:varchar(50);not null;index" json:"butir_akreditasi_kode"`
	ButirAkreditasiNama      string  `gorm:"column:butir_akreditasi_nama;type:text;not null" json:"butir_akreditasi_nama"`
	ButirAkreditasiDeskripsi *string `gorm:"column:butir_akreditasi_deskripsi;type:text" json:"butir_akreditasi_deskripsi,omitempty"`
	ButirAkreditasiKategori  *string `gorm:"column:butir_akreditasi_kategori;type:varchar(100)" json:"butir_akreditasi_kategori,omitempty"`
	ButirAkreditasiUrutan    int     `gorm:"column:butir_akreditasi_urutan;not null;default:0" json:"butir_akreditasi_urutan"`

	// Metadata bebas; form_config (template form dinamis) disimpan di sini.
	ButirAkreditasiMetadata datatypes.JSON `gorm:"column:butir_akreditasi_metadata;type:jsonb" json:"butir_akreditasi_metadata,omitempty"`

	ButirAkreditasiCreatedAt time.Time      `gorm:"column:butir_akreditasi_created_at;autoCreateTime" json:"butir_akreditasi_created_at"`
	ButirAkreditasiUpdatedAt time.Time      `gorm:"column:butir_akreditasi_updated_at;autoUpdateTime" json:"butir_akreditasi_updated_at"`
	ButirAkreditasiDeletedAt gorm.DeletedAt `gorm:"column:butir_akreditasi_deleted_at;index" json:"butir_akreditasi_deleted_at,omitempty"`
}

func (ButirAkreditasiModel) TableName() string { return "butir_akreditasi" }

func (m *ButirAkreditasiModel) BeforeCreate(tx *gorm.DB) error {
	if m.ButirAkreditasiID == uuid.Nil {
		m.ButirAkreditasiID = uuid.New()
	}
	return nil
}

func (m *ButirAkreditasiModel) metadataMap() (map[string]json.RawMessage, error) {
	out := map[string]json.RawMessage{}
	if len(m.ButirAkreditasiMetadata) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(m.ButirAkreditasiMetadata, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]json.RawMessage{}
	}
	return out, nil
}

// FormConfig membaca metadata.form_config; (nil, nil) kalau belum ada template.
func (m *ButirAkreditasiModel) FormConfig() (*FormConfig, error) {
	meta, err := m.metadataMap()
	if err != nil {
		return nil, err
	}
	raw, ok := meta[MetaFormConfig]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var cfg FormConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetFormConfig mengganti metadata.form_config, key metadata lain dibiarkan.
// cfg nil = hapus template.
func (m *ButirAkreditasiModel) SetFormConfig(cfg *FormConfig) error {
	meta, err := m.metadataMap()
	if err != nil {
		return err
	}
	if cfg == nil {
		delete(meta, MetaFormConfig)
	} else {
		raw, err := json.Marshal(cfg)
		if err != nil {
			return err
		}
		meta[MetaFormConfig] = raw
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	m.ButirAkreditasiMetadata = datatypes.JSON(b)
	return nil
}
