package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	mappingModel "akreditasi_backend/internals/features/akreditasi/column_mappings/model"
)

// ButirDataModel: satu baris data butir. Nilai disimpan di kolom generik c1..c30
// (teks); arti tiap kolom hanya bisa dibaca lewat column mapping butir induknya.
type ButirDataModel struct {
	ButirDataID               uuid.UUID `gorm:"column:butir_data_id;type:uuid;primaryKey" json:"butir_data_id"`
	ButirDataPengisianButirID uuid.UUID `gorm:"column:butir_data_pengisian_butir_id;type:uuid;not null;index:idx_butir_data_pengisian_row,priority:1" json:"butir_data_pengisian_butir_id"`
	ButirDataRowNumber        int       `gorm:"column:butir_data_row_number;not null;default:0;index:idx_butir_data_pengisian_row,priority:2" json:"butir_data_row_number"`

	C1  *string `gorm:"column:c1;type:text" json:"c1,omitempty"`
	C2  *string `gorm:"column:c2;type:text" json:"c2,omitempty"`
	C3  *string `gorm:"column:c3;type:text" json:"c3,omitempty"`
	C4  *string `gorm:"column:c4;type:text" json:"c4,omitempty"`
	C5  *string `gorm:"column:c5;type:text" json:"c5,omitempty"`
	C6  *string `gorm:"column:c6;type:text" json:"c6,omitempty"`
	C7  *string `gorm:"column:c7;type:text" json:"c7,omitempty"`
	C8  *string `gorm:"column:c8;type:text" json:"c8,omitempty"`
	C9  *string `gorm:"column:c9;type:text" json:"c9,omitempty"`
	C10 *string `gorm:"column:c10;type:text" json:"c10,omitempty"`
	C11 *string `gorm:"column:c11;type:text" json:"c11,omitempty"`
	C12 *string `gorm:"column:c12;type:text" json:"c12,omitempty"`
	C13 *string `gorm:"column:c13;type:text" json:"c13,omitempty"`
	C14 *string `gorm:"column:c14;type:text" json:"c14,omitempty"`
	C15 *string `gorm:"column:c15;type:text" json:"c15,omitempty"`
	C16 *string `gorm:"column:c16;type:text" json:"c16,omitempty"`
	C17 *string `gorm:"column:c17;type:text" json:"c17,omitempty"`
	C18 *string `gorm:"column:c18;type:text" json:"c18,omitempty"`
	C19 *string `gorm:"column:c19;type:text" json:"c19,omitempty"`
	C20 *string `gorm:"column:c20;type:text" json:"c20,omitempty"`
	C21 *string `gorm:"column:c21;type:text" json:"c21,omitempty"`
	C22 *string `gorm:"column:c22;type:text" json:"c22,omitempty"`
	C23 *string `gorm:"column:c23;type:text" json:"c23,omitempty"`
	C24 *string `gorm:"column:c24;type:text" json:"c24,omitempty"`
	C25 *string `gorm:"column:c25;type:text" json:"c25,omitempty"`
	C26 *string `gorm:"column:c26;type:text" json:"c26,omitempty"`
	C27 *string `gorm:"column:c27;type:text" json:"c27,omitempty"`
	C28 *string `gorm:"column:c28;type:text" json:"c28,omitempty"`
	C29 *string `gorm:"column:c29;type:text" json:"c29,omitempty"`
	C30 *string `gorm:"column:c30;type:text" json:"c30,omitempty"`

	// dokumen / notes / custom_data
	ButirDataMetadata datatypes.JSON `gorm:"column:butir_data_metadata;type:jsonb" json:"butir_data_metadata,omitempty"`

	ButirDataCreatedBy *uuid.UUID `gorm:"column:butir_data_created_by;type:uuid" json:"butir_data_created_by,omitempty"`
	ButirDataUpdatedBy *uuid.UUID `gorm:"column:butir_data_updated_by;type:uuid" json:"butir_data_updated_by,omitempty"`

	ButirDataCreatedAt time.Time `gorm:"column:butir_data_created_at;autoCreateTime" json:"butir_data_created_at"`
	ButirDataUpdatedAt time.Time `gorm:"column:butir_data_updated_at;autoUpdateTime" json:"butir_data_updated_at"`
}

func (ButirDataModel) TableName() string { return "butir_data" }

func (m *ButirDataModel) BeforeCreate(tx *gorm.DB) error {
	if m.ButirDataID == uuid.Nil {
		m.ButirDataID = uuid.New()
	}
	return nil
}

func (m *ButirDataModel) slots() [mappingModel.MaxColumns]**string {
	return [mappingModel.MaxColumns]**string{
		&m.C1, &m.C2, &m.C3, &m.C4, &m.C5, &m.C6, &m.C7, &m.C8, &m.C9, &m.C10,
		&m.C11, &m.C12, &m.C13, &m.C14, &m.C15, &m.C16, &m.C17, &m.C18, &m.C19, &m.C20,
		&m.C21, &m.C22, &m.C23, &m.C24, &m.C25, &m.C26, &m.C27, &m.C28, &m.C29, &m.C30,
	}
}

// Column membaca nilai kolom generik ("c1".."c30"); nil kalau kosong / bukan kolom pool.
func (m *ButirDataModel) Column(name string) *string {
	i := mappingModel.ColumnIndex(name)
	if i == 0 {
		return nil
	}
	return *m.slots()[i-1]
}

// SetColumn mengisi kolom generik; false kalau name bukan kolom pool.
func (m *ButirDataModel) SetColumn(name string, v *string) bool {
	i := mappingModel.ColumnIndex(name)
	if i == 0 {
		return false
	}
	*m.slots()[i-1] = v
	return true
}

// Metadata mengembalikan isi metadata sebagai map (kosong kalau belum ada).
func (m *ButirDataModel) Metadata() map[string]any {
	out := map[string]any{}
	if len(m.ButirDataMetadata) == 0 {
		return out
	}
	if err := json.Unmarshal(m.ButirDataMetadata, &out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}

// MergeMetadata menimpa key level-atas metadata; key lain tetap.
func (m *ButirDataModel) MergeMetadata(patch map[string]any) error {
	if len(patch) == 0 {
		return nil
	}
	meta := m.Metadata()
	for k, v := range patch {
		meta[k] = v
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	m.ButirDataMetadata = datatypes.JSON(b)
	return nil
}
