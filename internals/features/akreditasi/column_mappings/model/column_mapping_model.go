package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MaxColumns = jumlah kolom generik (c1..c30) di tabel butir_data.
const MaxColumns = 30

// ColumnName(1) = "c1"
func ColumnName(i int) string { return fmt.Sprintf("c%d", i) }

// ColumnIndex("c7") = 7; 0 kalau bukan kolom pool.
func ColumnIndex(name string) int {
	if !strings.HasPrefix(name, "c") {
		return 0
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil || n < 1 || n > MaxColumns || ColumnName(n) != name {
		return 0
	}
	return n
}

func IsPoolColumn(name string) bool { return ColumnIndex(name) > 0 }

// ButirColumnMappingModel: satu baris per (butir, field logis).
// column_name sekali di-assign tidak pernah dipindah.
type ButirColumnMappingModel struct {
	ButirColumnMappingID      uuid.UUID `gorm:"column:butir_column_mapping_id;type:uuid;primaryKey" json:"id"`
	ButirColumnMappingButirID uuid.UUID `gorm:"column:butir_column_mapping_butir_id;type:uuid;not null;uniqueIndex:uq_bcm_butir_field,priority:1;uniqueIndex:uq_bcm_butir_column,priority:1" json:"butir_id"`

	FieldName    string         `gorm:"column:field_name;type:varchar(64);not null;uniqueIndex:uq_bcm_butir_field,priority:2" json:"field_name"`
	FieldLabel   string         `gorm:"column:field_label;type:text;not null" json:"field_label"`
	ColumnName   string         `gorm:"column:column_name;type:varchar(5);not null;uniqueIndex:uq_bcm_butir_column,priority:2" json:"column_name"`
	FieldType    string         `gorm:"column:field_type;type:varchar(20);not null;default:'text'" json:"field_type"`
	DisplayOrder int            `gorm:"column:display_order;not null;default:0" json:"display_order"`
	IsRequired   bool           `gorm:"column:is_required;not null;default:false" json:"is_required"`
	Width        *string        `gorm:"column:width;type:varchar(20)" json:"width"`
	Placeholder  *string        `gorm:"column:placeholder;type:text" json:"placeholder"`
	HelpText     *string        `gorm:"column:help_text;type:text" json:"help_text"`
	FieldConfig  datatypes.JSON `gorm:"column:field_config;type:jsonb" json:"field_config,omitempty"`

	ButirColumnMappingCreatedAt time.Time `gorm:"column:butir_column_mapping_created_at;autoCreateTime" json:"created_at"`
	ButirColumnMappingUpdatedAt time.Time `gorm:"column:butir_column_mapping_updated_at;autoUpdateTime" json:"updated_at"`
}

func (ButirColumnMappingModel) TableName() string { return "butir_column_mappings" }

func (m *ButirColumnMappingModel) BeforeCreate(tx *gorm.DB) error {
	if m.ButirColumnMappingID == uuid.Nil {
		m.ButirColumnMappingID = uuid.New()
	}
	return nil
}
