package constants

import "strings"

// Tipe field yang boleh dipakai pada form_config maupun column mapping.
const (
	FieldTypeText       = "text"
	FieldTypeNumber     = "number"
	FieldTypeCurrency   = "currency"
	FieldTypeDecimal    = "decimal"
	FieldTypePercentage = "percentage"
	FieldTypeSelect     = "select"
	FieldTypeDate       = "date"
)

var FieldTypes = []string{
	FieldTypeText,
	FieldTypeNumber,
	FieldTypeCurrency,
	FieldTypeDecimal,
	FieldTypePercentage,
	FieldTypeSelect,
	FieldTypeDate,
}

// Dipakai validator: `oneof=` + FieldTypesOneOf
var FieldTypesOneOf = strings.Join(FieldTypes, " ")

func IsValidFieldType(t string) bool {
	for _, ft := range FieldTypes {
		if ft == t {
			return true
		}
	}
	return false
}

// IsNumericFieldType: tipe yang dibandingkan sebagai angka saat query.
func IsNumericFieldType(t string) bool {
	switch t {
	case FieldTypeNumber, FieldTypeCurrency, FieldTypeDecimal, FieldTypePercentage:
		return true
	}
	return false
}

// Key metadata baris data (butir_data.metadata).
const (
	MetaDokumen    = "dokumen"
	MetaNotes      = "notes"
	MetaCustomData = "custom_data"
)

var MetadataKeys = []string{MetaDokumen, MetaNotes, MetaCustomData}

// Nama yang tidak boleh dipakai sebagai field_name karena bentrok dengan
// key bawaan hasil proyeksi baris.
var ReservedFieldNames = map[string]bool{
	"id":           true,
	"row_number":   true,
	MetaDokumen:    true,
	MetaNotes:      true,
	MetaCustomData: true,
}
