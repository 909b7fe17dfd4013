package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"akreditasi_backend/internals/constants"
	dataModel "akreditasi_backend/internals/features/akreditasi/butir_data/model"
	mappingModel "akreditasi_backend/internals/features/akreditasi/column_mappings/model"
	mappingService "akreditasi_backend/internals/features/akreditasi/column_mappings/service"
	pengisianModel "akreditasi_backend/internals/features/akreditasi/pengisian_butir/model"
)

type Mapping = mappingModel.ButirColumnMappingModel

// Projector menerjemahkan baris fisik (c1..c30) ↔ field bernama.
// Cache mapping hidup selama satu pemanggilan (satu request); jangan disimpan global.
type Projector struct {
	db       *gorm.DB
	registry *mappingService.ColumnMappingService

	butirByInstance map[uuid.UUID]uuid.UUID
	mappings        map[uuid.UUID][]Mapping
}

func NewProjector(db *gorm.DB) *Projector {
	return &Projector{
		db:              db,
		registry:        mappingService.NewColumnMappingService(db),
		butirByInstance: map[uuid.UUID]uuid.UUID{},
		mappings:        map[uuid.UUID][]Mapping{},
	}
}

// ButirOf: butir induk dari sebuah pengisian.
func (p *Projector) ButirOf(ctx context.Context, instanceID uuid.UUID) (uuid.UUID, error) {
	if id, ok := p.butirByInstance[instanceID]; ok {
		return id, nil
	}
	var inst pengisianModel.PengisianButirModel
	if err := p.db.WithContext(ctx).
		Select("pengisian_butir_id", "pengisian_butir_butir_id").
		Where("pengisian_butir_id = ?", instanceID).
		First(&inst).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, ErrInstanceNotFound
		}
		return uuid.Nil, err
	}
	p.butirByInstance[instanceID] = inst.PengisianButirButirID
	return inst.PengisianButirButirID, nil
}

// Mappings: mapping butir (memo).
func (p *Projector) Mappings(ctx context.Context, butirID uuid.UUID) ([]Mapping, error) {
	if ms, ok := p.mappings[butirID]; ok {
		return ms, nil
	}
	ms, err := p.registry.GetByItem(ctx, butirID)
	if err != nil {
		return nil, err
	}
	p.mappings[butirID] = ms
	return ms, nil
}

func (p *Projector) MappingsForInstance(ctx context.Context, instanceID uuid.UUID) ([]Mapping, error) {
	butirID, err := p.ButirOf(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	return p.Mappings(ctx, butirID)
}

func (p *Projector) ToNamedFields(ctx context.Context, row *dataModel.ButirDataModel) (map[string]any, error) {
	ms, err := p.MappingsForInstance(ctx, row.ButirDataPengisianButirID)
	if err != nil {
		return nil, err
	}
	return ToNamedFields(row, ms), nil
}

func (p *Projector) ToNamedFieldsList(ctx context.Context, rows []dataModel.ButirDataModel) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(rows))
	for i := range rows {
		item, err := p.ToNamedFields(ctx, &rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

/* =======================================================
   Transformasi murni
   ======================================================= */

// ToNamedFields: {id, row_number} + field_name → nilai kolom, lalu dokumen/notes/custom_data
// dari metadata. Nilai kolom yang tidak punya mapping tidak ikut keluar.
func ToNamedFields(row *dataModel.ButirDataModel, mappings []Mapping) map[string]any {
	out := make(map[string]any, len(mappings)+5)
	out["id"] = row.ButirDataID
	out["row_number"] = row.ButirDataRowNumber
	for _, m := range mappings {
		if v := row.Column(m.ColumnName); v != nil {
			out[m.FieldName] = *v
		} else {
			out[m.FieldName] = nil
		}
	}
	meta := row.Metadata()
	for _, k := range constants.MetadataKeys {
		if v, ok := meta[k]; ok {
			out[k] = v
		}
	}
	return out
}

// FromNamedFields menulis input bernama ke row. Hanya key yang ada di input yang disentuh,
// jadi sama dipakai untuk create maupun update parsial. Key tanpa mapping dikembalikan
// sebagai dropped (tidak error).
func FromNamedFields(row *dataModel.ButirDataModel, mappings []Mapping, input map[string]any) ([]string, error) {
	byName := make(map[string]Mapping, len(mappings))
	for _, m := range mappings {
		byName[m.FieldName] = m
	}

	var dropped []string
	meta := map[string]any{}
	for k, v := range input {
		switch k {
		case "id":
			continue
		case "row_number":
			if v == nil {
				continue // null = nomor lama dipertahankan
			}
			n, err := toRowNumber(v)
			if err != nil {
				return nil, err
			}
			row.ButirDataRowNumber = n
			continue
		case constants.MetaDokumen, constants.MetaNotes, constants.MetaCustomData:
			meta[k] = v
			continue
		}

		m, ok := byName[k]
		if !ok {
			dropped = append(dropped, k)
			continue
		}
		cell, err := ToCell(v)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", ErrInvalidPayload, k, err)
		}
		if cell != nil && constants.IsNumericFieldType(m.FieldType) {
			if cell, err = numericCell(*cell); err != nil {
				return nil, fmt.Errorf("%w: field %q: %v", ErrInvalidPayload, k, err)
			}
		}
		row.SetColumn(m.ColumnName, cell)
	}
	if err := row.MergeMetadata(meta); err != nil {
		return nil, err
	}
	sort.Strings(dropped)
	return dropped, nil
}

// ToCell mengubah nilai JSON jadi teks untuk kolom generik. nil = kosongkan kolom.
func ToCell(v any) (*string, error) {
	var s string
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		s = t
	case json.Number:
		s = t.String()
	case float64:
		s = formatFloat(t)
	case float32:
		s = formatFloat(float64(t))
	case int:
		s = strconv.Itoa(t)
	case int64:
		s = strconv.FormatInt(t, 10)
	case bool:
		s = strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return nil, err
		}
		s = string(b)
	}
	return &s, nil
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// reNumericCell: bentuk angka yang disimpan di kolom bertipe numerik.
// Pola yang sama dipakai guard CAST di query (lihat numericExpr).
var reNumericCell = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

// numericCell: "" tetap kosong, "1e3" dinormalkan jadi "1000",
// teks bukan angka ("abc", "1.000.000") ditolak.
func numericCell(s string) (*string, error) {
	s = strings.TrimSpace(s)
	if s == "" || reNumericCell.MatchString(s) {
		return &s, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, fmt.Errorf("%q bukan angka", s)
	}
	out := strconv.FormatFloat(f, 'f', -1, 64)
	return &out, nil
}

// MaxRowNumber: batas atas kolom row_number (integer 32-bit).
const MaxRowNumber = math.MaxInt32

func toRowNumber(v any) (int, error) {
	var n int64
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) || t < 0 || t > MaxRowNumber {
			return 0, fmt.Errorf("%w: row_number %v", ErrInvalidPayload, t)
		}
		n = int64(t)
	case int:
		n = int64(t)
	case int64:
		n = t
	case json.Number:
		i, err := t.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: row_number %q", ErrInvalidPayload, t)
		}
		n = i
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: row_number %q", ErrInvalidPayload, t)
		}
		n = i
	default:
		return 0, fmt.Errorf("%w: row_number bertipe %T", ErrInvalidPayload, v)
	}
	if n < 0 || n > MaxRowNumber {
		return 0, fmt.Errorf("%w: row_number %d di luar rentang", ErrInvalidPayload, n)
	}
	return int(n), nil
}
