package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"akreditasi_backend/internals/constants"
	butirModel "akreditasi_backend/internals/features/akreditasi/butir/model"
	"akreditasi_backend/internals/features/akreditasi/column_mappings/model"
	helper "akreditasi_backend/internals/helpers"
)

// FieldSpec = deklarasi satu field logis yang ingin dipetakan.
// Field pointer nil berarti "pakai nilai lama" (atau default untuk field baru).
type FieldSpec struct {
	Name         string
	Label        string
	Type         string
	ColumnName   string // hanya dipakai untuk field baru, dan hanya kalau kolomnya masih bebas
	DisplayOrder *int
	IsRequired   *bool
	Width        *string
	Placeholder  *string
	HelpText     *string
	FieldConfig  map[string]any
}

type ColumnMappingService struct {
	DB *gorm.DB
}

func NewColumnMappingService(db *gorm.DB) *ColumnMappingService {
	return &ColumnMappingService{DB: db}
}

/* ============================ READ ============================ */

// GetByItem: mapping butir urut display_order (seri → urutan kolom). Slice kosong bukan error.
func (s *ColumnMappingService) GetByItem(ctx context.Context, butirID uuid.UUID) ([]model.ButirColumnMappingModel, error) {
	return listMappings(s.DB.WithContext(ctx), butirID)
}

// NextAvailableColumn: kolom pool pertama yang belum dipakai; ok=false kalau habis.
func (s *ColumnMappingService) NextAvailableColumn(ctx context.Context, butirID uuid.UUID) (string, bool, error) {
	rows, err := listMappings(s.DB.WithContext(ctx), butirID)
	if err != nil {
		return "", false, err
	}
	col, ok := nextFreeColumn(usedColumns(rows))
	return col, ok, nil
}

// EnsureItem memastikan butir ada (belum dihapus).
func (s *ColumnMappingService) EnsureItem(ctx context.Context, butirID uuid.UUID) (*butirModel.ButirAkreditasiModel, error) {
	return loadButir(s.DB.WithContext(ctx), butirID)
}

/* ============================ WRITE ============================ */

// SetupFromTemplate menurunkan mapping dari form_config butir.
// Field yang sudah punya kolom tidak dipindah walau urutan template berubah.
func (s *ColumnMappingService) SetupFromTemplate(ctx context.Context, butirID uuid.UUID) ([]model.ButirColumnMappingModel, error) {
	var out []model.ButirColumnMappingModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		butir, err := lockButir(tx, butirID)
		if err != nil {
			return err
		}
		cfg, err := butir.FormConfig()
		if err != nil {
			return fmt.Errorf("%w: form_config tidak bisa dibaca (%v)", ErrTemplateMissing, err)
		}
		if cfg == nil {
			return ErrTemplateMissing
		}

		specs, err := specsFromTemplate(cfg.Fields())
		if err != nil {
			return err
		}
		if len(specs) == 0 {
			return fmt.Errorf("%w: template tidak mendeklarasikan field", ErrTemplateMissing)
		}
		if err := upsert(tx, butirID, specs); err != nil {
			return err
		}
		out, err = listMappings(tx, butirID)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[MAPPING][SETUP] butir=%s mappings=%d", butirID, len(out))
	return out, nil
}

// UpdateMappings meng-upsert field yang dikirim caller. column_name field lama tidak berubah.
func (s *ColumnMappingService) UpdateMappings(ctx context.Context, butirID uuid.UUID, specs []FieldSpec) ([]model.ButirColumnMappingModel, error) {
	var out []model.ButirColumnMappingModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockButir(tx, butirID); err != nil {
			return err
		}
		if err := upsert(tx, butirID, specs); err != nil {
			return err
		}
		var err error
		out, err = listMappings(tx, butirID)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[MAPPING][UPDATE] butir=%s fields=%d mappings=%d", butirID, len(specs), len(out))
	return out, nil
}

/* ============================ INTERNAL ============================ */

func loadButir(db *gorm.DB, butirID uuid.UUID) (*butirModel.ButirAkreditasiModel, error) {
	var b butirModel.ButirAkreditasiModel
	if err := db.Where("butir_akreditasi_id = ?", butirID).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &b, nil
}

// lockButir: baris butir dikunci selama transaksi supaya dua setup/update
// tidak membagikan kolom pool yang sama.
func lockButir(tx *gorm.DB, butirID uuid.UUID) (*butirModel.ButirAkreditasiModel, error) {
	return loadButir(tx.Clauses(clause.Locking{Strength: "UPDATE"}), butirID)
}

func listMappings(db *gorm.DB, butirID uuid.UUID) ([]model.ButirColumnMappingModel, error) {
	rows := make([]model.ButirColumnMappingModel, 0)
	if err := db.
		Where("butir_column_mapping_butir_id = ?", butirID).
		Order("display_order ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].DisplayOrder != rows[j].DisplayOrder {
			return rows[i].DisplayOrder < rows[j].DisplayOrder
		}
		return model.ColumnIndex(rows[i].ColumnName) < model.ColumnIndex(rows[j].ColumnName)
	})
	return rows, nil
}

func usedColumns(rows []model.ButirColumnMappingModel) map[string]bool {
	used := make(map[string]bool, len(rows))
	for _, r := range rows {
		used[r.ColumnName] = true
	}
	return used
}

// nextFreeColumn memindai c1..c30 secara berurutan.
func nextFreeColumn(used map[string]bool) (string, bool) {
	for i := 1; i <= model.MaxColumns; i++ {
		if c := model.ColumnName(i); !used[c] {
			return c, true
		}
	}
	return "", false
}

// specsFromTemplate: nama reserved / format salah ditolak (ErrInvalidFieldName),
// karena kolomnya tidak akan pernah bisa ditulis lewat proyeksi.
func specsFromTemplate(fields []butirModel.TemplateField) ([]FieldSpec, error) {
	seen := map[string]bool{}
	specs := make([]FieldSpec, 0, len(fields))
	var bad []string
	for _, f := range fields {
		if f.Name == "" {
			log.Printf("[MAPPING][SETUP] lewati field tanpa nama di %s", f.Path)
			continue
		}
		if constants.ReservedFieldNames[f.Name] || !helper.IsValidFieldName(f.Name) {
			bad = append(bad, fmt.Sprintf("%q (%s)", f.Name, f.Path))
			continue
		}
		if seen[f.Name] {
			continue
		}
		seen[f.Name] = true

		typ := f.Type
		if !constants.IsValidFieldType(typ) {
			log.Printf("[MAPPING][SETUP] field %q tipe %q tidak dikenal, dipakai text", f.Name, typ)
			typ = constants.FieldTypeText
		}
		order := len(specs) + 1
		required := f.Required
		specs = append(specs, FieldSpec{
			Name:         f.Name,
			Label:        f.Label,
			Type:         typ,
			DisplayOrder: &order,
			IsRequired:   &required,
			Width:        strPtr(f.Width),
			Placeholder:  strPtr(f.Placeholder),
			HelpText:     strPtr(f.HelpText),
			FieldConfig:  f.Config,
		})
	}
	if len(bad) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFieldName, strings.Join(bad, ", "))
	}
	return specs, nil
}

func upsert(tx *gorm.DB, butirID uuid.UUID, specs []FieldSpec) error {
	existing, err := listMappings(tx, butirID)
	if err != nil {
		return err
	}
	byName := make(map[string]*model.ButirColumnMappingModel, len(existing))
	maxOrder := 0
	for i := range existing {
		byName[existing[i].FieldName] = &existing[i]
		if existing[i].DisplayOrder > maxOrder {
			maxOrder = existing[i].DisplayOrder
		}
	}
	used := usedColumns(existing)

	for _, spec := range specs {
		name := strings.TrimSpace(spec.Name)
		if cur, ok := byName[name]; ok {
			changed, err := applySpec(cur, spec)
			if err != nil {
				return err
			}
			if changed {
				if err := tx.Save(cur).Error; err != nil {
					return wrapWriteErr(err)
				}
			}
			continue
		}

		col := strings.TrimSpace(spec.ColumnName)
		if !model.IsPoolColumn(col) || used[col] {
			var ok bool
			col, ok = nextFreeColumn(used)
			if !ok {
				return fmt.Errorf("%w: field %q tidak mendapat kolom", ErrColumnPoolExhausted, name)
			}
		}

		m := model.ButirColumnMappingModel{
			ButirColumnMappingButirID: butirID,
			FieldName:                 name,
			ColumnName:                col,
			FieldType:                 constants.FieldTypeText,
		}
		if spec.DisplayOrder == nil {
			maxOrder++
			o := maxOrder
			spec.DisplayOrder = &o
		} else if *spec.DisplayOrder > maxOrder {
			maxOrder = *spec.DisplayOrder
		}
		if _, err := applySpec(&m, spec); err != nil {
			return err
		}
		if err := tx.Create(&m).Error; err != nil {
			return wrapWriteErr(err)
		}
		used[col] = true
		byName[name] = &m
	}
	return nil
}

// applySpec menyalin atribut spec ke m (kecuali column_name). true kalau ada perubahan.
func applySpec(m *model.ButirColumnMappingModel, spec FieldSpec) (bool, error) {
	changed := false

	label := strings.TrimSpace(spec.Label)
	if label == "" {
		label = m.FieldLabel
	}
	if label == "" {
		label = m.FieldName
	}
	if m.FieldLabel != label {
		m.FieldLabel = label
		changed = true
	}
	if t := strings.ToLower(strings.TrimSpace(spec.Type)); t != "" && m.FieldType != t {
		m.FieldType = t
		changed = true
	}
	if spec.DisplayOrder != nil && m.DisplayOrder != *spec.DisplayOrder {
		m.DisplayOrder = *spec.DisplayOrder
		changed = true
	}
	if spec.IsRequired != nil && m.IsRequired != *spec.IsRequired {
		m.IsRequired = *spec.IsRequired
		changed = true
	}
	changed = setStr(&m.Width, spec.Width) || changed
	changed = setStr(&m.Placeholder, spec.Placeholder) || changed
	changed = setStr(&m.HelpText, spec.HelpText) || changed

	if spec.FieldConfig != nil {
		b, err := json.Marshal(spec.FieldConfig)
		if err != nil {
			return false, err
		}
		if !bytes.Equal(m.FieldConfig, b) {
			m.FieldConfig = datatypes.JSON(b)
			changed = true
		}
	}
	return changed, nil
}

// setStr: src nil = tidak diubah; src "" = dikosongkan (nil).
func setStr(dst **string, src *string) bool {
	if src == nil {
		return false
	}
	v := strings.TrimSpace(*src)
	if v == "" {
		if *dst == nil {
			return false
		}
		*dst = nil
		return true
	}
	if *dst != nil && **dst == v {
		return false
	}
	*dst = &v
	return true
}

func strPtr(s string) *string {
	return &s
}

func wrapWriteErr(err error) error {
	if helper.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %v", ErrMappingConflict, err)
	}
	return err
}
