// file: internals/features/akreditasi/butir/service/butir_service.go
package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"akreditasi_backend/internals/features/akreditasi/butir/model"
	mappingModel "akreditasi_backend/internals/features/akreditasi/column_mappings/model"
	mappingService "akreditasi_backend/internals/features/akreditasi/column_mappings/service"
	pengisianModel "akreditasi_backend/internals/features/akreditasi/pengisian_butir/model"
)

var (
	// Butir tidak ditemukan memakai sentinel registry supaya satu pemetaan status.
	ErrButirNotFound = mappingService.ErrItemNotFound
	ErrButirInUse    = errors.New("butir masih memiliki pengisian")
	ErrKodeTaken     = errors.New("kode butir sudah dipakai")
)

type ListQuery struct {
	Q        string
	Kategori string
	Offset   int
	Limit    int
}

type ButirService struct {
	DB *gorm.DB
}

func NewButirService(db *gorm.DB) *ButirService {
	return &ButirService{DB: db}
}

func (s *ButirService) Get(ctx context.Context, id uuid.UUID) (*model.ButirAkreditasiModel, error) {
	return mappingService.NewColumnMappingService(s.DB).EnsureItem(ctx, id)
}

func (s *ButirService) List(ctx context.Context, q ListQuery) ([]model.ButirAkreditasiModel, int64, error) {
	tx := s.DB.WithContext(ctx).Model(&model.ButirAkreditasiModel{})
	if v := strings.ToLower(strings.TrimSpace(q.Q)); v != "" {
		like := "%" + v + "%"
		tx = tx.Where("LOWER(butir_akreditasi_nama) LIKE ? OR LOWER(butir_akreditasi_kode) LIKE ?", like, like)
	}
	if v := strings.TrimSpace(q.Kategori); v != "" {
		tx = tx.Where("butir_akreditasi_kategori = ?", v)
	}
	tx = tx.Session(&gorm.Session{})

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := make([]model.ButirAkreditasiModel, 0)
	if err := tx.
		Order("butir_akreditasi_urutan ASC").
		Order("butir_akreditasi_kode ASC").
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Create menyimpan butir; kalau syncMappings dan form_config ada, mapping langsung dibuat
// dalam transaksi yang sama.
func (s *ButirService) Create(ctx context.Context, m *model.ButirAkreditasiModel, syncMappings bool) ([]mappingModel.ButirColumnMappingModel, error) {
	var mappings []mappingModel.ButirColumnMappingModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureKodeFree(tx, m.ButirAkreditasiKode, uuid.Nil); err != nil {
			return err
		}
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		if !syncMappings {
			return nil
		}
		cfg, err := m.FormConfig()
		if err != nil || cfg == nil {
			return err
		}
		mappings, err = mappingService.NewColumnMappingService(tx).SetupFromTemplate(ctx, m.ButirAkreditasiID)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[BUTIR][CREATE] id=%s kode=%s mappings=%d", m.ButirAkreditasiID, m.ButirAkreditasiKode, len(mappings))
	return mappings, nil
}

func (s *ButirService) Patch(ctx context.Context, id uuid.UUID, apply func(*model.ButirAkreditasiModel) map[string]any) (*model.ButirAkreditasiModel, error) {
	var out *model.ButirAkreditasiModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := mappingService.NewColumnMappingService(tx).EnsureItem(ctx, id)
		if err != nil {
			return err
		}
		if upd := apply(m); len(upd) > 0 {
			if kode, ok := upd["butir_akreditasi_kode"].(string); ok {
				if err := ensureKodeFree(tx, kode, id); err != nil {
					return err
				}
			}
			if err := tx.Model(m).Updates(upd).Error; err != nil {
				return err
			}
		}
		out = m
		return nil
	})
	return out, err
}

// Delete (soft). Ditolak selama masih ada pengisian aktif.
func (s *ButirService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := mappingService.NewColumnMappingService(tx).EnsureItem(ctx, id)
		if err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&pengisianModel.PengisianButirModel{}).
			Where("pengisian_butir_butir_id = ?", id).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrButirInUse
		}
		if err := tx.Delete(m).Error; err != nil {
			return err
		}
		log.Printf("[BUTIR][DELETE] id=%s", id)
		return nil
	})
}

// UpdateFormConfig mengganti metadata.form_config. Dengan syncMappings, mapping ikut
// disinkronkan (field baru dapat kolom, field lama tetap di kolomnya).
func (s *ButirService) UpdateFormConfig(ctx context.Context, id uuid.UUID, cfg *model.FormConfig, syncMappings bool) (*model.ButirAkreditasiModel, []mappingModel.ButirColumnMappingModel, error) {
	var (
		out      *model.ButirAkreditasiModel
		mappings []mappingModel.ButirColumnMappingModel
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		registry := mappingService.NewColumnMappingService(tx)
		m, err := registry.EnsureItem(ctx, id)
		if err != nil {
			return err
		}
		if err := m.SetFormConfig(cfg); err != nil {
			return err
		}
		if err := tx.Model(m).Update("butir_akreditasi_metadata", m.ButirAkreditasiMetadata).Error; err != nil {
			return err
		}
		out = m
		if syncMappings && cfg != nil {
			mappings, err = registry.SetupFromTemplate(ctx, id)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	log.Printf("[BUTIR][FORM_CONFIG] id=%s sync=%v mappings=%d", id, syncMappings, len(mappings))
	return out, mappings, nil
}

// ensureKodeFree: kode unik di antara butir yang belum dihapus.
func ensureKodeFree(tx *gorm.DB, kode string, except uuid.UUID) error {
	q := tx.Model(&model.ButirAkreditasiModel{}).Where("butir_akreditasi_kode = ?", kode)
	if except != uuid.Nil {
		q = q.Where("butir_akreditasi_id <> ?", except)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrKodeTaken
	}
	return nil
}
