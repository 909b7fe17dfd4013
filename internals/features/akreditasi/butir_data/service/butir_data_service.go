package service

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dataModel "akreditasi_backend/internals/features/akreditasi/butir_data/model"
)

type ButirDataService struct {
	DB *gorm.DB
}

func NewButirDataService(db *gorm.DB) *ButirDataService {
	return &ButirDataService{DB: db}
}

/* ============================ READ ============================ */

// List: semua baris milik pengisian, urut row_number.
func (s *ButirDataService) List(ctx context.Context, instanceID uuid.UUID) ([]map[string]any, error) {
	p := NewProjector(s.DB.WithContext(ctx))
	if _, err := p.ButirOf(ctx, instanceID); err != nil {
		return nil, err
	}
	rows, err := listRows(s.DB.WithContext(ctx), instanceID)
	if err != nil {
		return nil, err
	}
	return p.ToNamedFieldsList(ctx, rows)
}

// Export: sama dengan List, plus daftar mapping untuk header laporan.
func (s *ButirDataService) Export(ctx context.Context, instanceID uuid.UUID) ([]map[string]any, []Mapping, error) {
	p := NewProjector(s.DB.WithContext(ctx))
	columns, err := p.MappingsForInstance(ctx, instanceID)
	if err != nil {
		return nil, nil, err
	}
	rows, err := listRows(s.DB.WithContext(ctx), instanceID)
	if err != nil {
		return nil, nil, err
	}
	out, err := p.ToNamedFieldsList(ctx, rows)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("[BUTIR_DATA][EXPORT] pengisian=%s rows=%d", instanceID, len(out))
	return out, columns, nil
}

/* ============================ WRITE ============================ */

func (s *ButirDataService) Create(ctx context.Context, instanceID uuid.UUID, input map[string]any, actor *uuid.UUID) (map[string]any, error) {
	var out map[string]any
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p := NewProjector(tx)
		created, err := createRows(ctx, tx, p, instanceID, []map[string]any{input}, actor)
		if err != nil {
			return err
		}
		out = created[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// BulkCreate: semua baris dalam satu transaksi (gagal satu = batal semua).
func (s *ButirDataService) BulkCreate(ctx context.Context, instanceID uuid.UUID, inputs []map[string]any, actor *uuid.UUID) ([]map[string]any, error) {
	var out []map[string]any
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = createRows(ctx, tx, NewProjector(tx), instanceID, inputs, actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[BUTIR_DATA][BULK] pengisian=%s rows=%d", instanceID, len(out))
	return out, nil
}

// Sync mengganti seluruh baris pengisian dengan inputs (hapus semua lalu buat ulang)
// dalam satu transaksi, jadi tidak pernah terlihat kosong di tengah jalan.
func (s *ButirDataService) Sync(ctx context.Context, instanceID uuid.UUID, inputs []map[string]any, actor *uuid.UUID) ([]map[string]any, error) {
	var out []map[string]any
	var removed int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p := NewProjector(tx)
		if _, err := p.ButirOf(ctx, instanceID); err != nil {
			return err
		}
		res := tx.Where("butir_data_pengisian_butir_id = ?", instanceID).Delete(&dataModel.ButirDataModel{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected

		var err error
		out, err = createRows(ctx, tx, p, instanceID, inputs, actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[BUTIR_DATA][SYNC] pengisian=%s removed=%d created=%d", instanceID, removed, len(out))
	return out, nil
}

// Update parsial: hanya kolom dari field yang dikirim yang berubah; metadata di-merge level atas.
func (s *ButirDataService) Update(ctx context.Context, rowID uuid.UUID, input map[string]any, actor *uuid.UUID) (map[string]any, error) {
	var out map[string]any
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := findRow(tx, rowID)
		if err != nil {
			return err
		}
		p := NewProjector(tx)
		ms, err := p.MappingsForInstance(ctx, row.ButirDataPengisianButirID)
		if err != nil {
			return err
		}
		dropped, err := FromNamedFields(row, ms, input)
		if err != nil {
			return err
		}
		logDropped("UPDATE", row.ButirDataPengisianButirID, dropped)
		row.ButirDataUpdatedBy = actor
		if err := tx.Save(row).Error; err != nil {
			return err
		}
		out = ToNamedFields(row, ms)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ButirDataService) Delete(ctx context.Context, rowID uuid.UUID) error {
	res := s.DB.WithContext(ctx).Where("butir_data_id = ?", rowID).Delete(&dataModel.ButirDataModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRowNotFound
	}
	return nil
}

/* ============================ INTERNAL ============================ */

func listRows(db *gorm.DB, instanceID uuid.UUID) ([]dataModel.ButirDataModel, error) {
	rows := make([]dataModel.ButirDataModel, 0)
	if err := db.
		Where("butir_data_pengisian_butir_id = ?", instanceID).
		Order("butir_data_row_number ASC").
		Order("butir_data_created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func findRow(db *gorm.DB, rowID uuid.UUID) (*dataModel.ButirDataModel, error) {
	var row dataModel.ButirDataModel
	if err := db.Where("butir_data_id = ?", rowID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRowNotFound
		}
		return nil, err
	}
	return &row, nil
}

func maxRowNumber(db *gorm.DB, instanceID uuid.UUID) (int, error) {
	var n sql.NullInt64
	if err := db.Model(&dataModel.ButirDataModel{}).
		Where("butir_data_pengisian_butir_id = ?", instanceID).
		Select("MAX(butir_data_row_number)").
		Row().Scan(&n); err != nil {
		return 0, err
	}
	if !n.Valid {
		return 0, nil
	}
	return int(n.Int64), nil
}

// createRows: baris tanpa row_number diberi nomor lanjutan setelah nomor terbesar.
func createRows(ctx context.Context, tx *gorm.DB, p *Projector, instanceID uuid.UUID, inputs []map[string]any, actor *uuid.UUID) ([]map[string]any, error) {
	ms, err := p.MappingsForInstance(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	next, err := maxRowNumber(tx, instanceID)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(inputs))
	for _, input := range inputs {
		row := dataModel.ButirDataModel{
			ButirDataPengisianButirID: instanceID,
			ButirDataCreatedBy:        actor,
			ButirDataUpdatedBy:        actor,
		}
		dropped, err := FromNamedFields(&row, ms, input)
		if err != nil {
			return nil, err
		}
		if _, ok := input["row_number"]; !ok || input["row_number"] == nil {
			next++
			row.ButirDataRowNumber = next
		} else if row.ButirDataRowNumber > next {
			next = row.ButirDataRowNumber
		}
		logDropped("CREATE", instanceID, dropped)

		if err := tx.Create(&row).Error; err != nil {
			return nil, err
		}
		out = append(out, ToNamedFields(&row, ms))
	}
	return out, nil
}

func logDropped(op string, instanceID uuid.UUID, dropped []string) {
	if len(dropped) == 0 {
		return
	}
	log.Printf("[BUTIR_DATA][%s] pengisian=%s field tanpa mapping diabaikan: %v", op, instanceID, dropped)
}
