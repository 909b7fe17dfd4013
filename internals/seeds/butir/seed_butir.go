package butir

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/bytedance/sonic"
	"gorm.io/gorm"

	butirDTO "akreditasi_backend/internals/features/akreditasi/butir/dto"
	"akreditasi_backend/internals/features/akreditasi/butir/model"
	mappingService "akreditasi_backend/internals/features/akreditasi/column_mappings/service"
	helper "akreditasi_backend/internals/helpers"
)

type ButirSeed struct {
	Kode       string            `json:"butir_akreditasi_kode"`
	Nama       string            `json:"butir_akreditasi_nama"`
	Kategori   *string           `json:"butir_akreditasi_kategori"`
	Urutan     int               `json:"butir_akreditasi_urutan"`
	FormConfig *model.FormConfig `json:"form_config"`
}

func SeedButirFromJSON(db *gorm.DB, filePath string) {
	log.Println("📥 Membaca file:", filePath)

	content, err := os.ReadFile(filePath)
	if err != nil {
		log.Fatalf("❌ Gagal baca file JSON: %v", err)
	}
	n, err := SeedButir(db, content)
	if err != nil {
		log.Fatalf("❌ Seed butir gagal: %v", err)
	}
	log.Printf("✅ Seed butir selesai, %d butir baru", n)
}

// SeedButir memasukkan butir yang kodenya belum ada, lalu menyiapkan column mapping
// dari form_config-nya. Mengembalikan jumlah butir yang dibuat.
func SeedButir(db *gorm.DB, content []byte) (int, error) {
	var data []ButirSeed
	if err := sonic.Unmarshal(content, &data); err != nil {
		return 0, fmt.Errorf("decode JSON: %w", err)
	}

	// seluruh template dicek dulu; satu yang rusak membatalkan seed
	v := helper.NewValidator()
	for _, item := range data {
		if item.FormConfig == nil {
			continue
		}
		if errs := butirDTO.ValidateFormConfig(v, item.FormConfig, "form_config"); len(errs) > 0 {
			return 0, fmt.Errorf("butir %s: form_config tidak valid: %v", item.Kode, errs)
		}
	}

	created := 0
	for _, item := range data {
		var n int64
		if err := db.Model(&model.ButirAkreditasiModel{}).
			Where("butir_akreditasi_kode = ?", item.Kode).
			Count(&n).Error; err != nil {
			return created, err
		}
		if n > 0 {
			log.Printf("ℹ️ Butir %s sudah ada, lewati...", item.Kode)
			continue
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			rec := model.ButirAkreditasiModel{
				ButirAkreditasiKode:     item.Kode,
				ButirAkreditasiNama:     item.Nama,
				ButirAkreditasiKategori: item.Kategori,
				ButirAkreditasiUrutan:   item.Urutan,
			}
			if err := rec.SetFormConfig(item.FormConfig); err != nil {
				return err
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
			if item.FormConfig == nil {
				return nil
			}
			_, err := mappingService.NewColumnMappingService(tx).SetupFromTemplate(context.Background(), rec.ButirAkreditasiID)
			return err
		})
		if err != nil {
			return created, fmt.Errorf("butir %s: %w", item.Kode, err)
		}
		log.Printf("✅ Berhasil insert butir %s", item.Kode)
		created++
	}
	return created, nil
}
