package database

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"akreditasi_backend/internals/configs"
	butirModel "akreditasi_backend/internals/features/akreditasi/butir/model"
	dataModel "akreditasi_backend/internals/features/akreditasi/butir_data/model"
	mappingModel "akreditasi_backend/internals/features/akreditasi/column_mappings/model"
	pengisianModel "akreditasi_backend/internals/features/akreditasi/pengisian_butir/model"
)

var DB *gorm.DB

// ConnectDB membuka koneksi sesuai DB_DRIVER (postgres default, sqlite untuk lokal).
func ConnectDB() {
	db, err := Open(configs.GetEnv("DB_DRIVER", "postgres"))
	if err != nil {
		log.Fatalf("❌ Gagal konek DB: %v", err)
	}
	DB = db
	log.Println("✅ DB connected.")
}

func Open(driver string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: configs.NewGormLogger()}

	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		dsn := configs.GetEnv("DB_DSN", "akreditasi.sqlite")
		log.Printf("🔌 Koneksi ke SQLite (%s)...", dsn)
		return gorm.Open(sqlite.Open(dsn), cfg)
	case "", "postgres", "postgresql":
		log.Println("🔌 Koneksi ke PostgreSQL...")
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  postgresDSN(),
			PreferSimpleProtocol: true, // 👍 cocok untuk PgBouncer (transaction pooling)
		}), cfg)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

func postgresDSN() string {
	if dsn := strings.TrimSpace(os.Getenv("DB_DSN")); dsn != "" {
		return dsn
	}
	sslmode := getenv("DB_SSLMODE", "require")
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=akreditasi&options=-c statement_timeout=3000",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		getenv("DB_PORT", "5432"),
		os.Getenv("DB_NAME"),
		sslmode,
	)
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("pool tune err: %v", err)
		return
	}
	sqlDB.SetMaxOpenConns(configs.GetEnvInt("DB_MAX_OPEN_CONNS", 20))
	sqlDB.SetMaxIdleConns(configs.GetEnvInt("DB_MAX_IDLE_CONNS", 10))
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

// AutoMigrate membuat/menyesuaikan tabel inti. Dipakai oleh mode lokal dan test.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&butirModel.ButirAkreditasiModel{},
		&mappingModel.ButirColumnMappingModel{},
		&pengisianModel.PengisianButirModel{},
		&dataModel.ButirDataModel{},
	)
}

func Ping() error {
	if DB == nil {
		return fmt.Errorf("database belum terkoneksi")
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
