package seeds

import (
	butir "akreditasi_backend/internals/seeds/butir"

	"gorm.io/gorm"
)

func RunAllSeeds(db *gorm.DB) {
	//* Butir akreditasi + column mapping
	butir.SeedButirFromJSON(db, "internals/seeds/butir/data_butir.json")
}
