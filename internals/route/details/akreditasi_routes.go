package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	butirRoute "akreditasi_backend/internals/features/akreditasi/butir/route"
	butirDataRoute "akreditasi_backend/internals/features/akreditasi/butir_data/route"
	mappingRoute "akreditasi_backend/internals/features/akreditasi/column_mappings/route"
	pengisianRoute "akreditasi_backend/internals/features/akreditasi/pengisian_butir/route"
)

// AkreditasiAdminRoutes: semua endpoint form dinamis di bawah /api/a
func AkreditasiAdminRoutes(admin fiber.Router, db *gorm.DB) {
	butirRoute.ButirRoutes(admin, db)
	mappingRoute.ColumnMappingRoutes(admin, db)
	pengisianRoute.PengisianButirRoutes(admin, db)
	butirDataRoute.ButirDataRoutes(admin, db)
}
