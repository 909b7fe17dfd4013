// file: internals/features/akreditasi/column_mappings/route/column_mapping_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	ctrl "akreditasi_backend/internals/features/akreditasi/column_mappings/controller"
)

// /butir/:id/column-mappings
func ColumnMappingRoutes(r fiber.Router, db *gorm.DB) {
	h := ctrl.NewColumnMappingController(db, nil)

	g := r.Group("/butir/:id/column-mappings")
	g.Get("/", h.GetByButir)
	g.Put("/", h.Update)
	g.Post("/setup", h.Setup)
	g.Get("/next", h.NextColumn)
}
