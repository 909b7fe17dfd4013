// file: internals/features/akreditasi/butir_data/route/butir_data_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	ctrl "akreditasi_backend/internals/features/akreditasi/butir_data/controller"
	"akreditasi_backend/internals/middlewares"
)

func ButirDataRoutes(r fiber.Router, db *gorm.DB) {
	h := ctrl.NewButirDataController(db, nil)

	// baris per pengisian
	p := r.Group("/pengisian-butir/:id/data")
	p.Get("/", h.List)
	p.Post("/", h.Create)
	p.Post("/bulk", middlewares.BulkWriteRateLimiter(), h.Bulk)
	p.Put("/sync", middlewares.BulkWriteRateLimiter(), h.Sync)
	p.Get("/export", h.Export)

	// baris tunggal + query lintas pengisian
	d := r.Group("/butir-data")
	d.Post("/query", h.Query)
	d.Put("/:id", h.Update)
	d.Delete("/:id", h.Delete)
}
