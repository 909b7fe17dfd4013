// file: internals/features/akreditasi/pengisian_butir/route/pengisian_butir_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	ctrl "akreditasi_backend/internals/features/akreditasi/pengisian_butir/controller"
)

func PengisianButirRoutes(r fiber.Router, db *gorm.DB) {
	h := ctrl.NewPengisianButirController(db, nil)

	r.Post("/pengisian-butir", h.Create)
	r.Get("/pengisian-butir/:id", h.Detail)
	r.Patch("/pengisian-butir/:id", h.Patch)
	r.Get("/butir/:id/pengisian", h.ListByButir)
}
