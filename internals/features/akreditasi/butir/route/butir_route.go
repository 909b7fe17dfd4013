// file: internals/features/akreditasi/butir/route/butir_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	ctrl "akreditasi_backend/internals/features/akreditasi/butir/controller"
)

func ButirRoutes(r fiber.Router, db *gorm.DB) {
	h := ctrl.NewButirController(db, nil)

	g := r.Group("/butir")
	g.Get("/", h.List)
	g.Post("/", h.Create)
	g.Get("/:id", h.Detail)
	g.Patch("/:id", h.Patch)
	g.Delete("/:id", h.Delete)

	g.Get("/:id/form-config", h.GetFormConfig)
	g.Put("/:id/form-config", h.UpdateFormConfig)
}
