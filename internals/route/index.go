// file: internals/route/index.go
package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"akreditasi_backend/internals/configs"
	"akreditasi_backend/internals/middlewares"
	"akreditasi_backend/internals/middlewares/auth"
	routeDetails "akreditasi_backend/internals/route/details"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	startTime = time.Now()

	log.Println("[INFO] Setting up BaseRoutes...")
	BaseRoutes(app, db)

	// ===================== ADMIN =====================
	log.Println("[INFO] Setting up ADMIN group (JWT)...")
	admin := app.Group("/api/a",
		auth.AuthJWT(auth.AuthJWTOpts{
			Secret:              configs.JWTSecret,
			AllowCookieFallback: true,
		}),
		middlewares.DBMiddleware(db),
	)

	log.Println("[INFO] Mounting Akreditasi routes...")
	routeDetails.AkreditasiAdminRoutes(admin, db)
}
