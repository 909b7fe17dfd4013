// internals/middlewares/auth/auth_middleware.go
package auth

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	helper "akreditasi_backend/internals/helpers"
)

type AuthJWTOpts struct {
	Secret string
	// Izinkan token dari cookie access_token kalau header Authorization kosong.
	AllowCookieFallback bool
	// Toleransi jam server yang tidak sinkron.
	Leeway time.Duration
}

// AuthJWT memverifikasi Bearer token (HS256) dan menyimpan user_id ke Locals.
func AuthJWT(opts AuthJWTOpts) fiber.Handler {
	if opts.Leeway == 0 {
		opts.Leeway = 30 * time.Second
	}
	return func(c *fiber.Ctx) error {
		if opts.Secret == "" {
			log.Println("[AUTH] JWT_SECRET kosong")
			return helper.JsonError(c, fiber.StatusInternalServerError, "Missing JWT Secret")
		}

		tokenString, err := extractBearerToken(c, opts.AllowCookieFallback)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
		}

		claims := jwt.MapClaims{}
		parser := jwt.Parser{
			SkipClaimsValidation: true,
			ValidMethods:         []string{jwt.SigningMethodHS256.Alg()},
		}
		if _, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(opts.Secret), nil
		}); err != nil {
			log.Println("[AUTH] gagal parse token:", err)
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - Token parse error")
		}

		if err := validateTokenExpiry(claims, opts.Leeway); err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - Token expired")
		}

		userID, err := extractUserID(claims)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - Invalid or missing user ID")
		}
		c.Locals(helper.LocUserID, userID.String())
		storeBasicClaimsToLocals(c, claims)

		return c.Next()
	}
}
