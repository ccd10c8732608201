package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/acumulus-sync/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Hooks     *HookHandler
	JWTSecret string
	JWTIssuer string
	AppName   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})

	// Rutas protegidas (Bearer Token con scope hooks)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer, jwt.ScopeHooks))

	hooks := api.Group("/hooks/invoices/:id")
	hooks.Post("/created", deps.Hooks.Created)
	hooks.Post("/paid", deps.Hooks.Paid)
	hooks.Post("/cancelled", deps.Hooks.Cancelled)

	api.Get("/invoices/:id/sync", deps.Hooks.State)
}
