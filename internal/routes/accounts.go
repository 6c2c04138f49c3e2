package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vale-pay/vale_pay/internal/funds"
)

// RegisterAccountRoutes wires fund movement and balance endpoints.
func RegisterAccountRoutes(r fiber.Router, h *funds.Handler) {
	r.Get("/accounts/:accountId/balances", h.Balances)
	r.Get("/accounts/:accountId/sufficient", h.Sufficient)
	r.Post("/accounts/:accountId/deposit", h.Deposit)
	r.Post("/accounts/:accountId/withdraw", h.Withdraw)
	r.Post("/accounts/:accountId/move", h.Move)
	r.Post("/transfers", h.Transfer)
}
