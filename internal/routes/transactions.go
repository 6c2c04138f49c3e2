package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/vale-pay/vale_pay/internal/authorizer"
	"github.com/vale-pay/vale_pay/internal/transaction"
)

// RegisterAuthorizationRoutes wires the authorization engine endpoints.
func RegisterAuthorizationRoutes(r fiber.Router, h *authorizer.Handler) {
	r.Post("/transactions/authorize", h.Authorize)
	r.Post("/transactions/authorize-fallback", h.AuthorizeWithFallback)
}

// RegisterTransactionRoutes wires read access to the transaction log.
func RegisterTransactionRoutes(r fiber.Router, log transaction.Log) {
	r.Get("/transactions", func(c *fiber.Ctx) error {
		accountID := c.Query("account_id")
		if accountID == "" {
			return fiber.NewError(http.StatusBadRequest, "account_id is required")
		}
		records, err := log.ListByAccount(c.UserContext(), accountID)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}

		out := make([]fiber.Map, 0, len(records))
		for _, rec := range records {
			out = append(out, fiber.Map{
				"id":            rec.ID,
				"account_id":    rec.AccountID,
				"card_number":   rec.CardNumber,
				"total_amount":  rec.Amount,
				"merchant":      rec.MerchantName,
				"mcc":           rec.MCC,
				"category":      rec.Category,
				"authorized_at": rec.AuthorizedAt,
			})
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{"transactions": out})
	})
}
