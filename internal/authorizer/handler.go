package authorizer

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the authorization endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs an authorization handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Authorize processes a transaction through the plain authorization path.
func (h *Handler) Authorize(c *fiber.Ctx) error {
	return h.handle(c, h.service.Authorize)
}

// AuthorizeWithFallback processes a transaction with the explicit CASH
// retry.
func (h *Handler) AuthorizeWithFallback(c *fiber.Ctx) error {
	return h.handle(c, h.service.AuthorizeWithFallback)
}

func (h *Handler) handle(c *fiber.Ctx, authorize func(context.Context, Request) (Result, error)) error {
	var req AuthorizeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	res, err := authorize(c.UserContext(), Request{
		AccountID:    req.AccountID,
		CardNumber:   req.CardNumber,
		Amount:       req.Amount,
		MerchantName: req.Merchant,
		MCC:          req.MCC,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		// Commit and other infrastructure faults: no result code, the
		// caller retries the whole authorization.
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.Status(http.StatusOK).JSON(AuthorizeResponse{
		Code:          res.Outcome.Code(),
		Category:      string(res.Category),
		TransactionID: res.TransactionID,
	})
}
