package funds

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/vale-pay/vale_pay/internal/account"
	"github.com/vale-pay/vale_pay/internal/ledger"
)

// Handler exposes fund movement endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a fund movement handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type movementRequest struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

type transferRequest struct {
	FromAccountID string          `json:"from_account_id"`
	ToAccountID   string          `json:"to_account_id"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
}

type moveRequest struct {
	From   string          `json:"from_category"`
	To     string          `json:"to_category"`
	Amount decimal.Decimal `json:"amount"`
}

// Deposit credits a bucket of the addressed account.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	accountID := c.Params("accountId")
	var req movementRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	cat, err := account.ParseCategory(req.Category)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.Deposit(c.UserContext(), MovementInput{AccountID: accountID, Category: cat, Amount: req.Amount}); err != nil {
		return mapError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// Withdraw debits a bucket of the addressed account, falling back to CASH.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	accountID := c.Params("accountId")
	var req movementRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	cat, err := account.ParseCategory(req.Category)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	debited, err := h.service.Withdraw(c.UserContext(), MovementInput{AccountID: accountID, Category: cat, Amount: req.Amount})
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"debited_category": debited})
}

// Transfer moves funds between two accounts.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	cat, err := account.ParseCategory(req.Category)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	debited, err := h.service.Transfer(c.UserContext(), TransferInput{
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Category:      cat,
		Amount:        req.Amount,
	})
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"debited_category": debited})
}

// Move shifts funds between categories of one account.
func (h *Handler) Move(c *fiber.Ctx) error {
	accountID := c.Params("accountId")
	var req moveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	from, err := account.ParseCategory(req.From)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	to, err := account.ParseCategory(req.To)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.Move(c.UserContext(), MoveInput{AccountID: accountID, From: from, To: to, Amount: req.Amount}); err != nil {
		return mapError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// Balances returns the bucket snapshot of one account.
func (h *Handler) Balances(c *fiber.Ctx) error {
	accountID := c.Params("accountId")
	balances, err := h.service.Balances(c.UserContext(), accountID)
	if err != nil {
		return mapError(err)
	}

	out := make([]fiber.Map, 0, len(balances))
	for _, b := range balances {
		out = append(out, fiber.Map{"type": b.Category, "amount": b.Amount})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"account_id": accountID, "balances": out})
}

// Sufficient reports whether the account covers the amount from the bucket
// or from CASH.
func (h *Handler) Sufficient(c *fiber.Ctx) error {
	accountID := c.Params("accountId")
	cat, err := account.ParseCategory(c.Query("category"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid amount")
	}

	ok, err := h.service.Sufficient(c.UserContext(), MovementInput{AccountID: accountID, Category: cat, Amount: amount})
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"sufficient": ok})
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrCategoryNotFound):
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, account.ErrNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
