package handlers

import (
	"fmt"
	"log"

	"orderflow/internal/middleware"
	"orderflow/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	service  *services.PaymentService
	validate *validator.Validate
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the payment routes with the Fiber app.
func (h *PaymentHandler) RegisterRoutes(router fiber.Router) {
	paymentRoutes := router.Group("/payments")
	paymentRoutes.Post("/", h.HandleProcessPayment)
	paymentRoutes.Get("/:id", h.HandleGetPaymentByID)
}

// PaymentRequest represents the request body for submitting a payment.
type PaymentRequest struct {
	OrderID        string          `json:"order_id" validate:"required"`
	Amount         decimal.Decimal `json:"amount"`
	Method         string          `json:"method" validate:"required,max=50"`
	IdempotencyKey string          `json:"idempotency_key" validate:"required,max=64"`
}

// HandleProcessPayment submits a payment for an order. Resubmitting with the
// same idempotency key returns the original payment.
func (h *PaymentHandler) HandleProcessPayment(c *fiber.Ctx) error {
	var req PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing payment request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if headerKey := c.Get("Idempotency-Key"); headerKey != "" {
		req.IdempotencyKey = headerKey
	}

	if err := h.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	payment, err := h.service.ProcessPayment(middleware.CallerID(c), req.OrderID, req.Amount, req.Method, req.IdempotencyKey)
	if err != nil {
		log.Printf("Error processing payment for order %s: %v", req.OrderID, err)
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"message": "Could not process payment",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(payment)
}

// HandleGetPaymentByID retrieves a single payment by its ID. Payments are
// only visible to the owner of the paid order and to admins.
func (h *PaymentHandler) HandleGetPaymentByID(c *fiber.Ctx) error {
	paymentID := c.Params("id")
	payment, err := h.service.GetPaymentByID(middleware.CallerID(c), paymentID)
	if err != nil {
		log.Printf("Error getting payment by ID %s: %v", paymentID, err)
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"message": fmt.Sprintf("Could not retrieve payment %s", paymentID),
			"error":   err.Error(),
		})
	}
	return c.JSON(payment)
}
