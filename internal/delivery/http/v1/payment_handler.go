package v1

import (
	"net/http"
	"strconv"

	"go-rise-platform/internal/delivery/http/response"
	"go-rise-platform/internal/domain"
	"go-rise-platform/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentUC domain.PaymentUsecase
}

func NewPaymentHandler(public, admin *gin.RouterGroup, paymentUC domain.PaymentUsecase, webhookLimit gin.HandlerFunc) {
	handler := &PaymentHandler{paymentUC: paymentUC}

	ryls := public.Group("/payments/ryls")
	{
		ryls.GET("/config", handler.Config)
		ryls.POST("/transactions", handler.CreateTransaction)
		ryls.POST("/notifications", webhookLimit, handler.Notification)
		ryls.GET("/:registrationId/status", handler.Status)
	}

	admin.PATCH("/admin/payments/:id/status", handler.AdminUpdateStatus)
}

// Config godoc
// @Summary      Checkout widget configuration
// @Tags         payments
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.WidgetConfig}
// @Router       /payments/ryls/config [get]
func (h *PaymentHandler) Config(c *gin.Context) {
	response.Success(c, http.StatusOK, "Payment config retrieved", h.paymentUC.WidgetConfig(c.Request.Context()))
}

// CreateTransaction godoc
// @Summary      Start a payment for a submission
// @Description  MIDTRANS returns a Snap token; PAYPAL requires an uploaded payment proof
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        transaction  body  domain.CreateTransactionInput  true  "Payment type and data"
// @Success      201  {object}  response.Response{data=domain.PaymentTransaction}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /payments/ryls/transactions [post]
func (h *PaymentHandler) CreateTransaction(c *gin.Context) {
	var in domain.CreateTransactionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		_ = c.Error(apperror.BadRequest("Invalid request body"))
		return
	}
	tx, err := h.paymentUC.CreateTransaction(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Transaction created", tx)
}

// Notification godoc
// @Summary      Payment gateway notification
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        notification  body  domain.GatewayNotification  true  "Gateway notification"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /payments/ryls/notifications [post]
func (h *PaymentHandler) Notification(c *gin.Context) {
	var n domain.GatewayNotification
	if err := c.ShouldBindJSON(&n); err != nil {
		_ = c.Error(apperror.BadRequest("Invalid notification body"))
		return
	}
	if err := h.paymentUC.HandleNotification(c.Request.Context(), n); err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Notification processed", nil)
}

// Status godoc
// @Summary      Latest payment status of a registration
// @Tags         payments
// @Produce      json
// @Param        registrationId  path  int  true  "Registration ID"
// @Success      200  {object}  response.Response{data=domain.PaymentTransaction}
// @Failure      404  {object}  response.Response
// @Router       /payments/ryls/{registrationId}/status [get]
func (h *PaymentHandler) Status(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("registrationId"), 10, 64)
	if err != nil || id <= 0 {
		_ = c.Error(apperror.BadRequest("Invalid registrationId"))
		return
	}
	tx, err := h.paymentUC.GetStatus(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Payment status retrieved", tx)
}

// AdminUpdateStatus godoc
// @Summary      Set a payment status manually
// @Description  Used to confirm or reject PayPal proofs
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path  int            true  "Payment ID"
// @Param        status  body  StatusRequest  true  "PENDING, PAID, FAILED or EXPIRED"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /admin/payments/{id}/status [patch]
func (h *PaymentHandler) AdminUpdateStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.BadRequest("Status wajib diisi"))
		return
	}
	if err := h.paymentUC.AdminUpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Payment status updated", nil)
}
