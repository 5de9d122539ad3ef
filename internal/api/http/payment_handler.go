package http

import (
	"fmt"
	"io"
	"net/http"

	"library-service-backend/internal/domain"
	"library-service-backend/internal/logger"
	"library-service-backend/internal/service"
)

// Webhook payloads are small; anything larger is not from the processor.
const maxWebhookBody = 1 << 20

type PaymentHandler struct {
	payments service.PaymentService
}

func NewPaymentHandler(payments service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

type paymentListResponse struct {
	Payments []domain.Payment `json:"payments"`
	Total    int32            `json:"total"`
	Page     int32            `json:"page"`
	PageSize int32            `json:"page_size"`
}

type paymentStatusResponse struct {
	Payment *domain.Payment `json:"payment"`
	Settled bool            `json:"settled"`
}

func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)

	payments, total, err := h.payments.ListPayments(r.Context(), actorFromContext(r.Context()), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentListResponse{Payments: payments, Total: total, Page: page, PageSize: pageSize})
}

func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	payment, err := h.payments.GetPayment(r.Context(), actorFromContext(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

// OpenPayment opens (or reuses) the rental checkout session for a borrowing.
// The {id} path variable is the borrowing ID, not a payment ID.
func (h *PaymentHandler) OpenPayment(w http.ResponseWriter, r *http.Request) {
	borrowingID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	payment, err := h.payments.OpenPayment(r.Context(), actorFromContext(r.Context()), borrowingID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, payment)
}

func (h *PaymentHandler) CheckStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	payment, settled, err := h.payments.CheckStatus(r.Context(), actorFromContext(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentStatusResponse{Payment: payment, Settled: settled})
}

func (h *PaymentHandler) Renew(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	payment, err := h.payments.Renew(r.Context(), actorFromContext(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, payment)
}

// Success is the processor's redirect target after the customer pays. It
// polls the session once so the payment settles even if the webhook is late.
func (h *PaymentHandler) Success(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	payment, settled, err := h.payments.CheckStatus(r.Context(), actorFromContext(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}

	message := "Payment is still being processed. Check back shortly."
	if settled {
		message = fmt.Sprintf("Thank you! Payment of $%.2f received.", float64(payment.MoneyToPayCents)/100)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": message})
}

// Cancel is the processor's redirect target when the customer backs out.
// The session stays open and can be paid until it expires.
func (h *PaymentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	payment, err := h.payments.GetPayment(r.Context(), actorFromContext(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message":     "Payment was not completed. The session remains open for 24 hours.",
		"session_url": payment.SessionURL,
	})
}

// Webhook receives processor push notifications. A bad signature is
// rejected; an event for an unknown session is acknowledged so the
// processor stops retrying it.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		logger.Error("Failed to read webhook body", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := h.payments.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
