package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CelionLigalamu/Nyumba-Hunt/internal/modules/payments"
)

type CallbackHandler struct {
	Logger     *slog.Logger
	Reconciler *payments.Reconciler
}

func NewCallbackHandler(logger *slog.Logger, rec *payments.Reconciler) *CallbackHandler {
	return &CallbackHandler{Logger: logger, Reconciler: rec}
}

// POST /callbacks/mpesa
//
// Daraja retries until acknowledged, so everything except an unparseable
// body answers 200 with the structured ack it expects. Unknown
// correlation tokens and internal errors are provider-safe result codes,
// never faults.
func (h *CallbackHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ResultCode": 1, "ResultDesc": "Invalid request body"})
		return
	}

	res, err := h.Reconciler.Reconcile(c.Request.Context(), body)
	if err != nil {
		if errors.Is(err, payments.ErrMalformedCallback) {
			h.Logger.Warn("malformed mpesa callback", "err", err)
			c.JSON(http.StatusBadRequest, gin.H{"ResultCode": 1, "ResultDesc": "Invalid callback payload"})
			return
		}
		h.Logger.Error("callback reconciliation failed", "err", err)
		c.JSON(http.StatusOK, gin.H{"ResultCode": 1, "ResultDesc": "Processing failed"})
		return
	}

	if res.Outcome == payments.OutcomeNotFound {
		c.JSON(http.StatusOK, gin.H{"ResultCode": 1, "ResultDesc": "Payment record not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Accepted"})
}
