package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const webhookSignatureHeader = "X-Signature"

// HandlePaymentWebhook receives provider callbacks. Anything the
// reconciler recognized, ignored, or already saw gets a 200 so the
// provider stops retrying. Internal failures return 5xx so it retries.
func (s *Server) HandlePaymentWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.paymentSvc.ProcessWebhook(c.Request.Context(), payload, c.GetHeader(webhookSignatureHeader))
	if err != nil {
		s.log.Warn("webhook rejected",
			zap.String("event", result.EventName),
			zap.Error(err),
		)
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": string(result.Outcome),
		"event":  result.EventName,
	})
}
