package handlers

import (
	"net/http"

	"github.com/Saadasw/BookOrderBackend/api/responses"
)

// Index describes the API surface at the root path so a browser hit against
// the service answers something useful.
func Index() http.HandlerFunc {
	payload := map[string]any{
		"service": "book-order-backend",
		"endpoints": map[string]string{
			"initiate":      "POST /api/v1/orders/initiate",
			"verify":        "POST /api/v1/orders/verify",
			"resend_code":   "POST /api/v1/orders/resend-code",
			"list_orders":   "GET /api/v1/orders",
			"order_detail":  "GET /api/v1/orders/{orderId}",
			"update_status": "PUT /api/v1/orders/{orderId}/status",
			"cancel_order":  "DELETE /api/v1/orders/{orderId}",
			"health_live":   "GET /health/live",
			"health_ready":  "GET /health/ready",
		},
	}
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, payload)
	}
}
