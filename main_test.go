package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestWebhookRouteRejectsNonPOSTWith405(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := newRouter(nil, nil, nil)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		req := httptest.NewRequest(method, "/webhooks/stripe", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s /webhooks/stripe = %d, want %d", method, rec.Code, http.StatusMethodNotAllowed)
		}
	}
}

func TestWebhookRouteRejectsUnsignedPOST(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := newRouter(nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unsigned POST /webhooks/stripe = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
