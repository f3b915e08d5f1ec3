package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newMultipartContext(t *testing.T, build func(w *multipart.Writer)) *gin.Context {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	build(writer)
	_ = writer.Close()

	req := httptest.NewRequest("POST", "/admin/api/menu", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req
	return c
}

func TestParseMultipartMenuItemRequest_Fields(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c := newMultipartContext(t, func(w *multipart.Writer) {
		_ = w.WriteField("name", "  Chicken Bento  ")
		_ = w.WriteField("price", "12.50")
		_ = w.WriteField("type", "Main")
		_ = w.WriteField("isFeatured", "on")
		_ = w.WriteField("allergens", "soy")
		_ = w.WriteField("allergens", "sesame")
	})

	parsed, err := parseMultipartMenuItemRequest(c)
	if err != nil {
		t.Fatalf("parseMultipartMenuItemRequest returned error: %v", err)
	}
	if !parsed.NameSet || parsed.Name != "Chicken Bento" {
		t.Fatalf("expected trimmed name, got %+v", parsed)
	}
	if !parsed.PriceSet || parsed.Price != 12.50 {
		t.Fatalf("expected price=12.50, got %+v", parsed)
	}
	if !parsed.TypeSet || parsed.Type != "main" {
		t.Fatalf("expected lowercased type, got %q", parsed.Type)
	}
	if !parsed.IsFeaturedSet || !parsed.IsFeatured {
		t.Fatalf("expected isFeatured=true from form value 'on', got %+v", parsed)
	}
	if !parsed.AllergensSet || len(parsed.Allergens) != 2 {
		t.Fatalf("expected two allergens, got %+v", parsed.Allergens)
	}
}

func TestParseMultipartMenuItemRequest_InvalidPrice(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c := newMultipartContext(t, func(w *multipart.Writer) {
		_ = w.WriteField("price", "twelve")
	})

	if _, err := parseMultipartMenuItemRequest(c); err == nil {
		t.Fatal("expected error for non-numeric price")
	}
}

func TestParseMultipartMenuItemRequest_MissingImageIsOK(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c := newMultipartContext(t, func(w *multipart.Writer) {
		_ = w.WriteField("name", "Fruit Cup")
	})

	parsed, err := parseMultipartMenuItemRequest(c)
	if err != nil {
		t.Fatalf("parseMultipartMenuItemRequest returned error: %v", err)
	}
	if parsed.ImageSet {
		t.Fatal("expected ImageSet=false when no file part is present")
	}
}
