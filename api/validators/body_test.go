package validators

import (
	"bytes"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/marketloop/marketloop-backend/pkg/errors"
)

type samplePayload struct {
	Email    string `json:"email" validate:"required,email"`
	Quantity int    `json:"quantity" validate:"min=1,max=99"`
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	r := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"email":"a@b.co","quantity":3}`))

	var dest samplePayload
	if err := DecodeJSONBody(r, &dest); err != nil {
		t.Fatalf("expected payload to decode: %v", err)
	}
	if dest.Quantity != 3 {
		t.Fatalf("unexpected quantity %d", dest.Quantity)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"email":"a@b.co","quantity":3,"extra":true}`))

	var dest samplePayload
	err := DecodeJSONBody(r, &dest)
	if err == nil {
		t.Fatal("expected unknown field to be rejected")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyReportsFieldMessagesByJSONTag(t *testing.T) {
	r := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"email":"not-an-email","quantity":0}`))

	var dest samplePayload
	err := DecodeJSONBody(r, &dest)
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %T", typed.Details())
	}
	if _, found := details["email"]; !found {
		t.Fatalf("expected email field in details: %v", details)
	}
	if _, found := details["quantity"]; !found {
		t.Fatalf("expected quantity field in details: %v", details)
	}
}

func TestParseQueryInt(t *testing.T) {
	r := httptest.NewRequest("GET", "/?limit=10", nil)
	got, err := ParseQueryInt(r, "limit", 24, 1, 100)
	if err != nil || got != 10 {
		t.Fatalf("expected 10, got %d (%v)", got, err)
	}

	r = httptest.NewRequest("GET", "/", nil)
	got, err = ParseQueryInt(r, "limit", 24, 1, 100)
	if err != nil || got != 24 {
		t.Fatalf("expected default 24, got %d (%v)", got, err)
	}

	r = httptest.NewRequest("GET", "/?limit=500", nil)
	if _, err = ParseQueryInt(r, "limit", 24, 1, 100); err == nil {
		t.Fatal("expected out-of-range error")
	}
}
