package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ConstantineIIII/WhatsappClone/internal/app"
)

func TestWriteErrorMapsAppErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, app.NotFound("chat not found"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var body envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success || body.Message != "chat not found" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestWriteErrorSurfacesUnexpectedErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("pq: connection refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var body envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success || body.Message != "internal server error" {
		t.Fatalf("unexpected body: %+v", body)
	}
	if len(body.Errors) != 1 || body.Errors[0] != "pq: connection refused" {
		t.Fatalf("underlying message should be attached, got %v", body.Errors)
	}
}
