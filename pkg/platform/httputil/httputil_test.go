package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	dErrors "rtidesk/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits detail when not requested", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.Wrap(errors.New("db failed"), dErrors.CodeInternal, "failed to save"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]any
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["message"] != "failed to save" {
			t.Fatalf("expected message to be returned, got %q", body["message"])
		}
		if _, ok := body["detail"]; ok {
			t.Fatalf("expected detail to be omitted")
		}
	})

	t.Run("detailed mode includes the cause", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteErrorDetailed(w, dErrors.Wrap(errors.New("quota exhausted"), dErrors.CodeGeneration, "failed to generate RTI content"), true)

		var body map[string]any
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["detail"] != "quota exhausted" {
			t.Fatalf("expected detail to carry the cause, got %v", body["detail"])
		}
	})

	t.Run("validation error is a 400 with fields", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.Validation("missing required fields", "subject", "content"))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
		var body ErrorBody
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body.Error != "validation_error" || len(body.Fields) != 2 {
			t.Fatalf("unexpected body: %+v", body)
		}
	})

	t.Run("invalid state shares 404 with not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInvalidState, "RTI application not found or cannot be submitted"))
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
		}
	})

	t.Run("plain errors become generic internal errors", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("secret connection string leaked"))

		var body ErrorBody
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body.Message != "internal server error" || body.Detail != "" {
			t.Fatalf("unexpected body: %+v", body)
		}
	})
}
