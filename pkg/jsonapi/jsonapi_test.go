package jsonapi_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/agencyos/growthmeter/pkg/jsonapi"
)

func TestWriteData_WrapsInDocument(t *testing.T) {
	rec := httptest.NewRecorder()
	jsonapi.WriteData(rec, 200, map[string]string{"hello": "world"})

	if ct := rec.Header().Get("Content-Type"); ct != jsonapi.ContentType {
		t.Errorf("content-type = %q, want %q", ct, jsonapi.ContentType)
	}

	var doc map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	data := doc["data"].(map[string]any)
	if data["hello"] != "world" {
		t.Errorf("data = %v", data)
	}
}

func TestWriteError_StatusFromFirstError(t *testing.T) {
	rec := httptest.NewRecorder()
	jsonapi.WriteError(rec, jsonapi.ErrValidation("bad input"))

	if rec.Code != 422 {
		t.Errorf("status = %d, want 422", rec.Code)
	}

	var doc map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	errs := doc["errors"].([]any)
	first := errs[0].(map[string]any)
	if first["code"] != "validation_error" {
		t.Errorf("code = %v, want validation_error", first["code"])
	}
	if first["detail"] != "bad input" {
		t.Errorf("detail = %v", first["detail"])
	}
}

func TestWriteError_EmptyDefaultsToInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	jsonapi.WriteError(rec)

	if rec.Code != 500 {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestErrStorageUnavailable_Is502(t *testing.T) {
	e := jsonapi.ErrStorageUnavailable("db is down")
	if e.StatusCode() != 502 {
		t.Errorf("status = %d, want 502", e.StatusCode())
	}
}
