package documents

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(svc *Service, userID string, limit int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", userID)
		c.Next()
	})
	NewHandler(svc, limit).RegisterRoutes(r)
	return r
}

func multipartBody(t *testing.T, name string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fw, err := writer.CreateFormFile("file", name)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestUploadListDelete(t *testing.T) {
	f := newFixture()
	router := newTestRouter(f.svc, "user-1", 0)

	body, ct := multipartBody(t, "hello.txt", []byte("hello world"))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ct)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created DocumentResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if created.ID == "" || created.FileName != "hello.txt" || created.CreatedAt.IsZero() {
		t.Fatalf("unexpected upload response %+v", created)
	}

	listResp := httptest.NewRecorder()
	router.ServeHTTP(listResp, httptest.NewRequest(http.MethodGet, "/documents", nil))
	var listed []DocumentResponse
	if err := json.NewDecoder(listResp.Body).Decode(&listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("unexpected list %+v", listed)
	}

	delResp := httptest.NewRecorder()
	router.ServeHTTP(delResp, httptest.NewRequest(http.MethodDelete, "/documents/"+created.ID, nil))
	if delResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", delResp.Code)
	}
	var msg DeleteResponse
	if err := json.NewDecoder(delResp.Body).Decode(&msg); err != nil {
		t.Fatalf("decode delete: %v", err)
	}
	if msg.Message != "Document deleted successfully" {
		t.Fatalf("unexpected message %q", msg.Message)
	}

	again := httptest.NewRecorder()
	router.ServeHTTP(again, httptest.NewRequest(http.MethodDelete, "/documents/"+created.ID, nil))
	if again.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", again.Code)
	}
}

func TestUploadErrors(t *testing.T) {
	f := newFixture()
	router := newTestRouter(f.svc, "user-1", 64)

	missing := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(missing, req)
	if missing.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without file, got %d", missing.Code)
	}

	body, ct := multipartBody(t, "big.txt", bytes.Repeat([]byte("a"), 1024))
	big := httptest.NewRequest(http.MethodPost, "/upload", body)
	big.Header.Set("Content-Type", ct)
	tooLarge := httptest.NewRecorder()
	router.ServeHTTP(tooLarge, big)
	if tooLarge.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", tooLarge.Code)
	}

	f.svc.Extractor = failingExtractor{}
	router = newTestRouter(f.svc, "user-1", 0)
	body, ct = multipartBody(t, "a.bin", []byte{0x00, 0x01})
	bad := httptest.NewRequest(http.MethodPost, "/upload", body)
	bad.Header.Set("Content-Type", ct)
	unprocessable := httptest.NewRecorder()
	router.ServeHTTP(unprocessable, bad)
	if unprocessable.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", unprocessable.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(unprocessable.Body).Decode(&payload); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if payload.Error.Code != "processing_error" {
		t.Fatalf("expected processing_error, got %q", payload.Error.Code)
	}
}
