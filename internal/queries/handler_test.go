package queries

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(svc *Service, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", userID)
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(r)
	return r
}

func postQuery(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/query", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestQueryEndpoint(t *testing.T) {
	svc, _ := newTestService(&stubGenerator{answer: "It says hello."})
	router := newTestRouter(svc, "user-1")

	resp := postQuery(router, `{"document_id":"`+docID+`","query_text":"What?"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var answer AnswerResponse
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if answer.ResponseText != "It says hello." || answer.DocumentID != docID {
		t.Fatalf("unexpected answer %+v", answer)
	}

	histResp := httptest.NewRecorder()
	router.ServeHTTP(histResp, httptest.NewRequest(http.MethodGet, "/queries?document_id="+docID, nil))
	var hist []QueryResponse
	if err := json.NewDecoder(histResp.Body).Decode(&hist); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(hist) != 1 || hist[0].QueryText != "What?" {
		t.Fatalf("unexpected history %+v", hist)
	}
}

func TestQueryEndpointErrors(t *testing.T) {
	cases := []struct {
		name   string
		gen    *stubGenerator
		user   string
		body   string
		status int
		code   string
	}{
		{name: "bad json", gen: &stubGenerator{answer: "x"}, user: "user-1", body: `{`, status: http.StatusBadRequest, code: "validation_error"},
		{name: "empty question", gen: &stubGenerator{answer: "x"}, user: "user-1", body: `{"document_id":"` + docID + `","query_text":""}`, status: http.StatusBadRequest, code: "validation_error"},
		{name: "foreign", gen: &stubGenerator{answer: "x"}, user: "intruder", body: `{"document_id":"` + docID + `","query_text":"q"}`, status: http.StatusNotFound, code: "not_found"},
		{name: "generation", gen: &stubGenerator{err: errBoom}, user: "user-1", body: `{"document_id":"` + docID + `","query_text":"q"}`, status: http.StatusBadGateway, code: "generation_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newTestService(tc.gen)
			resp := postQuery(newTestRouter(svc, tc.user), tc.body)
			if resp.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.Code)
			}
			var payload struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if payload.Error.Code != tc.code {
				t.Fatalf("expected code %s, got %s", tc.code, payload.Error.Code)
			}
		})
	}
}
