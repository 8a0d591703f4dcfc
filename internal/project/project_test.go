package project

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"Deckframe/internal/auth"
	"Deckframe/internal/calc/framing"
	"Deckframe/internal/repo"
)

const deckBody = `{"name": "back deck", "deck": {"shape": [{"x":0,"y":0},{"x":384,"y":0},{"x":384,"y":288},{"x":0,"y":288}], "ledgerIndices": 0}}`

func testRouter() *mux.Router {
	h := &ProjectHandler{Repo: repo.NewMemory(), Engine: framing.New(nil, log.New(io.Discard))}
	r := mux.NewRouter()
	h.Routes(r)
	return r
}

func do(r http.Handler, user int, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if user != 0 {
		req = req.WithContext(auth.WithUserID(req.Context(), user))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestProjectCRUD(t *testing.T) {
	r := testRouter()

	rec := do(r, 1, http.MethodPost, "/projects", deckBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d: %s", rec.Code, rec.Body)
	}
	var created Response
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if created.Plan == nil || created.Plan.JoistSize != "2x10" {
		t.Fatalf("create returned plan %+v", created.Plan)
	}
	path := "/projects/" + created.Project.ID.String()

	if rec := do(r, 1, http.MethodGet, path, ""); rec.Code != http.StatusOK {
		t.Errorf("get: status = %d", rec.Code)
	}
	if rec := do(r, 2, http.MethodGet, path, ""); rec.Code != http.StatusNotFound {
		t.Errorf("get as other user: status = %d, want 404", rec.Code)
	}

	rec = do(r, 1, http.MethodPut, path, strings.Replace(deckBody, "back deck", "side deck", 1))
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status = %d: %s", rec.Code, rec.Body)
	}

	rec = do(r, 1, http.MethodGet, "/projects", "")
	var list []repo.Project
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Name != "side deck" {
		t.Errorf("list = %+v", list)
	}

	if rec := do(r, 1, http.MethodDelete, path, ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete: status = %d", rec.Code)
	}
	if rec := do(r, 1, http.MethodDelete, path, ""); rec.Code != http.StatusNotFound {
		t.Errorf("second delete: status = %d, want 404", rec.Code)
	}
}

func TestProjectRequests(t *testing.T) {
	r := testRouter()
	tests := []struct {
		name       string
		user       int
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"anonymous", 0, http.MethodGet, "/projects", "", http.StatusUnauthorized},
		{"bad id", 1, http.MethodGet, "/projects/42", "", http.StatusBadRequest},
		{"no name", 1, http.MethodPost, "/projects", `{"deck": {}}`, http.StatusBadRequest},
		{"bad json", 1, http.MethodPost, "/projects", `{`, http.StatusBadRequest},
		{"unframeable deck is still saved", 1, http.MethodPost, "/projects", `{"name": "sketch", "deck": {}}`, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(r, tt.user, tt.method, tt.path, tt.body); rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body)
			}
		})
	}
}
