package handler

import (
	"net/http"
	"testing"

	previewSvc "previewhub/internal/domain/services/preview"
	wsSvc "previewhub/internal/domain/services/workspace"

	"github.com/google/go-cmp/cmp"
)

func TestSelection(t *testing.T) {
	f := newFixture(t)

	expectStatus(t, f.do(t, http.MethodGet, "/api/selection", nil), http.StatusNoContent)

	rec := f.do(t, http.MethodPut, "/api/selection", wsSvc.SelectRequest{Path: "api/server.js"})
	expectStatus(t, rec, http.StatusOK)
	view := decode[wsSvc.NodeView](t, rec)
	if view.Path != "api/server.js" || view.LanguageID != "javascript" {
		t.Errorf("selection = %s (%s), want api/server.js (javascript)", view.Path, view.LanguageID)
	}

	want := []previewSvc.Event{previewSvc.ActivateProject{Project: "api"}}
	if diff := cmp.Diff(want, f.orch.dispatched()); diff != "" {
		t.Errorf("dispatched events mismatch (-want +got):\n%s", diff)
	}

	rec = f.do(t, http.MethodGet, "/api/selection", nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decode[wsSvc.NodeView](t, rec); got.Node.Content != "listen()" {
		t.Errorf("selected content = %q, want listen()", got.Node.Content)
	}

	expectStatus(t, f.do(t, http.MethodDelete, "/api/selection", nil), http.StatusNoContent)
	expectStatus(t, f.do(t, http.MethodGet, "/api/selection", nil), http.StatusNoContent)
}

func TestSelectionFollowsRenameAndDelete(t *testing.T) {
	f := newFixture(t)
	name := "app"

	expectStatus(t, f.do(t, http.MethodPut, "/api/selection", wsSvc.SelectRequest{Path: "my-project/src/main.jsx"}), http.StatusOK)
	expectStatus(t, f.do(t, http.MethodPatch, "/api/nodes/my-project/src", wsSvc.UpdateNodeRequest{Name: &name}), http.StatusOK)

	rec := f.do(t, http.MethodGet, "/api/selection", nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decode[wsSvc.NodeView](t, rec).Path; got != "my-project/app/main.jsx" {
		t.Errorf("selection path after rename = %q, want my-project/app/main.jsx", got)
	}

	expectStatus(t, f.do(t, http.MethodDelete, "/api/nodes/my-project/app", nil), http.StatusNoContent)
	expectStatus(t, f.do(t, http.MethodGet, "/api/selection", nil), http.StatusNoContent)
}

func TestSelectNodeErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
	}{
		{"missing node", wsSvc.SelectRequest{Path: "my-project/nope.js"}, http.StatusNotFound},
		{"empty path", wsSvc.SelectRequest{Path: ""}, http.StatusBadRequest},
		{"malformed body", `{"path":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			expectStatus(t, f.do(t, http.MethodPut, "/api/selection", tt.body), tt.wantStatus)
			if n := len(f.orch.dispatched()); n != 0 {
				t.Errorf("dispatched %d events for a rejected selection", n)
			}
		})
	}
}
