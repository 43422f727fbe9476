package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diewo77/go-lessons/auth"
	"github.com/diewo77/go-lessons/internal/models"
	"github.com/diewo77/go-lessons/internal/storage"
)

func TestDocumentFilesAccess(t *testing.T) {
	root := t.TempDir()
	store := storage.NewLocalStore(root, "/uploads")
	ctx := context.Background()
	avatar, err := store.Put(ctx, "owner-1", "avatar", "png", []byte("avatar"))
	if err != nil {
		t.Fatalf("put avatar: %v", err)
	}
	license, err := store.Put(ctx, "owner-1", "license_photo", "png", []byte("license"))
	if err != nil {
		t.Fatalf("put license: %v", err)
	}
	avatar = strings.TrimPrefix(avatar, "/uploads")
	license = strings.TrimPrefix(license, "/uploads")

	owner := auth.Caller{ID: "owner-1", Role: string(models.RoleInstructor)}
	admin := auth.Caller{ID: "admin-1", Role: string(models.RoleAdmin)}
	stranger := auth.Caller{ID: "student-1", Role: string(models.RoleStudent)}

	tests := []struct {
		name   string
		path   string
		caller *auth.Caller
		want   int
	}{
		{"root listing", "/", nil, http.StatusNotFound},
		{"owner listing", "/owner-1/", nil, http.StatusNotFound},
		{"owner listing without slash", "/owner-1", &owner, http.StatusNotFound},
		{"public avatar", avatar, nil, http.StatusOK},
		{"license anonymous", license, nil, http.StatusNotFound},
		{"license other user", license, &stranger, http.StatusNotFound},
		{"license owner", license, &owner, http.StatusOK},
		{"license admin", license, &admin, http.StatusOK},
		{"missing file", "/owner-1/avatar_1.png", nil, http.StatusNotFound},
	}
	h := DocumentFiles(root)
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		if tt.caller != nil {
			req = req.WithContext(auth.WithCaller(req.Context(), *tt.caller))
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.name, tt.want, w.Code)
		}
		if tt.want == http.StatusNotFound && strings.Contains(w.Body.String(), "owner-1") {
			t.Errorf("%s: response leaks a directory entry: %s", tt.name, w.Body.String())
		}
	}
}
