package handlers

import (
	"net/http"

	"github.com/diewo77/go-lessons/internal/models"
	"github.com/diewo77/go-lessons/internal/services"
	"github.com/diewo77/go-lessons/internal/storage"
)

// DocumentFiles serves uploaded documents stored under root. Avatars are
// public; license and credential photos are only served to their owner and
// to admins. Anything else, directories included, answers 404.
func DocumentFiles(root string) http.Handler {
	files := http.FileServer(storage.NewFileSystem(root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner, kind, ok := storage.ParsePath(r.URL.Path)
		if !ok {
			http.NotFound(w, r)
			return
		}
		if kind != services.DocumentAvatar {
			c := caller(r)
			if c.ID != owner && !c.Is(string(models.RoleAdmin)) {
				http.NotFound(w, r)
				return
			}
		}
		files.ServeHTTP(w, r)
	})
}
