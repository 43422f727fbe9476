package services

import (
	"context"
	"io"
	"net/http"

	"github.com/diewo77/go-lessons/auth"
	"github.com/diewo77/go-lessons/gate"
	"github.com/diewo77/go-lessons/internal/apperr"
	"github.com/diewo77/go-lessons/internal/policy"
	"github.com/diewo77/go-lessons/internal/storage"
	"github.com/diewo77/go-lessons/validation"
)

// Document kinds accepted by Upload.
const (
	DocumentAvatar          = "avatar"
	DocumentLicensePhoto    = "license_photo"
	DocumentCredentialPhoto = "credential_photo"
)

var documentKinds = []string{DocumentAvatar, DocumentLicensePhoto, DocumentCredentialPhoto}

// imageExtensions maps the sniffed content type to the stored extension.
var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// DocumentService validates uploaded photos and hands them to the store.
type DocumentService struct {
	gate  *gate.Gate[auth.Caller]
	store storage.DocumentStore
	opts  Options
}

func NewDocumentService(g *gate.Gate[auth.Caller], store storage.DocumentStore, opts Options) *DocumentService {
	return &DocumentService{gate: g, store: store, opts: opts.withDefaults()}
}

// Upload stores an image owned by the caller and returns its URL. The type
// is detected from the content, not from the client's filename.
func (s *DocumentService) Upload(ctx context.Context, c auth.Caller, kind string, r io.Reader) (string, error) {
	if err := authorize(ctx, s.gate, c, gate.ActionCreate, policy.ResourceDocument, nil); err != nil {
		return "", err
	}
	v := validation.Violations{}
	validation.Required("kind", kind, v)
	validation.OneOf("kind", kind, documentKinds, v)
	if !v.Empty() {
		return "", apperr.Validation(v)
	}

	data, err := io.ReadAll(io.LimitReader(r, s.opts.MaxUploadBytes+1))
	if err != nil {
		return "", apperr.Internal("read upload", err)
	}
	if int64(len(data)) > s.opts.MaxUploadBytes {
		return "", apperr.Invalid(apperr.CodePayloadTooLarge, "")
	}
	ext, ok := imageExtensions[http.DetectContentType(data)]
	if !ok {
		return "", apperr.Invalid(apperr.CodeUnsupportedMedia, "")
	}

	url, err := s.store.Put(ctx, c.ID, kind, ext, data)
	if err != nil {
		return "", apperr.Internal("store document", err)
	}
	return url, nil
}
