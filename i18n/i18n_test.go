package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDetectLanguage(t *testing.T) {
	if DetectLanguage("en-US,en;q=0.9") != "en" {
		t.Fatalf("expected en")
	}
	if DetectLanguage("EN-gb") != "en" {
		t.Fatalf("expected en for EN-gb")
	}
	if DetectLanguage("pt-BR,pt;q=0.8") != "pt" {
		t.Fatalf("expected pt")
	}
	if DetectLanguage("fr-FR,fr;q=0.9,en;q=0.5") != "en" {
		t.Fatalf("expected en as best supported match")
	}
	if DetectLanguage("fr-FR") != "pt" {
		t.Fatalf("expected pt fallback")
	}
	if DetectLanguage("") != "pt" {
		t.Fatalf("expected default pt")
	}
}

func TestTranslations(t *testing.T) {
	if T("en", "required") != "Required" {
		t.Fatalf("expected Required")
	}
	if T("pt", "required") != "Obrigatório" {
		t.Fatalf("expected Obrigatório")
	}
	// unknown code -> fallback to code
	if T("en", "__nope__") != "__nope__" {
		t.Fatalf("expected fallback to code")
	}
	// unknown language -> fallback to pt translation
	if T("es", "slot_unavailable") != "Horário indisponível" {
		t.Fatalf("expected pt fallback for es lang")
	}
}

func TestMiddleware(t *testing.T) {
	var got string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = LangFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/?lang=en", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got != "en" {
		t.Fatalf("expected en from query, got %s", got)
	}
	if len(rr.Result().Cookies()) != 1 {
		t.Fatalf("expected lang cookie to be set")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: LangCookie, Value: "en"})
	req.Header.Set("Accept-Language", "pt-BR")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "en" {
		t.Fatalf("cookie should win over header, got %s", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "en-GB")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "en" {
		t.Fatalf("expected en from header, got %s", got)
	}
}
