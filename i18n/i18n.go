// Package i18n holds the translated messages for error codes and the
// language negotiation used by the HTTP layer.
package i18n

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
)

const (
	DefaultLang = "pt"
	LangParam   = "lang"
	LangCookie  = "lang"
)

// supported is ordered; the first entry is the fallback of the matcher.
var supported = []language.Tag{language.BrazilianPortuguese, language.English}

var supportedCodes = []string{"pt", "en"}

var matcher = language.NewMatcher(supported)

var messages = map[string]map[string]string{
	"pt": {
		"required":                "Obrigatório",
		"invalid":                 "Inválido",
		"must_be_non_negative":    "Deve ser maior ou igual a zero",
		"must_be_after_start":     "Deve ser posterior ao início",
		"too_long":                "Muito longo",
		"too_short":               "Muito curto",
		"unauthenticated":         "Autenticação necessária",
		"forbidden":               "Acesso negado",
		"not_found":               "Não encontrado",
		"internal_error":          "Erro interno",
		"validation_failed":       "Dados inválidos",
		"slot_unavailable":        "Horário indisponível",
		"overlap_conflict":        "Horário em conflito com outro horário seu",
		"slot_in_use":             "Horário com histórico de agendamentos não pode ser removido",
		"stale_review":            "Os dados do instrutor mudaram desde a última leitura",
		"invalid_transition":      "Mudança de status não permitida",
		"concurrent_update":       "O agendamento foi alterado por outra pessoa",
		"instructor_not_verified": "Instrutor ainda não verificado",
		"email_taken":             "E-mail já cadastrado",
		"invalid_credentials":     "E-mail ou senha inválidos",
		"payload_too_large":       "Arquivo muito grande (máximo 5MB)",
		"unsupported_media":       "Tipo de arquivo não suportado",
	},
	"en": {
		"required":                "Required",
		"invalid":                 "Invalid",
		"must_be_non_negative":    "Must be zero or greater",
		"must_be_after_start":     "Must be after the start time",
		"too_long":                "Too long",
		"too_short":               "Too short",
		"unauthenticated":         "Authentication required",
		"forbidden":               "Forbidden",
		"not_found":               "Not found",
		"internal_error":          "Internal error",
		"validation_failed":       "Invalid input",
		"slot_unavailable":        "Slot is no longer available",
		"overlap_conflict":        "Slot overlaps one of your existing slots",
		"slot_in_use":             "Slot has appointment history and cannot be removed",
		"stale_review":            "Instructor data changed since it was loaded",
		"invalid_transition":      "Status change not allowed",
		"concurrent_update":       "The appointment was changed concurrently",
		"instructor_not_verified": "Instructor is not verified yet",
		"email_taken":             "Email already registered",
		"invalid_credentials":     "Invalid email or password",
		"payload_too_large":       "File too large (5MB max)",
		"unsupported_media":       "Unsupported file type",
	},
}

// T translates code into lang, falling back to the default language and
// then to the code itself.
func T(lang, code string) string {
	if m, ok := messages[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := messages[DefaultLang][code]; ok {
		return s
	}
	return code
}

// DetectLanguage picks the best supported language from an Accept-Language header.
func DetectLanguage(accept string) string {
	accept = strings.TrimSpace(accept)
	if accept == "" {
		return DefaultLang
	}
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return DefaultLang
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return DefaultLang
	}
	return supportedCodes[idx]
}

// Normalize returns a supported language code for value, or "" if none matches.
func Normalize(value string) string {
	tag, err := language.Parse(strings.TrimSpace(value))
	if err != nil {
		return ""
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return ""
	}
	return supportedCodes[idx]
}

type ctxKey struct{}

func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// LangFromContext returns the request language, DefaultLang when unset.
func LangFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
		return v
	}
	return DefaultLang
}

// Middleware resolves the language from ?lang=, the lang cookie, then
// Accept-Language. A valid ?lang= value is persisted as a cookie.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := ""
		if q := Normalize(r.URL.Query().Get(LangParam)); q != "" {
			lang = q
			http.SetCookie(w, &http.Cookie{
				Name:     LangCookie,
				Value:    lang,
				Path:     "/",
				MaxAge:   int((365 * 24 * time.Hour).Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		} else if c, err := r.Cookie(LangCookie); err == nil {
			lang = Normalize(c.Value)
		}
		if lang == "" {
			lang = DetectLanguage(r.Header.Get("Accept-Language"))
		}
		next.ServeHTTP(w, r.WithContext(WithLang(r.Context(), lang)))
	})
}
