package render

import (
	"encoding/base64"
	"net/http"
	"strings"
)

const flashCookieName = "fittrack_flash"

// Flash is a one-shot notice surviving exactly one redirect, read and
// cleared by the next page render.
type Flash struct {
	Kind    string // "success" or "error"
	Message string
}

func SetFlash(w http.ResponseWriter, kind, message string) {
	value := base64.URLEncoding.EncodeToString([]byte(kind + "|" + message))
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
	})
}

func PopFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}

	// expire the cookie, a flash is shown once
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	decoded, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}

	kind, message, found := strings.Cut(string(decoded), "|")
	if !found {
		return nil
	}

	return &Flash{
		Kind:    kind,
		Message: message,
	}
}
