package api

import (
	"net/http"
	"time"

	"github.com/Shravani-Dhumal/Verifixia/internal/models"
)

// BuildHeaders derives the auth headers for one outbound request. Pure: the
// bearer header appears exactly when the session is valid at the given
// instant, and is absent otherwise. Requests are never blocked on a missing
// session, and an expired token is never sent.
func BuildHeaders(s *models.Session, now time.Time) http.Header {
	h := http.Header{}
	if s.Valid(now) {
		h.Set("Authorization", "Bearer "+s.IDToken)
	}
	return h
}
