package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"log/slog"
	"net/http"
)

const scrapeRealm = `Basic realm="chatquota metrics", charset="UTF-8"`

// ScrapeAuth guards the Prometheus scrape endpoint with HTTP basic auth.
// With no configured credentials every request is let through.
type ScrapeAuth struct {
	user    [sha256.Size]byte
	pass    [sha256.Size]byte
	enabled bool
	logger  *slog.Logger
}

// NewScrapeAuth returns a ScrapeAuth for the given credentials.
func NewScrapeAuth(username, password string, logger *slog.Logger) *ScrapeAuth {
	return &ScrapeAuth{
		user:    sha256.Sum256([]byte(username)),
		pass:    sha256.Sum256([]byte(password)),
		enabled: username != "" || password != "",
		logger:  logger,
	}
}

// Wrap serves next only to callers presenting the configured credentials.
func (a *ScrapeAuth) Wrap(next http.Handler) http.Handler {
	if !a.enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.permits(r) {
			a.logger.Warn("metrics scrape rejected", "ip", getClientIP(r))
			w.Header().Set("WWW-Authenticate", scrapeRealm)
			writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// permits compares digests so both checks take the same time whatever the
// input lengths.
func (a *ScrapeAuth) permits(r *http.Request) bool {
	user, pass, ok := r.BasicAuth()
	if !ok {
		return false
	}
	u := sha256.Sum256([]byte(user))
	p := sha256.Sum256([]byte(pass))
	userOK := subtle.ConstantTimeCompare(u[:], a.user[:])
	passOK := subtle.ConstantTimeCompare(p[:], a.pass[:])
	return userOK&passOK == 1
}
