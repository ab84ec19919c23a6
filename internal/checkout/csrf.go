package checkout

import (
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const sessionCookie = "checkout_session"

// TokenStore holds at most one anti-forgery token per checkout session.
// Tokens are single-use: Consume removes the token before the comparison
// result is acted on, so two submissions racing on the same session see
// exactly one winner.
type TokenStore struct {
	tokens sync.Map // sessionID -> token
}

func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Issue returns the session's current token, minting one if absent.
func (s *TokenStore) Issue(sessionID string) string {
	token, _ := s.tokens.LoadOrStore(sessionID, newToken())
	return token.(string)
}

// Consume removes the session's token and reports whether the submitted
// value matched it. The removal happens regardless of the outcome, so a
// token can be used at most once.
func (s *TokenStore) Consume(sessionID, submitted string) bool {
	stored, ok := s.tokens.LoadAndDelete(sessionID)
	return ok && submitted != "" && stored.(string) == submitted
}

func newToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// sessionID reads the browser's session cookie, setting a fresh one when
// absent so the CSRF token has a session to bind to.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := newToken()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
