// server/internal/session/guard.go
package session

import (
	"errors"
	"strings"
	"sync"
	"time"
)

// Auth failures. None of these are recovered locally: every one of them
// purges the session and sends the caller back to the login screen.
var (
	ErrMissingCredential = errors.New("no session credential present")
	ErrMalformedToken    = errors.New("malformed session token")
	ErrRoleMismatch      = errors.New("session role does not match required role")
)

// A JWT with a JSON header always starts with "eyJ"; anything else is not
// a credential this system issued.
const tokenPrefix = "eyJ"

// Credential is the session payload created at login and destroyed at
// logout or on any validation failure. It never survives partially: a
// credential that fails any check is purged in full.
type Credential struct {
	SubjectID string
	Name      string
	Role      string
	Token     string
	// ExpiresAt bounds the registry entry's lifetime; after it the entry
	// is as good as absent. Zero means no expiry.
	ExpiresAt time.Time
}

func (c Credential) expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Subject is the validated, role-bound identity returned by Authorize.
type Subject struct {
	ID   string
	Name string
	Role string
}

// Guard is the single gate in front of every role-scoped operation. It
// keeps the registry of live sessions keyed by token.
type Guard struct {
	mu       sync.RWMutex
	sessions map[string]Credential
}

func NewGuard() *Guard {
	return &Guard{sessions: make(map[string]Credential)}
}

// WellFormed reports whether the token has the structural shape of an
// issued credential: exactly three non-empty dot-separated segments,
// starting with the JWT header prefix.
func WellFormed(token string) bool {
	if !strings.HasPrefix(token, tokenPrefix) {
		return false
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
	}
	return true
}

// Register records a freshly issued credential. Each registration also
// sweeps entries whose expiry has passed, so abandoned sessions do not
// accumulate for the process lifetime.
func (g *Guard) Register(cred Credential) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := time.Now()
	for token, c := range g.sessions {
		if c.expired(now) {
			delete(g.sessions, token)
		}
	}
	g.sessions[cred.Token] = cred
}

// Purge removes the session for the given token. Purging an already
// absent session is a no-op, so a retried Authorize after a failure
// fails the same deterministic way.
func (g *Guard) Purge(token string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.sessions, token)
}

// Authorize validates the token structurally, resolves its session and
// checks the declared role against requiredRole (empty requiredRole means
// any authenticated role). On any failure the session is purged before
// the error is returned; a wrong-role credential is treated as fully
// invalid, not merely insufficient.
func (g *Guard) Authorize(token, requiredRole string) (Subject, error) {
	if token == "" {
		return Subject{}, ErrMissingCredential
	}
	if !WellFormed(token) {
		g.Purge(token)
		return Subject{}, ErrMalformedToken
	}

	g.mu.RLock()
	cred, ok := g.sessions[token]
	g.mu.RUnlock()
	if !ok {
		return Subject{}, ErrMissingCredential
	}
	// An expired session is no session.
	if cred.expired(time.Now()) {
		g.Purge(token)
		return Subject{}, ErrMissingCredential
	}

	if requiredRole != "" && cred.Role != requiredRole {
		g.Purge(token)
		return Subject{}, ErrRoleMismatch
	}

	return Subject{ID: cred.SubjectID, Name: cred.Name, Role: cred.Role}, nil
}
