// server/internal/api/middleware/auth.go
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"fleet-coordinator-api-server/internal/auth"
	"fleet-coordinator-api-server/internal/session"

	"github.com/gin-gonic/gin"
)

// Context keys set by Authenticate.
const (
	CtxUserID    = "user_id"
	CtxUserName  = "user_name"
	CtxUserRole  = "user_role"
	CtxUserToken = "user_token"
)

func abortAuth(c *gin.Context, err error) {
	msg := "Credenciales inválidas"
	switch {
	case errors.Is(err, session.ErrMissingCredential):
		msg = "No hay sesión activa"
	case errors.Is(err, session.ErrMalformedToken):
		msg = "Token con formato inválido"
	case errors.Is(err, session.ErrRoleMismatch):
		msg = "La sesión no tiene el rol requerido"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

// Authenticate validates the bearer token through the session guard and
// the JWT verifier, then puts the subject into the request context. Every
// failure purges the session so a retry cannot land in a half-valid state.
func Authenticate(guard *session.Guard, jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortAuth(c, session.ErrMissingCredential)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			abortAuth(c, session.ErrMalformedToken)
			return
		}

		subject, err := guard.Authorize(tokenString, "")
		if err != nil {
			abortAuth(c, err)
			return
		}

		// An expired or forged signature is an issuer rejection; handle it
		// exactly like an auth failure.
		if _, err := auth.ParseJWT(jwtSecret, tokenString); err != nil {
			guard.Purge(tokenString)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token inválido o expirado"})
			return
		}

		c.Set(CtxUserID, subject.ID)
		c.Set(CtxUserName, subject.Name)
		c.Set(CtxUserRole, subject.Role)
		c.Set(CtxUserToken, tokenString)

		c.Next()
	}
}

// RequireRole gates a route group on one role. A wrong-role credential is
// purged in full by the guard, never left around as merely insufficient.
func RequireRole(guard *session.Guard, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetString(CtxUserToken)
		if _, err := guard.Authorize(token, role); err != nil {
			abortAuth(c, err)
			return
		}
		c.Next()
	}
}
