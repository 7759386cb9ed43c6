// server/internal/api/handlers/auth_handler.go
package handlers

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"fleet-coordinator-api-server/config"
	"fleet-coordinator-api-server/internal/api/middleware"
	"fleet-coordinator-api-server/internal/auth"
	"fleet-coordinator-api-server/internal/location"
	"fleet-coordinator-api-server/internal/mail"
	"fleet-coordinator-api-server/internal/models"
	"fleet-coordinator-api-server/internal/session"
	"fleet-coordinator-api-server/internal/store"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	Guard    *session.Guard
	Users    *store.UserStore
	Recovery *store.RecoveryStore
	Mailer   mail.Sender
	Tracker  *location.Tracker
	Cfg      config.Config
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login exchanges identity+secret for a credential and registers the
// session with the guard.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Users.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "El correo electrónico no está registrado"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al verificar el usuario"})
		}
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "La contraseña es incorrecta"})
		return
	}

	expiration := 24 * time.Hour
	if d, err := time.ParseDuration(h.Cfg.JWT.Expiration); err == nil && d > 0 {
		expiration = d
	}

	token, err := auth.GenerateJWT([]byte(h.Cfg.JWT.Secret), user.UserID, user.Name, user.Role, expiration)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al generar el token"})
		return
	}

	h.Guard.Register(session.Credential{
		SubjectID: user.UserID,
		Name:      user.Name,
		Role:      user.Role,
		Token:     token,
		ExpiresAt: time.Now().Add(expiration),
	})

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"usuario": gin.H{
			"_id":    user.UserID,
			"nombre": user.Name,
			"rol":    user.Role,
		},
	})
}

// Logout purges the session; for drivers it also stops the session's
// location reporter.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString(middleware.CtxUserToken)
	h.Guard.Purge(token)
	if h.Tracker != nil && c.GetString(middleware.CtxUserRole) == models.RoleConductor {
		h.Tracker.Stop(c.GetString(middleware.CtxUserID))
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sesión cerrada"})
}

type VerifyUserRequest struct {
	Username string `json:"username" binding:"required"`
}

// VerifyUser is step one of password recovery: confirm the account exists
// and return its masked e-mail.
func (h *AuthHandler) VerifyUser(c *gin.Context) {
	var req VerifyUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Users.FindByEmail(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Usuario no encontrado"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al verificar el usuario"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"email": maskEmail(user.Email)})
}

type RecoverPasswordRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
}

// RecoverPassword is step two: the caller re-types the full e-mail; a
// one-time code is generated and mailed to it.
func (h *AuthHandler) RecoverPassword(c *gin.Context) {
	var req RecoverPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Users.FindByEmail(c.Request.Context(), req.Username)
	if err != nil || !strings.EqualFold(user.Email, req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "El correo no coincide con el usuario"})
		return
	}

	code, err := recoveryCode()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al generar el código"})
		return
	}

	ttl := time.Duration(h.Cfg.Recovery.CodeTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	err = h.Recovery.Save(c.Request.Context(), models.RecoveryCode{
		UserID:    user.UserID,
		Code:      code,
		ExpiresAt: time.Now().Add(ttl),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al guardar el código"})
		return
	}

	if err := h.Mailer.SendRecoveryCode(c.Request.Context(), user.Email, code); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al enviar el correo"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Código de recuperación enviado"})
}

type VerifyRecoveryCodeRequest struct {
	Username    string `json:"username" binding:"required"`
	Code        string `json:"codigo" binding:"required"`
	NewPassword string `json:"nuevaPassword" binding:"required"`
}

// VerifyRecoveryCode is step three: consume the code and set the new
// secret. Codes are single-use and expire.
func (h *AuthHandler) VerifyRecoveryCode(c *gin.Context) {
	var req VerifyRecoveryCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if len(req.NewPassword) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "La contraseña debe tener al menos 6 caracteres"})
		return
	}

	user, err := h.Users.FindByEmail(c.Request.Context(), req.Username)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Usuario no encontrado"})
		return
	}

	if err := h.Recovery.Consume(c.Request.Context(), user.UserID, req.Code); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Código inválido o expirado"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al verificar el código"})
		}
		return
	}

	hashed, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al actualizar la contraseña"})
		return
	}
	if err := h.Users.UpdatePassword(c.Request.Context(), user.UserID, hashed); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al actualizar la contraseña"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Contraseña actualizada correctamente"})
}

func maskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 1 {
		return email
	}
	return email[:1] + strings.Repeat("*", at-1) + email[at:]
}

func recoveryCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
