// server/internal/api/handlers/driver_handler.go
package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"fleet-coordinator-api-server/internal/api/middleware"
	"fleet-coordinator-api-server/internal/incidents"
	"fleet-coordinator-api-server/internal/location"
	"fleet-coordinator-api-server/internal/models"
	"fleet-coordinator-api-server/internal/session"
	"fleet-coordinator-api-server/internal/store"

	"github.com/gin-gonic/gin"
)

type DriverHandler struct {
	Guard     *session.Guard
	Trucks    *store.TruckStore
	Users     *store.UserStore
	Lifecycle *incidents.Lifecycle
	Tracker   *location.Tracker
}

// Info returns the driver, their assigned truck and the open incident
// backlog in one response.
func (h *DriverHandler) Info(c *gin.Context) {
	driverID := c.GetString(middleware.CtxUserID)

	driver, err := h.Users.FindByID(c.Request.Context(), driverID)
	if err != nil {
		respondServiceError(c, h.Guard, err)
		return
	}

	response := gin.H{"conductor": driver}

	truck, err := h.Trucks.FindByDriver(c.Request.Context(), driverID)
	if err == nil {
		response["camionAsignado"] = truck
	} else if !errors.Is(err, store.ErrNotFound) {
		respondServiceError(c, h.Guard, err)
		return
	}

	pending, err := h.Lifecycle.PendingForDriver(c.Request.Context(), driverID)
	if err != nil {
		respondServiceError(c, h.Guard, err)
		return
	}
	response["incidenciasPendientes"] = pending

	c.JSON(http.StatusOK, response)
}

// PendingIncidents returns the driver's not-yet-resolved incidents.
func (h *DriverHandler) PendingIncidents(c *gin.Context) {
	pending, err := h.Lifecycle.PendingForDriver(c.Request.Context(), c.GetString(middleware.CtxUserID))
	if err != nil {
		respondServiceError(c, h.Guard, err)
		return
	}
	c.JSON(http.StatusOK, pending)
}

type ReportIncidentPayload struct {
	Description string `json:"descripcion"`
	TruckID     string `json:"camionId" binding:"required"`
	Image       string `json:"imagen"` // base64 data URL, optional
}

// ReportIncident files an incident against the driver's active truck.
func (h *DriverHandler) ReportIncident(c *gin.Context) {
	driverID := c.GetString(middleware.CtxUserID)

	var payload ReportIncidentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The report must target the truck currently assigned to the caller.
	truck, err := h.Trucks.FindByDriver(c.Request.Context(), driverID)
	if err != nil || truck.TruckID != payload.TruckID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "El camión no está asignado al conductor"})
		return
	}

	imageData, imageType := decodeDataURL(payload.Image)

	incident, err := h.Lifecycle.Report(c.Request.Context(), driverID, payload.TruckID, payload.Description, imageData, imageType)
	if err != nil {
		if errors.Is(err, incidents.ErrEmptyDescription) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "La descripción es requerida"})
			return
		}
		respondServiceError(c, h.Guard, err)
		return
	}
	c.JSON(http.StatusCreated, incident)
}

type LocationPayload struct {
	Position models.Position `json:"ubicacion" binding:"required"`
	TruckID  string          `json:"camionId" binding:"required"`
	Notify   bool            `json:"notificar"`
}

// UpdateLocation takes a device position sample. A plain sample only
// feeds the session reporter, which writes through on its own coalesced
// schedule; notificar=true is the explicit manual trigger and is the only
// path that answers with a user-visible success or failure.
func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	driverID := c.GetString(middleware.CtxUserID)

	var payload LocationPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !payload.Notify {
		h.Tracker.Observe(driverID, payload.Position)
		c.Status(http.StatusAccepted)
		return
	}

	truck, err := h.Tracker.ReportNow(c.Request.Context(), driverID, payload.Position)
	if err != nil {
		switch {
		case errors.Is(err, location.ErrInFlight):
			c.JSON(http.StatusConflict, gin.H{"error": "Ya hay una actualización en curso"})
		case errors.Is(err, location.ErrNoAssignment):
			c.JSON(http.StatusBadRequest, gin.H{"error": "No hay camión asignado"})
		case errors.Is(err, location.ErrPositionUnavailable):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Ubicación no disponible"})
		default:
			respondServiceError(c, h.Guard, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ubicación actualizada correctamente", "camion": truck})
}

// Foreground signals that the driver's app returned to the foreground;
// the session reporter coalesces it with the periodic trigger.
func (h *DriverHandler) Foreground(c *gin.Context) {
	h.Tracker.Wake(c.GetString(middleware.CtxUserID))
	c.Status(http.StatusAccepted)
}

// decodeDataURL splits a "data:image/png;base64,..." payload into bytes
// and content type. Anything unparsable is treated as no image.
func decodeDataURL(dataURL string) ([]byte, string) {
	if dataURL == "" {
		return nil, ""
	}
	imageType := "image/jpeg"
	raw := dataURL
	if strings.HasPrefix(dataURL, "data:") {
		comma := strings.Index(dataURL, ",")
		if comma < 0 {
			return nil, ""
		}
		header := dataURL[len("data:"):comma]
		if semi := strings.Index(header, ";"); semi >= 0 {
			header = header[:semi]
		}
		if header != "" {
			imageType = header
		}
		raw = dataURL[comma+1:]
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, ""
	}
	return data, imageType
}
