// server/internal/api/handlers/incident_handler.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"fleet-coordinator-api-server/internal/fleet"
	"fleet-coordinator-api-server/internal/incidents"
	"fleet-coordinator-api-server/internal/listview"
	"fleet-coordinator-api-server/internal/media"
	"fleet-coordinator-api-server/internal/models"
	"fleet-coordinator-api-server/internal/session"
	"fleet-coordinator-api-server/internal/store"

	"github.com/gin-gonic/gin"
)

type IncidentHandler struct {
	Guard     *session.Guard
	Lifecycle *incidents.Lifecycle
	Manager   *fleet.Manager
	Users     *store.UserStore
	Views     *listview.Snapshot[listview.Page[IncidentView]]
}

// IncidentView is the admin-facing projection: the incident plus the
// resolved truck and driver references it points at. Broken references
// render as empty fields and a placeholder image, never as a failure.
type IncidentView struct {
	models.Incident
	Plate      string `json:"placa,omitempty"`
	Route      string `json:"ruta,omitempty"`
	DriverName string `json:"conductorNombre,omitempty"`
	ImageURL   string `json:"imagenURL,omitempty"`
}

// ListIncidents serves the searchable, state-filtered incident list in
// natural route order, with incidents whose truck no longer resolves at
// the end.
func (h *IncidentHandler) ListIncidents(c *gin.Context) {
	search := c.Query("busqueda")
	stateFilter := c.DefaultQuery("estado", listview.FilterAll)
	page, size := pageParams(c)
	viewKey := fmt.Sprintf("incidents|%s|%s|%d|%d", search, stateFilter, page, size)

	list, err := h.Lifecycle.List(c.Request.Context())
	if err != nil {
		if last, ok := h.Views.Last(viewKey); ok {
			c.JSON(http.StatusOK, last)
			return
		}
		respondServiceError(c, h.Guard, err)
		return
	}

	views := make([]IncidentView, 0, len(list))
	for _, inc := range list {
		view := IncidentView{Incident: inc}
		if truck, err := h.Manager.Truck(c.Request.Context(), inc.TruckID); err == nil {
			view.Plate = truck.Plate
			view.Route = truck.Route
		}
		if driver, err := h.Users.FindByID(c.Request.Context(), inc.DriverID); err == nil {
			view.DriverName = driver.Name
		}
		if inc.Image != nil {
			view.ImageURL = media.ResolveURL(inc.Image)
		}
		views = append(views, view)
	}

	// The list arrives already ordered; the presenter filters and
	// paginates over it.
	result := listview.Present(views,
		func(v IncidentView) bool {
			return listview.TextMatch(search, v.Description, v.DriverName, v.Plate, v.Route) &&
				listview.StateMatch(stateFilter, v.State)
		},
		nil,
		page, size,
	)
	h.Views.Store(viewKey, result)
	c.JSON(http.StatusOK, result)
}

type TransitionPayload struct {
	State string `json:"estado" binding:"required"`
}

// UpdateIncidentState advances or reopens one incident.
func (h *IncidentHandler) UpdateIncidentState(c *gin.Context) {
	var payload TransitionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	incident, err := h.Lifecycle.Transition(c.Request.Context(), c.Param("id"), payload.State)
	if err != nil {
		if errors.Is(err, incidents.ErrInvalidTransition) {
			c.JSON(http.StatusConflict, gin.H{"error": "Transición de estado no permitida"})
			return
		}
		respondServiceError(c, h.Guard, err)
		return
	}
	c.JSON(http.StatusOK, incident)
}
