// server/internal/api/handlers/truck_handler.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"fleet-coordinator-api-server/internal/api/middleware"
	"fleet-coordinator-api-server/internal/fleet"
	"fleet-coordinator-api-server/internal/listview"
	"fleet-coordinator-api-server/internal/models"
	"fleet-coordinator-api-server/internal/session"
	"fleet-coordinator-api-server/internal/store"

	"github.com/gin-gonic/gin"
)

type TruckHandler struct {
	Guard     *session.Guard
	Manager   *fleet.Manager
	Incidents *store.IncidentStore
	Views     *listview.Snapshot[listview.Page[models.Truck]]
}

type TruckPayload struct {
	Plate  string `json:"placa" binding:"required"`
	Route  string `json:"ruta" binding:"required"`
	Status string `json:"estado" binding:"required"`
}

func respondServiceError(c *gin.Context, guard *session.Guard, err error) {
	var verr *fleet.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Reason, "campo": verr.Field})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Registro no encontrado"})
	case errors.Is(err, store.ErrUnauthorized):
		// A storage credential rejection invalidates the whole session,
		// exactly like an auth failure: purge and send back to login.
		if guard != nil {
			if token := c.GetString(middleware.CtxUserToken); token != "" {
				guard.Purge(token)
			}
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Credencial rechazada, inicie sesión nuevamente"})
	case errors.Is(err, store.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Servicio temporalmente no disponible"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("pagina", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("porPagina", strconv.Itoa(listview.DefaultPageSize)))
	return page, size
}

// ListTrucks serves the searchable, state-filtered, route-ordered truck
// list. On a store failure the previous successfully rendered page for
// the same view is served instead of blanking the screen.
func (h *TruckHandler) ListTrucks(c *gin.Context) {
	search := c.Query("busqueda")
	stateFilter := c.DefaultQuery("estado", listview.FilterAll)
	page, size := pageParams(c)
	viewKey := fmt.Sprintf("trucks|%s|%s|%d|%d", search, stateFilter, page, size)

	trucks, err := h.Manager.List(c.Request.Context())
	if err != nil {
		if last, ok := h.Views.Last(viewKey); ok {
			c.JSON(http.StatusOK, last)
			return
		}
		respondServiceError(c, h.Guard, err)
		return
	}

	result := listview.Present(trucks,
		func(t models.Truck) bool {
			return listview.TextMatch(search, t.Plate, t.Route) && listview.StateMatch(stateFilter, t.Status)
		},
		func(a, b models.Truck) bool { return listview.ByRouteIndex(a.Route, b.Route) },
		page, size,
	)
	h.Views.Store(viewKey, result)
	c.JSON(http.StatusOK, result)
}

func (h *TruckHandler) CreateTruck(c *gin.Context) {
	var payload TruckPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	truck, err := h.Manager.CreateTruck(c.Request.Context(), payload.Plate, payload.Route, payload.Status)
	if err != nil {
		respondServiceError(c, h.Guard, err)
		return
	}
	c.JSON(http.StatusCreated, truck)
}

func (h *TruckHandler) UpdateTruck(c *gin.Context) {
	var payload TruckPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	truck, err := h.Manager.UpdateTruck(c.Request.Context(), c.Param("id"), payload.Plate, payload.Route, payload.Status)
	if err != nil {
		respondServiceError(c, h.Guard, err)
		return
	}
	c.JSON(http.StatusOK, truck)
}

// DeleteTruck hard-deletes a truck. The two-step confirmation happened on
// the client; here only the unresolved-incident constraint is checked
// before the delete goes through.
func (h *TruckHandler) DeleteTruck(c *gin.Context) {
	truckID := c.Param("id")

	open, err := h.Incidents.CountOpenByTruck(c.Request.Context(), truckID)
	if err != nil {
		respondServiceError(c, h.Guard, err)
		return
	}
	if open > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "El camión tiene incidencias sin resolver"})
		return
	}

	if err := h.Manager.DeleteTruck(c.Request.Context(), truckID); err != nil {
		respondServiceError(c, h.Guard, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Camión eliminado correctamente"})
}
