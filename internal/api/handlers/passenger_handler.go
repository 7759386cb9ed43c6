// server/internal/api/handlers/passenger_handler.go
package handlers

import (
	"net/http"

	"fleet-coordinator-api-server/internal/listview"
	"fleet-coordinator-api-server/internal/models"
	"fleet-coordinator-api-server/internal/session"
	"fleet-coordinator-api-server/internal/store"

	"github.com/gin-gonic/gin"
)

type PassengerHandler struct {
	Guard  *session.Guard
	Trucks *store.TruckStore
}

// ActiveTrucks lists active trucks with their last reported position, in
// natural route order.
func (h *PassengerHandler) ActiveTrucks(c *gin.Context) {
	trucks, err := h.Trucks.FindAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.Guard, err)
		return
	}

	result := listview.Present(trucks,
		func(t models.Truck) bool { return t.Status == models.TruckActive },
		func(a, b models.Truck) bool { return listview.ByRouteIndex(a.Route, b.Route) },
		1, len(trucks)+1,
	)
	c.JSON(http.StatusOK, result.Items)
}
