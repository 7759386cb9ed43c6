// server/internal/api/handlers/assignment_handler.go
package handlers

import (
	"fmt"
	"net/http"

	"fleet-coordinator-api-server/internal/fleet"
	"fleet-coordinator-api-server/internal/listview"
	"fleet-coordinator-api-server/internal/models"
	"fleet-coordinator-api-server/internal/session"

	"github.com/gin-gonic/gin"
)

type AssignmentHandler struct {
	Guard   *session.Guard
	Manager *fleet.Manager
	Views   *listview.Snapshot[AssignmentList]
}

// Tabs of the assignment screen.
const (
	TabUnassigned = "sin-asignar"
	TabAssigned   = "asignados"
)

type AssignmentPayload struct {
	DriverID      string   `json:"conductorId"`
	ScheduleStart string   `json:"horarioInicio"`
	ScheduleEnd   string   `json:"horarioFin"`
	WorkDays      []string `json:"diasTrabajo"`
}

// AssignmentList is one rendered tab of the assignment screen plus the
// partition counters shown on the tab badges. It is snapshotted whole, so
// a stale fallback keeps the badges too.
type AssignmentList struct {
	Tab string `json:"tab"`
	listview.Page[models.Truck]
	Assigned   int `json:"asignados"`
	Unassigned int `json:"sinAsignar"`
}

// ListAssignments serves one tab of the assigned/unassigned partition.
// The partition is recomputed on every request; a truck moves between
// tabs on any assignment write.
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	tab := c.DefaultQuery("tab", TabUnassigned)
	search := c.Query("busqueda")
	stateFilter := c.DefaultQuery("estado", listview.FilterAll)
	page, size := pageParams(c)
	viewKey := fmt.Sprintf("assignments|%s|%s|%s|%d|%d", tab, search, stateFilter, page, size)

	assigned, unassigned, err := h.Manager.Partition(c.Request.Context())
	if err != nil {
		if last, ok := h.Views.Last(viewKey); ok {
			c.JSON(http.StatusOK, last)
			return
		}
		respondServiceError(c, h.Guard, err)
		return
	}

	trucks := unassigned
	if tab == TabAssigned {
		trucks = assigned
	}

	// Partition already sorted by route; the presenter only filters and
	// paginates here.
	view := AssignmentList{
		Tab: tab,
		Page: listview.Present(trucks,
			func(t models.Truck) bool {
				return listview.TextMatch(search, t.Plate, t.Route, t.DriverID) && listview.StateMatch(stateFilter, t.Status)
			},
			nil,
			page, size,
		),
		Assigned:   len(assigned),
		Unassigned: len(unassigned),
	}
	h.Views.Store(viewKey, view)
	c.JSON(http.StatusOK, view)
}

// AvailableDrivers lists conductors not already committed to a truck.
func (h *AssignmentHandler) AvailableDrivers(c *gin.Context) {
	drivers, err := h.Manager.AvailableDrivers(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.Guard, err)
		return
	}
	c.JSON(http.StatusOK, drivers)
}

// UpdateAssignment writes the driver+schedule of one truck. An empty
// conductorId clears the assignment.
func (h *AssignmentHandler) UpdateAssignment(c *gin.Context) {
	var payload AssignmentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	truck, err := h.Manager.Assign(c.Request.Context(), c.Param("id"),
		payload.DriverID, payload.ScheduleStart, payload.ScheduleEnd, payload.WorkDays)
	if err != nil {
		respondServiceError(c, h.Guard, err)
		return
	}
	c.JSON(http.StatusOK, truck)
}
