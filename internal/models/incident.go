// server/internal/models/incident.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Incident states. "Pendiente" is the literal state; the user-facing
// pending backlog is the broader not-yet-resolved set (pendiente plus
// en_proceso).
const (
	IncidentPending    = "pendiente"
	IncidentInProgress = "en_proceso"
	IncidentResolved   = "resuelta"
)

// Incident is an operational report filed by a driver against their
// assigned truck. Drivers never mutate an incident after creation; state
// changes are an administrator action.
type Incident struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	IncidentID  string             `bson:"incidentID" json:"id"`
	Description string             `bson:"description" json:"descripcion"`
	DriverID    string             `bson:"driverID" json:"conductorId"`
	TruckID     string             `bson:"truckID" json:"camionId"`
	Image       *MediaPointer      `bson:"image,omitempty" json:"imagen,omitempty"`
	State       string             `bson:"state" json:"estado"`
	ReportedAt  time.Time          `bson:"reportedAt" json:"fecha"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
