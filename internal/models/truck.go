// server/internal/models/truck.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Truck statuses.
const (
	TruckActive   = "activo"
	TruckInactive = "inactivo"
)

// WeekDays is the full weekday vocabulary, in week order.
var WeekDays = []string{"lunes", "martes", "miercoles", "jueves", "viernes", "sabado", "domingo"}

// DefaultWorkDays is the schedule applied when none is given.
var DefaultWorkDays = []string{"lunes", "martes", "miercoles", "jueves", "viernes"}

// Truck is a fleet vehicle on a fixed route. The assignment fields
// (DriverID, ScheduleStart, ScheduleEnd, WorkDays) belong to the truck
// document; DriverID is a weak reference to a conductor's UserID and may
// be empty when the truck is unassigned.
type Truck struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	TruckID       string             `bson:"truckID" json:"id"`
	Plate         string             `bson:"plate" json:"placa"`
	Route         string             `bson:"route" json:"ruta"`
	Status        string             `bson:"status" json:"estado"`
	DriverID      string             `bson:"driverID,omitempty" json:"conductorId,omitempty"`
	ScheduleStart string             `bson:"scheduleStart" json:"horarioInicio"`
	ScheduleEnd   string             `bson:"scheduleEnd" json:"horarioFin"`
	WorkDays      []string           `bson:"workDays" json:"diasTrabajo"`
	LastPosition  *Position          `bson:"lastPosition,omitempty" json:"ubicacion,omitempty"`
	ReportedAt    *time.Time         `bson:"reportedAt,omitempty" json:"ubicacionFecha,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Assigned reports whether the truck currently carries a driver.
func (t Truck) Assigned() bool {
	return t.DriverID != ""
}
