// server/internal/models/user.go
package models

// Roles known to the system.
const (
	RoleAdmin     = "admin"
	RoleConductor = "conductor"
	RolePasajero  = "pasajero"
)

// User matches the document in MongoDB.
type User struct {
	UserID   string `bson:"userID" json:"id"`
	Email    string `bson:"email" json:"email"`
	Name     string `bson:"name" json:"nombre"`
	Password string `bson:"password" json:"-"`
	Role     string `bson:"role" json:"rol"`
	Status   string `bson:"status" json:"estado"`
}
