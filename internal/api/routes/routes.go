// server/internal/api/routes/routes.go
package routes

import (
	"time"

	"fleet-coordinator-api-server/config"
	"fleet-coordinator-api-server/internal/api/handlers"
	"fleet-coordinator-api-server/internal/api/middleware"
	"fleet-coordinator-api-server/internal/fleet"
	"fleet-coordinator-api-server/internal/incidents"
	"fleet-coordinator-api-server/internal/listview"
	"fleet-coordinator-api-server/internal/location"
	"fleet-coordinator-api-server/internal/mail"
	"fleet-coordinator-api-server/internal/models"
	"fleet-coordinator-api-server/internal/session"
	"fleet-coordinator-api-server/internal/socket"
	"fleet-coordinator-api-server/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupRouter wires the handlers onto the role-scoped route groups. Every
// role-scoped group passes through Authenticate and a RequireRole gate; no
// handler reaches role-bound data without the session guard.
func SetupRouter(
	cfg config.Config,
	db *mongo.Database,
	guard *session.Guard,
	mediaStore incidents.MediaStore,
	mailer mail.Sender,
	hub *socket.Hub,
) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
	}))

	truckStore := &store.TruckStore{DB: db}
	incidentStore := &store.IncidentStore{DB: db}
	userStore := &store.UserStore{DB: db}
	recoveryStore := &store.RecoveryStore{DB: db}

	manager := fleet.NewManager(truckStore, userStore)
	lifecycle := incidents.NewLifecycle(incidentStore, truckStore, mediaStore)
	tracker := location.NewTracker(truckStore,
		time.Duration(cfg.Location.ReportIntervalSeconds)*time.Second,
		hub.BroadcastPosition)

	authHandler := &handlers.AuthHandler{Guard: guard, Users: userStore, Recovery: recoveryStore, Mailer: mailer, Tracker: tracker, Cfg: cfg}
	truckHandler := &handlers.TruckHandler{Guard: guard, Manager: manager, Incidents: incidentStore, Views: listview.NewSnapshot[listview.Page[models.Truck]]()}
	assignmentHandler := &handlers.AssignmentHandler{Guard: guard, Manager: manager, Views: listview.NewSnapshot[handlers.AssignmentList]()}
	incidentHandler := &handlers.IncidentHandler{Guard: guard, Lifecycle: lifecycle, Manager: manager, Users: userStore, Views: listview.NewSnapshot[listview.Page[handlers.IncidentView]]()}
	driverHandler := &handlers.DriverHandler{Guard: guard, Trucks: truckStore, Users: userStore, Lifecycle: lifecycle, Tracker: tracker}
	passengerHandler := &handlers.PassengerHandler{Guard: guard, Trucks: truckStore}
	webSocketHandler := &handlers.WebSocketHandler{Hub: hub, Guard: guard}

	// Anonymous entry points.
	router.POST("/login", authHandler.Login)
	router.POST("/verificar-usuario", authHandler.VerifyUser)
	router.POST("/recuperar-password", authHandler.RecoverPassword)
	router.POST("/verificar-codigo-recuperacion", authHandler.VerifyRecoveryCode)

	// Position feed; the token is validated inside the handler.
	router.GET("/ws", webSocketHandler.ServeWs)

	authenticated := router.Group("/")
	authenticated.Use(middleware.Authenticate(guard, []byte(cfg.JWT.Secret)))
	{
		authenticated.POST("/logout", authHandler.Logout)

		admin := authenticated.Group("/")
		admin.Use(middleware.RequireRole(guard, models.RoleAdmin))
		{
			camiones := admin.Group("/camiones")
			{
				camiones.GET("", truckHandler.ListTrucks)
				camiones.POST("", truckHandler.CreateTruck)
				camiones.PUT("/:id", truckHandler.UpdateTruck)
				camiones.DELETE("/:id", truckHandler.DeleteTruck)
				camiones.GET("/asignaciones", assignmentHandler.ListAssignments)
				camiones.PUT("/asignacion/:id", assignmentHandler.UpdateAssignment)
			}
			admin.GET("/conductores-disponibles", assignmentHandler.AvailableDrivers)
			admin.GET("/admin/incidencias", incidentHandler.ListIncidents)
			admin.PUT("/admin/incidencias/:id", incidentHandler.UpdateIncidentState)
		}

		conductor := authenticated.Group("/conductor")
		conductor.Use(middleware.RequireRole(guard, models.RoleConductor))
		{
			conductor.GET("/info", driverHandler.Info)
			conductor.GET("/incidencias-pendientes", driverHandler.PendingIncidents)
			conductor.POST("/incidencias", driverHandler.ReportIncident)
			conductor.PUT("/ubicacion", driverHandler.UpdateLocation)
			conductor.POST("/visibilidad", driverHandler.Foreground)
		}

		pasajero := authenticated.Group("/pasajero")
		pasajero.Use(middleware.RequireRole(guard, models.RolePasajero))
		{
			pasajero.GET("/camiones", passengerHandler.ActiveTrucks)
		}
	}

	return router
}
