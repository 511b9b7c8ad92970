package routes

import (
	"oralscan-backend/internal/handlers"
	"oralscan-backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Dependencies is everything SetupRoutes wires together.
type Dependencies struct {
	Auth     *handlers.AuthHandler
	Analyze  *handlers.AnalyzeHandler
	Scans    *handlers.ScanHandler
	Patients *handlers.PatientHandler
	Health   *handlers.HealthHandler

	Tokens middleware.TokenVerifier
	Users  middleware.UserLookup

	CORSOrigins  []string
	MaxBodyBytes int64
	// GlobalLimiter covers every request; ModelLimiter also covers the routes
	// that call the vision model.
	GlobalLimiter *middleware.IPRateLimiter
	ModelLimiter  *middleware.IPRateLimiter
}

func SetupRoutes(r *gin.Engine, d Dependencies) {
	r.Use(middleware.RequestID())
	r.Use(middleware.CORSMiddleware(d.CORSOrigins))
	r.Use(middleware.LimitBodySize(d.MaxBodyBytes))

	r.GET("/healthz", d.Health.Healthz)
	r.GET("/readyz", d.Health.Readyz)

	api := r.Group("/api")
	api.Use(middleware.RateLimitMiddleware(d.GlobalLimiter))
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", d.Auth.Register)
			auth.POST("/login", d.Auth.Login)
		}

		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(d.Tokens, d.Users))
		{
			protected.GET("/auth/me", d.Auth.Me)
			protected.PUT("/auth/me", d.Auth.UpdateProfile)
			protected.PUT("/auth/password", d.Auth.ChangePassword)
			protected.PUT("/auth/fcm-token", d.Auth.UpdateFCMToken)

			model := middleware.RateLimitMiddleware(d.ModelLimiter)
			protected.POST("/analyze", model, d.Analyze.Analyze)

			protected.GET("/scans", d.Scans.ListScans)
			protected.POST("/scans", model, d.Scans.CreateScan)
			protected.GET("/scans/:id", d.Scans.GetScan)

			protected.GET("/patients", d.Patients.GetMyPatients)
			protected.POST("/patients", d.Patients.AddPatient)
			protected.GET("/patients/:id", d.Patients.GetPatient)
			protected.PUT("/patients/:id", d.Patients.UpdatePatient)
			protected.DELETE("/patients/:id", d.Patients.DeletePatient)
			protected.GET("/patients/:id/scans", d.Patients.GetPatientScans)
		}
	}
}
