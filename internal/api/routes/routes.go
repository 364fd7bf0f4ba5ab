package routes

import (
	"time"

	"timeclock/internal/api/handlers"
	"timeclock/internal/api/middleware"
	"timeclock/internal/config"
	"timeclock/internal/services"
	"timeclock/internal/timeclock"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Services is everything the HTTP layer calls into.
type Services struct {
	Auth      *services.AuthService
	Audit     *services.AuditService
	Employees *services.EmployeeService
	Records   *services.RecordService
	Reports   *services.ReportService
	Dashboard *services.DashboardService
}

func SetupRoutes(r *gin.Engine, cfg *config.Config, clock *timeclock.Clock, svc Services) {
	authHandler := handlers.NewAuthHandler(svc.Auth, svc.Audit, cfg)
	employeeHandler := handlers.NewEmployeeHandler(svc.Employees, svc.Records, svc.Audit)
	recordHandler := handlers.NewRecordHandler(svc.Records, svc.Audit, clock)
	reportHandler := handlers.NewReportHandler(svc.Reports)
	dashboardHandler := handlers.NewDashboardHandler(svc.Dashboard)

	// Middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(cors.New(corsConfig(cfg.Server.CORSOrigins)))
	r.Use(middleware.SessionMiddleware(svc.Auth, cfg.Session.CookieName))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Time clock API is running",
			"time":    clock.Format(clock.Now()),
		})
	})

	// Public routes: the kiosk keypad and login
	r.POST("/login", authHandler.Login)
	r.POST("/quick-admin-login", authHandler.QuickAdminLogin)
	r.GET("/logout", authHandler.Logout)
	r.POST("/logout", authHandler.Logout)
	r.GET("/is-logged-in", authHandler.IsLoggedIn)
	r.POST("/add-admin", authHandler.AddAdmin)
	r.POST("/add-record", recordHandler.AddRecord)
	r.POST("/employee-status", employeeHandler.GetStatus)

	// Admin routes
	admin := r.Group("")
	admin.Use(middleware.RequireAdmin())
	{
		admin.POST("/manual-clock-out", recordHandler.ManualClockOut)
		admin.POST("/bulk-clock-out", recordHandler.BulkClockOut)
		admin.POST("/mark-absent", recordHandler.MarkAbsent)
		admin.POST("/get-records", recordHandler.GetRecords)

		admin.POST("/get-users", employeeHandler.GetEmployees)
		admin.POST("/add-employee", employeeHandler.CreateEmployee)
		admin.POST("/delete-employee", employeeHandler.DeleteEmployee)
		admin.POST("/update-employee-tags", employeeHandler.UpdateTags)

		admin.POST("/download-records", reportHandler.DownloadRecords)
		admin.POST("/calculate-hours", reportHandler.CalculateHours)
		admin.GET("/dashboard", dashboardHandler.GetDashboard)
	}
}

// corsConfig allows credentialed requests from the configured origins, or
// from any origin when none are configured.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) > 0 {
		cfg.AllowOrigins = origins
	} else {
		// credentials rule out "*", so the request origin is echoed back
		cfg.AllowOriginFunc = func(string) bool { return true }
	}
	return cfg
}
