// Package app wires the HTTP surface: middleware, domain services and their
// routes.
package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"meetingrooms/internal/clock"
	"meetingrooms/internal/config"
	"meetingrooms/internal/domain/report"
	"meetingrooms/internal/domain/reservation"
	"meetingrooms/internal/domain/room"
	"meetingrooms/internal/domain/settings"
	"meetingrooms/internal/middleware"
	"meetingrooms/internal/notify"
	jwtsvc "meetingrooms/internal/pkg/jwt"
)

// Models lists every table the service owns, in migration order.
func Models() []any {
	return []any{
		&room.Room{},
		&reservation.Reservation{},
		&settings.BusinessHours{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

type Deps struct {
	DB          *gorm.DB
	Clock       clock.Clock
	JWT         *jwtsvc.Service
	Hub         *notify.Hub
	Broadcaster notify.Broadcaster
}

// Services are exposed so binaries and tests can reach the domain layer
// without going through HTTP.
type Services struct {
	Settings     *settings.Service
	Rooms        *room.Service
	Reservations *reservation.Engine
	Report       *report.Service
}

func NewServices(cfg *config.Config, d Deps) *Services {
	b := d.Broadcaster
	if b == nil {
		b = notify.Nop{}
	}

	defaults := settings.BusinessHours{
		OpeningHour: cfg.DefaultOpeningHour,
		ClosingHour: cfg.DefaultClosingHour,
	}
	settingsSvc := settings.NewService(settings.NewRepository(d.DB), defaults, cfg.SettingsCacheTTL, b)

	roomRepo := room.NewRepository(d.DB)
	engine := reservation.NewEngine(d.DB, roomRepo.Binder(), settingsSvc, d.Clock, b, reservation.Rules{
		MaxDuration: cfg.MaxDuration,
		PastGrace:   cfg.PastGrace,
	})

	return &Services{
		Settings:     settingsSvc,
		Rooms:        room.NewService(roomRepo, d.Clock, b),
		Reservations: engine,
		Report:       report.NewService(engine.Store(), roomRepo, d.Clock),
	}
}

func NewRouter(cfg *config.Config, d Deps, svc *Services) *gin.Engine {
	r := gin.New()
	if gin.Mode() != gin.TestMode {
		r.Use(gin.Logger())
	}
	r.Use(middleware.ErrorLogger(), middleware.CORS(cfg.CORSAllowedOrigins))

	r.GET("/health", healthHandler(d))
	if d.Hub != nil {
		r.GET("/ws", d.Hub.HandleWS)
	}

	settingsHandler := settings.NewHandler(svc.Settings)
	roomHandler := room.NewHandler(svc.Rooms)
	reservationHandler := reservation.NewHandler(svc.Reservations, d.Clock)
	reportHandler := report.NewHandler(svc.Report)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(d.JWT))
	{
		settingsHandler.RegisterRoutes(v1)
		roomHandler.RegisterRoutes(v1)
		reservationHandler.RegisterRoutes(v1, limiter.Limit())

		admin := v1.Group("/admin")
		admin.Use(middleware.AdminOnly())
		{
			settingsHandler.RegisterAdminRoutes(admin)
			roomHandler.RegisterAdminRoutes(admin)
			reservationHandler.RegisterAdminRoutes(admin)
			reportHandler.RegisterAdminRoutes(admin)
		}
	}

	return r
}

func healthHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		dbStatus := "ok"
		if sqlDB, err := d.DB.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status = http.StatusServiceUnavailable
			dbStatus = "unavailable"
		}

		viewers := 0
		if d.Hub != nil {
			viewers = d.Hub.OnlineCount()
		}
		c.JSON(status, gin.H{
			"status":  dbStatus,
			"viewers": viewers,
			"time":    d.Clock.NowUTC().Format(time.RFC3339),
		})
	}
}
