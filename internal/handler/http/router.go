package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/re-attendance/attendance-backend-go/internal/handler/http/middleware"
	"github.com/re-attendance/attendance-backend-go/internal/pkg/jwt"
)

type RouterConfig struct {
	AppName        string
	AppVersion     string
	AppEnv         string
	AllowedOrigins []string
	// UploadsDir serves stored evidence photos when local storage is used.
	// Empty disables the static route.
	UploadsDir string
}

func NewRouter(
	cfg RouterConfig,
	jwtService jwt.Service,
	authHandler AuthHandler,
	attendanceHandler AttendanceHandler,
	overtimeHandler OvertimeHandler,
	holidayHandler HolidayHandler,
	reportHandler ReportHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.AppName),
		slog.String("version", cfg.AppVersion),
		slog.String("env", cfg.AppEnv),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if cfg.UploadsDir != "" {
		fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir)))
		r.Get("/uploads/*", fileServer.ServeHTTP)
	}

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.RefreshToken)
			r.Post("/logout", authHandler.Logout)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Get("/auth/me", authHandler.Me)

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/check-in", attendanceHandler.CheckIn)
				r.Post("/check-out", attendanceHandler.CheckOut)
				r.Post("/sync/check-in", attendanceHandler.SyncCheckIn)
				r.Post("/sync/check-out", attendanceHandler.SyncCheckOut)
				r.Get("/history", attendanceHandler.History)
				r.Get("/{id}", attendanceHandler.Get)

				// Supervisor and above
				r.Group(func(r chi.Router) {
					r.Use(middleware.SupervisorOrAbove)
					r.Post("/mark", attendanceHandler.Mark)
				})

				// Management and admin adjudicate pending records
				r.Group(func(r chi.Router) {
					r.Use(middleware.ManagementOrAdmin)
					r.Get("/pending", attendanceHandler.ListPending)
					r.Put("/{id}/approve", attendanceHandler.Approve)
					r.Put("/{id}/reject", attendanceHandler.Reject)
				})
			})

			r.Route("/overtime", func(r chi.Router) {
				r.Post("/", overtimeHandler.Create)
				r.Get("/", overtimeHandler.List)

				r.Group(func(r chi.Router) {
					r.Use(middleware.ManagementOrAdmin)
					r.Put("/{id}/review", overtimeHandler.Review)
				})
			})

			r.Route("/holidays", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.SupervisorOrAbove)
					r.Get("/", holidayHandler.List)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.ManagementOrAdmin)
					r.Post("/", holidayHandler.Create)
					r.Delete("/{id}", holidayHandler.Delete)
				})
			})

			r.Route("/reports", func(r chi.Router) {
				// Supervisor and above
				r.Group(func(r chi.Router) {
					r.Use(middleware.SupervisorOrAbove)
					r.Get("/today", reportHandler.Today)
					r.Get("/daily", reportHandler.Daily)
				})

				// Monthly self-report is open to workers; scope is enforced
				// in the service layer.
				r.Get("/monthly", reportHandler.Monthly)
			})
		})
	})
	return r
}
