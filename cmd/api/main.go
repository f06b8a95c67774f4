package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/re-attendance/attendance-backend-go/internal/config"
	appHTTP "github.com/re-attendance/attendance-backend-go/internal/handler/http"
	"github.com/re-attendance/attendance-backend-go/internal/pkg/calendar"
	"github.com/re-attendance/attendance-backend-go/internal/pkg/database"
	"github.com/re-attendance/attendance-backend-go/internal/pkg/facematch"
	"github.com/re-attendance/attendance-backend-go/internal/pkg/jwt"
	"github.com/re-attendance/attendance-backend-go/internal/pkg/storage"
	"github.com/re-attendance/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/re-attendance/attendance-backend-go/internal/service/attendance"
	authService "github.com/re-attendance/attendance-backend-go/internal/service/auth"
	holidayService "github.com/re-attendance/attendance-backend-go/internal/service/holiday"
	overtimeService "github.com/re-attendance/attendance-backend-go/internal/service/overtime"
	reportService "github.com/re-attendance/attendance-backend-go/internal/service/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		log.Fatal("Error connecting to database: ", err)
	}
	defer db.Close()

	userRepo := postgresql.NewUserRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	overtimeRepo := postgresql.NewOvertimeRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)

	cal, err := calendar.New(cfg.Org.TimezoneOffset)
	if err != nil {
		log.Fatal("Invalid ORG_TIMEZONE_OFFSET: ", err)
	}

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
	if err != nil {
		log.Fatal("Failed to initialize local storage: ", err)
	}

	var verifier facematch.Verifier
	if cfg.Face.Enabled {
		verifier, err = facematch.NewRekognitionVerifier(
			context.Background(),
			cfg.Face.AWSRegion,
			cfg.Face.SimilarityThreshold,
			cfg.Face.Timeout,
		)
		if err != nil {
			log.Fatal("Failed to initialize face verifier: ", err)
		}
	} else {
		log.Println("WARNING: face verification is disabled; attendance photos are accepted without matching")
		verifier = facematch.NewNoopVerifier()
	}

	authSvc := authService.NewAuthService(userRepo, jwtService)
	attendanceSvc := attendanceService.NewAttendanceService(
		attendanceRepo,
		userRepo,
		verifier,
		fileStorage,
		cal,
		cfg.Org.WorkdayStart,
		cfg.Org.GraceMinutes,
	)
	overtimeSvc := overtimeService.NewOvertimeService(overtimeRepo, userRepo, cal)
	holidaySvc := holidayService.NewHolidayService(holidayRepo, cal)
	reportSvc := reportService.NewReportService(attendanceRepo, userRepo, holidayRepo, overtimeRepo, cal)

	authHandler := appHTTP.NewAuthHandler(jwtService, authSvc)
	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	overtimeHandler := appHTTP.NewOvertimeHandler(overtimeSvc)
	holidayHandler := appHTTP.NewHolidayHandler(holidaySvc)
	reportHandler := appHTTP.NewReportHandler(reportSvc)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			AppName:        cfg.App.Name,
			AppVersion:     cfg.App.Version,
			AppEnv:         cfg.App.Env,
			AllowedOrigins: cfg.App.AllowedOrigins,
			UploadsDir:     cfg.Storage.BasePath,
		},
		jwtService,
		authHandler,
		attendanceHandler,
		overtimeHandler,
		holidayHandler,
		reportHandler,
	)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatal("Server error: ", err)
	}
}
