package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/attendlab/punch-agent-go/internal/config"
	"github.com/attendlab/punch-agent-go/internal/domain/capture"
	appHTTP "github.com/attendlab/punch-agent-go/internal/handler/http"
	"github.com/attendlab/punch-agent-go/internal/pkg/camera"
	"github.com/attendlab/punch-agent-go/internal/pkg/geo"
	"github.com/attendlab/punch-agent-go/internal/repository/restapi"
	attendanceService "github.com/attendlab/punch-agent-go/internal/service/attendance"
	livenessService "github.com/attendlab/punch-agent-go/internal/service/liveness"
	punchService "github.com/attendlab/punch-agent-go/internal/service/punch"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(
		slog.String("app", "punch-agent"),
	)

	apiClient := restapi.NewClient(cfg.API.BaseURL, cfg.API.Token)

	positions := geo.NewPushSource()
	resolver := geo.NewResolver(positions, cfg.Location.Timeout)

	bridge := camera.NewBridgeProvider()
	checker := camera.StaticChecker{State: capture.PermissionState(cfg.Capture.Permission)}
	captureProvider, err := camera.NewProvider(cfg.Capture.Platform, cfg.Capture.StagingPath, checker, bridge)
	if err != nil {
		fmt.Println("Error selecting capture provider:", err)
		return
	}

	attendanceSvc := attendanceService.NewAttendanceService(logger)
	livenessSvc := livenessService.NewLivenessService(time.Now().UnixNano())

	punchSvc := punchService.NewPunchService(punchService.Deps{
		Capture:    captureProvider,
		Liveness:   livenessSvc,
		Resolver:   resolver,
		Attendance: attendanceSvc,
		API:        apiClient,
		Log:        logger,
		SiteID:     cfg.Identity.SiteID,
		UserID:     cfg.Identity.UserID,
		ProjectID:  cfg.Identity.ProjectID,
	})

	punchHandler := appHTTP.NewPunchHandler(punchSvc, bridge, positions)
	router := appHTTP.NewRouter(punchHandler, cfg.App.AllowedOrigin, cfg.App.Env)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Punch bridge running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
