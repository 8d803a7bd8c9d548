package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/workstream-hr/payroll-core-go/internal/config"
	appHTTP "github.com/workstream-hr/payroll-core-go/internal/handler/http"
	"github.com/workstream-hr/payroll-core-go/internal/pkg/cron"
	"github.com/workstream-hr/payroll-core-go/internal/pkg/database"
	"github.com/workstream-hr/payroll-core-go/internal/repository/postgresql"
	attendanceService "github.com/workstream-hr/payroll-core-go/internal/service/attendance"
	correctionService "github.com/workstream-hr/payroll-core-go/internal/service/correction"
	"github.com/workstream-hr/payroll-core-go/internal/service/escalation"
	notificationService "github.com/workstream-hr/payroll-core-go/internal/service/notification"
	payrollService "github.com/workstream-hr/payroll-core-go/internal/service/payroll"
	shiftService "github.com/workstream-hr/payroll-core-go/internal/service/shift"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	attendanceRepo := postgresql.NewAttendanceRepository(db)
	importRepo := postgresql.NewImportRepository(db)
	shiftRepo := postgresql.NewShiftRepository(db)
	correctionRepo := postgresql.NewCorrectionRepository(db)
	correctionConfigRepo := postgresql.NewCorrectionConfigRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	payrollConfigRepo := postgresql.NewPayrollConfigRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)

	notifier := notificationService.NewNotificationService(notificationRepo, notificationService.Config{})
	defer notifier.Close()

	shiftValidator := shiftService.NewValidator(shiftRepo, shiftRepo)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, importRepo, shiftValidator)
	correctionSvc := correctionService.NewCorrectionService(correctionRepo, correctionConfigRepo, attendanceRepo, notifier)
	monitor := escalation.NewMonitor(correctionRepo, notifier, cfg.Escalation.AgeThreshold, cfg.Escalation.CutoffWindow)
	payrollSvc := payrollService.NewPayrollService(payrollRepo, payrollConfigRepo, employeeRepo, attendanceRepo, payrollService.NoopPayslips{})

	scheduler := cron.NewScheduler()
	cron.NewEscalationJobs(monitor, cfg.Escalation).Register(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	tokenAuth := jwtauth.New("HS256", []byte(cfg.JWT.Secret), nil)

	router := appHTTP.NewRouter(
		tokenAuth,
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewCorrectionHandler(correctionSvc, monitor),
		appHTTP.NewPayrollHandler(payrollSvc),
	)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "addr", addr, "env", cfg.App.Env)
	if err := http.ListenAndServe(addr, router); err != nil {
		slog.Error("server stopped", "error", err)
	}
}
