package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/vehicle-yard/internal/audit"
	"github.com/iliyamo/vehicle-yard/internal/config"
	"github.com/iliyamo/vehicle-yard/internal/database"
	"github.com/iliyamo/vehicle-yard/internal/handler"
	"github.com/iliyamo/vehicle-yard/internal/platelookup"
	"github.com/iliyamo/vehicle-yard/internal/queue"
	"github.com/iliyamo/vehicle-yard/internal/repository"
	"github.com/iliyamo/vehicle-yard/internal/router"
	"github.com/iliyamo/vehicle-yard/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the rate limiter and the response cache. nil is fine:
	// both middlewares turn themselves off without it.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and caching disabled")
	}

	// Repositories over the shared handle.
	vehicleRepo := repository.NewVehicleRepo(db)
	auditRepo := repository.NewAuditLogRepo(db)
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)

	// Audit pipeline: recorder writes entries and publishes them to the
	// broker, the engine reverts them, the consumer mirrors them to a
	// local file out-of-band.
	recorder := audit.NewRecorder(auditRepo, queue.NewPublisher())
	engine := audit.NewEngine(vehicleRepo, auditRepo, recorder)
	svc := service.NewVehicleService(vehicleRepo, recorder)

	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			log.Printf("audit consumer stopped: %v", err)
		}
	}()

	h := router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, userRepo, tokenRepo, svc),
		Vehicles: handler.NewVehicleHandler(svc, vehicleRepo),
		Audit:    handler.NewAuditHandler(auditRepo, engine),
		Export:   handler.NewExportHandler(vehicleRepo),
		Stats:    handler.NewStatsHandler(vehicleRepo),
		Plates:   handler.NewPlateHandler(platelookup.NewClient(cfg.PlateAPIToken)),
	}

	e := echo.New()
	router.RegisterRoutes(e, h, cfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
