package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/tu-usuario/servitec-api/docs"
	"github.com/tu-usuario/servitec-api/internal/application/archive"
	"github.com/tu-usuario/servitec-api/internal/application/auth"
	"github.com/tu-usuario/servitec-api/internal/application/jobs"
	"github.com/tu-usuario/servitec-api/internal/application/orders"
	"github.com/tu-usuario/servitec-api/internal/application/stock"
	"github.com/tu-usuario/servitec-api/internal/application/usecase"
	"github.com/tu-usuario/servitec-api/internal/domain/authz"
	"github.com/tu-usuario/servitec-api/internal/domain/workflow"
	"github.com/tu-usuario/servitec-api/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/servitec-api/internal/interfaces/http"
	"github.com/tu-usuario/servitec-api/pkg/config"
	"github.com/tu-usuario/servitec-api/pkg/logger"
)

// @title        ServiTec API
// @version      1.0
// @description  Gestión de órdenes de servicio técnico e inventario de repuestos.
// @securityDefinitions.apikey Bearer
// @in   header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	// ctx gobierna el pool y los trabajos en segundo plano; se cancela en el
	// apagado para que el goroutine del escaneo termine antes que el servidor.
	ctx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	equipmentRepo := postgres.NewEquipmentRepository(pool)
	partRepo := postgres.NewPartRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	catalogRepo := postgres.NewCatalogServiceRepository(pool)
	orderRepo := postgres.NewServiceOrderRepository(pool)
	itemRepo := postgres.NewOrderItemRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	archiver := archive.NewArchiver(log)
	ledgerUC := stock.NewLedgerUseCase(txRunner, partRepo, movementRepo, log)

	machine := workflow.NewMachine(workflow.DefaultTable())
	gate := authz.NewGate()
	orderUC := orders.NewUseCase(
		txRunner, orderRepo, itemRepo,
		clientRepo, equipmentRepo, partRepo, catalogRepo,
		ledgerUC, gate, machine, log,
	)

	clientUC := usecase.NewClientUseCase(clientRepo, orderRepo, archiver)
	equipmentUC := usecase.NewEquipmentUseCase(equipmentRepo, clientRepo)
	partUC := usecase.NewPartUseCase(partRepo, archiver)
	catalogUC := usecase.NewCatalogUseCase(catalogRepo)
	notificationUC := usecase.NewNotificationUseCase(notificationRepo)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	// Escaneo periódico de órdenes vencidas (aprobación y retiro).
	if cfg.Jobs.ScanIntervalMinutes > 0 {
		scan := jobs.NewExpirationScan(
			orderRepo, notificationRepo, log,
			time.Duration(cfg.Jobs.ApprovalDeadlineDays)*24*time.Hour,
			time.Duration(cfg.Jobs.AbandonDeadlineDays)*24*time.Hour,
		)
		scan.Start(ctx, time.Duration(cfg.Jobs.ScanIntervalMinutes)*time.Minute)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "ServiTec API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:         authUC,
		ClientUC:       clientUC,
		EquipmentUC:    equipmentUC,
		PartUC:         partUC,
		CatalogUC:      catalogUC,
		NotificationUC: notificationUC,
		Ledger:         ledgerUC,
		OrderUC:        orderUC,
		JWTSecret:      cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stopBackground()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
