package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/HSouheill/dealership_backend/commission"
	"github.com/HSouheill/dealership_backend/config"
	"github.com/HSouheill/dealership_backend/controllers"
	"github.com/HSouheill/dealership_backend/middleware"
	"github.com/HSouheill/dealership_backend/repositories"
	"github.com/HSouheill/dealership_backend/routes"
	"github.com/HSouheill/dealership_backend/services"
	"github.com/HSouheill/dealership_backend/websocket"
)

// newEngine builds the commission engine from configuration
func newEngine(cfg config.Config) (*commission.Engine, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	policy := commission.RatePolicy{
		Rate:    decimal.NewFromFloat(cfg.CommissionBaseRate),
		Minimum: decimal.NewFromFloat(cfg.CommissionMinimum),
	}
	settings := commission.Settings{
		KeyRoleName:          cfg.KeyRoleName,
		WeeklyBonusThreshold: cfg.WeeklyBonusThreshold,
		WeeklyBonusPerUnit:   decimal.NewFromFloat(cfg.WeeklyBonusPerUnit),
		Location:             loc,
	}
	return commission.NewEngine(policy, settings), nil
}

// openAdjustmentStore picks the key-value store holding hand-entered report
// state. Redis falls back to Mongo when unreachable. The returned func
// releases the store.
func openAdjustmentStore(cfg config.Config, db *mongo.Database) (repositories.KVStore, string, func(), error) {
	noop := func() {}
	switch cfg.AdjustmentStore {
	case config.StoreRedis:
		if client := config.ConnectRedis(cfg); client != nil {
			return repositories.NewRedisKVStore(client), config.StoreRedis, func() { client.Close() }, nil
		}
		log.Println("Warning: falling back to the Mongo adjustment store")
		fallthrough
	case config.StoreMongo:
		if db == nil {
			log.Println("Warning: no database, adjustments will only live in memory")
			return repositories.NewMemoryKVStore(), config.StoreMemory, noop, nil
		}
		return repositories.NewMongoKVStore(db), config.StoreMongo, noop, nil
	case config.StoreSQLite:
		store, err := repositories.OpenSQLiteKVStore(cfg.SQLitePath)
		if err != nil {
			return nil, "", noop, err
		}
		return store, config.StoreSQLite, func() { store.Close() }, nil
	default:
		return repositories.NewMemoryKVStore(), config.StoreMemory, noop, nil
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	engine, err := newEngine(cfg)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Connect to database
	client, err := config.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("MongoDB connection error: %v", err)
	}
	defer client.Disconnect(context.Background())
	db := client.Database(cfg.DBName)

	reportLogs := repositories.NewReportLogRepository(db)
	indexCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := reportLogs.EnsureIndexes(indexCtx); err != nil {
		log.Printf("Warning: failed to create report log indexes: %v", err)
	}
	cancel()

	store, storeName, closeStore, err := openAdjustmentStore(cfg, db)
	if err != nil {
		log.Fatalf("Adjustment store error: %v", err)
	}
	defer closeStore()
	log.Printf("Using %s adjustment store", storeName)

	// Create WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	adjustments := services.NewAdjustmentManager(store, cfg.CollectionsBonusTiers)
	reportService := services.NewReportService(engine, repositories.NewSaleRepository(db), reportLogs, adjustments, wsHub)
	reportController := controllers.NewCommissionReportController(reportService, wsHub)

	e := echo.New()
	e.Validator = controllers.NewValidator()

	rateLimiter := middleware.NewRateLimiter()

	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.NewCORSConfig(cfg.CORSAllowedOrigins)))
	e.Use(middleware.SecurityHeaders())
	e.Use(rateLimiter.RateLimit())

	routes.RegisterHealthRoutes(e, storeName)
	routes.RegisterCommissionRoutes(e, cfg.JWTSecret, reportController)

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
