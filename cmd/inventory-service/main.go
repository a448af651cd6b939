package main

import (
	"time"

	"github.com/pkg/errors"
	zlog "github.com/rs/zerolog/log"

	"stockflow/internal/pkg/bootstrap"
	"stockflow/internal/pkg/keylock"
	"stockflow/internal/pkg/mq"
	"stockflow/internal/pkg/zookeeper"
	"stockflow/internal/service/inventory/application"
	"stockflow/internal/service/inventory/domain"
	"stockflow/internal/service/inventory/domain/port"
	"stockflow/internal/service/inventory/infrastructure"
	"stockflow/internal/service/inventory/infrastructure/adapter"
	"stockflow/internal/service/inventory/interfaces"
)

const serviceName = "inventory-service"

func main() {
	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8082,
		Setup:       setup,
	})
}

func setup(app *bootstrap.AppCtx) error {
	cfg := app.Config

	// 1. Storage
	var (
		products   domain.ProductRepository
		categories domain.CategoryRepository
	)
	switch cfg.App.Storage {
	case bootstrap.StorageMemory:
		zlog.Warn().Msg("using in-memory ledger storage, stock is lost on restart")
		products = infrastructure.NewMemoryProductRepository()
		categories = infrastructure.NewMemoryCategoryRepository()
	default:
		db, err := bootstrap.OpenMySQL(cfg.Infra.MySQL, infrastructure.Models()...)
		if err != nil {
			return err
		}
		products = infrastructure.NewGormProductRepository(db)
		categories = infrastructure.NewGormCategoryRepository(db)
		app.OnShutdown(func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		})
	}

	// 2. Per-product lock: zookeeper across replicas, in-process otherwise.
	var locker port.Locker = keylock.New()
	if servers := cfg.Infra.Zookeeper.Servers; len(servers) > 0 {
		conn, err := zookeeper.Connect(servers, 5*time.Second)
		if err != nil {
			return errors.Wrap(err, "connect zookeeper")
		}
		zkLocker := zookeeper.NewLocker(conn)
		locker = zkLocker
		app.OnShutdown(zkLocker.Close)
	}

	// 3. Event publisher
	writer := mq.NewKafkaWriter(cfg.Infra.Kafka.Brokers)
	app.OnShutdown(func() { _ = writer.Close() })

	topics := application.Topics{
		NewInventory:     cfg.Infra.Kafka.Topics.NewInventory,
		InventoryUpdated: cfg.Infra.Kafka.Topics.InventoryUpdated,
		NewCategory:      cfg.Infra.Kafka.Topics.NewCategory,
	}
	svc := application.NewInventoryService(products, categories, adapter.NewEventKafkaAdapter(writer), locker, topics, app.Tracer)

	// 4. HTTP
	interfaces.NewInventoryHandler(svc, app.Tracer).RegisterRoutes(app.Mux)
	return nil
}
