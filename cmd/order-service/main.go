package main

import (
	"time"

	zlog "github.com/rs/zerolog/log"

	"stockflow/internal/pkg/bootstrap"
	"stockflow/internal/pkg/httpclient"
	"stockflow/internal/pkg/mq"
	"stockflow/internal/service/order/application"
	"stockflow/internal/service/order/application/reservation"
	"stockflow/internal/service/order/application/saga"
	"stockflow/internal/service/order/domain"
	"stockflow/internal/service/order/infrastructure"
	"stockflow/internal/service/order/infrastructure/adapter"
	"stockflow/internal/service/order/infrastructure/rule"
	"stockflow/internal/service/order/interfaces"
)

const (
	serviceName          = "order-service"
	inventoryServiceName = "inventory-service"
)

func main() {
	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8081,
		Setup:       setup,
	})
}

func setup(app *bootstrap.AppCtx) error {
	cfg := app.Config

	// 1. Storage
	var (
		orders domain.OrderRepository
		items  domain.ItemRepository
	)
	switch cfg.App.Storage {
	case bootstrap.StorageMemory:
		zlog.Warn().Msg("using in-memory order storage")
		orders = infrastructure.NewMemoryOrderRepository()
		items = infrastructure.NewMemoryItemRepository()
	default:
		db, err := bootstrap.OpenMySQL(cfg.Infra.MySQL, infrastructure.Models()...)
		if err != nil {
			return err
		}
		orders = infrastructure.NewGormOrderRepository(db)
		items = infrastructure.NewGormItemRepository(db)
		app.OnShutdown(func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		})
	}

	// 2. Inventory backend, discovered through nacos when available.
	inventoryURL := cfg.Domains.Inventory
	if app.Nacos != nil {
		if url, err := app.Nacos.DiscoverServiceURL(inventoryServiceName); err == nil {
			inventoryURL = url
		} else {
			zlog.Warn().Err(err).Str("fallback", inventoryURL).Msg("could not discover inventory-service")
		}
	}
	timeout := time.Duration(cfg.App.HTTPTimeoutMs) * time.Millisecond
	backend := adapter.NewInventoryHTTPAdapter(httpclient.NewClient(inventoryURL, timeout))
	reserver := reservation.NewClient(backend, reservation.Policy{
		MaxAttempts: cfg.App.Retry.MaxAttempts,
		Delay:       cfg.App.Retry.Delay(),
	}, app.Tracer)

	// 3. Saga and admission rule
	policy := saga.ReleaseReserved
	if cfg.App.Compensation == bootstrap.CompensateAllRequested {
		policy = saga.ReleaseRequested
	}
	orchestrator := saga.NewOrchestrator(orders, items, reserver, policy, app.Tracer)

	admission, err := rule.NewCELAdmission(cfg.App.OrderRule)
	if err != nil {
		return err
	}

	// 4. Order outcome events
	writer := mq.NewKafkaWriter(cfg.Infra.Kafka.Brokers)
	app.OnShutdown(func() { _ = writer.Close() })
	events := adapter.NewOrderEventKafkaAdapter(writer, cfg.Infra.Kafka.Topics.OrderEvents)

	svc := application.NewOrderApplicationService(orders, items, orchestrator, admission, events, app.Tracer)

	// 5. HTTP
	interfaces.NewOrderHandler(svc, app.Tracer).RegisterRoutes(app.Mux)
	zlog.Info().Str("inventory_url", inventoryURL).Str("compensation", string(policy)).Msg("order saga configured")
	return nil
}
