package main

import (
	"time"

	zlog "github.com/rs/zerolog/log"

	"stockflow/internal/pkg/bootstrap"
	"stockflow/internal/pkg/httpclient"
	"stockflow/internal/pkg/mq"
	"stockflow/internal/service/store/application"
	"stockflow/internal/service/store/domain"
	"stockflow/internal/service/store/infrastructure"
	"stockflow/internal/service/store/infrastructure/adapter"
	"stockflow/internal/service/store/infrastructure/cache"
	"stockflow/internal/service/store/interfaces"
)

const (
	serviceName      = "store-service"
	orderServiceName = "order-service"
	defaultGroupID   = "store-service-replica"
)

func main() {
	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8083,
		Setup:       setup,
	})
}

func setup(app *bootstrap.AppCtx) error {
	cfg := app.Config

	// 1. Replica storage, optionally behind redis.
	var (
		products   domain.ProductRepository
		categories domain.CategoryRepository
	)
	switch cfg.App.Storage {
	case bootstrap.StorageMemory:
		zlog.Warn().Msg("using in-memory replica storage, replica is rebuilt from the topics on restart")
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
	if cfg.Infra.Redis.Addr != "" {
		rdb, err := bootstrap.OpenRedis(app.Ctx, cfg.Infra.Redis)
		if err != nil {
			return err
		}
		products = cache.NewCachedProductRepository(products, rdb, time.Duration(cfg.Infra.Redis.TTLSeconds)*time.Second)
		app.OnShutdown(func() { _ = rdb.Close() })
	}

	// 2. Stock feed
	feed := interfaces.NewStockFeed()
	feed.RegisterRoutes(app.Mux)
	app.Go("stock-feed", feed.Run)

	// 3. Replica consumers; failures go to the dead-letter topic.
	syncSvc := application.NewSyncService(products, categories, feed, app.Tracer)
	handlers := interfaces.NewReplicaHandlers(syncSvc)

	writer := mq.NewKafkaWriter(cfg.Infra.Kafka.Brokers)
	app.OnShutdown(func() { _ = writer.Close() })
	failures := mq.NewFailureHandler(writer, cfg.Infra.Kafka.Topics.DeadLetter)

	groupID := cfg.Infra.Kafka.GroupID
	if groupID == "" {
		groupID = defaultGroupID
	}
	topics := cfg.Infra.Kafka.Topics
	for topic, handle := range map[string]mq.HandlerFunc{
		topics.NewInventory:     handlers.Inventory(),
		topics.InventoryUpdated: handlers.Inventory(),
		topics.NewCategory:      handlers.Category(),
	} {
		consumer := mq.NewConsumer(mq.NewKafkaReader(cfg.Infra.Kafka.Brokers, topic, groupID), handle, failures)
		app.Go("consumer-"+topic, consumer.Run)
		app.OnShutdown(func() { _ = consumer.Close() })
	}

	// 4. Product API and order proxy
	orderURL := cfg.Domains.Order
	if app.Nacos != nil {
		if url, err := app.Nacos.DiscoverServiceURL(orderServiceName); err == nil {
			orderURL = url
		} else {
			zlog.Warn().Err(err).Str("fallback", orderURL).Msg("could not discover order-service")
		}
	}
	gateway := adapter.NewOrderHTTPGateway(httpclient.NewClient(orderURL, time.Duration(cfg.App.HTTPTimeoutMs)*time.Millisecond))
	interfaces.NewStoreHandler(application.NewQueryService(products), gateway, app.Tracer).RegisterRoutes(app.Mux)
	return nil
}
