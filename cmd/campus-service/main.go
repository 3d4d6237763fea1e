package main

import (
	"context"
	"net/http"

	"campus/internal/gateway/push"
	"campus/internal/pkg/bootstrap"
	"campus/internal/pkg/gormdb"
	"campus/internal/pkg/httpclient"
	"campus/internal/pkg/logger"
	"campus/internal/pkg/mq"
	"campus/internal/pkg/redisclient"
	"campus/internal/zookeeper"

	checkoutapp "campus/internal/service/checkout/application"
	checkoutport "campus/internal/service/checkout/domain/port"
	checkoutinfra "campus/internal/service/checkout/infrastructure"
	checkoutadapter "campus/internal/service/checkout/infrastructure/adapter"
	checkoutifaces "campus/internal/service/checkout/interfaces"
	reservationapp "campus/internal/service/reservation/application"
	reservationdomain "campus/internal/service/reservation/domain"
	reservationinfra "campus/internal/service/reservation/infrastructure"
	reservationadapter "campus/internal/service/reservation/infrastructure/adapter"
	"campus/internal/service/reservation/infrastructure/rule"
	reservationifaces "campus/internal/service/reservation/interfaces"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
)

const serviceName = "campus-service"

// main 函数是应用的"组装根" (Composition Root)
// 它的核心职责是：创建并组装所有依赖项，然后启动应用。
func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()
	log := logger.Logger()

	// MySQL
	db, err := gormdb.Open(cfg.Infra.Mysql.Addr, cfg.Infra.Mysql.User, cfg.Infra.Mysql.Password, cfg.Infra.Mysql.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MySQL")
	}
	if err := db.AutoMigrate(
		&reservationinfra.ResourceModel{},
		&reservationinfra.ReservationModel{},
		&checkoutinfra.OrderModel{},
		&checkoutinfra.PaymentModel{},
		&checkoutinfra.StockLineModel{},
	); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate schema")
	}

	// ZooKeeper，预约槽位锁依赖它
	zkConn, err := zookeeper.Connect(cfg.Infra.Zookeeper.Servers)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to ZooKeeper")
	}

	// Redis，资源读缓存，连不上时直接失败而不是静默降级
	redisClient, err := redisclient.New(cfg.Infra.Redis.Addrs)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}

	// Kafka
	checkoutWriter := mq.NewWriter(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.CheckoutTopic)

	tracer := otel.Tracer(serviceName)

	// ---- 预约服务 ----
	policyEngine, err := rule.NewCelPolicyEngine(cfg.Reservation.TenantPolicies)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to compile tenant booking policies")
	}

	var resources reservationdomain.ResourceRepository = reservationinfra.NewGormResourceRepository(db)
	resources = reservationadapter.NewResourceRedisCache(resources, redisClient)

	reservationService := reservationapp.NewReservationService(
		resources,
		reservationinfra.NewGormReservationRepository(db),
		reservationadapter.NewZkSlotLocker(zkConn),
		policyEngine,
		tracer,
	)
	reservationHandler := reservationifaces.NewReservationHandler(reservationService)

	// ---- 结算服务 ----
	hub := push.NewHub()
	publisher := checkoutadapter.NewFanoutPublisher(
		checkoutadapter.NewCheckoutKafkaPublisher(checkoutWriter),
		hub,
	)

	var gateway checkoutport.PaymentGateway = checkoutadapter.NewStubPaymentGateway()
	if cfg.Checkout.PaymentGatewayURL != "" {
		gateway = checkoutadapter.NewHTTPPaymentGateway(httpclient.NewClient(tracer), cfg.Checkout.PaymentGatewayURL)
	}

	checkoutService := checkoutapp.NewCheckoutApplicationService(
		checkoutinfra.NewGormOrderRepository(db),
		checkoutinfra.NewGormPaymentRepository(db),
		checkoutinfra.NewGormStockRepository(db),
		gateway,
		publisher,
		tracer,
	)
	checkoutHandler := checkoutifaces.NewCheckoutHandler(checkoutService)
	pushHandler := push.NewHandler(hub)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        cfg.App.Port,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			appCtx.Mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
			appCtx.Mux.Handle("/metrics", promhttp.Handler())
			reservationHandler.RegisterRoutes(appCtx.Mux)
			checkoutHandler.RegisterRoutes(appCtx.Mux)
			pushHandler.RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: func(ctx context.Context) {
			if err := checkoutWriter.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing kafka writer")
			}
			if err := redisClient.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing redis client")
			}
			zkConn.Close()
		},
	})
}
