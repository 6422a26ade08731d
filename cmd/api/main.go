package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"bakery/internal/config"
	"bakery/internal/domain/model"
	"bakery/internal/handler"
	"bakery/internal/infra/broker"
	"bakery/internal/infra/cache"
	"bakery/internal/infra/db"
	infraRepo "bakery/internal/infra/repository"
	"bakery/internal/middleware"
	"bakery/internal/outbox"
	"bakery/internal/realtime"
	"bakery/internal/server"
	"bakery/internal/usecase"
	"bakery/internal/validator"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	// .envは無くてもよい（本番は環境変数）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	e := server.New(cfg)
	logger := e.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Fatalf("db connect: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Fatalf("db migrate: %v", err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	reservationRepo := infraRepo.NewReservationGormRepository(gormDB)
	notificationRepo := infraRepo.NewNotificationGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//Redisが無ければキャッシュなし・単一インスタンス配信
	var store cache.Store = cache.NopStore{}
	rdb := cache.NewRedisClient(ctx, cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
		store = cache.NewRedisStore(rdb)
	} else if cfg.Redis.Addr != "" {
		logger.Warnf("redis %s unreachable; running without cache", cfg.Redis.Addr)
	}

	hub := realtime.NewHub(logger)
	var bridge *realtime.RedisBridge
	var publishers []outbox.Publisher
	if rdb != nil {
		bridge = realtime.NewRedisBridge(rdb, hub, logger)
		publishers = append(publishers, bridge)
	} else {
		publishers = append(publishers, hub)
	}

	switch cfg.Outbox.Broker {
	case "rabbitmq":
		p := broker.NewRabbitPublisher(cfg.Outbox.RabbitURL, cfg.Outbox.RabbitExchange)
		defer p.Close()
		publishers = append(publishers, p)
	case "kafka":
		p := broker.NewKafkaPublisher(cfg.Outbox.KafkaBrokers, cfg.Outbox.KafkaTopic)
		defer p.Close()
		publishers = append(publishers, p)
	}

	dispatcher := outbox.NewDispatcher(txm, publishers, outbox.Options{
		PollInterval: cfg.Outbox.PollInterval,
		BatchSize:    cfg.Outbox.BatchSize,
		MaxAttempts:  cfg.Outbox.MaxAttempts,
	}, logger)
	listener := db.NewListener(cfg.DSN(), model.OutboxChannel, dispatcher.Wake, logger)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(cfg, userRepo, rtRepo, auditRepo, validator.NewAuthValidator(userRepo))
	productUC := usecase.NewProductUsecase(productRepo, auditRepo, store, cfg.Cache.Prefix)
	cartUC := usecase.NewCartUsecase(cartRepo, cartRepo, productRepo)
	addressUC := usecase.NewAddressUsecase(addressRepo)
	orderUC := usecase.NewOrderUsecase(txm, addressRepo)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm)
	reservationUC := usecase.NewReservationUsecase(txm, reservationRepo, productRepo, store, cfg.Cache.SlotTTL)
	adminReservationUC := usecase.NewAdminReservationUsecase(txm, reservationRepo, store)
	notificationUC := usecase.NewNotificationUsecase(txm, notificationRepo, userRepo)
	auditUC := usecase.NewAuditUsecase(auditRepo)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := authUC.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logger.Fatalf("ensure admin: %v", err)
		}
	}

	//Handler生成
	productCache := middleware.ResponseCache(store, cfg.Cache.Prefix, cfg.Cache.TTL)
	server.RegisterRoutes(e, cfg, userRepo, server.Handlers{
		Auth:             handler.NewAuthHandler(authUC, cfg.CookieSecure),
		Product:          handler.NewProductHandler(productUC, productCache),
		Cart:             handler.NewCartHandler(cartUC),
		Address:          handler.NewAddressHandler(addressUC),
		Order:            handler.NewOrderHandler(orderUC),
		Reservation:      handler.NewReservationHandler(reservationUC),
		Notification:     handler.NewNotificationHandler(notificationUC),
		Realtime:         handler.NewRealtimeHandler(hub, cfg.FEURL),
		AdminOrder:       handler.NewAdminOrderHandler(adminOrderUC),
		AdminReservation: handler.NewAdminReservationHandler(adminReservationUC),
		AdminProduct:     handler.NewAdminProductHandler(productUC),
		AdminAudit:       handler.NewAdminAuditHandler(auditUC),
		AdminUser:        handler.NewAdminUserHandler(authUC),
	})

	//Server起動
	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Start(gctx, e, addr) })
	g.Go(func() error { return dispatcher.Run(gctx) })
	g.Go(func() error { return listener.Run(gctx) })
	if bridge != nil {
		g.Go(func() error { return bridge.Run(gctx) })
	}

	if err := g.Wait(); err != nil {
		logger.Errorf("shutdown: %v", err)
		os.Exit(1)
	}
	logger.Info("bye")
}
