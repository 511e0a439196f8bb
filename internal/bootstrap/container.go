package bootstrap

import (
	"context"
	"log"

	"regdesk-be/internal/config"
	"regdesk-be/internal/controller"
	"regdesk-be/internal/handler"
	"regdesk-be/internal/pkg/logger"
	"regdesk-be/internal/pkg/mailer"
	"regdesk-be/internal/pkg/metrics"
	"regdesk-be/internal/repository/unitofwork"
	"regdesk-be/internal/service"
	"regdesk-be/internal/websocket"
	"regdesk-be/pkg/admin/category"
	"regdesk-be/pkg/admin/dashboard"
	adminEvents "regdesk-be/pkg/admin/events"
	"regdesk-be/pkg/admin/expiry"
	"regdesk-be/pkg/admin/lifecycle"
	"regdesk-be/pkg/admin/notify"
	"regdesk-be/pkg/admin/transfer"
	"regdesk-be/pkg/changefeed"
	pktNats "regdesk-be/pkg/nats"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	RegistrationController controller.IRegistrationController
	CategoryController     controller.ICategoryController
	TransferController     controller.ITransferController
	AdminController        controller.IAdminController

	// Background workers (started by main.go)
	Aggregator    *notify.Aggregator
	Bridge        *changefeed.Bridge
	ActivityRelay *service.ActivityRelay

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub

	Logger   *logger.ZapLogger
	natsConn *nats.Conn
	redis    *redis.Client
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.IsProduction())
	alertLogger := logger.NewIsolatedLogger(cfg.App.AlertLogFilePath)
	appMetrics := metrics.New(prometheus.DefaultRegisterer)
	location := cfg.App.Location()

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.SMTP.SenderName,
	)

	// Every instance stamps its own id on what it publishes
	origin := uuid.NewString()

	// 2. Infrastructure
	// NATS is optional: without it events are dropped and the feed stays local
	var natsPub *pktNats.Publisher
	var natsSub *pktNats.Subscriber
	nc, err := pktNats.Connect(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS: %v", err)
	} else {
		if natsPub, err = pktNats.NewPublisher(nc, origin); err != nil {
			log.Printf("[WARN] Failed to create NATS Publisher: %v", err)
			natsPub = nil
		}
		if natsSub, err = pktNats.NewSubscriber(nc); err != nil {
			log.Printf("[WARN] Failed to create NATS Subscriber: %v", err)
			natsSub = nil
		}
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsHub := websocket.NewHub(rdb, origin, alertLogger)

	// Change feed: local writes plus a bridge for other instances
	feed := changefeed.NewWatermillFeed(changefeed.NewGoChannel(), sysLogger)
	var bridge *changefeed.Bridge
	if natsSub != nil {
		bridge = changefeed.NewBridge(natsSub, feed, origin, sysLogger)
	}

	eventPublisher := adminEvents.NewNatsPublisher(natsPub, sysLogger)

	// 3. Domain managers
	classifier := expiry.NewClassifier(cfg.Notification.SoonWindowDays)
	directory := category.NewDirectory(uowFactory, sysLogger)
	lifecycleManager := lifecycle.NewManager(directory, feed, eventPublisher, appMetrics, sysLogger)
	transferWorkflow := transfer.NewWorkflow(directory, eventPublisher, appMetrics, sysLogger)

	aggregator := notify.NewAggregator(
		notify.NewStoreSource(uowFactory),
		feed,
		notify.Surfacers{
			service.HubSurfacer(wsHub),
			service.EmailSurfacer(emailService, cfg.SMTP.DigestRecipient,
				service.NewRedisDigestGate(rdb, origin, alertLogger), location, alertLogger),
			service.EventSurfacer(eventPublisher),
		},
		notify.Config{
			PollInterval: cfg.Notification.PollInterval,
			SurfaceDelay: cfg.Notification.SurfaceDelay,
			Classifier:   classifier,
		},
		appMetrics,
		alertLogger,
	)
	dashboardAggregator := dashboard.NewAggregator(aggregator, sysLogger)

	// 4. Services
	registrationService := service.NewRegistrationService(uowFactory, lifecycleManager, classifier, location, sysLogger)
	categoryService := service.NewCategoryService(uowFactory, directory)
	transferService := service.NewTransferService(uowFactory, transferWorkflow, directory)
	notificationService := service.NewNotificationService(aggregator, alertLogger)
	adminService := service.NewAdminService(uowFactory, sysLogger, dashboardAggregator)

	var relay *service.ActivityRelay
	if natsSub != nil {
		relay = service.NewActivityRelay(natsSub, wsHub, alertLogger)
	}

	return &Container{
		RegistrationController: controller.NewRegistrationController(registrationService),
		CategoryController:     controller.NewCategoryController(categoryService),
		TransferController:     controller.NewTransferController(transferService),
		AdminController:        controller.NewAdminController(adminService),

		Aggregator:    aggregator,
		Bridge:        bridge,
		ActivityRelay: relay,

		NotificationHandler: handler.NewNotificationHandler(notificationService, wsHub, alertLogger),
		WebSocketHub:        wsHub,

		Logger:   sysLogger,
		natsConn: nc,
		redis:    rdb,
	}
}

// Start runs the background workers until ctx is cancelled. The returned
// function stops the subscriptions that were opened.
func (c *Container) Start(ctx context.Context) (func(), error) {
	go c.WebSocketHub.Run(ctx)

	var stops []func()
	if c.Bridge != nil {
		stop, err := c.Bridge.Start(ctx)
		if err != nil {
			c.Logger.Warn("BOOTSTRAP", "Change bridge not started", map[string]interface{}{"error": err.Error()})
		} else {
			stops = append(stops, stop)
		}
	}
	if c.ActivityRelay != nil {
		stop, err := c.ActivityRelay.Start(ctx)
		if err != nil {
			c.Logger.Warn("BOOTSTRAP", "Activity relay not started", map[string]interface{}{"error": err.Error()})
		} else {
			stops = append(stops, stop)
		}
	}
	if err := c.Aggregator.Start(ctx); err != nil {
		for _, stop := range stops {
			stop()
		}
		return nil, err
	}

	return func() {
		for _, stop := range stops {
			stop()
		}
	}, nil
}

// Close releases connections in reverse order of creation. Publisher and
// subscriber share the one NATS connection.
func (c *Container) Close() {
	c.Aggregator.Close()
	if c.natsConn != nil {
		c.natsConn.Close()
	}
	if c.redis != nil {
		_ = c.redis.Close()
	}
	_ = c.Logger.Sync()
}
