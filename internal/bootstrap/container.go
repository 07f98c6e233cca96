package bootstrap

import (
	"context"
	"time"

	"notevault-be/internal/config"
	"notevault-be/internal/controller"
	"notevault-be/internal/entity"
	bus "notevault-be/internal/events"
	"notevault-be/internal/handler"
	"notevault-be/internal/pkg/cache"
	"notevault-be/internal/pkg/logger"
	"notevault-be/internal/pkg/mailer"
	"notevault-be/internal/pkg/metrics"
	"notevault-be/internal/pkg/storage"
	"notevault-be/internal/repository/unitofwork"
	"notevault-be/internal/scheduler"
	"notevault-be/internal/service"
	"notevault-be/internal/websocket"
	pktNats "notevault-be/pkg/nats"
	"notevault-be/pkg/query"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController     controller.IAuthController
	NoteController     controller.INoteController
	SharingController  controller.ISharingController
	CategoryController controller.ICategoryController
	TagController      controller.ITagController
	TemplateController controller.ITemplateController
	ExportController   controller.IExportController
	ReportController   controller.IReportController

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
	NotificationService *service.NotificationService

	// Infrastructure shared with the server
	Logger  logger.ILogger
	Metrics *metrics.Metrics
	Redis   redis.UniversalClient
	Audit   *service.AuditService
	Bus     *bus.Bus

	// Scheduler is nil when background jobs are disabled.
	Scheduler *scheduler.Scheduler

	natsPub *pktNats.Publisher
	natsSub *pktNats.Subscriber
}

func NewContainer(db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger) (*Container, error) {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	appMetrics := metrics.NewMetrics("notevault")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
		cfg.App.ClientURL,
	)

	fileStorage, err := storage.NewLocalStorage(cfg.Upload.Dir, cfg.Upload.MaxFileSize, cfg.Upload.AllowedTypes)
	if err != nil {
		return nil, err
	}
	janitor := service.NewFileJanitor(fileStorage, appMetrics, sysLogger)

	// 2. Infrastructure
	rdb := connectRedis(cfg.App.RedisURL, sysLogger)
	var store cache.Store = cache.NewMemoryStore(cfg.Cache.TTL)
	if rdb != nil {
		store = cache.NewRedisStore(rdb)
	}
	cacheCoordinator := cache.NewCoordinator(store, cfg.Cache.TTL, sysLogger, appMetrics)

	eventBus := bus.NewBus(sysLogger)

	// NATS is optional; nil pointers must not leak into interface values.
	var (
		publisher  service.EventPublisher
		subscriber service.EventSubscriber
	)
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		sysLogger.Warn("Bootstrap", "Failed to connect to NATS Publisher", map[string]interface{}{"error": err.Error()})
	} else {
		publisher = natsPub
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		sysLogger.Warn("Bootstrap", "Failed to connect to NATS Subscriber", map[string]interface{}{"error": err.Error()})
	} else {
		subscriber = natsSub
	}

	// 3. Query composers
	pagination := cfg.Pagination
	listComposer := query.MustNew(query.Options{
		Alias:        "notes",
		DefaultLimit: pagination.DefaultLimit,
		MaxLimit:     pagination.MaxLimit,
		SortFields:   []string{"created_at", "updated_at", "title", "is_pinned"},
		DefaultSort:  "created_at",
	})
	trashComposer := query.MustNew(query.Options{
		Alias:        "notes",
		DefaultLimit: pagination.DefaultLimit,
		MaxLimit:     pagination.MaxLimit,
		SortFields:   []string{"deleted_at", "created_at", "updated_at", "title"},
		DefaultSort:  "deleted_at",
	})
	notificationPager := query.MustNew(query.Options{
		DefaultLimit: pagination.DefaultLimit,
		MaxLimit:     pagination.MaxLimit,
		SortFields:   []string{"created_at"},
		DefaultSort:  "created_at",
	})

	// 4. Services
	authService := service.NewAuthService(uowFactory, cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, sysLogger)
	auditService := service.NewAuditService(uowFactory, sysLogger)

	noteService := service.NewNoteService(uowFactory, cacheCoordinator, eventBus, janitor, listComposer, trashComposer, sysLogger)
	lifecycleService := service.NewLifecycleService(uowFactory, cacheCoordinator, eventBus, janitor, sysLogger)
	attachmentService := service.NewAttachmentService(uowFactory, fileStorage, cacheCoordinator, janitor)
	categoryService := service.NewCategoryService(uowFactory, cacheCoordinator)
	tagService := service.NewTagService(uowFactory, cacheCoordinator)
	templateService := service.NewTemplateService(uowFactory, noteService)
	exportService := service.NewExportService(uowFactory, cacheCoordinator)
	reportService := service.NewReportService(uowFactory, emailService, sysLogger)

	// 5. Realtime + notifications
	wsLogger := logger.NewIsolatedLogger(cfg.App.RealtimeLogPath)
	var sharingService service.ISharingService
	noteAccess := func(ctx context.Context, noteID, userID uuid.UUID) error {
		_, err := sharingService.ResolveAccess(ctx, noteID, userID, entity.PermissionRead)
		return err
	}
	wsHub := websocket.NewHub(rdb, noteAccess, wsLogger)

	notifService := service.NewNotificationService(uowFactory, publisher, subscriber, wsHub, emailService, notificationPager, wsLogger)
	sharingService = service.NewSharingService(uowFactory, cacheCoordinator, notifService, sysLogger)

	notifHandler := handler.NewNotificationHandler(notifService, wsHub, cfg.Auth.JWTSecret, wsLogger)

	var jobs *scheduler.Scheduler
	if cfg.Jobs.Enabled {
		sweeper := service.NewUploadSweeper(uowFactory, fileStorage, janitor, cfg.Jobs.OrphanUploadMaxAge, sysLogger)
		jobs = newScheduler(cfg.Jobs, reportService, sweeper, appMetrics, sysLogger)
	}

	// 6. Controllers
	return &Container{
		AuthController:     controller.NewAuthController(authService),
		NoteController:     controller.NewNoteController(noteService, lifecycleService, attachmentService, cacheCoordinator, fileStorage, cfg.Upload.MaxFiles),
		SharingController:  controller.NewSharingController(sharingService),
		CategoryController: controller.NewCategoryController(categoryService, lifecycleService, cacheCoordinator),
		TagController:      controller.NewTagController(tagService, cacheCoordinator),
		TemplateController: controller.NewTemplateController(templateService),
		ExportController:   controller.NewExportController(exportService),
		ReportController:   controller.NewReportController(reportService),

		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
		NotificationService: notifService,

		Logger:  sysLogger,
		Metrics: appMetrics,
		Redis:   rdb,
		Audit:   auditService,
		Bus:     eventBus,

		Scheduler: jobs,

		natsPub: natsPub,
		natsSub: natsSub,
	}, nil
}

// Start runs the background workers until ctx is done.
func (c *Container) Start(ctx context.Context) error {
	go c.WebSocketHub.Run(ctx)
	if err := c.Bus.SubscribeNoteChanged(ctx, c.WebSocketHub.NoteChanged); err != nil {
		return err
	}
	c.NotificationService.Start()
	if c.Scheduler != nil {
		go c.Scheduler.Run(ctx)
	}
	return nil
}

func (c *Container) Close() {
	if c.natsSub != nil {
		c.natsSub.Close()
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	if err := c.Bus.Close(); err != nil {
		c.Logger.Warn("Bootstrap", "Failed to close event bus", map[string]interface{}{"error": err.Error()})
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}

// connectRedis returns nil when Redis is unreachable; callers fall back to
// in-process state.
func connectRedis(url string, log logger.ILogger) redis.UniversalClient {
	if url == "" {
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("Bootstrap", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("Bootstrap", "Failed to connect to Redis, using in-memory cache", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return nil
	}
	return rdb
}
