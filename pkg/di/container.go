package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"nextup-api/application/serviceimpl"
	"nextup-api/domain/ports"
	"nextup-api/domain/repositories"
	"nextup-api/domain/services"
	"nextup-api/infrastructure/ai"
	"nextup-api/infrastructure/identity"
	"nextup-api/infrastructure/memstore"
	"nextup-api/infrastructure/messaging"
	natspkg "nextup-api/infrastructure/nats"
	"nextup-api/infrastructure/postgres"
	redispkg "nextup-api/infrastructure/redis"
	"nextup-api/infrastructure/websocket"
	"nextup-api/interfaces/api/handlers"
	"nextup-api/pkg/config"
	"nextup-api/pkg/logger"
	"nextup-api/pkg/scheduler"
)

// runStateTTL อายุของ run state ที่เก็บนอก process
const runStateTTL = time.Hour

type Container struct {
	// Configuration
	Config *config.Config

	// Infrastructure
	DB             *gorm.DB
	MemStore       *memstore.Store     // STORE_DRIVER=memory
	RedisClient    *redispkg.Client    // folder lock + run state (optional)
	NATSClient     *natspkg.Client     // task events fan-out + run state KV (optional)
	NATSSubscriber *natspkg.Subscriber // เก็บ concrete type สำหรับ cleanup
	Ranker         *ai.GeminiRanker
	EventScheduler scheduler.EventScheduler

	// Repositories
	UserRepository   repositories.UserRepository
	FolderRepository repositories.FolderRepository
	TaskRepository   repositories.TaskRepository
	BatchWriter      ports.BatchWriterPort // storage writer ที่ publish folder_changed หลัง commit

	// Ports
	EventPublisher  ports.TaskEventPublisherPort
	EventSubscriber ports.TaskEventSubscriberPort
	FolderLock      ports.FolderLockPort
	RunStateStore   ports.RunStateStorePort
	SavingIndicator ports.SavingIndicatorPort

	// Services
	CommitExecutor        *serviceimpl.CommitExecutor
	SweepService          *serviceimpl.StalenessSweepService
	Tracker               *serviceimpl.PrioritizationTracker
	UserService           services.UserService
	FolderService         services.FolderService
	TaskService           services.TaskService
	PrioritizationService services.PrioritizationService

	// WebSocket
	TaskBroadcaster *websocket.TaskBroadcaster
}

func NewContainer() *Container {
	return &Container{}
}

// Initialize สร้างทุกอย่างสำหรับ API server
func (c *Container) Initialize() error {
	if err := c.InitializeForCLI(); err != nil {
		return err
	}

	if err := c.initScheduler(); err != nil {
		return err
	}

	if err := c.initStuckDetector(); err != nil {
		return err
	}

	if err := c.initTaskBroadcaster(); err != nil {
		return err
	}

	return nil
}

// InitializeForCLI ไม่มี scheduler และ WebSocket broadcaster
// events ยังถูก publish ผ่าน NATS ถ้าเชื่อมต่อได้ ให้ client ที่เปิดอยู่เห็นผล
func (c *Container) InitializeForCLI() error {
	if err := c.initConfig(); err != nil {
		return err
	}

	if err := c.initLogger(); err != nil {
		return err
	}

	if err := c.initInfrastructure(); err != nil {
		return err
	}

	if err := c.initRepositories(); err != nil {
		return err
	}

	c.initPorts()

	if err := c.initServices(); err != nil {
		return err
	}

	return nil
}

func (c *Container) initConfig() error {
	if c.Config != nil {
		return nil
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	c.Config = cfg
	return nil
}

func (c *Container) initLogger() error {
	logConfig := logger.Config{
		Level:      c.Config.Log.Level,
		Format:     c.Config.Log.Format,
		Output:     c.Config.Log.Output,
		FilePath:   c.Config.Log.FilePath,
		MaxSize:    c.Config.Log.MaxSize,
		MaxBackups: c.Config.Log.MaxBackups,
		MaxAge:     c.Config.Log.MaxAge,
		Compress:   c.Config.Log.Compress,
	}

	if err := logger.Init(logConfig); err != nil {
		return err
	}

	logger.Info("Logger initialized",
		"level", c.Config.Log.Level,
		"format", c.Config.Log.Format,
		"output", c.Config.Log.Output,
	)
	return nil
}

func (c *Container) initInfrastructure() error {
	if c.Config.UseMemoryStore() {
		c.MemStore = memstore.New()
		logger.Warn("Using in-memory store (data is lost on restart)")
	} else {
		if err := c.initDatabase(); err != nil {
			return err
		}
	}

	// Redis (optional - graceful degradation)
	if c.Config.Redis.Enabled && c.Config.Redis.URL != "" {
		redisClient, err := redispkg.NewClient(&c.Config.Redis)
		if err != nil {
			logger.Warn("Redis client initialization failed (in-process locks)", "error", err)
		} else {
			c.RedisClient = redisClient
		}
	}

	// NATS (optional - graceful degradation)
	if c.Config.NATS.Enabled && c.Config.NATS.URL != "" {
		natsClient, err := natspkg.NewClient(natspkg.ClientConfig{
			URL:         c.Config.NATS.URL,
			RunStateTTL: runStateTTL,
		})
		if err != nil {
			logger.Warn("NATS client initialization failed (in-process events)", "error", err)
		} else {
			c.NATSClient = natsClient
		}
	}

	// Gemini ranker (optional - ไม่มี key ก็ยังใช้ deadline sort ได้)
	ranker, err := ai.NewGeminiRanker(context.Background(), ai.GeminiConfig{
		APIKey:          c.Config.AI.APIKey,
		Model:           c.Config.AI.Model,
		Temperature:     c.Config.AI.Temperature,
		MaxOutputTokens: c.Config.AI.MaxOutputTokens,
	})
	switch {
	case errors.Is(err, ports.ErrRankingUnavailable):
		logger.Warn("GEMINI_API_KEY not configured, remote ranking disabled")
	case err != nil:
		logger.Warn("Gemini ranker initialization failed", "error", err)
	default:
		c.Ranker = ranker
	}

	return nil
}

func (c *Container) initDatabase() error {
	db, err := postgres.NewDatabase(postgres.DatabaseConfig{
		Host:     c.Config.Database.Host,
		Port:     c.Config.Database.Port,
		User:     c.Config.Database.User,
		Password: c.Config.Database.Password,
		DBName:   c.Config.Database.DBName,
		SSLMode:  c.Config.Database.SSLMode,
		Debug:    c.Config.Log.Level == "debug",
	})
	if err != nil {
		return err
	}
	c.DB = db
	logger.Info("Database connected", "host", c.Config.Database.Host, "db", c.Config.Database.DBName)

	if c.Config.Database.AutoMigrate {
		if err := postgres.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("Database migrated")
	}
	return nil
}

func (c *Container) initRepositories() error {
	var writer ports.BatchWriterPort
	if c.MemStore != nil {
		tasks := c.MemStore.Tasks()
		c.TaskRepository = tasks
		writer = tasks
		c.FolderRepository = c.MemStore.Folders()
		c.UserRepository = c.MemStore.Users()
	} else {
		tasks := postgres.NewTaskRepository(c.DB)
		c.TaskRepository = tasks
		writer = tasks
		c.FolderRepository = postgres.NewFolderRepository(c.DB)
		c.UserRepository = postgres.NewUserRepository(c.DB)
	}
	c.BatchWriter = writer
	logger.Info("Repositories initialized", "driver", c.Config.Store.Driver)
	return nil
}

// initPorts เลือก adapter ตาม infrastructure ที่เชื่อมต่อได้
func (c *Container) initPorts() {
	// Task events: NATS ข้าม instances, ไม่งั้นใช้ bus ใน process
	if c.NATSClient != nil {
		c.EventPublisher = messaging.NewNATSTaskEventPublisher(natspkg.NewPublisher(c.NATSClient.Conn()))
		c.NATSSubscriber = natspkg.NewSubscriber(c.NATSClient.Conn())
		c.EventSubscriber = messaging.NewNATSTaskEventSubscriber(c.NATSSubscriber)
	} else {
		bus := messaging.NewLocalTaskEventBus()
		c.EventPublisher = bus
		c.EventSubscriber = bus
	}

	c.BatchWriter = messaging.NewPublishingBatchWriter(c.BatchWriter, c.EventPublisher)
	c.SavingIndicator = messaging.NewEventSavingIndicator(c.EventPublisher)

	// Folder lock: Redis ข้าม instances
	if c.RedisClient != nil {
		c.FolderLock = redispkg.NewFolderLock(c.RedisClient)
	} else {
		c.FolderLock = memstore.NewFolderLock()
	}

	// Run state: Redis → NATS KV → memory
	switch {
	case c.RedisClient != nil:
		c.RunStateStore = redispkg.NewRunStateStore(c.RedisClient)
	case c.NATSClient != nil && c.NATSClient.RunStateKV() != nil:
		c.RunStateStore = natspkg.NewRunStateKV(c.NATSClient.RunStateKV())
	default:
		c.RunStateStore = memstore.NewRunStateStore()
	}

	logger.Info("Ports initialized",
		"events", c.NATSClient != nil,
		"redis", c.RedisClient != nil,
	)
}

func (c *Container) initServices() error {
	c.CommitExecutor = serviceimpl.NewCommitExecutor(c.BatchWriter)

	c.SweepService = serviceimpl.NewStalenessSweepService(
		serviceimpl.SweepConfig{
			Retention: c.Config.Sweep.Retention,
			Timeout:   c.Config.Sweep.Timeout,
		},
		c.TaskRepository,
		c.CommitExecutor,
	)

	c.TaskService = serviceimpl.NewTaskService(
		c.TaskRepository,
		c.FolderRepository,
		c.CommitExecutor,
		c.SweepService,
		c.FolderLock,
		c.SavingIndicator,
		c.Config.Planner.LatencyFloor,
	)

	c.FolderService = serviceimpl.NewFolderService(c.FolderRepository)

	c.Tracker = serviceimpl.NewPrioritizationTracker(c.RunStateStore, c.EventPublisher, runStateTTL)

	// nil interface (ไม่ใช่ typed nil) เมื่อไม่มี ranker
	var ranker ports.RankingPort
	if c.Ranker != nil {
		ranker = c.Ranker
	}
	c.PrioritizationService = serviceimpl.NewPrioritizationService(
		serviceimpl.PrioritizationConfig{
			RankTimeout:     c.Config.AI.Timeout,
			LockTTL:         c.Config.AI.RunTimeout + time.Minute,
			PersistPriority: c.Config.AI.PersistPriority,
		},
		c.TaskRepository,
		c.FolderRepository,
		c.CommitExecutor,
		ranker,
		c.FolderLock,
		c.Tracker,
		c.SavingIndicator,
	)

	audiences := []string{c.Config.Google.ClientID}
	if c.Config.Google.DesktopClientID != "" {
		audiences = append(audiences, c.Config.Google.DesktopClientID)
	}
	c.UserService = serviceimpl.NewUserService(
		c.UserRepository,
		identity.NewGoogleVerifier(audiences...),
		c.Config.JWT.Secret,
		c.Config.JWT.TTL,
		c.Config.Google.ClientID,
		c.Config.Google.ClientSecret,
		c.Config.Google.RedirectURL,
	)

	logger.Info("Services initialized",
		"remote_ranking", c.Ranker != nil,
		"latency_floor", c.Config.Planner.LatencyFloor,
		"retention", c.Config.Sweep.Retention,
	)
	return nil
}

func (c *Container) initScheduler() error {
	c.EventScheduler = scheduler.NewEventScheduler()
	c.EventScheduler.Start()
	logger.Info("Event scheduler started")
	return nil
}

func (c *Container) initStuckDetector() error {
	detectorConfig := serviceimpl.StuckDetectorConfig{
		CheckInterval: 30 * time.Second,
		RunTimeout:    c.Config.AI.RunTimeout,
	}

	detector := serviceimpl.NewPrioritizationStuckDetector(
		detectorConfig,
		c.Tracker,
		c.FolderLock,
		c.EventScheduler,
	)

	if err := detector.RegisterDetectorJob(); err != nil {
		logger.Warn("Failed to register prioritization stuck detector job", "error", err)
		return nil
	}

	logger.Info("Prioritization stuck detector job registered",
		"check_interval", detectorConfig.CheckInterval,
		"run_timeout", detectorConfig.RunTimeout,
	)
	return nil
}

func (c *Container) initTaskBroadcaster() error {
	c.TaskBroadcaster = websocket.NewTaskBroadcaster(c.EventSubscriber, websocket.Manager, c.TaskRepository)

	if err := c.TaskBroadcaster.Start(); err != nil {
		logger.Warn("Failed to start task broadcaster", "error", err)
		c.TaskBroadcaster = nil
		return nil
	}

	logger.Info("Task broadcaster started (events → WebSocket)")
	return nil
}

// HealthCheck สถานะของ dependency ภายนอก
func (c *Container) HealthCheck(ctx context.Context) map[string]error {
	result := map[string]error{}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		result["database"] = err
	}
	if c.RedisClient != nil {
		result["redis"] = c.RedisClient.Ping(ctx)
	}
	if c.NATSClient != nil {
		result["nats"] = c.NATSClient.Ping()
	}
	return result
}

func (c *Container) Cleanup() error {
	logger.Info("Starting cleanup...")

	if c.TaskBroadcaster != nil {
		c.TaskBroadcaster.Stop()
		logger.Info("Task broadcaster stopped")
	}

	if c.NATSSubscriber != nil && c.NATSSubscriber.IsRunning() {
		c.NATSSubscriber.Stop()
		logger.Info("NATS subscriber stopped")
	}

	if c.EventScheduler != nil && c.EventScheduler.IsRunning() {
		c.EventScheduler.Stop()
		logger.Info("Event scheduler stopped")
	}

	// รอ background sweep ที่ค้างอยู่ก่อนปิด storage
	if c.SweepService != nil {
		c.SweepService.Wait()
	}

	if c.Ranker != nil {
		if err := c.Ranker.Close(); err != nil {
			logger.Warn("Failed to close Gemini client", "error", err)
		}
	}

	if c.NATSClient != nil {
		if err := c.NATSClient.Close(); err != nil {
			logger.Warn("Failed to close NATS connection", "error", err)
		} else {
			logger.Info("NATS connection closed")
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			logger.Warn("Failed to close Redis connection", "error", err)
		} else {
			logger.Info("Redis connection closed")
		}
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				logger.Warn("Failed to close database connection", "error", err)
			} else {
				logger.Info("Database connection closed")
			}
		}
	}

	logger.Info("Cleanup completed")
	return nil
}

func (c *Container) GetConfig() *config.Config {
	return c.Config
}

func (c *Container) GetHandlerServices() *handlers.Services {
	return &handlers.Services{
		UserService:           c.UserService,
		FolderService:         c.FolderService,
		TaskService:           c.TaskService,
		PrioritizationService: c.PrioritizationService,
		GoogleConfig:          c.Config.Google,
		SecureCookies:         c.Config.IsProduction(),
	}
}

// Migrate รัน schema migration (postgres เท่านั้น)
func (c *Container) Migrate() error {
	if c.DB == nil {
		return errors.New("migrate requires STORE_DRIVER=postgres")
	}
	return postgres.Migrate(c.DB)
}
