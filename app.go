package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"msgservice/internal/config"
	"msgservice/internal/handlers"
	"msgservice/internal/repositories"
	"msgservice/internal/services"
	"msgservice/internal/storage"
	"msgservice/pkg/rabbitmq"
)

// NewApp wires stores, services and handlers for cfg into a Fiber app. The
// returned cleanup releases every connection NewApp opened.
func NewApp(ctx context.Context, cfg *config.Config) (*fiber.App, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	userRepo, messageRepo, closeStore, err := openStores(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, closeStore)

	attachments, files, err := openAttachments(ctx, cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	hasher, err := services.NewPasswordHasher(cfg.PasswordHasher)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	// A nil interface disables events; never assign a nil *rabbitmq.Client.
	var events services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Printf("Warning: events disabled, RabbitMQ unavailable: %v", err)
		} else {
			events = mqClient
			closers = append(closers, func() {
				if err := mqClient.Close(); err != nil {
					log.Printf("Error closing RabbitMQ client: %v", err)
				}
			})
			if err := mqClient.ConsumeEvents(rabbitmq.LogEvent); err != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", err)
			}
		}
	}

	tokens := services.NewTokenService(cfg.TokenSecret, cfg.TokenTTL)
	userService := services.NewUserService(userRepo, attachments, tokens, hasher, events)
	messageService := services.NewMessageService(messageRepo, attachments, events)

	app := fiber.New(fiber.Config{
		AppName:      "msgservice",
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    16 * 1024 * 1024, // base64 images travel in JSON bodies
	})

	app.Use(recover.New())
	app.Use(logger.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Hello World!")
	})
	if files != nil {
		app.Static("/"+storage.ImagePrefix, files.Dir())
	}

	handlers.NewUserHandler(userService, tokens).RegisterRoutes(app)
	handlers.NewMessageHandler(messageService, tokens).RegisterRoutes(app)

	return app, cleanup, nil
}

func openStores(ctx context.Context, cfg *config.Config) (repositories.UserRepository, repositories.MessageRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, db, err := repositories.OpenMongo(ctx, repositories.MongoConfig{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDB,
			AuthSource: cfg.MongoAuthSource,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		log.Printf("Connected to MongoDB database %s", cfg.MongoDB)
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Printf("Error disconnecting from MongoDB: %v", err)
			}
		}
		return repositories.NewMongoUserRepository(db), repositories.NewMongoMessageRepository(db), closeFn, nil

	case config.DriverPostgres, config.DriverSQLite:
		db, err := repositories.OpenGORM(cfg.StoreDriver, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to get database handle: %w", err)
		}
		log.Printf("Connected to %s database", cfg.StoreDriver)
		closeFn := func() {
			if err := sqlDB.Close(); err != nil {
				log.Printf("Error closing database: %v", err)
			}
		}
		return repositories.NewGORMUserRepository(db), repositories.NewGORMMessageRepository(db), closeFn, nil

	case config.DriverMemory:
		log.Println("Using in-memory store, data is lost on restart")
		return repositories.NewMockUserRepository(), repositories.NewMockMessageRepository(), func() {}, nil

	default:
		return nil, nil, nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

// openAttachments returns the attachment store for cfg and, for the
// filesystem backend, the FileStore whose directory is served under /img.
func openAttachments(ctx context.Context, cfg *config.Config) (storage.Store, *storage.FileStore, error) {
	switch cfg.AttachmentBackend {
	case config.BackendS3:
		client, err := storage.NewS3Client(ctx, storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, nil, err
		}
		return storage.NewS3Store(client, cfg.S3Bucket), nil, nil

	case config.BackendFS:
		files, err := storage.NewFileStore(cfg.PublicDir)
		if err != nil {
			return nil, nil, err
		}
		return files, files, nil

	default:
		return nil, nil, fmt.Errorf("unsupported attachment backend %q", cfg.AttachmentBackend)
	}
}
