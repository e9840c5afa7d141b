package backend

import (
	"context"
	"errors"
	"fmt"

	"moodjournal/internal/amqp"
	"moodjournal/internal/journal"
	"moodjournal/internal/log"
	"moodjournal/internal/services"
	"moodjournal/internal/storage"
)

const defaultAMQPAttempts = 3

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.FromSlog(nil, log.ComponentBackend)
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	// AMQP is optional: without it entries are still stored
	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		attempts := config.AMQPAttempts
		if attempts <= 0 {
			attempts = defaultAMQPAttempts
		}
		amqpClient, err = amqp.NewClientWithRetry(ctx, config.AMQPURL, config.AMQPExchange, config.AMQPQueue, attempts)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", log.FieldError, err)
			amqpClient = nil
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	var publisher services.EventPublisher
	if amqpClient != nil {
		publisher = amqpClient
	}

	svc := services.NewJournalService(journal.NewStore(), repo, publisher, f.logger)
	if err := svc.Load(ctx); err != nil {
		closeAll(repo, amqpClient)
		return nil, err
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", amqpClient != nil,
		log.FieldCount, svc.Count())

	return &BackendResult{
		Journal:       svc,
		Persistent:    true,
		EventsEnabled: amqpClient != nil,
		Cleanup:       func() error { return closeAll(repo, amqpClient) },
	}, nil
}

func (f *DefaultFactory) createMemoryBackend() *BackendResult {
	f.logger.Info("Initialized memory backend, entries are lost on restart")

	return &BackendResult{
		Journal: services.NewJournalService(journal.NewStore(), nil, nil, f.logger),
	}
}

func closeAll(repo *storage.SQLiteRepository, client *amqp.Client) error {
	var errs []error
	if client != nil {
		if err := client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if repo != nil {
		if err := repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	return errors.Join(errs...)
}
