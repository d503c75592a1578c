package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"relatos/catalogue-service/internal/app/catalogue/config"
	"relatos/catalogue-service/internal/app/catalogue/handler"
	"relatos/catalogue-service/internal/app/catalogue/migrations"
	"relatos/catalogue-service/internal/app/catalogue/repository"
	"relatos/catalogue-service/internal/app/catalogue/service"
	"relatos/catalogue-service/internal/app/catalogue/util"
	"relatos/pkg/logger"
)

const serviceName = "catalogue-service"

// store - репозитории и менеджер транзакций выбранного хранилища
type store struct {
	tx         repository.TxManager
	books      repository.BookRepository
	authors    repository.AuthorRepository
	categories repository.CategoryRepository
	images     repository.ImageRepository // nil у MongoDB
	resolver   service.ReferenceResolver
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(serviceName, cfg.Log.Level)
	if cfg.Log.LogstashAddr != "" {
		if err := logger.InitLogstash(cfg.Log.LogstashAddr, serviceName, cfg.Log.Level); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		} else {
			logger.Info().Str("logstash_addr", cfg.Log.LogstashAddr).Msg("Connected to Logstash")
		}
	}

	ctx := context.Background()

	var st *store
	switch cfg.Storage {
	case config.StorageMongo:
		st, err = openMongoStore(ctx, cfg.Mongo)
	default:
		st, err = openPostgresStore(ctx, cfg.Database)
	}
	if err != nil {
		logger.Fatal().Err(err).Str("storage", cfg.Storage).Msg("Failed to open catalogue storage")
	}
	defer st.close()
	logger.Info().Str("storage", cfg.Storage).Msg("Catalogue storage ready")

	// кеш категорий необязателен: без Redis список читается из хранилища
	var cache util.CategoryCache
	redisClient, err := util.NewRedisClient(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Warn().Err(err).Str("address", cfg.Redis.Address()).Msg("Redis unavailable, category cache disabled")
	} else {
		defer redisClient.Close()
		cache = redisClient
		logger.Info().Str("address", cfg.Redis.Address()).Msg("Connected to Redis")
	}

	var publisher util.MessagePublisher
	if cfg.Kafka.Enabled {
		kafkaProducer := util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaProducer.Close()
		publisher = kafkaProducer
		logger.Info().
			Strs("brokers", cfg.Kafka.Brokers).
			Str("topic", cfg.Kafka.Topic).
			Msg("Initialized Kafka producer")
	}

	assembler := service.NewBookAssembler(st.resolver, st.books, st.images)
	bookService := service.NewBookService(st.tx, st.books, assembler, publisher)
	authorService := service.NewAuthorService(st.tx, st.authors)
	categoryService := service.NewCategoryService(st.tx, st.categories, cache, cfg.Redis.TTL)

	router := handler.SetupRoutes(
		handler.NewBookHandler(bookService),
		handler.NewAuthorHandler(authorService),
		handler.NewCategoryHandler(categoryService),
		cfg.Server.AllowedOrigins,
	)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("Starting Catalogue Service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Catalogue Service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Catalogue Service stopped gracefully")
}

// openPostgresStore поднимает пул pgx, применяет миграции и открывает gorm
// поверх того же пула
func openPostgresStore(ctx context.Context, cfg config.DatabaseConfig) (*store, error) {
	pool, err := connectDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB := stdlib.OpenDBFromPool(pool)

	if cfg.AutoMigrate {
		if err := migrations.Up(sqlDB); err != nil {
			closePostgres(sqlDB, pool)
			return nil, err
		}
	}

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		closePostgres(sqlDB, pool)
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	authors := repository.NewAuthorRepository(db)
	categories := repository.NewCategoryRepository(db)

	return &store{
		tx:         repository.NewTxManager(db),
		books:      repository.NewBookRepository(db),
		authors:    authors,
		categories: categories,
		images:     repository.NewImageRepository(db),
		resolver:   service.NewRelationalResolver(authors, categories),
		close:      func() { closePostgres(sqlDB, pool) },
	}, nil
}

func closePostgres(sqlDB *sql.DB, pool *pgxpool.Pool) {
	if err := sqlDB.Close(); err != nil {
		logger.Error().Err(err).Msg("Error closing database handle")
	}
	pool.Close()
}

// connectDB устанавливает соединение с PostgreSQL с повторными попытками,
// пока база поднимается вместе с сервисом
func connectDB(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = 5 * time.Minute
	poolConfig.MaxConnIdleTime = 1 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	var pool *pgxpool.Pool
	for i := 0; i < cfg.ConnectTries; i++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				logger.Info().
					Str("host", cfg.Host).
					Str("database", cfg.DBName).
					Msg("Connected to PostgreSQL")
				return pool, nil
			}
			pool.Close()
		}
		logger.Warn().
			Int("attempt", i+1).
			Int("max_attempts", cfg.ConnectTries).
			Err(err).
			Msg("Failed to connect to database, retrying...")
		time.Sleep(cfg.RetryInterval)
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %w", cfg.ConnectTries, err)
}

func openMongoStore(ctx context.Context, cfg config.MongoConfig) (*store, error) {
	client, err := connectMongoDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("database", cfg.Database).Msg("Connected to MongoDB")

	db := client.Database(cfg.Database)

	return &store{
		tx:         repository.NewMongoTxManager(),
		books:      repository.NewMongoBookRepository(db),
		authors:    repository.NewMongoAuthorRepository(db),
		categories: repository.NewMongoCategoryRepository(db),
		resolver:   service.NewDenormalizedResolver(),
		close: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				logger.Error().Err(err).Msg("Error disconnecting from MongoDB")
			}
		},
	}, nil
}

func connectMongoDB(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)

	var lastErr error
	for i := 0; i < 10; i++ {
		client, err := pingMongo(ctx, clientOptions)
		if err == nil {
			return client, nil
		}
		lastErr = err

		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to MongoDB, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect to mongodb: %w", lastErr)
}

func pingMongo(ctx context.Context, clientOptions *options.ClientOptions) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}
