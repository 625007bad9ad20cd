package main

import (
	"context"
	"net/http"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Oniqq60/wiki_media/internal/cfg"
	"github.com/Oniqq60/wiki_media/internal/editor"
	"github.com/Oniqq60/wiki_media/internal/media"
	"github.com/Oniqq60/wiki_media/internal/middleware"
)

type dependencies struct {
	storage   media.ObjectStorage
	repo      media.Repository
	publisher media.EventPublisher
	redis     *redis.Client
	closers   []func() error
}

func (d *dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			log.Warnf("close dependency: %v", err)
		}
	}
}

// connect opens the configured backends. On error everything opened so far
// is closed again.
func connect(ctx context.Context, conf cfg.Config) (*dependencies, error) {
	deps := &dependencies{}
	if err := deps.open(ctx, conf); err != nil {
		deps.Close()
		return nil, err
	}
	return deps, nil
}

func (d *dependencies) open(ctx context.Context, conf cfg.Config) error {
	var err error
	if d.storage, err = openStorage(conf); err != nil {
		return err
	}
	if d.repo, err = openRepository(ctx, conf, d); err != nil {
		return err
	}

	if conf.RedisAddr != "" {
		d.redis = redis.NewClient(&redis.Options{
			Addr:     conf.RedisAddr,
			Password: conf.RedisPassword,
			DB:       0,
		})
		d.closers = append(d.closers, d.redis.Close)
		if err := d.redis.Ping(ctx).Err(); err != nil {
			return pkgerrors.Wrap(err, "connect redis")
		}
	}

	if len(conf.KafkaBrokers) > 0 {
		d.publisher = media.NewKafkaPublisher(conf.KafkaBrokers, conf.KafkaTopic)
		log.Infof("publishing upload events to %s", conf.KafkaTopic)
	} else {
		d.publisher = media.NewNopPublisher()
	}
	d.closers = append(d.closers, d.publisher.Close)
	return nil
}

func openStorage(conf cfg.Config) (media.ObjectStorage, error) {
	switch conf.StorageBackend {
	case cfg.StorageMinio:
		storage, err := media.NewMinioStorage(
			conf.MinioEndpoint,
			conf.MinioAccessKey,
			conf.MinioSecretKey,
			conf.MinioUseSSL,
			conf.MinioBucket,
			conf.MediaURLPrefix,
		)
		return storage, pkgerrors.Wrap(err, "init minio")
	default:
		storage, err := media.NewDiskStorage(afero.NewOsFs(), conf.UploadDir, conf.MediaURLPrefix)
		return storage, pkgerrors.Wrap(err, "init upload dir")
	}
}

func openRepository(ctx context.Context, conf cfg.Config, deps *dependencies) (media.Repository, error) {
	switch conf.MetadataBackend {
	case cfg.MetadataMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(conf.MongoURI))
		if err != nil {
			return nil, pkgerrors.Wrap(err, "connect mongo")
		}
		deps.closers = append(deps.closers, func() error {
			return client.Disconnect(context.Background())
		})
		coll := client.Database(conf.MongoDatabase).Collection(conf.MongoCollection)
		return media.NewMongoRepository(coll), nil

	case cfg.MetadataPostgres:
		db, err := media.OpenPostgres(conf.PostgresDSN)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "connect postgres")
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, pkgerrors.Wrap(err, "access sql DB")
		}
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(time.Hour)
		deps.closers = append(deps.closers, sqlDB.Close)
		return media.NewGormRepository(db), nil

	default:
		return media.NewMemoryRepository(), nil
	}
}

func newRouter(conf cfg.Config, deps *dependencies) (http.Handler, error) {
	service := media.NewService(deps.repo, deps.storage, deps.publisher, conf.MaxUploadBytes)

	var secret []byte
	if conf.JWTSecret != "" {
		secret = []byte(conf.JWTSecret)
	} else {
		log.Warn("JWT_SECRET not set, uploads are anonymous")
	}
	authorizer := media.NewAuthorizer(secret, deps.redis)

	editorHandler, err := editor.NewHandler(editor.DefaultConfig())
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	media.NewHandler(service, authorizer, conf.MaxUploadBytes, conf.MediaURLPrefix).Register(mux)
	editorHandler.Register(mux)

	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.NewCORS(middleware.CORSOptions{
			AllowedOrigins:   conf.AllowedCORSOrigins,
			AllowCredentials: len(conf.AllowedCORSOrigins) > 0,
			MaxAge:           time.Hour,
		}),
		middleware.RequestLogger(conf.MediaURLPrefix, "/static"),
		middleware.NewRateLimiter(conf.RateLimitRequests, conf.RateLimitWindow).Middleware,
	), nil
}
