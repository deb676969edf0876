package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/do/v2"

	"github.com/vadim/supportbot/internal/auth"
	"github.com/vadim/supportbot/internal/config"
	"github.com/vadim/supportbot/internal/database"
	analyticspolicy "github.com/vadim/supportbot/internal/domain/analytics/policy"
	analyticsservice "github.com/vadim/supportbot/internal/domain/analytics/service"
	"github.com/vadim/supportbot/internal/domain/chat/dao"
	chatservice "github.com/vadim/supportbot/internal/domain/chat/service"
	intententity "github.com/vadim/supportbot/internal/domain/intent/entity"
	intentservice "github.com/vadim/supportbot/internal/domain/intent/service"
	"github.com/vadim/supportbot/internal/httpx/upstream/dialogflow"
	"github.com/vadim/supportbot/internal/metrics"
	"github.com/vadim/supportbot/internal/storage"
)

// registerInfrastructure provides connections to external systems
func registerInfrastructure(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*database.Postgres, error) {
		cfg := do.MustInvoke[*config.Config](i)
		logger := do.MustInvoke[*slog.Logger](i)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
		defer cancel()

		pg, err := database.NewPostgresPool(ctx, database.PoolConfig{
			DSN:          cfg.Database.PostgresDSN,
			MaxConns:     cfg.Database.MaxConns,
			MinConns:     cfg.Database.MinConns,
			ConnLifetime: cfg.Database.ConnLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}

		if cfg.Database.AutoMigrate {
			if err := dao.RunMigration(ctx, pg.Pool); err != nil {
				pg.Close()
				return nil, fmt.Errorf("running migration: %w", err)
			}
			logger.Info("database migration applied")
		}
		return pg, nil
	})

	do.Provide(injector, func(i do.Injector) (*dialogflow.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Dialogflow.Timeout)
		defer cancel()

		client, err := dialogflow.New(ctx, cfg.Dialogflow.ProjectID,
			dialogflow.WithLocation(cfg.Dialogflow.Location),
			dialogflow.WithLanguageCode(cfg.Dialogflow.LanguageCode),
			dialogflow.WithCredentialsJSON(cfg.Dialogflow.CredentialsJSON),
			dialogflow.WithTimeout(cfg.Dialogflow.Timeout),
		)
		if err != nil {
			return nil, fmt.Errorf("creating dialogflow client: %w", err)
		}
		return client, nil
	})

	do.Provide(injector, func(i do.Injector) (*storage.S3Storage, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return storage.NewS3Storage(storage.S3Config{
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			PublicURL:       cfg.S3.PublicURL,
			Prefix:          cfg.S3.Prefix,
		}), nil
	})

	do.Provide(injector, func(i do.Injector) (*metrics.Metrics, error) {
		return metrics.New(), nil
	})

	do.Provide(injector, func(i do.Injector) (*auth.TokenManager, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, auth.Credentials{
			Username: cfg.Auth.AdminUsername,
			Password: cfg.Auth.AdminPassword,
		}), nil
	})
}

// registerDomains provides the DAO, service and policy layers
func registerDomains(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*dao.TranscriptPostgres, error) {
		pg := do.MustInvoke[*database.Postgres](i)
		return dao.NewTranscriptPostgres(pg.Pool), nil
	})

	do.Provide(injector, func(i do.Injector) (*intentservice.Service, error) {
		client := do.MustInvoke[*dialogflow.Client](i)
		m := do.MustInvoke[*metrics.Metrics](i)
		return intentservice.New(&catalogGateway{client: client, metrics: m}), nil
	})

	do.Provide(injector, func(i do.Injector) (*chatservice.Service, error) {
		repo := do.MustInvoke[*dao.TranscriptPostgres](i)
		client := do.MustInvoke[*dialogflow.Client](i)
		objects := do.MustInvoke[*storage.S3Storage](i)
		m := do.MustInvoke[*metrics.Metrics](i)
		return chatservice.New(repo, &intentDetector{client: client, metrics: m}, objects,
			chatservice.WithMessageCounter(m),
		), nil
	})

	do.Provide(injector, func(i do.Injector) (*analyticspolicy.Policy, error) {
		cfg := do.MustInvoke[*config.Config](i)
		logger := do.MustInvoke[*slog.Logger](i)
		svc := analyticsservice.New(
			do.MustInvoke[*dao.TranscriptPostgres](i),
			do.MustInvoke[*intentservice.Service](i),
		)
		return analyticspolicy.New(svc, logger,
			analyticspolicy.WithRecorder(do.MustInvoke[*metrics.Metrics](i)),
			analyticspolicy.WithTimeout(cfg.Analytics.Timeout),
		), nil
	})
}

type sessionDetector interface {
	DetectIntent(ctx context.Context, sessionID, text string) (*dialogflow.DetectIntentOutput, error)
}

// intentDetector adapts dialogflow.Client to chatservice.IntentDetector
type intentDetector struct {
	client  sessionDetector
	metrics *metrics.Metrics
}

func (d *intentDetector) DetectIntent(ctx context.Context, sessionID, text string) (*chatservice.Detection, error) {
	started := time.Now()
	out, err := d.client.DetectIntent(ctx, sessionID, text)
	d.metrics.ObserveNLU("detect_intent", time.Since(started))
	if err != nil {
		return nil, err
	}
	if out.IntentName != "" {
		d.metrics.ObserveConfidence(float64(out.Confidence))
	}
	return &chatservice.Detection{
		Reply:       out.FulfillmentText,
		Intent:      out.IntentName,
		DisplayName: out.IntentDisplayName,
	}, nil
}

// catalogGateway adapts dialogflow.Client to intentservice.Gateway
type catalogGateway struct {
	client  *dialogflow.Client
	metrics *metrics.Metrics
}

func (g *catalogGateway) ListIntents(ctx context.Context) ([]intententity.Intent, error) {
	started := time.Now()
	defer func() { g.metrics.ObserveNLU("list_intents", time.Since(started)) }()
	return g.client.ListIntents(ctx)
}

func (g *catalogGateway) GetIntent(ctx context.Context, id string) (*intententity.Intent, error) {
	started := time.Now()
	defer func() { g.metrics.ObserveNLU("get_intent", time.Since(started)) }()
	return g.client.GetIntent(ctx, id)
}
