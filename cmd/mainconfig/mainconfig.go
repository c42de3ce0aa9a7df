package mainconfig

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fixam/fixam-site/internal/api/router"
	"github.com/fixam/fixam-site/internal/app/bootstrap"
	appconfig "github.com/fixam/fixam-site/internal/config"
	"github.com/fixam/fixam-site/internal/notify"
	"github.com/fixam/fixam-site/internal/observability/metrics"
	"github.com/fixam/fixam-site/pkg/logging"
)

// LoadEnv preloads a local .env file when one exists.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// LoadAWSConfig centralizes AWS SDK initialization so both binaries share the
// same LocalStack/production wiring.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	loaders := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}
	return config.LoadDefaultConfig(ctx, loaders...)
}

// NewSESClient builds the SES v2 client, honoring AWS_ENDPOINT_OVERRIDE.
func NewSESClient(ctx context.Context, cfg *appconfig.Config) (*sesv2.Client, error) {
	awsCfg, err := LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	endpoint := strings.TrimSpace(cfg.AWSEndpointOverride)
	return sesv2.NewFromConfig(awsCfg, func(o *sesv2.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

// Runtime is the fully wired HTTP surface shared by the server and Lambda binaries.
type Runtime struct {
	Handler http.Handler
	closers []func() error
}

// Close releases external clients.
func (r *Runtime) Close() error {
	var errs []error
	for _, c := range r.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// NewRuntime builds every dependency from cfg. Optional backends that cannot
// be reached degrade instead of failing startup.
func NewRuntime(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *Runtime {
	if logger == nil {
		logger = logging.Default()
	}
	rt := &Runtime{}

	metricsHandler, siteMetrics := setupMetrics()
	deps := bootstrap.Deps{
		Sheets:         bootstrap.BuildSheetsAPI(ctx, cfg, logger),
		Metrics:        siteMetrics,
		MetricsHandler: metricsHandler,
	}

	if redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true); redisClient != nil {
		deps.Redis = redisClient
		rt.closers = append(rt.closers, redisClient.Close)
	}

	if cfg.EmailProvider == "ses" {
		client, err := NewSESClient(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config, SES disabled", "error", err)
		} else {
			deps.SES = client
		}
	}

	rt.Handler = router.New(bootstrap.BuildRouterConfig(cfg, deps, logger))
	return rt
}

func setupMetrics() (http.Handler, *metrics.SiteMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewSiteMetrics(reg)
}

var _ notify.SESAPI = (*sesv2.Client)(nil)
