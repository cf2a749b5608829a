package services

import (
	"log/slog"
	"time"

	"github.com/dukex/leadflow/pkg/eventbus"
	"github.com/dukex/leadflow/pkg/metrics"
	"github.com/dukex/leadflow/pkg/otelhelper"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/trace"
)

// validate is shared by every service; validator caches struct metadata.
var validate = validator.New(validator.WithRequiredStructEnabled())

type options struct {
	logger    *slog.Logger
	publisher eventbus.EventPublisher
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	now       func() time.Time
}

// Option configures the optional collaborators of a service.
type Option func(*options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithPublisher makes the service publish domain events. Without it events are skipped.
func WithPublisher(publisher eventbus.EventPublisher) Option {
	return func(o *options) { o.publisher = publisher }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) { o.tracer = tracer }
}

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func newOptions(opts []Option) options {
	o := options{
		logger: slog.Default(),
		tracer: otelhelper.NoopTracer(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
