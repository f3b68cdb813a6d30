package objfs

import (
	"context"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jmgilman/objfs/cache"
	"github.com/jmgilman/objfs/core"
	"github.com/jmgilman/objfs/internal/errs"
)

// Metrics holds the collectors for backend traffic.
type Metrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics creates the backend collectors and registers them with reg.
// A nil registerer leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "objfs",
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Backend requests by operation and result.",
		}, []string{"operation", "result"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "objfs",
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Backend request latency by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg != nil {
		reg.MustRegister(m.Requests, m.Duration)
	}
	return m
}

// instrumented decorates a backend with metrics and debug logging.
type instrumented struct {
	next    core.Backend
	metrics *Metrics
	log     *cache.Logger
}

var _ core.Backend = (*instrumented)(nil)

func (b *instrumented) observe(ctx context.Context, op, key string, start time.Time, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errs.IsNotExist(err):
		result = "not_found"
	default:
		result = "error"
	}
	elapsed := time.Since(start)
	b.metrics.Requests.WithLabelValues(op, result).Inc()
	b.metrics.Duration.WithLabelValues(op).Observe(elapsed.Seconds())
	b.log.WithDuration(elapsed).Debug(ctx, "backend call",
		"operation", op,
		"key", key,
		"result", result)
}

func (b *instrumented) Container() string {
	return b.next.Container()
}

func (b *instrumented) HeadObject(ctx context.Context, key string) (obj *core.Object, err error) {
	defer func(start time.Time) { b.observe(ctx, "head", key, start, err) }(time.Now())
	return b.next.HeadObject(ctx, key)
}

func (b *instrumented) GetObject(ctx context.Context, key string) (obj *core.Object, rc io.ReadCloser, err error) {
	defer func(start time.Time) { b.observe(ctx, "get", key, start, err) }(time.Now())
	return b.next.GetObject(ctx, key)
}

func (b *instrumented) PutObject(ctx context.Context, key string, r io.Reader, opts core.PutOptions) (err error) {
	defer func(start time.Time) { b.observe(ctx, "put", key, start, err) }(time.Now())
	return b.next.PutObject(ctx, key, r, opts)
}

func (b *instrumented) DeleteObject(ctx context.Context, key string) (err error) {
	defer func(start time.Time) { b.observe(ctx, "delete", key, start, err) }(time.Now())
	return b.next.DeleteObject(ctx, key)
}

func (b *instrumented) ListObjects(ctx context.Context, opts core.ListOptions) (objs []*core.Object, err error) {
	defer func(start time.Time) { b.observe(ctx, "list", opts.Prefix, start, err) }(time.Now())
	return b.next.ListObjects(ctx, opts)
}

func (b *instrumented) CopyObject(ctx context.Context, src, dst string) (err error) {
	defer func(start time.Time) { b.observe(ctx, "copy", src, start, err) }(time.Now())
	return b.next.CopyObject(ctx, src, dst)
}

func (b *instrumented) BulkDelete(ctx context.Context, keys []string) (res *core.BulkResult, err error) {
	defer func(start time.Time) { b.observe(ctx, "bulk_delete", "", start, err) }(time.Now())
	return b.next.BulkDelete(ctx, keys)
}
