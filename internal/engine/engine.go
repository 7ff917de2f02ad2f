package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"projector/internal/config"
	"projector/internal/domain"
	"projector/internal/events"
	"projector/internal/repo"
	"projector/internal/telemetry"
)

type Engine struct {
	DB      *sqlx.DB
	Repo    repo.Repo
	Events  events.Writer
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *telemetry.Metrics
	Now     func() time.Time
	saves   *saveGuard
}

func New(db *sqlx.DB, cfg *config.Config) Engine {
	return Engine{
		DB:     db,
		Repo:   repo.Repo{DB: db},
		Config: cfg,
		Logger: zap.NewNop(),
		Now:    time.Now,
		saves:  newSaveGuard(),
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// eventWriter shares the engine clock unless the writer has its own.
func (e Engine) eventWriter() events.Writer {
	w := e.Events
	if w.Now == nil {
		w.Now = e.now
	}
	return w
}

func (e Engine) stamp() string {
	return e.now().UTC().Format(domain.TimestampLayout)
}

func (e Engine) today() string {
	return e.now().UTC().Format(domain.DateLayout)
}

func (e Engine) cfg() *config.Config {
	if e.Config != nil {
		return e.Config
	}
	return config.Default()
}

func (e Engine) log() *zap.Logger { return telemetry.OrNop(e.Logger) }

// withTimeout bounds a single store round trip.
func (e Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	d := e.cfg().Store.RequestTimeout
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// storeErr classifies a repo failure: missing rows become NotFoundError,
// validation passes through, everything else is a RemoteError.
func storeErr(op, entity, id string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return domain.NotFoundError{Entity: entity, ID: id}
	case domain.IsValidation(err), domain.IsRemote(err), errors.Is(err, context.Canceled):
		return err
	}
	return domain.RemoteError{Op: op, Err: err}
}

// readWithRetry runs an idempotent read, retrying RemoteErrors with exponential backoff.
func (e Engine) readWithRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	store := e.cfg().Store
	base := store.RetryBase
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	backoff := retry.WithMaxRetries(store.ListRetries, retry.NewExponential(base))
	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			e.Metrics.StoreRetry()
			e.log().Warn("retrying store read", zap.String("op", op), zap.Int("attempt", attempt))
		}
		cctx, cancel := e.withTimeout(ctx)
		defer cancel()
		err := fn(cctx)
		if domain.IsRemote(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// beginSave claims the in-flight slot for a record. The caller must release it.
func (e Engine) beginSave(entity, id string) (func(), error) {
	release, ok := e.saves.acquire(entity + ":" + id)
	if !ok {
		e.Metrics.SaveConflict(entity)
		e.log().Info("save rejected, another save in flight", zap.String("entity", entity), zap.String("id", id))
		return nil, domain.ErrSaveInProgress
	}
	return release, nil
}

func (e Engine) span(ctx context.Context, name string) (context.Context, trace.Span) {
	return telemetry.Tracer().Start(ctx, "engine."+name)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// txWriter hands a save closure its transaction and an event appender bound to the record.
type txWriter struct {
	e      Engine
	ctx    context.Context
	tx     *sqlx.Tx
	entity string
	id     string
}

// append records an audit event. An empty change set is skipped.
func (w txWriter) append(evtType, actorID string, payload events.EventPayload) error {
	if payload != nil && len(payload) == 0 {
		return nil
	}
	if err := w.e.eventWriter().Append(w.ctx, w.tx, evtType, w.entity, w.id, actorID, payload); err != nil {
		return storeErr("append event", w.entity, w.id, err)
	}
	return nil
}

// inTx runs fn in one transaction under the store timeout and commits when it succeeds.
func (e Engine) inTx(ctx context.Context, entity, id string, fn func(ctx context.Context, w txWriter) error) (err error) {
	ctx, span := e.span(ctx, "save."+entity)
	defer func() { endSpan(span, err) }()
	cctx, cancel := e.withTimeout(ctx)
	defer cancel()
	tx, err := e.DB.BeginTxx(cctx, nil)
	if err != nil {
		return storeErr("begin", entity, id, err)
	}
	defer tx.Rollback()
	if err := fn(cctx, txWriter{e: e, ctx: cctx, tx: tx, entity: entity, id: id}); err != nil {
		return err
	}
	return storeErr("commit", entity, id, tx.Commit())
}

// saveGuard allows one outstanding save per key.
type saveGuard struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

func newSaveGuard() *saveGuard {
	return &saveGuard{inflight: map[string]struct{}{}}
}

func (g *saveGuard) acquire(key string) (func(), bool) {
	if g == nil {
		return func() {}, true
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inflight[key]; busy {
		return nil, false
	}
	g.inflight[key] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inflight, key)
			g.mu.Unlock()
		})
	}, true
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func derefFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
