// Package tenant implements the multi-tenant session registry: a concurrent
// compute-if-absent cache mapping tenant identifiers to lazily created store
// sessions, each scoped to that tenant's isolated namespace.
package tenant

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"gorm.io/gorm"

	apperrors "github.com/qubeio/microbees/errors"
	"github.com/qubeio/microbees/logger"
	"github.com/qubeio/microbees/model"
)

const meterName = "github.com/qubeio/microbees/tenant"

// tenantIDPattern bounds tenant ids to a charset that is safe to embed in a
// filename or a DSN database name. Anything with path separators, dots, or
// whitespace could alias another tenant's namespace.
var tenantIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// Registry owns the lifetime of every tenant session and the index
// definition cache. It is the only component allowed to construct sessions.
type Registry struct {
	cfg      Config
	opener   Opener
	log      *logger.Logger
	entities []model.Entity

	// indexCache maps each entity kind's table to its index definitions.
	// Built once at construction; read-only afterwards.
	indexCache map[model.Entity][]model.IndexDefinition

	mu       sync.Mutex
	sessions map[string]*entry

	sessionsCreated metric.Int64Counter
}

// entry is one cache slot. done is closed once construction finishes, with
// either session or err set. Failed entries are removed from the map before
// done is closed so the next Resolve retries construction.
type entry struct {
	done    chan struct{}
	session *Session
	err     error
}

// NewRegistry creates a registry for the fixed entity set. It derives the
// index definition cache up front and probes the base store; a probe failure
// is returned as a constructor error and must be treated as fatal.
func NewRegistry(cfg Config, log *logger.Logger, entities ...model.Entity) (*Registry, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opener, err := NewOpener(cfg)
	if err != nil {
		return nil, err
	}
	return NewRegistryWithOpener(cfg, opener, log, entities...)
}

// NewRegistryWithOpener is like NewRegistry with an explicit opener. Used by
// tests to observe and fault session construction.
func NewRegistryWithOpener(cfg Config, opener Opener, log *logger.Logger, entities ...model.Entity) (*Registry, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := opener.Probe(); err != nil {
		return nil, fmt.Errorf("tenant: base store unreachable: %w", err)
	}

	r := &Registry{
		cfg:        cfg,
		opener:     opener,
		log:        log.WithComponent("tenant"),
		entities:   entities,
		indexCache: buildIndexCache(entities),
		sessions:   make(map[string]*entry),
	}

	r.sessionsCreated, _ = otel.Meter(meterName).Int64Counter("tenant.sessions.created",
		metric.WithDescription("Tenant sessions constructed since process start"),
	)

	for kind, defs := range r.indexCache {
		r.log.Info("Cached index definitions", map[string]interface{}{
			"entity":  kind.TableName(),
			"indexes": len(defs),
		})
	}
	return r, nil
}

// buildIndexCache derives each entity kind's index definitions once.
// Session creation consumes the cache so every tenant namespace receives
// identical indexes without re-deriving them.
func buildIndexCache(entities []model.Entity) map[model.Entity][]model.IndexDefinition {
	cache := make(map[model.Entity][]model.IndexDefinition, len(entities))
	for _, e := range entities {
		if defs := e.Indexes(); len(defs) > 0 {
			cache[e] = defs
		}
	}
	return cache
}

// Resolve returns the cached session for tenantID, constructing it if
// absent. Safe for unbounded concurrent callers: racing resolvers for one
// unseen tenant wait on a single construction, while resolution for other
// tenants proceeds independently. A failed construction is not cached.
// Tenant ids are restricted to letters, digits, underscore, and hyphen;
// anything else is rejected before a namespace name is derived from it.
func (r *Registry) Resolve(ctx context.Context, tenantID string) (*Session, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, apperrors.MissingField("tenantId")
	}
	if !tenantIDPattern.MatchString(tenantID) {
		return nil, apperrors.Validation("tenantId contains unsupported characters.").
			WithDetail("field", "tenantId")
	}

	r.mu.Lock()
	if e, ok := r.sessions[tenantID]; ok {
		r.mu.Unlock()
		return e.wait(ctx)
	}
	e := &entry{done: make(chan struct{})}
	r.sessions[tenantID] = e
	r.mu.Unlock()

	session, err := r.construct(ctx, tenantID)
	if err != nil {
		e.err = err
		r.mu.Lock()
		delete(r.sessions, tenantID)
		r.mu.Unlock()
		close(e.done)
		return nil, err
	}

	e.session = session
	close(e.done)
	return session, nil
}

// wait blocks until the entry's construction finishes or ctx is canceled.
func (e *entry) wait(ctx context.Context) (*Session, error) {
	select {
	case <-e.done:
		if e.err != nil {
			return nil, e.err
		}
		return e.session, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// construct opens a session scoped to the tenant's namespace, migrates the
// fixed entity set, and applies the cached index definitions best-effort.
func (r *Registry) construct(ctx context.Context, tenantID string) (*Session, error) {
	namespace := r.cfg.ContainerPrefix + tenantID

	ctx, span := otel.Tracer(meterName).Start(ctx, "tenant.session.create")
	span.SetAttributes(attribute.String("tenant.namespace", namespace))
	defer span.End()

	slowThreshold, _ := time.ParseDuration(r.cfg.SlowQueryThreshold)
	db, err := gorm.Open(r.opener.Open(namespace), &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(r.log, slowThreshold, parseLogLevel(r.cfg.LogLevel)),
	})
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Connectivity(namespace, err)
	}

	for _, e := range r.entities {
		if err := db.AutoMigrate(e); err != nil {
			span.RecordError(err)
			return nil, apperrors.Connectivity(namespace, err)
		}
	}

	r.applyIndexes(db, namespace)

	r.log.Info("Tenant session created", map[string]interface{}{
		logger.FieldTenantID:  tenantID,
		logger.FieldNamespace: namespace,
	})
	if r.sessionsCreated != nil {
		r.sessionsCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("tenant", tenantID)))
	}

	return &Session{tenantID: tenantID, namespace: namespace, db: db}, nil
}

// applyIndexes creates every cached index definition in the new namespace.
// Individual failures (index already exists, unsupported) are logged and
// skipped; index application never aborts session creation.
func (r *Registry) applyIndexes(db *gorm.DB, namespace string) {
	migrator := db.Migrator()
	for kind, defs := range r.indexCache {
		for _, def := range defs {
			if migrator.HasIndex(kind, def.Name) {
				continue
			}
			unique := ""
			if def.Unique {
				unique = "UNIQUE "
			}
			stmt := fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)",
				unique, def.Name, kind.TableName(), strings.Join(def.Columns, ", "))
			if err := db.Exec(stmt).Error; err != nil {
				r.log.Warn("Could not create index", map[string]interface{}{
					"index":               def.Name,
					"entity":              kind.TableName(),
					logger.FieldNamespace: namespace,
					logger.FieldError:     err.Error(),
				})
			}
		}
	}
}

// Tenants returns a snapshot of the tenant ids with a cached session.
func (r *Registry) Tenants() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.sessions))
	for id, e := range r.sessions {
		select {
		case <-e.done:
			if e.err == nil {
				ids = append(ids, id)
			}
		default:
		}
	}
	return ids
}

// Ping verifies the base store is still reachable. Used by the health check.
func (r *Registry) Ping(_ context.Context) error {
	return r.opener.Probe()
}

// Close closes every cached session, waiting for in-flight constructions to
// finish first so no session leaks past shutdown. Called on shutdown.
func (r *Registry) Close() error {
	r.mu.Lock()
	entries := make([]*entry, 0, len(r.sessions))
	for id, e := range r.sessions {
		entries = append(entries, e)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	var firstErr error
	for _, e := range entries {
		<-e.done
		if e.session != nil {
			if err := e.session.close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
