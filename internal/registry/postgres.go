// Package registry provides implementations of the resolver's read-only
// registry lookup: a pgx-backed one for the live entity registry and
// in-memory ones for offline runs and tests.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/graincab/isidora/internal/errors"
	"github.com/graincab/isidora/pkg/contracts/domain"
)

// legalNameQuery resolves a batch of entity identifiers in one round trip.
const legalNameQuery = `SELECT entity_id, legal_name FROM entity_registry WHERE entity_id = ANY($1)`

// Postgres resolves canonical legal names from the entity registry over a
// pgx connection pool. The registry is read-only from the pipeline's
// perspective; each lookup is a snapshot, not a transaction.
type Postgres struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewPostgres connects a registry lookup to the given DSN. The timeout
// bounds each batch lookup; zero means no per-lookup deadline beyond the
// caller's context.
func NewPostgres(ctx context.Context, dsn string, timeout time.Duration) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.NewConnectivityError("failed to open registry pool", err)
	}
	return &Postgres{pool: pool, timeout: timeout}, nil
}

// LegalNames implements resolver.RegistryLookup.
func (p *Postgres) LegalNames(ctx context.Context, ids []int64) (domain.RegistryMapping, error) {
	if len(ids) == 0 {
		return domain.RegistryMapping{}, nil
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	rows, err := p.pool.Query(ctx, legalNameQuery, ids)
	if err != nil {
		return nil, errors.NewConnectivityError("registry query failed", err)
	}
	defer rows.Close()

	names := make(domain.RegistryMapping, len(ids))
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, errors.NewConnectivityError("registry row scan failed", err)
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewConnectivityError("registry result iteration failed", err)
	}

	slog.Debug("registry batch resolved",
		slog.Int("requested", len(ids)),
		slog.Int("resolved", len(names)))

	return names, nil
}

// Close releases the underlying pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// Static is a fixed in-memory registry mapping, used for offline runs and
// as the test fixture behind the resolver's secondary join.
type Static domain.RegistryMapping

// LegalNames implements resolver.RegistryLookup.
func (s Static) LegalNames(_ context.Context, ids []int64) (domain.RegistryMapping, error) {
	names := make(domain.RegistryMapping, len(ids))
	for _, id := range ids {
		if name, ok := s[id]; ok {
			names[id] = name
		}
	}
	return names, nil
}

// Unavailable is a registry that always fails, exercising the resolver's
// connectivity-degradation path.
type Unavailable struct{}

// LegalNames implements resolver.RegistryLookup.
func (Unavailable) LegalNames(context.Context, []int64) (domain.RegistryMapping, error) {
	return nil, errors.NewConnectivityError("registry unavailable", fmt.Errorf("no connection"))
}
