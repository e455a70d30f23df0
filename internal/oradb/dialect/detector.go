package dialect

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Querier is the minimal database/sql surface the Detector needs to run
// its probe set. Both *sql.DB and *sql.Conn satisfy it, so the Detector
// can probe either a shared pool handle or a single borrowed connection.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// minRetryInterval is the failure-policy floor from spec.md §4.2: a failed
// probe must not be retried more often than once per 30 seconds.
const minRetryInterval = 30 * time.Second

// Detector probes Oracle once per connection cohort and caches the result
// under a TTL, swapping the Set pointer atomically on refresh. Reads never
// block beyond a quick RLock.
type Detector struct {
	mu          sync.RWMutex
	current     *Set
	lastProbe   time.Time
	lastFailure time.Time
	ttl         time.Duration
	logger      zerolog.Logger
	group       singleflight.Group
}

// New builds a Detector with the given refresh TTL. The first call to
// Snapshot (or Supports) triggers the initial probe.
func New(ttl time.Duration, logger zerolog.Logger) *Detector {
	return &Detector{ttl: ttl, logger: logger.With().Str("component", "dialect").Logger()}
}

// Snapshot returns the current capability Set, probing (or refreshing a
// stale cache) via q if needed.
func (d *Detector) Snapshot(ctx context.Context, q Querier) *Set {
	d.mu.RLock()
	cur := d.current
	stale := cur == nil || time.Since(d.lastProbe) > d.ttl
	lastFailure := d.lastFailure
	d.mu.RUnlock()

	if !stale {
		return cur
	}

	if !lastFailure.IsZero() && time.Since(lastFailure) < minRetryInterval {
		if cur != nil {
			return cur
		}
		return degradedSet(nil)
	}

	return d.refresh(ctx, q)
}

// Supports is a convenience that probes if necessary and reports whether
// tag is supported in the resulting snapshot.
func (d *Detector) Supports(ctx context.Context, q Querier, tag Tag) bool {
	return d.Snapshot(ctx, q).Supports(tag)
}

// refresh collapses concurrent stale-snapshot callers into a single probe
// via singleflight: only the first caller of a given refresh window hits
// Oracle, the rest wait on and share its result.
func (d *Detector) refresh(ctx context.Context, q Querier) *Set {
	v, _, _ := d.group.Do("refresh", func() (any, error) {
		next, err := probe(ctx, q)

		d.mu.Lock()
		defer d.mu.Unlock()

		d.lastProbe = time.Now()
		if err != nil {
			d.lastFailure = d.lastProbe
			d.logger.Warn().Err(err).Msg("capability probe failed, caching degraded set")
			next = degradedSet(err)
		} else {
			d.lastFailure = time.Time{}
		}
		d.current = next
		return d.current, nil
	})
	return v.(*Set)
}

// probe runs the fixed probe set (version view, option view, container
// view) and materializes a Capability Set.
func probe(ctx context.Context, q Querier) (*Set, error) {
	s := &Set{flags: map[Tag]bool{}}

	var versionStr string
	row := q.QueryRowContext(ctx, `SELECT BANNER FROM V$VERSION WHERE BANNER LIKE 'Oracle%'`)
	if err := row.Scan(&versionStr); err != nil {
		return nil, err
	}
	s.Version = versionStr
	major := parseMajorVersion(versionStr)

	switch {
	case strings.Contains(versionStr, "Enterprise Edition"):
		s.Edition = "Enterprise Edition"
	case strings.Contains(versionStr, "Standard Edition"):
		s.Edition = "Standard Edition"
	default:
		s.Edition = "unknown"
	}

	if major >= 12 {
		var cdb string
		if err := q.QueryRowContext(ctx, `SELECT CDB FROM V$DATABASE`).Scan(&cdb); err == nil {
			s.IsCDB = cdb == "YES"
			s.flags[TagPDB] = s.IsCDB
		}
	}

	rows, err := q.QueryContext(ctx, `SELECT PARAMETER, VALUE FROM V$OPTION WHERE PARAMETER IN ('Partitioning','Parallel execution')`)
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var param, value string
			if scanErr := rows.Scan(&param, &value); scanErr != nil {
				continue
			}
			enabled := value == "TRUE"
			switch param {
			case "Partitioning":
				s.flags[TagPartitioning] = enabled
			case "Parallel execution":
				s.flags[TagParallel] = enabled
			}
		}
	}

	s.flags[TagAWR] = s.Edition == "Enterprise Edition"
	s.flags[TagJSON] = major >= 12
	s.flags[TagVector] = major >= 23
	s.flags[TagTDE] = s.Edition == "Enterprise Edition"
	s.flags[TagVault] = s.Edition == "Enterprise Edition" && major >= 12

	return s, nil
}

// parseMajorVersion extracts the leading major version number from a
// V$VERSION banner like "Oracle Database 19c Enterprise Edition Release
// 19.0.0.0.0".
func parseMajorVersion(banner string) int {
	fields := strings.Fields(banner)
	for _, f := range fields {
		trimmed := strings.TrimRight(f, "abcdefghijklmnopqrstuvwxyz")
		if n, err := strconv.Atoi(trimmed); err == nil {
			return n
		}
	}
	return 0
}
