// Package objectstore implements a key-value object store on an embedded
// SQLite database. Every record carries an absolute expiry; stale records stay
// readable until DeleteOld sweeps them.
package objectstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/samber/mo"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"go.opentelemetry.io/otel/attribute"

	"github.com/flowmesh/objectstore/internal/tracing"
)

// TimeLayout is the persisted representation of the expires column (UTC).
const TimeLayout = "2006-01-02 15:04:05"

// sqliteTimeFormat is TimeLayout in strftime notation. Reading expires
// through strftime yields plain text; the driver would otherwise decode the
// DATETIME column into a time.Time.
const sqliteTimeFormat = "%Y-%m-%d %H:%M:%S"

// Years outside this range do not fit the four digit year of TimeLayout and
// would break the lexical ordering DeleteOld relies on.
const (
	minExpiryYear = 1
	maxExpiryYear = 9999
)

// record is one row of the store table
type record struct {
	bun.BaseModel `bun:"table:store"`

	Key     string `bun:"datakey,type:text,unique"`
	Data    string `bun:"data,type:text"`
	Expires string `bun:"expires,type:datetime"`
}

// Store is a key-value store on a single SQLite table. It is safe for
// concurrent use; operations are serialized on one connection.
type Store struct {
	db            *bun.DB
	location      string
	codec         Codec
	clock         clockwork.Clock
	log           zerolog.Logger
	observer      Observer
	defaultExpiry Expiry

	mu     sync.RWMutex
	closed bool
}

// Open opens or creates the store at location, a file path or
// MemoryLocation. Unless disabled with WithSweepOnOpen(false), stale
// records are removed before Open returns.
func Open(ctx context.Context, location string, opts ...Option) (*Store, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if location == "" {
		location = MemoryLocation
	}

	if err := ensureParentDir(location); err != nil {
		return nil, ConnectionError{Location: location, Err: err}
	}

	sqldb, err := o.driver.Open(ctx, location)
	if err != nil {
		return nil, ConnectionError{Location: location, Err: err}
	}

	s := &Store{
		db:            bun.NewDB(sqldb, sqlitedialect.New()),
		location:      location,
		codec:         o.codec,
		clock:         o.clock,
		log:           o.log.With().Str("component", "objectstore").Str("location", location).Logger(),
		observer:      o.observer,
		defaultExpiry: o.defaultExpiry,
	}

	if err := s.ensureSchema(ctx); err != nil {
		_ = s.db.Close()
		return nil, ConnectionError{Location: location, Err: err}
	}

	if o.sweepOnOpen {
		if _, err := s.DeleteOld(ctx); err != nil {
			_ = s.db.Close()
			return nil, ConnectionError{Location: location, Err: err}
		}
	}

	s.log.Debug().Str("codec", s.codec.Name()).Bool("sweep_on_open", o.sweepOnOpen).Msg("Object store opened")
	return s, nil
}

// ensureSchema creates the store table if it does not exist
func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*record)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create store table: %w", err)
	}
	return nil
}

// ensureParentDir creates the directory holding a file database
func ensureParentDir(location string) error {
	if location == MemoryLocation || strings.HasPrefix(location, "file:") {
		return nil
	}
	dir := filepath.Dir(location)
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return os.MkdirAll(dir, 0755)
		}
		return err
	}
	return nil
}

// Close releases the connection. Closing twice is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.db.Close(); err != nil {
		return StoreError{Op: "close", Err: err}
	}
	s.log.Debug().Msg("Object store closed")
	return nil
}

// Location returns the location the store was opened with
func (s *Store) Location() string {
	return s.location
}

// DB exposes the underlying connection for custom queries against the store
// table. Statements issued here bypass codecs, expiry resolution and metrics.
func (s *Store) DB() *bun.DB {
	return s.db
}

// acquire takes the read side of the lifecycle lock
func (s *Store) acquire() (func(), error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, ErrClosed
	}
	return s.mu.RUnlock, nil
}

func validateKey(key string) error {
	if key == "" {
		return InvalidKeyError{Key: key, Reason: "key cannot be empty"}
	}
	return nil
}

// resolve converts an expiry to its persisted form
func (s *Store) resolve(expires Expiry) (string, error) {
	if expires.IsZero() {
		expires = s.defaultExpiry
	}
	t, err := expires.Resolve(s.clock.Now())
	if err != nil {
		return "", err
	}
	if y := t.UTC().Year(); y < minExpiryYear || y > maxExpiryYear {
		return "", InvalidExpiryError{
			Input:  expires.String(),
			Reason: fmt.Sprintf("year %d is outside %d-%d", y, minExpiryYear, maxExpiryYear),
		}
	}
	return formatTime(t), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Set stores value under key, replacing any existing record. A zero expires
// applies the default expiry ("90 seconds" unless configured otherwise).
func (s *Store) Set(ctx context.Context, key string, value any, expires Expiry) (err error) {
	ctx, op := s.begin(ctx, "set", key)
	defer func() { s.finish(op, err) }()

	if err := validateKey(key); err != nil {
		return err
	}

	data, err := s.codec.Marshal(value)
	if err != nil {
		return SerializationError{Key: key, Err: err}
	}

	exp, err := s.resolve(expires)
	if err != nil {
		return err
	}

	release, err := s.acquire()
	if err != nil {
		return err
	}
	defer release()

	rec := &record{Key: key, Data: data, Expires: exp}
	_, err = s.db.NewInsert().
		Model(rec).
		On("CONFLICT (datakey) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("expires = EXCLUDED.expires").
		Exec(ctx)
	if err != nil {
		return StoreError{Op: "set", Key: key, Err: err}
	}
	return nil
}

// Get decodes the value stored under key into dest and reports whether the
// key was present. Expiry is not consulted: a stale record is returned until
// it is swept.
func (s *Store) Get(ctx context.Context, key string, dest any) (found bool, err error) {
	ctx, op := s.begin(ctx, "get", key)
	defer func() { s.finish(op, err) }()

	if err := validateKey(key); err != nil {
		return false, err
	}

	release, err := s.acquire()
	if err != nil {
		return false, err
	}
	defer release()

	rec := new(record)
	err = s.db.NewSelect().
		Model(rec).
		Column("data").
		Where("datakey = ?", key).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, StoreError{Op: "get", Key: key, Err: err}
	}

	if err := s.codec.Unmarshal(rec.Data, dest); err != nil {
		return false, SerializationError{Key: key, Err: err}
	}
	return true, nil
}

// Lookup returns the value stored under key as a T, or None when the key is
// absent. Unlike a bare Get it distinguishes a missing key from a stored
// zero value.
func Lookup[T any](ctx context.Context, s *Store, key string) (mo.Option[T], error) {
	var v T
	found, err := s.Get(ctx, key, &v)
	if err != nil || !found {
		return mo.None[T](), err
	}
	return mo.Some(v), nil
}

// Exists reports whether a record is present for key, stale or not.
func (s *Store) Exists(ctx context.Context, key string) (exists bool, err error) {
	ctx, op := s.begin(ctx, "exists", key)
	defer func() { s.finish(op, err) }()

	if err := validateKey(key); err != nil {
		return false, err
	}

	release, err := s.acquire()
	if err != nil {
		return false, err
	}
	defer release()

	exists, err = s.db.NewSelect().
		Model((*record)(nil)).
		Where("datakey = ?", key).
		Exists(ctx)
	if err != nil {
		return false, StoreError{Op: "exists", Key: key, Err: err}
	}
	return exists, nil
}

// SetExpires changes only the expiry of an existing record. It returns false
// when key is absent and never creates a record.
func (s *Store) SetExpires(ctx context.Context, key string, expires Expiry) (updated bool, err error) {
	ctx, op := s.begin(ctx, "set_expires", key)
	defer func() { s.finish(op, err) }()

	if err := validateKey(key); err != nil {
		return false, err
	}

	exp, err := s.resolve(expires)
	if err != nil {
		return false, err
	}

	release, err := s.acquire()
	if err != nil {
		return false, err
	}
	defer release()

	res, err := s.db.NewUpdate().
		Model((*record)(nil)).
		Set("expires = ?", exp).
		Where("datakey = ?", key).
		Exec(ctx)
	if err != nil {
		return false, StoreError{Op: "set_expires", Key: key, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, StoreError{Op: "set_expires", Key: key, Err: err}
	}
	return n > 0, nil
}

// GetExpires returns the absolute expiry of key in the clock's location, or
// None when key is absent.
func (s *Store) GetExpires(ctx context.Context, key string) (expires mo.Option[time.Time], err error) {
	ctx, op := s.begin(ctx, "get_expires", key)
	defer func() { s.finish(op, err) }()

	if err := validateKey(key); err != nil {
		return mo.None[time.Time](), err
	}

	release, err := s.acquire()
	if err != nil {
		return mo.None[time.Time](), err
	}
	defer release()

	rec := new(record)
	err = s.db.NewSelect().
		Model(rec).
		ColumnExpr("strftime(?, expires) AS expires", sqliteTimeFormat).
		Where("datakey = ?", key).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return mo.None[time.Time](), nil
	}
	if err != nil {
		return mo.None[time.Time](), StoreError{Op: "get_expires", Key: key, Err: err}
	}

	t, err := time.ParseInLocation(TimeLayout, rec.Expires, time.UTC)
	if err != nil {
		return mo.None[time.Time](), StoreError{Op: "get_expires", Key: key, Err: fmt.Errorf("malformed expires column %q: %w", rec.Expires, err)}
	}
	return mo.Some(t.In(s.clock.Now().Location())), nil
}

// Delete removes the record for key and reports whether one was removed.
func (s *Store) Delete(ctx context.Context, key string) (deleted bool, err error) {
	ctx, op := s.begin(ctx, "delete", key)
	defer func() { s.finish(op, err) }()

	if err := validateKey(key); err != nil {
		return false, err
	}

	release, err := s.acquire()
	if err != nil {
		return false, err
	}
	defer release()

	res, err := s.db.NewDelete().
		Model((*record)(nil)).
		Where("datakey = ?", key).
		Exec(ctx)
	if err != nil {
		return false, StoreError{Op: "delete", Key: key, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, StoreError{Op: "delete", Key: key, Err: err}
	}
	return n > 0, nil
}

// DeleteOld removes every record whose expiry is strictly before the current
// time and returns how many were removed.
func (s *Store) DeleteOld(ctx context.Context) (removed int64, err error) {
	ctx, op := s.begin(ctx, "delete_old", "")
	defer func() { s.finish(op, err) }()

	release, err := s.acquire()
	if err != nil {
		return 0, err
	}
	defer release()

	now := formatTime(s.clock.Now())
	res, err := s.db.NewDelete().
		Model((*record)(nil)).
		Where("expires < ?", now).
		Exec(ctx)
	if err != nil {
		return 0, StoreError{Op: "delete_old", Err: err}
	}
	removed, err = res.RowsAffected()
	if err != nil {
		return 0, StoreError{Op: "delete_old", Err: err}
	}

	op.span.SetAttributes(attribute.Int64(tracing.AttrRemoved, removed))
	s.observer.ObserveSweep(removed)
	if removed > 0 {
		s.log.Info().Int64("removed", removed).Str("before", now).Msg("Swept stale records")
	} else {
		s.log.Debug().Str("before", now).Msg("No stale records to sweep")
	}
	return removed, nil
}

// Keys lists the keys starting with prefix in ascending order, stale records
// included.
func (s *Store) Keys(ctx context.Context, prefix string) (keys []string, err error) {
	ctx, op := s.begin(ctx, "keys", "")
	defer func() { s.finish(op, err) }()

	release, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	var recs []record
	q := s.db.NewSelect().
		Model(&recs).
		Column("datakey").
		OrderExpr("datakey ASC")
	if prefix != "" {
		q = q.Where("substr(datakey, 1, ?) = ?", utf8.RuneCountInString(prefix), prefix)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, StoreError{Op: "keys", Err: err}
	}

	keys = make([]string, 0, len(recs))
	for _, rec := range recs {
		keys = append(keys, rec.Key)
	}
	return keys, nil
}

// Len returns the number of records, stale ones included.
func (s *Store) Len(ctx context.Context) (n int, err error) {
	ctx, op := s.begin(ctx, "len", "")
	defer func() { s.finish(op, err) }()

	release, err := s.acquire()
	if err != nil {
		return 0, err
	}
	defer release()

	n, err = s.db.NewSelect().Model((*record)(nil)).Count(ctx)
	if err != nil {
		return 0, StoreError{Op: "len", Err: err}
	}
	return n, nil
}
