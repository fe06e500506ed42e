// ABOUTME: Generic SQL implementation of Table and ProfileTable.
// ABOUTME: Shared by the SQLite and Postgres backends through a small querier port.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/wellness/internal/models"
)

var errNoRows = errors.New("no rows")

type scanner interface {
	Scan(dest ...any) error
}

type rows interface {
	scanner
	Next() bool
	Err() error
	Close()
}

// querier hides the difference between database/sql and pgxpool.
type querier interface {
	exec(ctx context.Context, query string, args ...any) error
	query(ctx context.Context, query string, args ...any) (rows, error)
	// queryRow reports a missing row as errNoRows from Scan.
	queryRow(ctx context.Context, query string, args ...any) scanner
	// classify maps a driver error to a StoreError kind.
	classify(err error) ErrorKind
	close() error
}

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

func (d dialect) placeholder(n int) string {
	if d == dialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func (d dialect) placeholders(from, count int) string {
	ph := make([]string, count)
	for i := range ph {
		ph[i] = d.placeholder(from + i)
	}
	return strings.Join(ph, ", ")
}

type sqlTable[R models.Record] struct {
	db      querier
	dialect dialect
	codec   codec[R]
	now     func() time.Time
}

func (t *sqlTable[R]) fail(op string, err error) error {
	return storeErr(op, t.codec.collection, t.db.classify(err), err)
}

func (t *sqlTable[R]) selectList() string {
	return "id, user_id, recorded_at, " + strings.Join(t.codec.columns, ", ")
}

func (t *sqlTable[R]) ListByUserAndRange(ctx context.Context, userID string, rng Range, order Order) ([]R, error) {
	var q strings.Builder
	args := []any{userID}
	fmt.Fprintf(&q, "SELECT %s FROM %s WHERE user_id = %s",
		t.selectList(), t.codec.collection, t.dialect.placeholder(1))

	if !rng.From.IsZero() {
		args = append(args, rng.From)
		fmt.Fprintf(&q, " AND recorded_at >= %s", t.dialect.placeholder(len(args)))
	}
	if !rng.To.IsZero() {
		args = append(args, rng.To)
		fmt.Fprintf(&q, " AND recorded_at < %s", t.dialect.placeholder(len(args)))
	}
	fmt.Fprintf(&q, " ORDER BY recorded_at %s, id %s", order.sql(), order.sql())

	rs, err := t.db.query(ctx, q.String(), args...)
	if err != nil {
		return nil, t.fail("list", err)
	}
	defer rs.Close()

	out := make([]R, 0)
	for rs.Next() {
		rec, err := t.codec.scan(rs)
		if err != nil {
			return nil, t.fail("list", err)
		}
		out = append(out, rec)
	}
	if err := rs.Err(); err != nil {
		return nil, t.fail("list", err)
	}
	return out, nil
}

func (t *sqlTable[R]) Insert(ctx context.Context, rec R) (R, error) {
	var zero R
	m := rec.Meta()
	if m.UserID == "" {
		return zero, storeErr("insert", t.codec.collection, KindConstraint, ErrMissingUser)
	}
	stamp(m, t.now())

	cols := append([]string{"id", "user_id", "recorded_at"}, t.codec.columns...)
	args := append([]any{m.ID.String(), m.UserID, m.RecordedAt}, t.codec.values(rec)...)
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.codec.collection, strings.Join(cols, ", "), t.dialect.placeholders(1, len(cols)))

	if err := t.db.exec(ctx, q, args...); err != nil {
		return zero, t.fail("insert", err)
	}
	return rec, nil
}

func (t *sqlTable[R]) DeleteByID(ctx context.Context, userID string, id uuid.UUID) error {
	q := fmt.Sprintf("DELETE FROM %s WHERE id = %s AND user_id = %s",
		t.codec.collection, t.dialect.placeholder(1), t.dialect.placeholder(2))
	if err := t.db.exec(ctx, q, id.String(), userID); err != nil {
		return t.fail("delete", err)
	}
	return nil
}

type sqlProfiles struct {
	db      querier
	dialect dialect
	now     func() time.Time
}

func (p *sqlProfiles) fail(op string, err error) error {
	return storeErr(op, models.CollectionProfile, p.db.classify(err), err)
}

func (p *sqlProfiles) Get(ctx context.Context, userID string) (*models.Profile, error) {
	q := "SELECT id, target_weight, start_weight, updated_at FROM profiles WHERE id = " + p.dialect.placeholder(1)

	var (
		prof    models.Profile
		updated timeValue
	)
	err := p.db.queryRow(ctx, q, userID).Scan(&prof.ID, &prof.TargetWeight, &prof.StartWeight, &updated)
	if errors.Is(err, errNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, p.fail("get", err)
	}
	prof.UpdatedAt = updated.Time
	return &prof, nil
}

func (p *sqlProfiles) Upsert(ctx context.Context, userID string, fields models.ProfileFields) (*models.Profile, error) {
	if userID == "" {
		return nil, storeErr("upsert", models.CollectionProfile, KindConstraint, ErrMissingUser)
	}
	q := fmt.Sprintf(`INSERT INTO profiles (id, target_weight, start_weight, updated_at)
		VALUES (%s)
		ON CONFLICT (id) DO UPDATE SET
			target_weight = COALESCE(excluded.target_weight, profiles.target_weight),
			start_weight = COALESCE(excluded.start_weight, profiles.start_weight),
			updated_at = excluded.updated_at`, p.dialect.placeholders(1, 4))

	if err := p.db.exec(ctx, q, userID, fields.TargetWeight, fields.StartWeight, p.now()); err != nil {
		return nil, p.fail("upsert", err)
	}

	prof, err := p.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return prof, nil
}

// SQLStore is a Store backed by SQLite or Postgres.
type SQLStore struct {
	db       querier
	weights  *sqlTable[*models.WeightLog]
	diets    *sqlTable[*models.DietLog]
	fitness  *sqlTable[*models.FitnessLog]
	profiles *sqlProfiles
}

var _ Store = (*SQLStore)(nil)

func newSQLStore(db querier, d dialect) *SQLStore {
	now := time.Now
	return &SQLStore{
		db:       db,
		weights:  &sqlTable[*models.WeightLog]{db: db, dialect: d, codec: weightCodec, now: now},
		diets:    &sqlTable[*models.DietLog]{db: db, dialect: d, codec: dietCodec, now: now},
		fitness:  &sqlTable[*models.FitnessLog]{db: db, dialect: d, codec: fitnessCodec, now: now},
		profiles: &sqlProfiles{db: db, dialect: d, now: now},
	}
}

func (s *SQLStore) Weights() Table[*models.WeightLog]  { return s.weights }
func (s *SQLStore) Diets() Table[*models.DietLog]      { return s.diets }
func (s *SQLStore) Fitness() Table[*models.FitnessLog] { return s.fitness }
func (s *SQLStore) Profiles() ProfileTable             { return s.profiles }

// Close releases the underlying connection pool.
func (s *SQLStore) Close() error {
	return s.db.close()
}
