// ABOUTME: Contract tests run against every storage backend.
// ABOUTME: SQLite and the in-memory KV always run; Postgres needs WELLNESS_TEST_POSTGRES_DSN.
package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/wellness/internal/models"
)

type backend struct {
	name string
	open func(t *testing.T) Store
}

func backends() []backend {
	return []backend{
		{"sqlite", func(t *testing.T) Store {
			s, err := OpenSQLite(filepath.Join(t.TempDir(), "wellness.db"))
			require.NoError(t, err)
			return s
		}},
		{"memory", func(t *testing.T) Store {
			return OpenMemory()
		}},
		{"postgres", func(t *testing.T) Store {
			dsn := os.Getenv("WELLNESS_TEST_POSTGRES_DSN")
			if dsn == "" {
				t.Skip("WELLNESS_TEST_POSTGRES_DSN not set")
			}
			s, err := OpenPostgres(context.Background(), dsn)
			require.NoError(t, err)
			return s
		}},
	}
}

// forEachBackend runs fn once per backend with a fresh store.
func forEachBackend(t *testing.T, fn func(t *testing.T, s Store)) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			t.Cleanup(func() { _ = s.Close() })
			fn(t, s)
		})
	}
}

// uniqueUser keeps Postgres runs isolated from each other.
func uniqueUser() string {
	return "user-" + uuid.NewString()
}

var day = time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)

func weightAt(user string, kg float64, at time.Time) *models.WeightLog {
	w := models.NewWeightLog(kg).WithRecordedAt(at)
	w.UserID = user
	return w
}

func TestInsertAssignsIDAndTimestamp(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		user := uniqueUser()

		w := models.NewWeightLog(72.5)
		w.UserID = user
		before := time.Now().Add(-time.Second)

		stored, err := s.Weights().Insert(ctx, w)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, stored.ID)
		assert.True(t, stored.RecordedAt.After(before))

		got, err := s.Weights().ListByUserAndRange(ctx, user, All, Ascending)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, stored.ID, got[0].ID)
		assert.Equal(t, 72.5, got[0].Weight)
		assert.Equal(t, user, got[0].UserID)
		assert.True(t, stored.RecordedAt.Equal(got[0].RecordedAt) ||
			stored.RecordedAt.Sub(got[0].RecordedAt).Abs() < time.Microsecond)
	})
}

func TestInsertRequiresUser(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		_, err := s.Weights().Insert(context.Background(), models.NewWeightLog(70))
		require.Error(t, err)
		assert.True(t, IsKind(err, KindConstraint))
		assert.ErrorIs(t, err, ErrMissingUser)
	})
}

func TestListRangeAndOrder(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		user := uniqueUser()
		other := uniqueUser()

		for i, kg := range []float64{80, 79, 78, 77} {
			_, err := s.Weights().Insert(ctx, weightAt(user, kg, day.Add(time.Duration(i)*24*time.Hour)))
			require.NoError(t, err)
		}
		_, err := s.Weights().Insert(ctx, weightAt(other, 60, day.Add(24*time.Hour)))
		require.NoError(t, err)

		rng := Range{From: day.Add(24 * time.Hour), To: day.Add(3 * 24 * time.Hour)}

		asc, err := s.Weights().ListByUserAndRange(ctx, user, rng, Ascending)
		require.NoError(t, err)
		require.Len(t, asc, 2)
		assert.Equal(t, 79.0, asc[0].Weight)
		assert.Equal(t, 78.0, asc[1].Weight)

		desc, err := s.Weights().ListByUserAndRange(ctx, user, Range{}, Descending)
		require.NoError(t, err)
		require.Len(t, desc, 4)
		assert.Equal(t, 77.0, desc[0].Weight)
		assert.Equal(t, 80.0, desc[3].Weight)
	})
}

func TestListEmptyIsNotNil(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		got, err := s.Diets().ListByUserAndRange(context.Background(), uniqueUser(), All, Descending)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestDietAndFitnessRoundTrip(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		user := uniqueUser()

		d := models.NewDietLog("Oatmeal", 350, models.MealBreakfast).WithMacros(12, 60, 6)
		d.UserID = user
		d.IsAIGenerated = true
		_, err := s.Diets().Insert(ctx, d)
		require.NoError(t, err)

		f := models.NewFitnessLog(models.ActivityYoga, 45, 150)
		f.UserID = user
		_, err = s.Fitness().Insert(ctx, f)
		require.NoError(t, err)

		diets, err := s.Diets().ListByUserAndRange(ctx, user, All, Ascending)
		require.NoError(t, err)
		require.Len(t, diets, 1)
		assert.Equal(t, "Oatmeal", diets[0].Description)
		assert.Equal(t, 350, diets[0].Calories)
		assert.Equal(t, 12.0, diets[0].ProteinG)
		assert.Equal(t, 60.0, diets[0].CarbsG)
		assert.Equal(t, 6.0, diets[0].FatG)
		assert.Equal(t, models.MealBreakfast, diets[0].MealType)
		assert.True(t, diets[0].IsAIGenerated)

		fits, err := s.Fitness().ListByUserAndRange(ctx, user, All, Ascending)
		require.NoError(t, err)
		require.Len(t, fits, 1)
		assert.Equal(t, models.ActivityYoga, fits[0].ActivityType)
		assert.Equal(t, 45, fits[0].DurationMinutes)
		assert.Equal(t, 150, fits[0].CaloriesBurned)
	})
}

func TestDeleteIsIdempotentAndScoped(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		user := uniqueUser()

		w, err := s.Weights().Insert(ctx, weightAt(user, 70, day))
		require.NoError(t, err)

		// Another user cannot delete it.
		require.NoError(t, s.Weights().DeleteByID(ctx, uniqueUser(), w.ID))
		got, err := s.Weights().ListByUserAndRange(ctx, user, All, Ascending)
		require.NoError(t, err)
		assert.Len(t, got, 1)

		require.NoError(t, s.Weights().DeleteByID(ctx, user, w.ID))
		require.NoError(t, s.Weights().DeleteByID(ctx, user, w.ID))
		require.NoError(t, s.Weights().DeleteByID(ctx, user, uuid.New()))

		got, err = s.Weights().ListByUserAndRange(ctx, user, All, Ascending)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestProfileUpsert(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		user := uniqueUser()

		prof, err := s.Profiles().Get(ctx, user)
		require.NoError(t, err)
		assert.Nil(t, prof)

		prof, err = s.Profiles().Upsert(ctx, user, models.ProfileFields{TargetWeight: models.Float(65)})
		require.NoError(t, err)
		require.NotNil(t, prof)
		assert.Equal(t, user, prof.ID)
		require.NotNil(t, prof.TargetWeight)
		assert.Equal(t, 65.0, *prof.TargetWeight)
		assert.Nil(t, prof.StartWeight)

		// Only the named field changes.
		prof, err = s.Profiles().Upsert(ctx, user, models.ProfileFields{StartWeight: models.Float(80)})
		require.NoError(t, err)
		require.NotNil(t, prof.TargetWeight)
		assert.Equal(t, 65.0, *prof.TargetWeight)
		require.NotNil(t, prof.StartWeight)
		assert.Equal(t, 80.0, *prof.StartWeight)

		prof, err = s.Profiles().Get(ctx, user)
		require.NoError(t, err)
		require.NotNil(t, prof)
		assert.Equal(t, 80.0, *prof.StartWeight)
	})
}

func TestSQLiteCheckConstraint(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "wellness.db"))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Weights().Insert(context.Background(), weightAt("u1", -3, day))
	require.Error(t, err)
	assert.True(t, IsKind(err, KindConstraint), "got %v", err)
}

func TestSQLitePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wellness.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	_, err = s.Weights().Insert(context.Background(), weightAt("u1", 70, day))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Weights().ListByUserAndRange(context.Background(), "u1", All, Ascending)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRangeContains(t *testing.T) {
	r := Range{From: day, To: day.Add(time.Hour)}

	assert.True(t, r.Contains(day))
	assert.True(t, r.Contains(day.Add(59*time.Minute)))
	assert.False(t, r.Contains(day.Add(time.Hour)))
	assert.False(t, r.Contains(day.Add(-time.Nanosecond)))
	assert.True(t, All.Contains(time.Time{}))
}

func TestTimeValueScan(t *testing.T) {
	want := time.Date(2026, 3, 10, 8, 30, 0, 123, time.UTC)

	tests := []struct {
		name string
		src  any
	}{
		{"time", want},
		{"text", encodeTime(want)},
		{"bytes", []byte(encodeTime(want))},
		{"rfc3339", want.Format(time.RFC3339Nano)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v timeValue
			require.NoError(t, v.Scan(tt.src))
			assert.True(t, want.Equal(v.Time))
		})
	}

	var v timeValue
	assert.Error(t, v.Scan(42))
}

func TestEncodeTimeSortsLexically(t *testing.T) {
	a := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	b := a.Add(time.Nanosecond)
	c := time.Date(2026, 3, 10, 11, 0, 0, 0, time.FixedZone("x", 3600))

	assert.Less(t, encodeTime(a), encodeTime(b))
	assert.Less(t, encodeTime(b), encodeTime(c))
}
