package booking

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/dbmetrics"
)

type execCall struct {
	query string
	args  []interface{}
}

// recordingTx транзакция, запоминающая выполненные команды
type recordingTx struct {
	calls []execCall
	errAt map[int]error
}

func (tx *recordingTx) ExecContext(_ context.Context, query string, args ...interface{}) (sql.Result, error) {
	tx.calls = append(tx.calls, execCall{query: query, args: args})
	return nil, tx.errAt[len(tx.calls)-1]
}

func (tx *recordingTx) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, sql.ErrConnDone
}

func (tx *recordingTx) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

func (tx *recordingTx) Commit() error   { return nil }
func (tx *recordingTx) Rollback() error { return nil }

func TestProviderFilterQuery_WindowAndExclusion(t *testing.T) {
	from := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	to := from.Add(2 * time.Hour)
	exclude := int64(42)

	query, args, err := providerFilterQuery(domain.ProviderBookingsFilter{
		ProviderID:       5,
		From:             &from,
		To:               &to,
		ExcludeBookingID: &exclude,
	}).ToSql()

	require.NoError(t, err)
	assert.Contains(t, query, " FROM bookings WHERE provider_id = $1"+
		" AND start_at - make_interval(mins => buffer_before_minutes) < $2"+
		" AND end_at + make_interval(mins => buffer_after_minutes) > $3"+
		" AND id <> $4"+
		" AND status NOT IN ($5,$6,$7)"+
		" ORDER BY start_at ASC, id ASC")
	assert.Equal(t, []interface{}{
		int64(5), to, from, int64(42),
		string(domain.StatusCancelled), string(domain.StatusCompleted), string(domain.StatusNoShow),
	}, args)
}

func TestProviderFilterQuery_Status(t *testing.T) {
	status := domain.StatusPending

	query, args, err := providerFilterQuery(domain.ProviderBookingsFilter{
		ProviderID: 5,
		Status:     &status,
	}).ToSql()

	require.NoError(t, err)
	assert.Contains(t, query, "WHERE provider_id = $1 AND status = $2 ORDER BY")
	assert.NotContains(t, query, "NOT IN")
	assert.NotContains(t, query, "make_interval")
	assert.Equal(t, []interface{}{int64(5), "pending"}, args)
}

func TestProviderFilterQuery_IncludeInactive(t *testing.T) {
	query, args, err := providerFilterQuery(domain.ProviderBookingsFilter{
		ProviderID:      5,
		IncludeInactive: true,
	}).ToSql()

	require.NoError(t, err)
	assert.Contains(t, query, "WHERE provider_id = $1 ORDER BY start_at ASC, id ASC")
	assert.NotContains(t, query, "status")
	assert.Equal(t, []interface{}{int64(5)}, args)
}

func TestProviderFilterQuery_OnlyUpperBound(t *testing.T) {
	to := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	query, args, err := providerFilterQuery(domain.ProviderBookingsFilter{
		ProviderID:      5,
		To:              &to,
		IncludeInactive: true,
	}).ToSql()

	require.NoError(t, err)
	assert.Contains(t, query, "start_at - make_interval(mins => buffer_before_minutes) < $2")
	assert.NotContains(t, query, "end_at + make_interval")
	assert.Equal(t, []interface{}{int64(5), to}, args)
}

func TestLockProvider_SetsTimeoutThenTakesAdvisoryLock(t *testing.T) {
	tx := &recordingTx{}
	ctx := dbmetrics.WithTx(context.Background(), tx)
	repo := NewRepository(nil)

	err := repo.LockProvider(ctx, 7, 250*time.Millisecond)

	require.NoError(t, err)
	require.Len(t, tx.calls, 2)
	assert.Equal(t, "SELECT set_config('lock_timeout', $1, true)", tx.calls[0].query)
	assert.Equal(t, []interface{}{"250ms"}, tx.calls[0].args)
	assert.Equal(t, "SELECT pg_advisory_xact_lock($1::bigint)", tx.calls[1].query)
	assert.Equal(t, []interface{}{int64(7)}, tx.calls[1].args)
}

func TestLockProvider_ContentionIsLockTimeout(t *testing.T) {
	tx := &recordingTx{errAt: map[int]error{1: &pq.Error{Code: "55P03"}}}
	ctx := dbmetrics.WithTx(context.Background(), tx)
	repo := NewRepository(nil)

	err := repo.LockProvider(ctx, 7, time.Second)

	assert.ErrorIs(t, err, ErrLockTimeout)
	assert.True(t, IsContention(err))
}

func TestLockProvider_RequiresTransaction(t *testing.T) {
	repo := NewRepository(&recordingTx{})

	err := repo.LockProvider(context.Background(), 7, time.Second)

	assert.ErrorIs(t, err, ErrTransaction)
}

func TestSetLockTimeout(t *testing.T) {
	t.Run("explicit timeout", func(t *testing.T) {
		tx := &recordingTx{}
		ctx := dbmetrics.WithTx(context.Background(), tx)

		require.NoError(t, NewRepository(nil).SetLockTimeout(ctx, 2*time.Second))

		require.Len(t, tx.calls, 1)
		assert.Equal(t, "SELECT set_config('lock_timeout', $1, true)", tx.calls[0].query)
		assert.Equal(t, []interface{}{"2000ms"}, tx.calls[0].args)
	})

	t.Run("zero falls back to default", func(t *testing.T) {
		tx := &recordingTx{}
		ctx := dbmetrics.WithTx(context.Background(), tx)

		require.NoError(t, NewRepository(nil).SetLockTimeout(ctx, 0))

		require.Len(t, tx.calls, 1)
		assert.Equal(t, []interface{}{fmt.Sprintf("%dms", domain.DefaultLockTimeoutMillis)}, tx.calls[0].args)
	})

	t.Run("outside transaction", func(t *testing.T) {
		err := NewRepository(&recordingTx{}).SetLockTimeout(context.Background(), time.Second)

		assert.ErrorIs(t, err, ErrTransaction)
	})
}
