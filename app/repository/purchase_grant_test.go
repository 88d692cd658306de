package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vibast-solutions/ms-go-purchases/app/entity"
)

func newMockDB(t *testing.T) (DBTX, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, mock
}

func newTestGrant() *entity.PurchaseGrant {
	return &entity.PurchaseGrant{
		TransactionID: "tx_1",
		ViewerID:      "viewer-1",
		VideoID:       "video-1",
		AmountCents:   2999,
		Currency:      "usd",
		CreatedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestPurchaseGrantCreateIfAbsentInserts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPurchaseGrantRepository(db)
	grant := newTestGrant()

	mock.ExpectExec("INSERT INTO purchase_grants").
		WithArgs("tx_1", "viewer-1", "video-1", int64(2999), "usd", grant.CreatedAt).
		WillReturnResult(sqlmock.NewResult(41, 1))

	created, err := repo.CreateIfAbsent(context.Background(), grant)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, uint64(41), grant.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseGrantCreateIfAbsentTreatsDuplicateAsExisting(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPurchaseGrantRepository(db)

	mock.ExpectExec("INSERT INTO purchase_grants").
		WillReturnError(&mysqlDriver.MySQLError{Number: 1062, Message: "Duplicate entry 'tx_1' for key 'ux_purchase_grants_transaction_id'"})

	created, err := repo.CreateIfAbsent(context.Background(), newTestGrant())
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseGrantCreateIfAbsentPropagatesStoreErrors(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPurchaseGrantRepository(db)
	storeErr := errors.New("connection reset")

	mock.ExpectExec("INSERT INTO purchase_grants").WillReturnError(storeErr)

	created, err := repo.CreateIfAbsent(context.Background(), newTestGrant())
	assert.ErrorIs(t, err, storeErr)
	assert.False(t, created)
}

func TestPurchaseGrantExistsForViewerVideo(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPurchaseGrantRepository(db)

	mock.ExpectQuery("SELECT 1\\s+FROM purchase_grants").
		WithArgs("viewer-1", "video-1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery("SELECT 1\\s+FROM purchase_grants").
		WithArgs("viewer-2", "video-1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	exists, err := repo.ExistsForViewerVideo(context.Background(), "viewer-1", "video-1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsForViewerVideo(context.Background(), "viewer-2", "video-1")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseGrantFindByTransactionIDMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPurchaseGrantRepository(db)

	mock.ExpectQuery("FROM purchase_grants").
		WithArgs("tx_missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "transaction_id", "viewer_id", "video_id", "amount_cents", "currency", "created_at"}))

	grant, err := repo.FindByTransactionID(context.Background(), "tx_missing")
	require.NoError(t, err)
	assert.Nil(t, grant)
}

func TestPurchaseGrantListByViewer(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPurchaseGrantRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery("FROM purchase_grants\\s+WHERE viewer_id = \\?").
		WithArgs("viewer-1", int32(10), int32(0)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "transaction_id", "viewer_id", "video_id", "amount_cents", "currency", "created_at"}).
			AddRow(2, "tx_2", "viewer-1", "video-1", 2999, "usd", now).
			AddRow(1, "tx_1", "viewer-1", "video-1", 2999, "usd", now))

	grants, err := repo.ListByViewer(context.Background(), "viewer-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, grants, 2)
	assert.Equal(t, "tx_2", grants[0].TransactionID)
	assert.Equal(t, "video-1", grants[1].VideoID)
}
