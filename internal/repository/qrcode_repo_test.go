package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/qr_go_server/internal/testutil"
)

func TestQRCodeRepository_GetByShortCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewQRCodeRepository(db)

	user := testutil.TestUser(t, db)
	created := testutil.TestQRCode(t, db, user.ID, testutil.WithShortCode("abc12345"))

	found, err := repo.GetByShortCode("abc12345")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, created.DestinationURL, found.DestinationURL)

	_, err = repo.GetByShortCode("missing00")
	assert.Error(t, err)
}

func TestQRCodeRepository_ExistsByShortCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewQRCodeRepository(db)

	user := testutil.TestUser(t, db)
	testutil.TestQRCode(t, db, user.ID, testutil.WithShortCode("taken123"))

	exists, err := repo.ExistsByShortCode("taken123")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByShortCode("free4567")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestQRCodeRepository_CountByUserID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewQRCodeRepository(db)

	user := testutil.TestUser(t, db)
	other := testutil.TestUser(t, db)

	testutil.TestQRCode(t, db, user.ID)
	testutil.TestQRCode(t, db, user.ID)
	testutil.TestQRCode(t, db, other.ID)

	count, err := repo.CountByUserID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestQRCodeRepository_ListByUserID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewQRCodeRepository(db)

	user := testutil.TestUser(t, db)
	for i := 0; i < 5; i++ {
		testutil.TestQRCode(t, db, user.ID)
	}

	qrs, total, err := repo.ListByUserID(user.ID, 1, 3, "")
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, qrs, 3)

	qrs, total, err = repo.ListByUserID(user.ID, 2, 3, "")
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, qrs, 2)
}

func TestQRCodeRepository_GetMostScanned(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewQRCodeRepository(db)

	user := testutil.TestUser(t, db)

	// 没有扫码记录时返回错误
	_, err := repo.GetMostScanned(user.ID)
	assert.Error(t, err)

	testutil.TestQRCode(t, db, user.ID, testutil.WithTotalScans(3))
	top := testutil.TestQRCode(t, db, user.ID, testutil.WithTotalScans(10))

	found, err := repo.GetMostScanned(user.ID)
	require.NoError(t, err)
	assert.Equal(t, top.ID, found.ID)
}

func TestQRCodeRepository_Delete_CascadesScans(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewQRCodeRepository(db)
	scanRepo := NewScanRepository(db)

	user := testutil.TestUser(t, db)
	qr := testutil.TestQRCode(t, db, user.ID)
	testutil.TestScan(t, db, qr.ID)
	testutil.TestScan(t, db, qr.ID)

	require.NoError(t, repo.Delete(qr.ID))

	_, err := repo.GetByID(qr.ID)
	assert.Error(t, err)

	count, err := scanRepo.CountByQRCode(qr.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
