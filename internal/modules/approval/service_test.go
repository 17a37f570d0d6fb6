package approval

import (
	"context"
	"fmt"
	"testing"

	"admarket/internal/domain"
	"admarket/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	// Registers the cgo-free "sqlite" database/sql driver used below.
	_ "modernc.org/sqlite"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:approval_test_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.AdSelection{}))

	return NewService(repository.NewSelectionRepository(db), nil), db
}

func seedSelection(t *testing.T, db *gorm.DB, adID, websiteID int64) *domain.AdSelection {
	t.Helper()
	sel := &domain.AdSelection{AdID: adID, WebsiteID: websiteID}
	sel.SetCategoryIDs([]int64{1})
	require.NoError(t, db.Create(sel).Error)
	return sel
}

func TestApproveMarksOnlyTheMatchingWebsite(t *testing.T) {
	svc, db := setupTestService(t)
	onSiteA := seedSelection(t, db, 1, 10)
	onSiteB := seedSelection(t, db, 1, 20)

	require.NoError(t, svc.Approve(context.Background(), 1, 10))

	var a, b domain.AdSelection
	require.NoError(t, db.First(&a, onSiteA.ID).Error)
	require.NoError(t, db.First(&b, onSiteB.ID).Error)

	assert.True(t, a.Approved)
	require.NotNil(t, a.ApprovedAt)
	assert.False(t, b.Approved, "approval never leaks to another website")
	assert.Nil(t, b.ApprovedAt)
}

func TestReApproveRefreshesTimestamp(t *testing.T) {
	svc, db := setupTestService(t)
	sel := seedSelection(t, db, 1, 10)

	require.NoError(t, svc.Approve(context.Background(), 1, 10))
	var first domain.AdSelection
	require.NoError(t, db.First(&first, sel.ID).Error)
	require.NotNil(t, first.ApprovedAt)

	require.NoError(t, svc.Approve(context.Background(), 1, 10))
	var second domain.AdSelection
	require.NoError(t, db.First(&second, sel.ID).Error)

	assert.True(t, second.Approved)
	require.NotNil(t, second.ApprovedAt)
	assert.False(t, second.ApprovedAt.Before(*first.ApprovedAt))
}

func TestRevokeClearsApproval(t *testing.T) {
	svc, db := setupTestService(t)
	sel := seedSelection(t, db, 1, 10)

	require.NoError(t, svc.Approve(context.Background(), 1, 10))
	require.NoError(t, svc.Revoke(context.Background(), 1, 10))

	var got domain.AdSelection
	require.NoError(t, db.First(&got, sel.ID).Error)
	assert.False(t, got.Approved)
	assert.Nil(t, got.ApprovedAt)
}

func TestApproveMissingSelection(t *testing.T) {
	svc, _ := setupTestService(t)
	err := svc.Approve(context.Background(), 404, 404)
	assert.ErrorIs(t, err, ErrSelectionNotFound)
}

func TestListPendingReturnsOnlyUnapproved(t *testing.T) {
	svc, db := setupTestService(t)
	seedSelection(t, db, 1, 10)
	seedSelection(t, db, 2, 10)
	seedSelection(t, db, 3, 20)

	require.NoError(t, svc.Approve(context.Background(), 1, 10))

	pending, err := svc.ListPending(context.Background(), 10)
	require.NoError(t, err)
	if assert.Len(t, pending, 1) {
		assert.Equal(t, int64(2), pending[0].AdID)
	}
}
