package attribution

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"admarket/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	// Registers the cgo-free "sqlite" database/sql driver used below.
	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:attribution_test_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Serialize access so concurrent test goroutines queue instead of
	// hitting SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&domain.Ad{}, &domain.PaymentTracker{}))
	return db
}

func seedAd(t *testing.T, db *gorm.DB) *domain.Ad {
	t.Helper()
	ad := &domain.Ad{UserID: 1, BusinessName: "Roastery", ImageURL: "https://cdn.example.com/a.png", TargetURL: "https://roastery.example.com", Confirmed: true}
	require.NoError(t, db.Create(ad).Error)
	return ad
}

func seedTracker(t *testing.T, db *gorm.DB, adID, categoryID, required int64) *domain.PaymentTracker {
	t.Helper()
	tr := &domain.PaymentTracker{AdID: adID, CategoryID: categoryID, Amount: "500.00", ViewsRequired: required, Status: domain.TrackerPending}
	require.NoError(t, db.Create(tr).Error)
	return tr
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls int
	views int64
}

func (n *recordingNotifier) PublishStats(adID, views, clicks int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	if views > n.views {
		n.views = views
	}
}

func TestRecordViewIncrementsAdAndLedgerTogether(t *testing.T) {
	db := setupTestDB(t)
	ad := seedAd(t, db)
	tr := seedTracker(t, db, ad.ID, 10, 100)

	svc := NewService(db, nil)

	views, err := svc.RecordView(context.Background(), ad.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), views)

	var got domain.PaymentTracker
	require.NoError(t, db.First(&got, tr.ID).Error)
	assert.Equal(t, int64(1), got.CurrentViews)
	assert.Equal(t, domain.TrackerPending, got.Status)
}

func TestRecordViewUnknownAd(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil)

	_, err := svc.RecordView(context.Background(), 4242)
	assert.ErrorIs(t, err, ErrAdNotFound)
}

func TestConcurrentViewsLoseNothing(t *testing.T) {
	db := setupTestDB(t)
	ad := seedAd(t, db)
	tr := seedTracker(t, db, ad.ID, 10, 1000)

	svc := NewService(db, nil)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordView(context.Background(), ad.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var gotAd domain.Ad
	require.NoError(t, db.First(&gotAd, ad.ID).Error)
	assert.Equal(t, int64(n), gotAd.Views)

	var gotTr domain.PaymentTracker
	require.NoError(t, db.First(&gotTr, tr.ID).Error)
	assert.Equal(t, int64(n), gotTr.CurrentViews)
}

func TestViewCrossingThresholdReleasesLedger(t *testing.T) {
	db := setupTestDB(t)
	ad := seedAd(t, db)
	tr := seedTracker(t, db, ad.ID, 10, 3)

	svc := NewService(db, nil)
	for i := 0; i < 3; i++ {
		_, err := svc.RecordView(context.Background(), ad.ID)
		require.NoError(t, err)
	}

	var got domain.PaymentTracker
	require.NoError(t, db.First(&got, tr.ID).Error)
	assert.Equal(t, domain.TrackerAvailable, got.Status)
	assert.Equal(t, int64(3), got.CurrentViews)
}

func TestWithdrawnLedgerStopsAccruing(t *testing.T) {
	db := setupTestDB(t)
	ad := seedAd(t, db)
	tr := seedTracker(t, db, ad.ID, 10, 5)
	require.NoError(t, db.Model(tr).Update("status", domain.TrackerWithdrawn).Error)

	svc := NewService(db, nil)
	_, err := svc.RecordView(context.Background(), ad.ID)
	require.NoError(t, err)

	var got domain.PaymentTracker
	require.NoError(t, db.First(&got, tr.ID).Error)
	assert.Equal(t, int64(0), got.CurrentViews)

	var gotAd domain.Ad
	require.NoError(t, db.First(&gotAd, ad.ID).Error)
	assert.Equal(t, int64(1), gotAd.Views, "ad counter keeps counting")
}

func TestRecordClickTouchesAdOnly(t *testing.T) {
	db := setupTestDB(t)
	ad := seedAd(t, db)
	tr := seedTracker(t, db, ad.ID, 10, 5)

	svc := NewService(db, nil)
	clicks, err := svc.RecordClick(context.Background(), ad.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), clicks)

	var got domain.PaymentTracker
	require.NoError(t, db.First(&got, tr.ID).Error)
	assert.Equal(t, int64(0), got.CurrentViews)
}

func TestClickThroughReturnsTarget(t *testing.T) {
	db := setupTestDB(t)
	ad := seedAd(t, db)

	svc := NewService(db, nil)
	target, err := svc.ClickThrough(context.Background(), ad.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://roastery.example.com", target)

	var gotAd domain.Ad
	require.NoError(t, db.First(&gotAd, ad.ID).Error)
	assert.Equal(t, int64(1), gotAd.Clicks)
}

func TestNotifierSeesLatestCounters(t *testing.T) {
	db := setupTestDB(t)
	ad := seedAd(t, db)

	n := &recordingNotifier{}
	svc := NewService(db, n)

	for i := 0; i < 3; i++ {
		_, err := svc.RecordView(context.Background(), ad.ID)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, n.calls)
	assert.Equal(t, int64(3), n.views)
}
