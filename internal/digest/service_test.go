package digest

import (
	"context"
	"errors"
	"testing"
	"time"

	"flipradar_backend/internal/config"
	"flipradar_backend/internal/listing"
	"flipradar_backend/internal/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockListingRepository is a mock type for listing.Repository
type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) Upsert(ctx context.Context, snapshot *listing.Listing) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockListingRepository) UpsertMany(ctx context.Context, snapshots []*listing.Listing) (int, error) {
	args := m.Called(ctx, snapshots)
	return args.Int(0), args.Error(1)
}

func (m *MockListingRepository) FindByKey(ctx context.Context, source, externalID string) (*listing.Listing, error) {
	args := m.Called(ctx, source, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*listing.Listing), args.Error(1)
}

func (m *MockListingRepository) Recent(ctx context.Context, since time.Time) ([]listing.Listing, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]listing.Listing), args.Error(1)
}

func (m *MockListingRepository) TopRanked(ctx context.Context, since time.Time, limit int) ([]listing.Listing, error) {
	args := m.Called(ctx, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]listing.Listing), args.Error(1)
}

// MockUserRepository is a mock type for user.Repository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetOrCreate(ctx context.Context, telegramID int64, username *string) (*user.User, error) {
	args := m.Called(ctx, telegramID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*user.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) FindAllWithWatches(ctx context.Context) ([]user.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]user.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, telegramID int64) error {
	args := m.Called(ctx, telegramID)
	return args.Error(0)
}

func (m *MockUserRepository) AddWatch(ctx context.Context, w *user.Watch) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *MockUserRepository) ListWatches(ctx context.Context, telegramID int64) ([]user.Watch, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]user.Watch), args.Error(1)
}

func (m *MockUserRepository) RemoveWatch(ctx context.Context, telegramID int64, watchID uuid.UUID) error {
	args := m.Called(ctx, telegramID, watchID)
	return args.Error(0)
}

// MockSeenRepository is a mock type for digest.SeenRepository
type MockSeenRepository struct {
	mock.Mock
}

func (m *MockSeenRepository) SeenListingIDs(ctx context.Context, userID int64) (map[uuid.UUID]struct{}, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]struct{}), args.Error(1)
}

func (m *MockSeenRepository) MarkSeen(ctx context.Context, userID int64, listingIDs []uuid.UUID) error {
	args := m.Called(ctx, userID, listingIDs)
	return args.Error(0)
}

// MockDispatcher is a mock type for notify.Dispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) SendDigest(ctx context.Context, chatID int64, items []listing.Listing) ([]listing.Listing, error) {
	args := m.Called(ctx, chatID, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]listing.Listing), args.Error(1)
}

func digestConfig() *config.Config {
	return &config.Config{DigestLookbackHours: 24, DigestMaxItems: 10}
}

func freshListing(title string) listing.Listing {
	l := listing.Listing{
		Source:     "troostwijk",
		ExternalID: uuid.NewString(),
		URL:        "https://example.com/lot",
		Title:      title,
		FlipScore:  0.5,
	}
	l.ID = uuid.New()
	l.CreatedAt = time.Now().UTC().Add(-time.Hour)
	return l
}

func watcher(id int64, keywords ...string) user.User {
	u := user.User{TelegramID: id, RadiusKM: 500}
	for _, kw := range keywords {
		u.Watches = append(u.Watches, user.Watch{UserID: id, Keyword: kw})
	}
	return u
}

func newTestService(lr *MockListingRepository, ur *MockUserRepository, sr *MockSeenRepository, d *MockDispatcher) Service {
	return NewService(lr, ur, sr, d, digestConfig(), zap.NewNop())
}

func TestRunDigestCycle_DispatchesAndMarksSeen(t *testing.T) {
	lr := new(MockListingRepository)
	ur := new(MockUserRepository)
	sr := new(MockSeenRepository)
	d := new(MockDispatcher)

	l := freshListing("Nike Air sneaker lot of 50")
	u := watcher(1, "nike")

	ur.On("FindAllWithWatches", mock.Anything).Return([]user.User{u}, nil)
	lr.On("Recent", mock.Anything, mock.Anything).Return([]listing.Listing{l}, nil)
	sr.On("SeenListingIDs", mock.Anything, int64(1)).Return(map[uuid.UUID]struct{}{}, nil)
	d.On("SendDigest", mock.Anything, int64(1), mock.Anything).Return([]listing.Listing{l}, nil)
	sr.On("MarkSeen", mock.Anything, int64(1), []uuid.UUID{l.ID}).Return(nil)

	svc := newTestService(lr, ur, sr, d)
	require.NoError(t, svc.RunDigestCycle(context.Background()))

	d.AssertExpectations(t)
	sr.AssertExpectations(t)
}

func TestRunDigestCycle_AtMostOnceDelivery(t *testing.T) {
	lr := new(MockListingRepository)
	ur := new(MockUserRepository)
	sr := new(MockSeenRepository)
	d := new(MockDispatcher)

	l := freshListing("Nike Air sneaker lot of 50")
	u := watcher(1, "nike")

	ur.On("FindAllWithWatches", mock.Anything).Return([]user.User{u}, nil)
	lr.On("Recent", mock.Anything, mock.Anything).Return([]listing.Listing{l}, nil)
	// The pair was delivered by an earlier cycle.
	sr.On("SeenListingIDs", mock.Anything, int64(1)).Return(map[uuid.UUID]struct{}{l.ID: {}}, nil)

	svc := newTestService(lr, ur, sr, d)
	require.NoError(t, svc.RunDigestCycle(context.Background()))

	// Still matching the watch, but never re-dispatched and never re-marked.
	d.AssertNotCalled(t, "SendDigest", mock.Anything, mock.Anything, mock.Anything)
	sr.AssertNotCalled(t, "MarkSeen", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunDigestCycle_TotalDispatchFailureLeavesNoMarks(t *testing.T) {
	lr := new(MockListingRepository)
	ur := new(MockUserRepository)
	sr := new(MockSeenRepository)
	d := new(MockDispatcher)

	l := freshListing("Nike Air sneaker lot of 50")
	u := watcher(1, "nike")

	ur.On("FindAllWithWatches", mock.Anything).Return([]user.User{u}, nil)
	lr.On("Recent", mock.Anything, mock.Anything).Return([]listing.Listing{l}, nil)
	sr.On("SeenListingIDs", mock.Anything, int64(1)).Return(map[uuid.UUID]struct{}{}, nil)
	d.On("SendDigest", mock.Anything, int64(1), mock.Anything).
		Return([]listing.Listing{}, errors.New("telegram unreachable"))

	svc := newTestService(lr, ur, sr, d)
	// Per-user failures are absorbed; the cycle itself succeeds.
	require.NoError(t, svc.RunDigestCycle(context.Background()))

	sr.AssertNotCalled(t, "MarkSeen", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunDigestCycle_PartialDeliveryMarksOnlyDelivered(t *testing.T) {
	lr := new(MockListingRepository)
	ur := new(MockUserRepository)
	sr := new(MockSeenRepository)
	d := new(MockDispatcher)

	sent := freshListing("Nike Air sneaker lot of 50")
	dropped := freshListing("Adidas trainer pallet")
	u := watcher(1, "nike adidas")

	ur.On("FindAllWithWatches", mock.Anything).Return([]user.User{u}, nil)
	lr.On("Recent", mock.Anything, mock.Anything).Return([]listing.Listing{sent, dropped}, nil)
	sr.On("SeenListingIDs", mock.Anything, int64(1)).Return(map[uuid.UUID]struct{}{}, nil)
	d.On("SendDigest", mock.Anything, int64(1), mock.Anything).Return([]listing.Listing{sent}, nil)
	sr.On("MarkSeen", mock.Anything, int64(1), []uuid.UUID{sent.ID}).Return(nil)

	svc := newTestService(lr, ur, sr, d)
	require.NoError(t, svc.RunDigestCycle(context.Background()))

	sr.AssertCalled(t, "MarkSeen", mock.Anything, int64(1), []uuid.UUID{sent.ID})
}

func TestRunDigestCycle_UserWithoutWatchesSkipped(t *testing.T) {
	lr := new(MockListingRepository)
	ur := new(MockUserRepository)
	sr := new(MockSeenRepository)
	d := new(MockDispatcher)

	l := freshListing("Nike Air sneaker lot of 50")
	u := user.User{TelegramID: 2, RadiusKM: 500} // no watches

	ur.On("FindAllWithWatches", mock.Anything).Return([]user.User{u}, nil)
	lr.On("Recent", mock.Anything, mock.Anything).Return([]listing.Listing{l}, nil)

	svc := newTestService(lr, ur, sr, d)
	require.NoError(t, svc.RunDigestCycle(context.Background()))

	d.AssertNotCalled(t, "SendDigest", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunDigestCycle_StoreReadFailureAbortsCycle(t *testing.T) {
	lr := new(MockListingRepository)
	ur := new(MockUserRepository)
	sr := new(MockSeenRepository)
	d := new(MockDispatcher)

	ur.On("FindAllWithWatches", mock.Anything).Return([]user.User{watcher(1, "nike")}, nil)
	lr.On("Recent", mock.Anything, mock.Anything).Return(nil, errors.New("store unreachable"))

	svc := newTestService(lr, ur, sr, d)
	err := svc.RunDigestCycle(context.Background())
	assert.Error(t, err)
	d.AssertNotCalled(t, "SendDigest", mock.Anything, mock.Anything, mock.Anything)
	sr.AssertNotCalled(t, "MarkSeen", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunDigestCycle_OneUserFailureDoesNotBlockNext(t *testing.T) {
	lr := new(MockListingRepository)
	ur := new(MockUserRepository)
	sr := new(MockSeenRepository)
	d := new(MockDispatcher)

	l := freshListing("Nike Air sneaker lot of 50")
	bad := watcher(1, "nike")
	good := watcher(2, "nike")

	ur.On("FindAllWithWatches", mock.Anything).Return([]user.User{bad, good}, nil)
	lr.On("Recent", mock.Anything, mock.Anything).Return([]listing.Listing{l}, nil)
	sr.On("SeenListingIDs", mock.Anything, int64(1)).Return(nil, errors.New("db hiccup"))
	sr.On("SeenListingIDs", mock.Anything, int64(2)).Return(map[uuid.UUID]struct{}{}, nil)
	d.On("SendDigest", mock.Anything, int64(2), mock.Anything).Return([]listing.Listing{l}, nil)
	sr.On("MarkSeen", mock.Anything, int64(2), []uuid.UUID{l.ID}).Return(nil)

	svc := newTestService(lr, ur, sr, d)
	require.NoError(t, svc.RunDigestCycle(context.Background()))

	d.AssertCalled(t, "SendDigest", mock.Anything, int64(2), mock.Anything)
}
