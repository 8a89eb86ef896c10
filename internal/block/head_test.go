package block_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/feral-file/ff-ledger-indexer/internal/block"
	"github.com/feral-file/ff-ledger-indexer/internal/domain"
	"github.com/feral-file/ff-ledger-indexer/internal/logger"
	"github.com/feral-file/ff-ledger-indexer/internal/mocks"
)

const testChainID = 813

func TestMain(m *testing.M) {
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

// testHeadProviderMocks contains all the mocks needed for testing the head provider
type testHeadProviderMocks struct {
	ctrl       *gomock.Controller
	fetcher    *mocks.MockHeadFetcher
	clock      *mocks.MockClock
	provider   block.HeadProvider
	testConfig block.HeadConfig
}

// setupTest creates all the mocks and head provider for testing
func setupTest(t *testing.T) *testHeadProviderMocks {
	ctrl := gomock.NewController(t)

	mockFetcher := mocks.NewMockHeadFetcher(ctrl)
	mockClock := mocks.NewMockClock(ctrl)

	testConfig := block.HeadConfig{
		TTL:         10 * time.Second,
		StaleWindow: 2 * time.Minute,
	}

	provider := block.NewHeadProvider(map[uint64]block.HeadFetcher{testChainID: mockFetcher}, testConfig, mockClock)

	return &testHeadProviderMocks{
		ctrl:       ctrl,
		fetcher:    mockFetcher,
		clock:      mockClock,
		provider:   provider,
		testConfig: testConfig,
	}
}

// tearDownTest cleans up the test mocks
func tearDownTest(tm *testHeadProviderMocks) {
	tm.ctrl.Finish()
}

func TestHeadProvider_Latest_FirstFetch(t *testing.T) {
	tm := setupTest(t)
	defer tearDownTest(tm)

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tm.clock.EXPECT().Now().Return(now)
	tm.fetcher.EXPECT().LatestBlockNumber(ctx).Return(uint64(1000), nil)

	// Act
	blockNum, err := tm.provider.Latest(ctx, testChainID)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, uint64(1000), blockNum)
}

func TestHeadProvider_Latest_UnknownChain(t *testing.T) {
	tm := setupTest(t)
	defer tearDownTest(tm)

	// Act
	blockNum, err := tm.provider.Latest(context.Background(), 1)

	// Assert
	assert.ErrorIs(t, err, domain.ErrChainClientUnavailable)
	assert.Equal(t, uint64(0), blockNum)
}

func TestHeadProvider_Latest_UsesCache_WithinTTL(t *testing.T) {
	tm := setupTest(t)
	defer tearDownTest(tm)

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tm.clock.EXPECT().Now().Return(now)
	tm.fetcher.EXPECT().LatestBlockNumber(ctx).Return(uint64(1000), nil)

	blockNum1, err1 := tm.provider.Latest(ctx, testChainID)
	assert.NoError(t, err1)
	assert.Equal(t, uint64(1000), blockNum1)

	// within TTL, the fetcher must not be called again
	tm.clock.EXPECT().Now().Return(now.Add(5 * time.Second))

	blockNum2, err2 := tm.provider.Latest(ctx, testChainID)

	assert.NoError(t, err2)
	assert.Equal(t, uint64(1000), blockNum2)
}

func TestHeadProvider_Latest_RefreshesCache_AfterTTL(t *testing.T) {
	tm := setupTest(t)
	defer tearDownTest(tm)

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tm.clock.EXPECT().Now().Return(now)
	tm.fetcher.EXPECT().LatestBlockNumber(ctx).Return(uint64(1000), nil)

	_, err := tm.provider.Latest(ctx, testChainID)
	assert.NoError(t, err)

	tm.clock.EXPECT().Now().Return(now.Add(15 * time.Second))
	tm.fetcher.EXPECT().LatestBlockNumber(ctx).Return(uint64(1100), nil)

	// Act
	blockNum, err := tm.provider.Latest(ctx, testChainID)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, uint64(1100), blockNum)
}

func TestHeadProvider_Latest_UsesStaleCacheOnError_WithinStaleWindow(t *testing.T) {
	tm := setupTest(t)
	defer tearDownTest(tm)

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tm.clock.EXPECT().Now().Return(now)
	tm.fetcher.EXPECT().LatestBlockNumber(ctx).Return(uint64(1000), nil)

	_, err := tm.provider.Latest(ctx, testChainID)
	assert.NoError(t, err)

	tm.clock.EXPECT().Now().Return(now.Add(30 * time.Second))
	tm.fetcher.EXPECT().LatestBlockNumber(ctx).Return(uint64(0), errors.New("network error"))

	// Act
	blockNum, err := tm.provider.Latest(ctx, testChainID)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, uint64(1000), blockNum)
}

func TestHeadProvider_Latest_ReturnsError_WhenNoCache_AndFetchFails(t *testing.T) {
	tm := setupTest(t)
	defer tearDownTest(tm)

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tm.clock.EXPECT().Now().Return(now)
	tm.fetcher.EXPECT().LatestBlockNumber(ctx).Return(uint64(0), errors.New("network error"))

	// Act
	blockNum, err := tm.provider.Latest(ctx, testChainID)

	// Assert
	assert.Error(t, err)
	assert.Equal(t, uint64(0), blockNum)
	assert.Contains(t, err.Error(), "failed to fetch head of eip155:813")
}

func TestHeadProvider_Latest_ReturnsError_BeyondStaleWindow(t *testing.T) {
	tm := setupTest(t)
	defer tearDownTest(tm)

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tm.clock.EXPECT().Now().Return(now)
	tm.fetcher.EXPECT().LatestBlockNumber(ctx).Return(uint64(1000), nil)

	_, err := tm.provider.Latest(ctx, testChainID)
	assert.NoError(t, err)

	tm.clock.EXPECT().Now().Return(now.Add(5 * time.Minute))
	tm.fetcher.EXPECT().LatestBlockNumber(ctx).Return(uint64(0), errors.New("network error"))

	// Act
	blockNum, err := tm.provider.Latest(ctx, testChainID)

	// Assert
	assert.Error(t, err)
	assert.Equal(t, uint64(0), blockNum)
}

func TestHeadProvider_ConcurrentAccess(t *testing.T) {
	tm := setupTest(t)
	defer tearDownTest(tm)

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tm.fetcher.EXPECT().LatestBlockNumber(ctx).Return(uint64(1000), nil).AnyTimes()
	tm.clock.EXPECT().Now().Return(now).AnyTimes()

	done := make(chan bool, 10)
	for range 10 {
		go func() {
			blockNum, err := tm.provider.Latest(ctx, testChainID)
			assert.NoError(t, err)
			assert.Equal(t, uint64(1000), blockNum)
			done <- true
		}()
	}

	for range 10 {
		<-done
	}
}
