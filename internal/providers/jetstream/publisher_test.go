package jetstream_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	natsjs "github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-ledger-indexer/internal/adapter"
	"github.com/feral-file/ff-ledger-indexer/internal/domain"
	"github.com/feral-file/ff-ledger-indexer/internal/messaging"
	"github.com/feral-file/ff-ledger-indexer/internal/mocks"
	"github.com/feral-file/ff-ledger-indexer/internal/providers/jetstream"
)

type testPublisherMocks struct {
	ctrl   *gomock.Controller
	natsJS *mocks.MockNatsJetStream
	conn   *mocks.MockNatsConn
	js     *mocks.MockJetStream
	cfg    jetstream.Config
}

func setupTestPublisher(t *testing.T) *testPublisherMocks {
	ctrl := gomock.NewController(t)
	return &testPublisherMocks{
		ctrl:   ctrl,
		natsJS: mocks.NewMockNatsJetStream(ctrl),
		conn:   mocks.NewMockNatsConn(ctrl),
		js:     mocks.NewMockJetStream(ctrl),
		cfg: jetstream.Config{
			URL:            "nats://localhost:4222",
			StreamName:     "LEDGER_BLOCKS",
			SubjectPrefix:  "ledger",
			MaxReconnects:  3,
			ReconnectWait:  time.Second,
			ConnectionName: "test",
			PublishTimeout: time.Second,
		},
	}
}

func (tm *testPublisherMocks) connect(t *testing.T) messaging.Publisher {
	tm.natsJS.EXPECT().Connect(tm.cfg.URL, gomock.Any()).Return(tm.conn, tm.js, nil)
	tm.js.EXPECT().CreateOrUpdateStream(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, cfg natsjs.StreamConfig) error {
			assert.Equal(t, "LEDGER_BLOCKS", cfg.Name)
			assert.Equal(t, []string{"ledger.>"}, cfg.Subjects)
			return nil
		})
	tm.conn.EXPECT().ConnectedUrl().Return(tm.cfg.URL).AnyTimes()

	pub, err := jetstream.NewPublisher(context.Background(), tm.cfg, tm.natsJS, adapter.NewJSON())
	require.NoError(t, err)
	return pub
}

func TestNewPublisher_ConnectError(t *testing.T) {
	tm := setupTestPublisher(t)
	tm.natsJS.EXPECT().Connect(gomock.Any(), gomock.Any()).Return(nil, nil, errors.New("no servers available"))

	pub, err := jetstream.NewPublisher(context.Background(), tm.cfg, tm.natsJS, adapter.NewJSON())
	assert.Error(t, err)
	assert.Nil(t, pub)
}

func TestNewPublisher_StreamError(t *testing.T) {
	tm := setupTestPublisher(t)
	tm.natsJS.EXPECT().Connect(gomock.Any(), gomock.Any()).Return(tm.conn, tm.js, nil)
	tm.js.EXPECT().CreateOrUpdateStream(gomock.Any(), gomock.Any()).Return(errors.New("insufficient resources"))
	tm.conn.EXPECT().Close()

	pub, err := jetstream.NewPublisher(context.Background(), tm.cfg, tm.natsJS, adapter.NewJSON())
	assert.ErrorContains(t, err, "LEDGER_BLOCKS")
	assert.Nil(t, pub)
}

func TestPublishBlockCommitted(t *testing.T) {
	tm := setupTestPublisher(t)
	pub := tm.connect(t)

	event := &domain.BlockCommitted{
		Chain:       domain.CAIP2(813),
		ChainID:     813,
		BlockNumber: 42,
		BlockHash:   "0xabc",
		Transfers:   3,
		Tokens:      []string{"0x1000000000000000000000000000000000000001"},
		CommittedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	tm.js.EXPECT().Publish(gomock.Any(), "ledger.813.block", gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, subject string, data []byte, opts ...natsjs.PublishOpt) (*natsjs.PubAck, error) {
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			assert.Len(t, opts, 1)

			var decoded map[string]any
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, "eip155:813", decoded["chain"])
			assert.Equal(t, float64(42), decoded["block_number"])
			assert.Equal(t, float64(3), decoded["transfers"])
			return &natsjs.PubAck{Stream: "LEDGER_BLOCKS", Sequence: 1}, nil
		})

	require.NoError(t, pub.PublishBlockCommitted(context.Background(), event))

	tm.conn.EXPECT().Close()
	pub.Close()
}

func TestPublishBlockCommitted_Errors(t *testing.T) {
	t.Run("publish", func(t *testing.T) {
		tm := setupTestPublisher(t)
		pub := tm.connect(t)
		tm.js.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))

		err := pub.PublishBlockCommitted(context.Background(), &domain.BlockCommitted{ChainID: 1, BlockNumber: 7})
		assert.ErrorContains(t, err, "failed to publish block 7")
	})

	t.Run("marshal", func(t *testing.T) {
		tm := setupTestPublisher(t)
		tm.natsJS.EXPECT().Connect(gomock.Any(), gomock.Any()).Return(tm.conn, tm.js, nil)
		tm.js.EXPECT().CreateOrUpdateStream(gomock.Any(), gomock.Any()).Return(nil)
		tm.conn.EXPECT().ConnectedUrl().Return(tm.cfg.URL).AnyTimes()

		mockJSON := mocks.NewMockJSON(tm.ctrl)
		pub, err := jetstream.NewPublisher(context.Background(), tm.cfg, tm.natsJS, mockJSON)
		require.NoError(t, err)

		mockJSON.EXPECT().Marshal(gomock.Any()).Return(nil, errors.New("unsupported value"))
		err = pub.PublishBlockCommitted(context.Background(), &domain.BlockCommitted{ChainID: 1})
		assert.ErrorContains(t, err, "failed to marshal event")
	})
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "ledger.1.block", jetstream.Subject("ledger", 1))
	assert.Equal(t, "test.8453.block", jetstream.Subject("test", 8453))
}

func TestNoopPublisher(t *testing.T) {
	pub := messaging.NewNoopPublisher()
	assert.NoError(t, pub.PublishBlockCommitted(context.Background(), &domain.BlockCommitted{}))
	pub.Close()
}
