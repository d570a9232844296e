package sink

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loginetl/internal/config"
	"loginetl/internal/logger"
	apperrors "loginetl/pkg/errors"
	"loginetl/pkg/models"
)

type fakeSession struct {
	failRows map[int]bool
	inserted []models.CanonicalRecord
	calls    int
	closed   int
}

func (s *fakeSession) Insert(ctx context.Context, rec models.CanonicalRecord) error {
	s.calls++
	if s.failRows[s.calls] {
		return errors.New("null value in column \"user_id\"")
	}
	s.inserted = append(s.inserted, rec)
	return nil
}

func (s *fakeSession) Close() error {
	s.closed++
	return nil
}

type fakeConnector struct {
	session *fakeSession
	opens   int
	err     error
}

func (c *fakeConnector) Open(ctx context.Context) (Session, error) {
	c.opens++
	if c.err != nil {
		return nil, c.err
	}
	return c.session, nil
}

type recordingRejecter struct {
	events []models.RejectEvent
}

func (r *recordingRejecter) Reject(ctx context.Context, event models.RejectEvent) {
	r.events = append(r.events, event)
}

func testRecords(n int) []models.CanonicalRecord {
	records := make([]models.CanonicalRecord, n)
	for i := range records {
		records[i] = models.CanonicalRecord{
			UserID:          "user",
			AppVersion:      i + 1,
			DeviceType:      "ios",
			MaskedIP:        "ip-digest",
			Locale:          "None",
			MaskedDeviceID:  "device-digest",
			CreateDate:      time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			SourceMessageID: "m-" + string(rune('1'+i)),
		}
	}
	return records
}

func TestSink_LoadIsolatesFailedRow(t *testing.T) {
	session := &fakeSession{failRows: map[int]bool{2: true}}
	connector := &fakeConnector{session: session}
	rejecter := &recordingRejecter{}
	s := NewSink(connector, rejecter, logger.NopLogger())

	result, err := s.Load(context.Background(), testRecords(3))
	require.NoError(t, err)

	assert.Equal(t, LoadResult{Attempted: 3, Inserted: 2, Failed: 1}, result)
	require.Len(t, session.inserted, 2)
	assert.Equal(t, 1, session.inserted[0].AppVersion)
	assert.Equal(t, 3, session.inserted[1].AppVersion)
	assert.Equal(t, 1, connector.opens)
	assert.Equal(t, 1, session.closed)

	require.Len(t, rejecter.events, 1)
	assert.Equal(t, "m-2", rejecter.events[0].MessageID)
	assert.Equal(t, "load", rejecter.events[0].Stage)
	assert.Equal(t, "INSERT_ERROR", rejecter.events[0].Code)
}

func TestSink_EmptyBatchDoesNotConnect(t *testing.T) {
	connector := &fakeConnector{session: &fakeSession{}}
	s := NewSink(connector, nil, logger.NopLogger())

	result, err := s.Load(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsEmptyBatch(err))
	assert.Equal(t, LoadResult{}, result)
	assert.Equal(t, 0, connector.opens)
}

func TestSink_OpenFailureIsReturned(t *testing.T) {
	connector := &fakeConnector{err: apperrors.ErrConnect.WithCause(errors.New("dial tcp: refused"))}
	s := NewSink(connector, nil, logger.NopLogger())

	_, err := s.Load(context.Background(), testRecords(1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConnect))
	assert.True(t, apperrors.IsFatal(err))
}

func TestSink_AllRowsFail(t *testing.T) {
	session := &fakeSession{failRows: map[int]bool{1: true, 2: true}}
	s := NewSink(&fakeConnector{session: session}, nil, logger.NopLogger())

	result, err := s.Load(context.Background(), testRecords(2))
	require.NoError(t, err)
	assert.Equal(t, LoadResult{Attempted: 2, Inserted: 0, Failed: 2}, result)
	assert.Equal(t, 1, session.closed)
}

func TestSink_CanceledContextStillCloses(t *testing.T) {
	session := &fakeSession{}
	s := NewSink(&fakeConnector{session: session}, nil, logger.NopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.Load(ctx, testRecords(3))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, result.Attempted)
	assert.Equal(t, 1, session.closed)
}

func TestCircuitBreakerConnector_Disabled(t *testing.T) {
	connector := &fakeConnector{session: &fakeSession{}}
	wrapped := NewCircuitBreakerConnector(connector, config.CircuitBreakerConfig{Enabled: false})
	assert.Same(t, connector, wrapped)
}

func TestCircuitBreakerConnector_TripsAndFailsFast(t *testing.T) {
	session := &fakeSession{failRows: map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true}}
	connector := NewCircuitBreakerConnector(&fakeConnector{session: session}, config.CircuitBreakerConfig{
		Enabled:      true,
		MaxRequests:  1,
		Timeout:      time.Minute,
		FailureRatio: 0.5,
		MinRequests:  2,
	})
	s := NewSink(connector, nil, logger.NopLogger())

	result, err := s.Load(context.Background(), testRecords(5))
	require.NoError(t, err)

	assert.Equal(t, 5, result.Attempted)
	assert.Equal(t, 5, result.Failed)
	assert.Equal(t, 2, session.calls, "rows after the trip never reach the store")
	assert.Equal(t, 1, session.closed)
}

func TestDialect_InsertStatement(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{
			driver: "postgres",
			want:   "INSERT INTO user_logins (user_id, app_version, device_type, masked_ip, locale, masked_device_id, create_date) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		},
		{
			driver: "mysql",
			want:   "INSERT INTO user_logins (user_id, app_version, device_type, masked_ip, locale, masked_device_id, create_date) VALUES (?, ?, ?, ?, ?, ?, ?)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			d, err := DialectFor(tt.driver)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.InsertStatement("user_logins"))
		})
	}

	_, err := DialectFor("sqlite")
	assert.Error(t, err)
}

func TestNewSQLConnector_DoesNotDial(t *testing.T) {
	dialed := false
	open := func(ctx context.Context) (*sql.DB, error) {
		dialed = true
		return nil, errors.New("unreachable")
	}

	c, err := NewSQLConnector(open, config.DatabaseConfig{Driver: "postgres"}, logger.NopLogger())
	require.NoError(t, err)
	assert.False(t, dialed)
	assert.Equal(t, 5*time.Second, c.queryTimeout)

	_, err = NewSQLConnector(open, config.DatabaseConfig{Driver: "oracle"}, logger.NopLogger())
	assert.Error(t, err)
}
