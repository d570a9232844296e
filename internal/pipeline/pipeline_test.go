package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loginetl/internal/config"
	"loginetl/internal/logger"
	"loginetl/internal/masking"
	"loginetl/internal/sink"
	"loginetl/internal/transform"
	apperrors "loginetl/pkg/errors"
	"loginetl/pkg/models"
)

type fakeExtractor struct {
	messages []models.RawMessage
	err      error
	calls    int
}

func (f *fakeExtractor) Fetch(ctx context.Context, maxMessages, waitTimeSeconds int) ([]models.RawMessage, error) {
	f.calls++
	return f.messages, f.err
}

type fakeSession struct {
	rows     []models.CanonicalRecord
	failNext bool
	closed   int
}

func (s *fakeSession) Insert(ctx context.Context, rec models.CanonicalRecord) error {
	if s.failNext {
		s.failNext = false
		return errors.New("duplicate key")
	}
	s.rows = append(s.rows, rec)
	return nil
}

func (s *fakeSession) Close() error {
	s.closed++
	return nil
}

type fakeConnector struct {
	session *fakeSession
	opens   int
}

func (c *fakeConnector) Open(ctx context.Context) (sink.Session, error) {
	c.opens++
	return c.session, nil
}

var processingTime = time.Date(2024, 6, 1, 9, 30, 0, 0, time.Local)

func newTestPipeline(t *testing.T, extractor Extractor, connector sink.Connector) *Pipeline {
	t.Helper()
	hasher, err := masking.NewHasher("sha256")
	require.NoError(t, err)

	tr := transform.NewTransformer(hasher, config.TransformConfig{}, nil, logger.NopLogger())
	tr.SetClock(func() time.Time { return processingTime })

	p := New(extractor, tr, sink.NewSink(connector, nil, logger.NopLogger()),
		Options{MaxMessages: 10, WaitTimeSeconds: 1}, logger.NopLogger())
	p.now = func() time.Time { return processingTime }
	p.newRunID = func() string { return "run-fixed" }
	return p
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestPipeline_EndToEnd(t *testing.T) {
	extractor := &fakeExtractor{messages: []models.RawMessage{
		models.NewRawMessageBuilder().WithID("m-1").
			WithField("user_id", "u-1").WithField("app_version", "3.1.4").WithField("device_type", "ios").
			WithField("ip", "1.2.3.4").WithField("device_id", "abc").WithField("locale", nil).
			MustBuild(),
		models.NewRawMessageBuilder().WithID("m-2").
			WithField("user_id", "u-2").WithField("app_version", "1.0").WithField("device_id", "def").
			MustBuild(),
	}}
	session := &fakeSession{}
	connector := &fakeConnector{session: session}

	report, err := newTestPipeline(t, extractor, connector).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, &Report{
		RunID:          "run-fixed",
		State:          StateLoaded,
		ProcessingDate: "2024-06-01",
		Extracted:      2,
		Transformed:    1,
		Skipped:        1,
		Inserted:       1,
		Failed:         0,
	}, report)

	require.Len(t, session.rows, 1)
	row := session.rows[0]
	assert.Equal(t, sha256Hex("1.2.3.4"), row.MaskedIP)
	assert.Equal(t, sha256Hex("abc"), row.MaskedDeviceID)
	assert.Equal(t, 3, row.AppVersion)
	assert.Equal(t, "None", row.Locale)
	assert.Equal(t, "2024-06-01", row.CreateDate.Format("2006-01-02"))
	assert.Equal(t, 1, session.closed)
}

func TestPipeline_ExtractErrorHalts(t *testing.T) {
	extractor := &fakeExtractor{err: apperrors.ErrExtract.WithCause(errors.New("connection refused"))}
	connector := &fakeConnector{session: &fakeSession{}}

	report, err := newTestPipeline(t, extractor, connector).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrExtract))
	assert.Equal(t, StateStart, report.State)
	assert.Equal(t, 0, connector.opens)
	assert.Equal(t, apperrors.ExitFatal, apperrors.ToExitCode(err))
}

func TestPipeline_EmptyQueueHaltsAtTransform(t *testing.T) {
	connector := &fakeConnector{session: &fakeSession{}}

	report, err := newTestPipeline(t, &fakeExtractor{}, connector).Run(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsEmptyBatch(err))
	assert.Equal(t, StateExtracted, report.State)
	assert.Equal(t, 0, connector.opens)
}

func TestPipeline_AllSkippedHaltsAtLoad(t *testing.T) {
	extractor := &fakeExtractor{messages: []models.RawMessage{
		models.NewRawMessageBuilder().WithID("m-1").WithRawBody("not json").MustBuild(),
	}}
	connector := &fakeConnector{session: &fakeSession{}}

	report, err := newTestPipeline(t, extractor, connector).Run(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsEmptyBatch(err))
	assert.Equal(t, StateTransformed, report.State)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, connector.opens)
}

func TestPipeline_PartialLoad(t *testing.T) {
	extractor := &fakeExtractor{messages: []models.RawMessage{
		models.NewRawMessageBuilder().WithID("m-1").
			WithField("app_version", "1").WithField("ip", "10.0.0.1").WithField("device_id", "d1").MustBuild(),
		models.NewRawMessageBuilder().WithID("m-2").
			WithField("app_version", "2").WithField("ip", "10.0.0.2").WithField("device_id", "d2").MustBuild(),
	}}
	session := &fakeSession{failNext: true}

	report, err := newTestPipeline(t, extractor, &fakeConnector{session: session}).Run(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsPartialLoad(err))
	assert.Equal(t, apperrors.ExitPartial, apperrors.ToExitCode(err))
	assert.Equal(t, StateLoaded, report.State)
	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, session.closed)
}
