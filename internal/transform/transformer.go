package transform

import (
	"context"
	"time"

	"loginetl/internal/broker"
	"loginetl/internal/config"
	"loginetl/internal/constants"
	"loginetl/internal/logger"
	"loginetl/pkg/errors"
	"loginetl/pkg/logging"
	"loginetl/pkg/metrics"
	"loginetl/pkg/models"
)

const (
	ReasonMalformedJSON  = "malformed_json"
	ReasonMissingField   = "missing_field"
	ReasonInvalidField   = "invalid_field"
	ReasonInvalidVersion = "invalid_version"
	ReasonPanic          = "panic"
)

// Masker produces an irreversible digest of a PII value.
type Masker interface {
	Hash(value string) string
}

type Transformer struct {
	masker        Masker
	defaultLocale string
	rejecter      broker.Rejecter
	logger        logger.Logger
	now           func() time.Time
}

// NewTransformer builds a transformer. rejecter may be nil.
func NewTransformer(masker Masker, cfg config.TransformConfig, rejecter broker.Rejecter, log logger.Logger) *Transformer {
	locale := cfg.DefaultLocale
	if locale == "" {
		locale = constants.DefaultLocale
	}
	return &Transformer{
		masker:        masker,
		defaultLocale: locale,
		rejecter:      rejecter,
		logger:        log,
		now:           time.Now,
	}
}

// SetClock replaces the source of the processing date.
func (t *Transformer) SetClock(now func() time.Time) {
	t.now = now
}

// Transform masks and normalizes batch. Invalid messages are skipped; the
// output keeps the order of the valid ones.
func (t *Transformer) Transform(ctx context.Context, batch []models.RawMessage) ([]models.CanonicalRecord, error) {
	if len(batch) == 0 {
		return nil, errors.ErrEmptyBatch.WithMessage("no messages to transform")
	}

	processingDate := truncateToDate(t.now())
	records := make([]models.CanonicalRecord, 0, len(batch))

	for _, msg := range batch {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		msgCtx := logging.WithMessageID(ctx, msg.ID)
		rec, err := t.transformOne(msg, processingDate)
		if err != nil {
			t.skip(msgCtx, msg, err)
			continue
		}
		records = append(records, rec)
	}

	metrics.RecordsTransformedTotal.Add(float64(len(records)))
	return records, nil
}

func (t *Transformer) transformOne(msg models.RawMessage, processingDate time.Time) (rec models.CanonicalRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.RecoverPanic(r, skipError(ReasonPanic, "panic while transforming record"))
		}
	}()

	p, err := decodePayload(msg.Body)
	if err != nil {
		return rec, skipError(ReasonMalformedJSON, "body is not a valid JSON object").WithCause(err)
	}

	ip, ok, err := p.requiredString("ip")
	if err != nil {
		return rec, skipError(ReasonInvalidField, "invalid ip").WithCause(err)
	}
	if !ok {
		return rec, skipError(ReasonMissingField, "missing ip")
	}

	deviceID, ok, err := p.requiredString("device_id")
	if err != nil {
		return rec, skipError(ReasonInvalidField, "invalid device_id").WithCause(err)
	}
	if !ok {
		return rec, skipError(ReasonMissingField, "missing device_id")
	}

	version, err := p.version("app_version")
	if err != nil {
		return rec, skipError(ReasonInvalidVersion, "invalid app_version").WithCause(err)
	}

	locale, err := p.optionalString("locale")
	if err != nil {
		return rec, skipError(ReasonInvalidField, "invalid locale").WithCause(err)
	}

	userID, err := p.scalarString("user_id")
	if err != nil {
		return rec, skipError(ReasonInvalidField, "invalid user_id").WithCause(err)
	}

	deviceType, err := p.scalarString("device_type")
	if err != nil {
		return rec, skipError(ReasonInvalidField, "invalid device_type").WithCause(err)
	}

	return models.CanonicalRecord{
		UserID:          userID,
		AppVersion:      version,
		DeviceType:      deviceType,
		MaskedIP:        t.masker.Hash(ip),
		Locale:          NormalizeLocale(locale, t.defaultLocale),
		MaskedDeviceID:  t.masker.Hash(deviceID),
		CreateDate:      processingDate,
		SourceMessageID: msg.ID,
	}, nil
}

func (t *Transformer) skip(ctx context.Context, msg models.RawMessage, err error) {
	reason := skipReason(err)
	metrics.IncRecordsSkipped(reason)

	t.logger.WarnwCtx(ctx, "Skipping record", errors.ToErrorFields(err)...)

	if t.rejecter != nil {
		t.rejecter.Reject(ctx, models.RejectEvent{
			MessageID: msg.ID,
			Stage:     constants.StageTransform,
			Code:      errors.Code(err),
			Reason:    reason,
		})
	}
}

func skipError(reason, message string) *errors.Error {
	return errors.ErrSkippedRecord.WithMessage(message).WithDetail("reason", reason)
}

func skipReason(err error) string {
	var appErr *errors.Error
	if errors.As(err, &appErr) {
		if reason, ok := appErr.Details["reason"].(string); ok {
			return reason
		}
	}
	return ReasonInvalidField
}

// truncateToDate keeps the local calendar date of ts.
func truncateToDate(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, ts.Location())
}
