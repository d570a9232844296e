package sink

import (
	"context"

	"loginetl/internal/broker"
	"loginetl/internal/constants"
	"loginetl/internal/logger"
	"loginetl/pkg/errors"
	"loginetl/pkg/logging"
	"loginetl/pkg/metrics"
	"loginetl/pkg/models"
)

type Sink struct {
	connector Connector
	rejecter  broker.Rejecter
	logger    logger.Logger
}

// NewSink builds a sink. rejecter may be nil.
func NewSink(connector Connector, rejecter broker.Rejecter, log logger.Logger) *Sink {
	return &Sink{
		connector: connector,
		rejecter:  rejecter,
		logger:    log,
	}
}

// Load inserts records one by one, each in its own transaction. A failed row
// is rolled back and logged; the remaining rows are still attempted.
func (s *Sink) Load(ctx context.Context, records []models.CanonicalRecord) (LoadResult, error) {
	var result LoadResult
	if len(records) == 0 {
		return result, errors.ErrEmptyBatch.WithMessage("no records to load")
	}

	session, err := s.connector.Open(ctx)
	if err != nil {
		return result, err
	}

	for i, rec := range records {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
			break
		}

		result.Attempted++
		if insertErr := session.Insert(ctx, rec); insertErr != nil {
			result.Failed++
			s.reject(ctx, i, rec, insertErr)
			continue
		}
		result.Inserted++
	}

	if closeErr := session.Close(); closeErr != nil {
		s.logger.WarnwCtx(ctx, "Failed to close database session", "error", closeErr)
	}

	metrics.RowsInsertedTotal.Add(float64(result.Inserted))
	metrics.RowsFailedTotal.Add(float64(result.Failed))

	return result, err
}

func (s *Sink) reject(ctx context.Context, row int, rec models.CanonicalRecord, cause error) {
	insertErr := errors.ErrInsert.WithCause(cause).WithDetail("row", row+1)
	rowCtx := logging.WithMessageID(ctx, rec.SourceMessageID)
	s.logger.ErrorwCtx(rowCtx, "Failed to insert row", errors.ToErrorFields(insertErr)...)

	if s.rejecter != nil {
		s.rejecter.Reject(rowCtx, models.RejectEvent{
			MessageID: rec.SourceMessageID,
			Stage:     constants.StageLoad,
			Code:      insertErr.Code,
			Reason:    cause.Error(),
		})
	}
}
