package sink

import (
	"context"

	"loginetl/pkg/models"
)

// Session is one open connection to the target store. It is used for a
// single batch and closed once.
type Session interface {
	Insert(ctx context.Context, rec models.CanonicalRecord) error
	Close() error
}

// Connector opens sessions on demand so that nothing is dialed for an
// empty batch.
type Connector interface {
	Open(ctx context.Context) (Session, error)
}

type LoadResult struct {
	Attempted int `json:"attempted"`
	Inserted  int `json:"inserted"`
	Failed    int `json:"failed"`
}
