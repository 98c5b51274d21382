package monitoring

import (
	"context"
	"time"

	"github.com/madfam-org/ticketbooth/internal/db"
)

// InstrumentedStore times every call to the wrapped store.
type InstrumentedStore struct {
	db.Store
	driver  string
	metrics *MetricsCollector
}

// InstrumentStore wraps store so that its operations are recorded under the
// given driver label.
func InstrumentStore(store db.Store, driver string, metrics *MetricsCollector) *InstrumentedStore {
	return &InstrumentedStore{Store: store, driver: driver, metrics: metrics}
}

func (s *InstrumentedStore) Insert(ctx context.Context, pending *db.PendingToken) (*db.TokenRecord, error) {
	start := time.Now()
	record, err := s.Store.Insert(ctx, pending)
	s.metrics.RecordStorageOperation(s.driver, "insert", time.Since(start), err)
	return record, err
}

func (s *InstrumentedStore) ListActive(ctx context.Context, userID string, activeAsOf time.Time) ([]*db.TokenRecord, error) {
	start := time.Now()
	records, err := s.Store.ListActive(ctx, userID, activeAsOf)
	s.metrics.RecordStorageOperation(s.driver, "list_active", time.Since(start), err)
	return records, err
}
