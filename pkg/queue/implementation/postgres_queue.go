package implementation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jt828/go-observer/pkg/circuitbreaker"
	"github.com/jt828/go-observer/pkg/model"
	"github.com/jt828/go-observer/pkg/retry"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresQueue stores critical frames in main.critical_frames. Inserts are
// keyed by frame key, so a redelivered record is ignored.
type PostgresQueue struct {
	db    *gorm.DB
	cb    circuitbreaker.CircuitBreaker
	retry retry.Retry
}

func NewPostgresQueue(db *gorm.DB, cb circuitbreaker.CircuitBreaker, retry retry.Retry) *PostgresQueue {
	return &PostgresQueue{db: db, cb: cb, retry: retry}
}

type recordHeader struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

func (q *PostgresQueue) Enqueue(ctx context.Context, record []byte) error {
	var header recordHeader
	if err := json.Unmarshal(record, &header); err != nil {
		return fmt.Errorf("decode frame header: %w", err)
	}
	if header.Key == "" {
		return fmt.Errorf("frame record has no key")
	}

	_, err := q.cb.Execute(func() (any, error) {
		err := q.retry.Execute(ctx, func() error {
			entity := model.FrameRecordDataEntity{
				Key:       header.Key,
				FrameId:   header.ID,
				Payload:   string(record),
				CreatedAt: time.Now().UTC(),
			}
			return q.db.WithContext(ctx).
				Clauses(clause.OnConflict{DoNothing: true}).
				Create(&entity).Error
		})
		return nil, err
	})
	return err
}

// Dequeue removes up to limit of the oldest records and returns them. Rows
// locked by a concurrent consumer are skipped.
// A limit below 1 is rejected; gorm would otherwise drop the LIMIT clause.
func (q *PostgresQueue) Dequeue(ctx context.Context, limit int) ([]model.FrameRecord, error) {
	if limit < 1 {
		return nil, fmt.Errorf("dequeue limit must be positive, got %d", limit)
	}
	result, err := q.cb.Execute(func() (any, error) {
		var records []model.FrameRecord
		err := q.retry.Execute(ctx, func() error {
			records = nil
			return q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				var entities []model.FrameRecordDataEntity
				if err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
					Order("created_at").
					Limit(limit).
					Find(&entities).Error; err != nil {
					return err
				}
				if len(entities) == 0 {
					return nil
				}
				if err := tx.Delete(&entities).Error; err != nil {
					return err
				}
				records = make([]model.FrameRecord, len(entities))
				for i := range entities {
					records[i] = entities[i].ToDomain()
				}
				return nil
			})
		})
		if err != nil {
			return nil, err
		}
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]model.FrameRecord), nil
}
