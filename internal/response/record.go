package response

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StoredResponse is the persisted form of one flattened record, written by
// the queue worker. The slot index makes redelivered batches idempotent.
type StoredResponse struct {
	ID           string     `json:"id" gorm:"type:uuid;primaryKey"`
	SurveyID     string     `json:"surveyId" gorm:"type:uuid;not null;uniqueIndex:idx_response_slot"`
	LaunchID     string     `json:"launchId" gorm:"type:uuid;not null;uniqueIndex:idx_response_slot"`
	RespondentID string     `json:"respondentId" gorm:"type:varchar(64);not null;uniqueIndex:idx_response_slot"`
	PageIndex    int        `json:"pageIndex" gorm:"not null;uniqueIndex:idx_response_slot"`
	ItemOrder    int        `json:"itemOrder" gorm:"not null;uniqueIndex:idx_response_slot"`
	Response     *string    `json:"response"`
	UpdatedAt    *time.Time `json:"updatedAt" gorm:"autoUpdateTime:false"`
	ItemData     *string    `json:"itemData" gorm:"type:jsonb"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// BeforeCreate assigns a UUID when missing.
func (s *StoredResponse) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// RecordStore defines the persistence contract for delivered response records.
type RecordStore interface {
	StoreBatch(ctx context.Context, records []Record) (int, error)
}

// GormRecordStore provides a relational-backed implementation of RecordStore.
type GormRecordStore struct {
	db *gorm.DB
}

// NewGormRecordStore constructs a store from a database connection.
func NewGormRecordStore(db *gorm.DB) *GormRecordStore {
	return &GormRecordStore{db: db}
}

// StoreBatch inserts the batch, skipping rows whose slot already exists so
// that a redelivered queue message does not duplicate records. It returns the
// number of rows written.
func (s *GormRecordStore) StoreBatch(ctx context.Context, records []Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	rows := make([]StoredResponse, 0, len(records))
	for _, record := range records {
		rows = append(rows, StoredResponse{
			SurveyID:     record.SurveyID,
			LaunchID:     record.LaunchID,
			RespondentID: record.RespondentID,
			PageIndex:    record.PageIndex,
			ItemOrder:    record.ItemOrder,
			Response:     record.Response,
			UpdatedAt:    record.UpdatedAt,
			ItemData:     record.ItemData,
		})
	}

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows)
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}
