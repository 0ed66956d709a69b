package survey

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository defines the persistence contract for surveys.
type Repository interface {
	Create(ctx context.Context, record *Record) error
	FindByID(ctx context.Context, id string) (*Record, error)
	FindByOwner(ctx context.Context, ownerID string) ([]Record, error)
	SetLaunch(ctx context.Context, id, launchID string) error
	Delete(ctx context.Context, id string) (*Record, error)
}

// GormRepository provides a relational-backed implementation of Repository.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository constructs a repository from a database connection.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Create persists a new survey record.
func (r *GormRepository) Create(ctx context.Context, record *Record) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// FindByID returns a survey record by ID.
func (r *GormRepository) FindByID(ctx context.Context, id string) (*Record, error) {
	var record Record
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByOwner returns all surveys belonging to an owner, newest first.
func (r *GormRepository) FindByOwner(ctx context.Context, ownerID string) ([]Record, error) {
	var records []Record
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// SetLaunch stores the launch id assigned when a survey is started.
func (r *GormRepository) SetLaunch(ctx context.Context, id, launchID string) error {
	result := r.db.WithContext(ctx).
		Model(&Record{}).
		Where("id = ?", id).
		Update("launch_id", launchID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a survey record and returns the deleted row so that callers
// can clean up the external document afterwards. The read and the delete run
// in one transaction, so a row reported as deleted was actually removed.
func (r *GormRepository) Delete(ctx context.Context, id string) (*Record, error) {
	var record Record
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&record, "id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&Record{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// IsNotFound reports whether an error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
