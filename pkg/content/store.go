package content

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store provides database operations for content records.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new content Store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates the content_checksums table.
func (s *Store) AutoMigrate() error {
	if err := s.db.AutoMigrate(&Record{}); err != nil {
		return fmt.Errorf("auto-migrate content_checksums: %w", err)
	}
	return nil
}

// Create inserts a content record. A digest already present is left untouched:
// historical identity is preserved, ingestion of a known digest is a no-op.
// Returns true if this call inserted the record.
func (s *Store) Create(record *Record) (bool, error) {
	result := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(record)
	if result.Error != nil {
		return false, fmt.Errorf("create content record: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Get retrieves a content record by checksum. Returns nil, nil if absent.
func (s *Store) Get(checksum string) (*Record, error) {
	var record Record
	err := s.db.Where("content_checksum = ?", checksum).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get content record: %w", err)
	}
	return &record, nil
}

// SetStatus moves a record to archived or deleted. Transitions are driven by
// the ingestion pipeline; the record itself stays immutable otherwise.
func (s *Store) SetStatus(checksum string, status Status) error {
	result := s.db.Model(&Record{}).Where("content_checksum = ?", checksum).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("set content status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("set content status: checksum %s not found", checksum)
	}
	return nil
}

// ListByStatus returns content records in the given status, newest first.
func (s *Store) ListByStatus(status Status, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}
	var records []Record
	err := s.db.Where("status = ?", status).
		Order("created_at DESC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list content records: %w", err)
	}
	return records, nil
}
