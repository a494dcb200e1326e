package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrProfileNotFound = errors.New("profile not found")

// Store is the users collection.
type Store interface {
	Get(ctx context.Context, id string) (*models.UserProfile, error)
	// CreateIfAbsent inserts p unless a record with its ID exists. It reports
	// whether this call created the record.
	CreateIfAbsent(ctx context.Context, p *models.UserProfile) (bool, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Get(ctx context.Context, id string) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return &p, nil
}

func (s *GormStore) CreateIfAbsent(ctx context.Context, p *models.UserProfile) (bool, error) {
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(p)
	if result.Error != nil {
		return false, fmt.Errorf("failed to create profile: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (s *GormStore) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	result := s.db.WithContext(ctx).Model(&models.UserProfile{}).
		Where("id = ?", id).
		Update("last_login", at)
	if result.Error != nil {
		return fmt.Errorf("failed to update last login: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}
