// Package repository implements data access layer for the application
package repository

import (
	stderrors "errors"
	"log/slog"
	"strings"

	"gorm.io/gorm"
	"weatherbot.app/errors"
	"weatherbot.app/models"
)

// SubscriberRepository handles data access operations for subscriber records.
// It owns those records exclusively: all writes go through this type, and the
// database serializes concurrent writers so two updates can never clobber
// each other the way a whole-file read-modify-write would.
type SubscriberRepository struct {
	db *gorm.DB
}

// NewSubscriberRepository creates a new repository for subscriber data
func NewSubscriberRepository(db *gorm.DB) *SubscriberRepository {
	return &SubscriberRepository{db: db}
}

// FindByUserID retrieves a subscriber record, or nil when none exists.
func (r *SubscriberRepository) FindByUserID(userID string) (*models.Subscriber, error) {
	var subscriber models.Subscriber
	result := r.db.Where("user_id = ?", userID).First(&subscriber)
	if result.Error != nil {
		if stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.NewDatabaseError("find subscriber", result.Error)
	}
	return &subscriber, nil
}

// SetHomeCity upserts the subscriber's home city. The city is trimmed and an
// empty result is rejected: an empty home city is never stored.
func (r *SubscriberRepository) SetHomeCity(userID, city string) error {
	city = strings.TrimSpace(city)
	if city == "" {
		return errors.NewValidationError("city cannot be empty")
	}
	return r.upsert(userID, func(s *models.Subscriber) {
		s.HomeCity = city
	})
}

// GetHomeCity returns the subscriber's home city, or "" when unset.
func (r *SubscriberRepository) GetHomeCity(userID string) (string, error) {
	subscriber, err := r.FindByUserID(userID)
	if err != nil {
		return "", err
	}
	if subscriber == nil {
		return "", nil
	}
	return subscriber.HomeCity, nil
}

// GetDailyTime returns the subscriber's stored UTC delivery time, or ""
// when unset.
func (r *SubscriberRepository) GetDailyTime(userID string) (string, error) {
	subscriber, err := r.FindByUserID(userID)
	if err != nil {
		return "", err
	}
	if subscriber == nil {
		return "", nil
	}
	return subscriber.DailyTimeUTC, nil
}

// SetDailyTime upserts the subscriber's delivery time. The value must
// already be converted to UTC "HH:MM" by the caller; this layer only stores
// it.
func (r *SubscriberRepository) SetDailyTime(userID, timeUTC string) error {
	return r.upsert(userID, func(s *models.Subscriber) {
		s.DailyTimeUTC = timeUTC
	})
}

// ListDispatchCandidates returns every subscriber whose stored delivery time
// equals nowUTC exactly (minute granularity) and whose home city is set.
func (r *SubscriberRepository) ListDispatchCandidates(nowUTC string) ([]models.DispatchCandidate, error) {
	var subscribers []models.Subscriber
	result := r.db.
		Where("daily_time_utc = ? AND home_city <> ''", nowUTC).
		Find(&subscribers)
	if result.Error != nil {
		return nil, errors.NewDatabaseError("list dispatch candidates", result.Error)
	}

	candidates := make([]models.DispatchCandidate, 0, len(subscribers))
	for _, s := range subscribers {
		candidates = append(candidates, models.DispatchCandidate{
			UserID: s.UserID,
			City:   s.HomeCity,
		})
	}

	slog.Debug("listed dispatch candidates", "time", nowUTC, "count", len(candidates))
	return candidates, nil
}

// upsert applies mutate to the existing record or to a fresh one. The
// read-modify-write runs inside a transaction so concurrent writers to the
// same user are serialized.
func (r *SubscriberRepository) upsert(userID string, mutate func(*models.Subscriber)) error {
	if strings.TrimSpace(userID) == "" {
		return errors.NewValidationError("user id cannot be empty")
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var subscriber models.Subscriber
		result := tx.Where("user_id = ?", userID).First(&subscriber)
		if result.Error != nil {
			if !stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
				return result.Error
			}
			subscriber = models.Subscriber{UserID: userID}
		}

		mutate(&subscriber)
		return tx.Save(&subscriber).Error
	})
	if err != nil {
		return errors.NewDatabaseError("upsert subscriber", err)
	}
	return nil
}
