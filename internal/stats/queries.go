package stats

import (
	"context"
	"time"

	"github.com/matchyard/matchyard/internal/models"
	"gorm.io/gorm"
)

// probeSchema runs a head-only count on resources to check that the table
// is readable.
func probeSchema(ctx context.Context, db *gorm.DB) error {
	var n int64
	return db.WithContext(ctx).Model(&models.Resource{}).Count(&n).Error
}

// countResources counts all listings.
func countResources(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&models.Resource{}).Count(&n).Error
	return n, err
}

// countMatches counts read messages on resources that are taken and accepted
// by a company. It counts message rows, not resources.
func countMatches(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&models.Message{}).
		Joins("JOIN resources ON resources.id = messages.resource_id").
		Where("messages.read_at IS NOT NULL").
		Where("resources.is_taken = ? AND resources.accepted_by_company_id IS NOT NULL", true).
		Count(&n).Error
	return n, err
}

// countUnread counts messages nobody has read yet.
func countUnread(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&models.Message{}).
		Where("read_at IS NULL").
		Count(&n).Error
	return n, err
}

// countMessages counts all expressions of interest.
func countMessages(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&models.Message{}).Count(&n).Error
	return n, err
}

// resourcesSince lists resources created at or after since, newest first.
func resourcesSince(ctx context.Context, db *gorm.DB, since time.Time) ([]models.Resource, error) {
	var rows []models.Resource
	err := db.WithContext(ctx).
		Select("id", "created_at", "is_special", "is_taken", "location").
		Where("created_at >= ?", since).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// messagesSince lists messages created at or after since, newest first.
func messagesSince(ctx context.Context, db *gorm.DB, since time.Time) ([]models.Message, error) {
	var rows []models.Message
	err := db.WithContext(ctx).
		Select("id", "resource_id", "created_at", "read_at").
		Where("created_at >= ?", since).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// allResources lists the category and state of every resource.
func allResources(ctx context.Context, db *gorm.DB) ([]models.Resource, error) {
	var rows []models.Resource
	err := db.WithContext(ctx).
		Select("id", "is_special", "is_taken").
		Find(&rows).Error
	return rows, err
}

// allMessages lists the read state of every message.
func allMessages(ctx context.Context, db *gorm.DB) ([]models.Message, error) {
	var rows []models.Message
	err := db.WithContext(ctx).
		Select("resource_id", "read_at").
		Find(&rows).Error
	return rows, err
}
