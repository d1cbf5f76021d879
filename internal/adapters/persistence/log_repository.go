package persistence

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/furniture-factory/internal/domain/shared"
)

// LogEntry is a persisted log line
type LogEntry struct {
	ID        int
	Component string
	Timestamp time.Time
	Level     string
	Message   string
	Metadata  map[string]interface{}
}

// GormLogRepository is a GORM-based log store with time-windowed deduplication
type GormLogRepository struct {
	db    *gorm.DB
	clock shared.Clock

	dedupCache   map[string]time.Time // key: component+message, value: last logged time
	dedupMu      sync.Mutex
	dedupWindow  time.Duration
	dedupMaxSize int
}

// NewGormLogRepository creates a new log repository
// If clock is nil, uses RealClock
func NewGormLogRepository(db *gorm.DB, clock shared.Clock) *GormLogRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormLogRepository{
		db:           db,
		clock:        clock,
		dedupCache:   make(map[string]time.Time),
		dedupWindow:  60 * time.Second,
		dedupMaxSize: 10000,
	}
}

// Log writes an entry unless the same component logged the same message
// within the deduplication window
func (r *GormLogRepository) Log(ctx context.Context, component, level, message string, metadata map[string]interface{}) error {
	now := r.clock.Now()
	cacheKey := component + "|" + message

	r.dedupMu.Lock()
	if lastLogged, exists := r.dedupCache[cacheKey]; exists && now.Sub(lastLogged) < r.dedupWindow {
		r.dedupMu.Unlock()
		return nil
	}
	if len(r.dedupCache) >= r.dedupMaxSize {
		r.cleanupDedupCache(now)
	}
	r.dedupCache[cacheKey] = now
	r.dedupMu.Unlock()

	var metadataJSON string
	if len(metadata) > 0 {
		// Metadata is optional; an unencodable map is dropped
		if raw, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(raw)
		}
	}

	return r.db.WithContext(ctx).Create(&LogEntryModel{
		Component: component,
		Timestamp: now,
		Level:     level,
		Message:   message,
		Metadata:  metadataJSON,
	}).Error
}

// Must be called while holding dedupMu
func (r *GormLogRepository) cleanupDedupCache(now time.Time) {
	cutoff := now.Add(-r.dedupWindow)
	for key, timestamp := range r.dedupCache {
		if timestamp.Before(cutoff) {
			delete(r.dedupCache, key)
		}
	}
}

// Recent returns the newest entries first, optionally filtered by level
func (r *GormLogRepository) Recent(ctx context.Context, limit int, level *string) ([]LogEntry, error) {
	query := r.db.WithContext(ctx).Order("timestamp DESC, id DESC")
	if level != nil {
		query = query.Where("level = ?", *level)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []LogEntryModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	entries := make([]LogEntry, len(models))
	for i, model := range models {
		var metadata map[string]interface{}
		if model.Metadata != "" {
			if err := json.Unmarshal([]byte(model.Metadata), &metadata); err != nil {
				metadata = nil
			}
		}
		entries[i] = LogEntry{
			ID:        model.ID,
			Component: model.Component,
			Timestamp: model.Timestamp,
			Level:     model.Level,
			Message:   model.Message,
			Metadata:  metadata,
		}
	}
	return entries, nil
}
