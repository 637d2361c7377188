// Package transcript records completed concierge exchanges for operator
// review. Nothing recorded here is read back into the chat pipeline.
package transcript

import (
	"context"
	"time"
)

// Exchange is one answered guest message
type Exchange struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"request_id,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
	Message    string    `json:"message"`
	Intent     string    `json:"intent"`
	Language   string    `json:"language"`
	PMSStatus  string    `json:"pms_status"`
	Reply      string    `json:"reply"`
	LatencyMs  int64     `json:"latency_ms"`
}

// Store defines the interface for transcript storage
type Store interface {
	// Save records an exchange, assigning an ID when it has none
	Save(ctx context.Context, ex *Exchange) error

	// Recent returns up to limit exchanges, newest first
	Recent(ctx context.Context, limit int) ([]Exchange, error)

	// Close releases the underlying connection
	Close() error
}

// NopStore discards everything. Used when no Redis URL is configured.
type NopStore struct{}

func (NopStore) Save(context.Context, *Exchange) error { return nil }

func (NopStore) Recent(context.Context, int) ([]Exchange, error) { return []Exchange{}, nil }

func (NopStore) Close() error { return nil }
