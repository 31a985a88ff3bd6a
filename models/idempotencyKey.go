package models

import "time"

// IdempotencyKey makes at-least-once event dispatch safe: a handler/message
// pair is processed once even when the dispatcher retries after a crash.
type IdempotencyKey struct {
	ID          int               `gorm:"primary_key" json:"id"`
	HandlerName string            `gorm:"size:100;not null;uniqueIndex:idx_handler_message" json:"handler_name"`
	MessageId   string            `gorm:"size:100;not null;uniqueIndex:idx_handler_message" json:"message_id"`
	Status      IdempotencyStatus `gorm:"size:20;not null" json:"status"`
	LastError   *string           `gorm:"type:text" json:"last_error"`
	CreatedAt   time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}
