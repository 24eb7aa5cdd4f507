package service

import "errors"

var (
	ErrTemplateNotFound     = errors.New("notification template not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidEvent         = errors.New("invalid notification event")
	ErrInvalidChannel       = errors.New("invalid channel")
	ErrInvalidPlatform      = errors.New("invalid platform")
	ErrInvalidQuietHours    = errors.New("invalid quiet hours, expected HH:MM")
	ErrInvalidTimezone      = errors.New("invalid timezone")
	ErrInvalidCursor        = errors.New("invalid cursor")
	ErrNoProcessor          = errors.New("no processor registered for channel")
	ErrTokenInvalid         = errors.New("token invalid or expired")
)
