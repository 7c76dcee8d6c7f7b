// Package models defines the data records persisted by the bot.
package models

import "time"

// User is a registered student. The ID is the Telegram user identifier,
// assigned externally and stable for the lifetime of the account.
type User struct {
	ID int64
	// UserName is the Telegram handle without the leading '@'. May be empty.
	UserName string
	// FullName is the display name captured from the shared contact card.
	FullName string
	// RegisteredAt is set once at creation and never updated.
	RegisteredAt time.Time
}
