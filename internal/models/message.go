package models

import (
	"net/http"
	"time"
)

// Message is a text message from one user to another, optionally carrying an
// image attachment.
type Message struct {
	ID      string  `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	From    string  `json:"from" gorm:"column:from_user;type:varchar(36);not null" bson:"from"`
	To      string  `json:"to" gorm:"column:to_user;type:varchar(36);index;not null" bson:"to"`
	Message string  `json:"message" gorm:"type:text;not null" bson:"message"`
	Image   *string `json:"image" gorm:"type:varchar(255)" bson:"image"`
	Sent    string  `json:"sent" gorm:"type:varchar(64);not null" bson:"sent"`
}

// SentTimestamp formats t the way Message.Sent is stored,
// e.g. "Mon, 19 Oct 2026 10:00:00 GMT".
func SentTimestamp(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}
