package models

// User represents a registered account.
type User struct {
	ID           string `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Name         string `json:"name" gorm:"uniqueIndex;type:varchar(100);not null" bson:"name"`
	PasswordHash string `json:"-" gorm:"column:password;type:varchar(255);not null" bson:"password"` // No json tag for security
	Image        string `json:"image" gorm:"type:varchar(255);not null" bson:"image"`
}
