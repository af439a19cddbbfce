package model

import "time"

// PushSubscription holds an administrator's browser push subscription.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	Label     string    `gorm:"size:128"`
	CreatedAt time.Time `gorm:"not null"`
}
