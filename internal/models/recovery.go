// server/internal/models/recovery.go
package models

import "time"

// RecoveryCode is a single-use password recovery code mailed to a user's
// verified address.
type RecoveryCode struct {
	UserID    string    `bson:"userID"`
	Code      string    `bson:"code"`
	ExpiresAt time.Time `bson:"expiresAt"`
	Used      bool      `bson:"used"`
}
