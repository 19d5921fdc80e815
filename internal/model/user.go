package model

import (
	"time"

	"gorm.io/datatypes"
)

// swagger:model User
type User struct {
	UUIDBase         `bson:",inline"`
	Username         string                      `gorm:"size:50;uniqueIndex;not null" bson:"username" json:"username"`
	Email            string                      `gorm:"size:100;uniqueIndex;not null" bson:"email" json:"email"`
	Password         string                      `gorm:"size:100;not null" bson:"password" json:"-"`
	QuizzesCreated   datatypes.JSONSlice[string] `gorm:"type:json" bson:"quizzes_created" json:"quizzesCreated"`
	QuizzesAttempted datatypes.JSONSlice[string] `gorm:"type:json" bson:"quizzes_attempted" json:"quizzesAttempted"`
	Announcements    []Announcement              `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" bson:"announcements" json:"announcements"`
}

func (User) TableName() string {
	return "users"
}

// Announcement 是分享给用户的测验通知，Message 保存被分享测验的 ID
type Announcement struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" bson:"id" json:"id"`
	UserID     string    `gorm:"type:varchar(36);index;not null" bson:"-" json:"-"`
	SentBy     string    `gorm:"type:varchar(36);not null" bson:"sent_by" json:"sentBy"`
	SentByName string    `gorm:"size:50" bson:"sent_by_name" json:"sentByName"`
	Message    string    `gorm:"size:255;not null" bson:"message" json:"message"`
	Read       bool      `gorm:"column:is_read;default:false" bson:"read" json:"read"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
}

func (Announcement) TableName() string {
	return "announcements"
}

func (u *User) UnreadCount() int {
	n := 0
	for _, a := range u.Announcements {
		if !a.Read {
			n++
		}
	}
	return n
}
