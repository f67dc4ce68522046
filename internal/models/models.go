package models

import (
	"time"
)

type User struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username    string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"username"`
	Password    string    `gorm:"type:varchar(128);not null" json:"-"`
	RealName    string    `gorm:"type:varchar(128)" json:"realName,omitempty"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Post struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title         string    `gorm:"type:varchar(255);not null" json:"title"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	Thumbnail     string    `gorm:"type:varchar(255)" json:"thumbnail,omitempty"`
	Views         int64     `gorm:"not null;default:0" json:"views"`
	AverageRating float64   `gorm:"not null;default:0" json:"averageRating"`
	ReviewCount   int64     `gorm:"not null;default:0" json:"reviewCount"`
	UserID        uint      `gorm:"not null;index" json:"userId"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Review struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text;not null" json:"comment"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	PostID    uint      `gorm:"not null;index" json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Image struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Filename    string    `gorm:"type:varchar(255);not null" json:"filename"`
	ContentType string    `gorm:"type:varchar(100)" json:"contentType"`
	UserID      uint      `gorm:"not null;index" json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
}

type AccessLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Timestamp time.Time `gorm:"index;not null"`
	ClientIP  string    `gorm:"type:varchar(45);not null"`
	Method    string    `gorm:"type:varchar(10);not null"`
	Path      string    `gorm:"type:text;not null"`
}

func (User) TableName() string {
	return "users"
}

func (Post) TableName() string {
	return "posts"
}

func (Review) TableName() string {
	return "reviews"
}

func (Image) TableName() string {
	return "images"
}

func (AccessLog) TableName() string {
	return "access_logs"
}
