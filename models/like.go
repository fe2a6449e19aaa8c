package models

import "time"

type StorybookLike struct {
	UserID      string    `gorm:"size:64;primaryKey" json:"userId" bson:"userId"`
	StorybookID string    `gorm:"type:uuid;primaryKey" json:"storybookId" bson:"storybookId"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt" bson:"createdAt"`

	Storybook Storybook `gorm:"constraint:OnDelete:CASCADE;" json:"-" bson:"-"`
}

// AuthorStats thống kê theo tác giả, JoinDate là lúc tạo truyện đầu tiên (nil nếu chưa có truyện)
type AuthorStats struct {
	TotalBooks     int64      `json:"totalStorybooks"`
	PublishedBooks int64      `json:"publishedStorybooks"`
	TotalViews     int64      `json:"totalViews"`
	TotalLikes     int64      `json:"totalLikes"`
	JoinDate       *time.Time `json:"joinDate"`
}
