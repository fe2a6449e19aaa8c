package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StoryPage struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id" bson:"id"`
	StorybookID string    `gorm:"type:uuid;not null;uniqueIndex:idx_page_book_number" json:"-" bson:"-"`
	PageNumber  int       `gorm:"not null;uniqueIndex:idx_page_book_number" json:"pageNumber" bson:"pageNumber"`
	Text        string    `gorm:"type:text" json:"text" bson:"text"`
	ImageURL    string    `gorm:"type:text" json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	ImagePrompt string    `gorm:"type:text" json:"imagePrompt,omitempty" bson:"imagePrompt,omitempty"`
	AudioURL    string    `gorm:"type:text" json:"audioUrl,omitempty" bson:"audioUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (p *StoryPage) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
