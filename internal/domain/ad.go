package domain

import (
	"encoding/json"
	"time"
)

// Ad is an advertisement submitted by an advertiser. Views and clicks are
// mutated with atomic increments at the storage layer, never read-modify-write.
type Ad struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	UserID       int64     `gorm:"index;not null" json:"user_id"`
	BusinessName string    `gorm:"type:varchar(255);not null" json:"business_name"`
	ImageURL     string    `gorm:"type:text" json:"image_url"`
	TargetURL    string    `gorm:"type:text" json:"target_url"`
	Confirmed    bool      `gorm:"not null;default:false;index" json:"confirmed"`
	Views        int64     `gorm:"not null;default:0" json:"views"`
	Clicks       int64     `gorm:"not null;default:0" json:"clicks"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Selections []AdSelection `json:"selections,omitempty" gorm:"foreignKey:AdID"`
}

func (Ad) TableName() string { return "ads" }

// AdSelection links an ad to a website: which categories the ad targets there
// and whether the publisher approved it. Approval is per website, not per ad.
type AdSelection struct {
	ID         int64      `gorm:"primaryKey" json:"id"`
	AdID       int64      `gorm:"uniqueIndex:idx_ad_website;not null" json:"ad_id"`
	WebsiteID  int64      `gorm:"uniqueIndex:idx_ad_website;not null" json:"website_id"`
	Categories string     `gorm:"type:text" json:"categories"`
	Approved   bool       `gorm:"not null;default:false;index" json:"approved"`
	ApprovedAt *time.Time `json:"approved_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (AdSelection) TableName() string { return "ad_selections" }

// CategoryIDs decodes the JSON-encoded category list.
func (s *AdSelection) CategoryIDs() []int64 {
	if s.Categories == "" || s.Categories == "[]" {
		return []int64{}
	}
	var ids []int64
	if err := json.Unmarshal([]byte(s.Categories), &ids); err != nil {
		return []int64{}
	}
	return ids
}

func (s *AdSelection) SetCategoryIDs(ids []int64) {
	if len(ids) == 0 {
		s.Categories = "[]"
		return
	}
	data, _ := json.Marshal(ids)
	s.Categories = string(data)
}

func (s *AdSelection) HasCategory(categoryID int64) bool {
	for _, id := range s.CategoryIDs() {
		if id == categoryID {
			return true
		}
	}
	return false
}
