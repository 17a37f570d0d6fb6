package domain

import "time"

// Category is an ad slot on a publisher's website. UserCount caps how many
// ads are displayed at once; zero means no cap.
type Category struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	WebsiteID int64     `gorm:"index;not null" json:"website_id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	UserCount int       `gorm:"not null;default:0" json:"user_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SelectedAds []Ad     `json:"selected_ads,omitempty" gorm:"many2many:category_ads"`
	Website     *Website `json:"website,omitempty" gorm:"foreignKey:WebsiteID"`
}

func (Category) TableName() string { return "categories" }
