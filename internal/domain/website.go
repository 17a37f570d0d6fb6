package domain

import "time"

type Website struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	OwnerID   int64     `gorm:"index;not null" json:"owner_id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Domain    string    `gorm:"type:varchar(255)" json:"domain"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Owner *User `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
}

func (Website) TableName() string { return "websites" }
