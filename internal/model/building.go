package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Building is a tenant-owned collection of rooms.
type Building struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:256;not null" json:"name"`
	OwnerID   string    `gorm:"size:36;index;not null" json:"user"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`

	// Associations
	Rooms []Room `gorm:"foreignKey:BuildingID;constraint:OnDelete:CASCADE" json:"rooms"`
}

func (b *Building) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// Room is a single bookable unit. Position keeps the rooms in the order
// they were added to the building.
type Room struct {
	ID         string `gorm:"primaryKey;size:36" json:"id"`
	BuildingID string `gorm:"size:36;index;not null" json:"-"`
	Position   int    `gorm:"not null" json:"-"`
	RoomNumber int    `gorm:"not null" json:"roomNumber"`
	RoomName   string `gorm:"size:256" json:"roomName"`

	Logs []StayLog `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"logs"`
}

func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// StayLog is one check-in/check-out pair. Day and times are kept exactly as
// submitted (YYYY-MM-DD and HH:MM).
type StayLog struct {
	ID      string  `gorm:"primaryKey;size:36" json:"id"`
	RoomID  string  `gorm:"size:36;index;not null" json:"-"`
	Seq     int     `gorm:"not null" json:"-"`
	Name    string  `gorm:"size:256;not null" json:"name"`
	Day     string  `gorm:"size:10;not null" json:"day"`
	InTime  string  `gorm:"size:8;not null" json:"inTime"`
	OutDay  *string `gorm:"size:10" json:"outDay,omitempty"`
	OutTime *string `gorm:"size:8" json:"outTime,omitempty"`
}

func (l *StayLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
