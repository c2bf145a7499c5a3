package models

import (
	"time"

	"gorm.io/gorm"
)

// Message is an expression of interest sent from one company to another about
// a single resource. ReadAt is set once the recipient has acknowledged it.
type Message struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	FromCompanyID string     `gorm:"size:36" json:"from_company_id"`
	ToCompanyID   string     `gorm:"size:36" json:"to_company_id"`
	ResourceID    string     `gorm:"size:36;not null;index" json:"resource_id"`
	Subject       string     `gorm:"size:256" json:"subject"`
	Content       string     `gorm:"type:text" json:"content"`
	ThreadID      *string    `gorm:"size:36" json:"thread_id,omitempty"`
	ReadAt        *time.Time `gorm:"index" json:"read_at,omitempty"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`

	Resource *Resource `gorm:"foreignKey:ResourceID" json:"-"`
}

// TableName pins the table to the hosted schema's name.
func (Message) TableName() string {
	return "messages"
}

// BeforeSave stores timestamps in UTC.
func (m *Message) BeforeSave(*gorm.DB) error {
	m.CreatedAt = m.CreatedAt.UTC()
	m.ReadAt = utcPtr(m.ReadAt)
	return nil
}
