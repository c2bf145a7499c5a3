package models

import (
	"time"

	"gorm.io/gorm"
)

// Resource is a marketplace listing: staff or tooling offered by one company
// and possibly accepted by another.
type Resource struct {
	ID                  string     `gorm:"primaryKey;size:36" json:"id"`
	CompanyID           string     `gorm:"size:36;index" json:"company_id"`
	Competence          string     `gorm:"size:256" json:"competence"`
	PeriodFrom          *time.Time `json:"period_from,omitempty"`
	PeriodTo            *time.Time `json:"period_to,omitempty"`
	Location            string     `gorm:"size:128" json:"location"`
	Comments            *string    `gorm:"type:text" json:"comments,omitempty"`
	ContactInfo         string     `gorm:"size:256" json:"contact_info"`
	IsSpecial           bool       `gorm:"default:false;index" json:"is_special"`
	IsTaken             bool       `gorm:"default:false;index" json:"is_taken"`
	Price               *float64   `json:"price,omitempty"`
	PriceType           string     `gorm:"size:16" json:"price_type"`
	AcceptedByCompanyID *string    `gorm:"size:36" json:"accepted_by_company_id,omitempty"`
	CreatedAt           time.Time  `gorm:"index" json:"created_at"`

	Messages []Message `gorm:"foreignKey:ResourceID" json:"-"`
}

// TableName pins the table to the hosted schema's name.
func (Resource) TableName() string {
	return "resources"
}

// BeforeSave stores timestamps in UTC. SQLite keeps them as text, so rows
// only compare in time order when they share one offset.
func (r *Resource) BeforeSave(*gorm.DB) error {
	r.CreatedAt = r.CreatedAt.UTC()
	r.PeriodFrom = utcPtr(r.PeriodFrom)
	r.PeriodTo = utcPtr(r.PeriodTo)
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
