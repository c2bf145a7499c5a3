// Package stats computes the marketplace reports shown on the admin
// dashboard: platform statistics, the recent activity feed, and per-category
// performance. Every exported report degrades to a safe result instead of
// returning an error.
package stats

import "time"

// Category labels. A resource belongs to exactly one, decided by is_special.
const (
	CategoryStaff = "Available Staff"
	CategoryTools = "Special Tools"
)

// Categories lists the category labels in report order.
var Categories = []string{CategoryStaff, CategoryTools}

// Status is the state of a recent activity entry.
type Status string

const (
	StatusActive    Status = "active"
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
)

// Activity actions.
const (
	ActionCreated  = "Created listing"
	ActionAccepted = "Accepted match"
	ActionInterest = "Showed interest"
	ActionRejected = "Rejected interest"
)

// NoRegion is shown when a resource has no location.
const NoRegion = "-"

// PlatformStatistics holds the headline counters.
type PlatformStatistics struct {
	TotalListings      int64 `json:"totalListings"`
	SuccessfulMatches  int64 `json:"successfulMatches"`
	PendingConnections int64 `json:"pendingConnections"`
	ActiveListings     int64 `json:"activeListings"`
	TotalInterests     int64 `json:"totalInterests"`
	IsUsingSampleData  bool  `json:"isUsingSampleData"`
}

// RecentActivity is one entry of the activity feed.
type RecentActivity struct {
	Datetime time.Time `json:"datetime"`
	Action   string    `json:"action"`
	Category string    `json:"category"`
	Region   string    `json:"region"`
	Status   Status    `json:"status"`
}

// CategoryPerformance summarizes the listings of one category.
type CategoryPerformance struct {
	Name          string `json:"name"`
	TotalListings int    `json:"totalListings"`
	Active        int    `json:"active"`
	Completed     int    `json:"completed"`
	SuccessRate   int    `json:"successRate"`
}

// Overview bundles all three reports, as rendered on page load.
type Overview struct {
	Statistics PlatformStatistics    `json:"statistics"`
	Activity   []RecentActivity      `json:"activity"`
	Categories []CategoryPerformance `json:"categories"`
}

// SampleStatistics returns the fixed record shown when the marketplace tables
// cannot be read.
func SampleStatistics() PlatformStatistics {
	return PlatformStatistics{
		TotalListings:      5,
		SuccessfulMatches:  2,
		PendingConnections: 2,
		ActiveListings:     3,
		TotalInterests:     5,
		IsUsingSampleData:  true,
	}
}

// ActiveListings is the number of listings not yet matched, floored at zero.
func ActiveListings(total, matches int64) int64 {
	if total < matches {
		return 0
	}
	return total - matches
}
