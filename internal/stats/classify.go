package stats

import (
	"math"
	"sort"

	"github.com/matchyard/matchyard/internal/models"
)

// CategoryLabel returns the category a resource belongs to.
func CategoryLabel(isSpecial bool) string {
	if isSpecial {
		return CategoryTools
	}
	return CategoryStaff
}

// Region returns the display region for a location.
func Region(location string) string {
	if location == "" {
		return NoRegion
	}
	return location
}

// ClassifyMessage maps a message on a resource to an activity action and
// status. ok is false when the pair produces no entry (open listing with an
// unread interest).
func ClassifyMessage(isTaken, isRead bool) (action string, status Status, ok bool) {
	switch {
	case isTaken && isRead:
		return ActionAccepted, StatusCompleted, true
	case isTaken:
		return ActionInterest, StatusPending, true
	case isRead:
		return ActionRejected, StatusRejected, true
	default:
		return "", "", false
	}
}

// IndexMessages groups messages by resource id, keeping their input order.
func IndexMessages(messages []models.Message) map[string][]models.Message {
	idx := make(map[string][]models.Message, len(messages))
	for _, m := range messages {
		idx[m.ResourceID] = append(idx[m.ResourceID], m)
	}
	return idx
}

// BuildActivity classifies resources and their messages into the activity
// feed, newest first, truncated to limit entries. A limit <= 0 keeps all.
func BuildActivity(resources []models.Resource, messages []models.Message, limit int) []RecentActivity {
	idx := IndexMessages(messages)
	entries := make([]RecentActivity, 0, len(resources))

	for _, r := range resources {
		category := CategoryLabel(r.IsSpecial)
		region := Region(r.Location)

		related := idx[r.ID]
		if len(related) == 0 {
			entries = append(entries, RecentActivity{
				Datetime: r.CreatedAt,
				Action:   ActionCreated,
				Category: category,
				Region:   region,
				Status:   StatusActive,
			})
			continue
		}

		for _, m := range related {
			action, status, ok := ClassifyMessage(r.IsTaken, m.ReadAt != nil)
			if !ok {
				continue
			}
			entries = append(entries, RecentActivity{
				Datetime: m.CreatedAt,
				Action:   action,
				Category: category,
				Region:   region,
				Status:   status,
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Datetime.After(entries[j].Datetime)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// SummarizeCategories computes per-category totals. A resource is completed
// when it is taken and at least one of its messages was read; everything else
// counts as active.
func SummarizeCategories(resources []models.Resource, messages []models.Message) []CategoryPerformance {
	read := make(map[string]bool, len(messages))
	for _, m := range messages {
		if m.ReadAt != nil {
			read[m.ResourceID] = true
		}
	}

	byName := make(map[string]*CategoryPerformance, len(Categories))
	result := make([]CategoryPerformance, len(Categories))
	for i, name := range Categories {
		result[i].Name = name
		byName[name] = &result[i]
	}

	for _, r := range resources {
		cp := byName[CategoryLabel(r.IsSpecial)]
		cp.TotalListings++
		if r.IsTaken && read[r.ID] {
			cp.Completed++
		} else {
			cp.Active++
		}
	}

	for i := range result {
		result[i].SuccessRate = SuccessRate(result[i].Completed, result[i].TotalListings)
	}
	return result
}

// SuccessRate returns completed/total as a rounded percentage, 0 for no
// listings.
func SuccessRate(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}
