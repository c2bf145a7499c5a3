package dashboard

import (
	"html/template"
	"time"

	"github.com/matchyard/matchyard/internal/stats"
)

// TimestampLayout is how activity times are shown.
const TimestampLayout = "2006-01-02 15:04"

// counter is one animated headline number.
type counter struct {
	Key   string
	Label string
	Value int64
}

// activityRow holds an activity entry formatted for display.
type activityRow struct {
	When     string
	Action   string
	Category string
	Region   string
	Status   string
}

// pageData is the template payload for layout.html.
type pageData struct {
	SampleData  bool
	Counters    []counter
	Activity    []activityRow
	Categories  []stats.CategoryPerformance
	GeneratedAt string
}

func newPageData(ov stats.Overview) pageData {
	st := ov.Statistics
	data := pageData{
		SampleData: st.IsUsingSampleData,
		Counters: []counter{
			{Key: "totalListings", Label: "Total listings", Value: st.TotalListings},
			{Key: "activeListings", Label: "Active listings", Value: st.ActiveListings},
			{Key: "successfulMatches", Label: "Successful matches", Value: st.SuccessfulMatches},
			{Key: "pendingConnections", Label: "Pending connections", Value: st.PendingConnections},
			{Key: "totalInterests", Label: "Total interests", Value: st.TotalInterests},
		},
		Categories:  ov.Categories,
		GeneratedAt: time.Now().Format(TimestampLayout),
	}
	for _, a := range ov.Activity {
		data.Activity = append(data.Activity, activityRow{
			When:     FormatTimestamp(a.Datetime),
			Action:   a.Action,
			Category: a.Category,
			Region:   a.Region,
			Status:   string(a.Status),
		})
	}
	return data
}

// FormatTimestamp renders t as YYYY-MM-DD HH:MM.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(TimestampLayout)
}

var templateFuncs = template.FuncMap{
	"badgeClass": func(status string) string {
		switch status {
		case string(stats.StatusActive), string(stats.StatusPending),
			string(stats.StatusCompleted), string(stats.StatusRejected):
			return "badge badge-" + status
		}
		return "badge"
	},
}
