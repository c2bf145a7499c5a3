package stats

import (
	"fmt"
	"testing"
	"time"

	"github.com/matchyard/matchyard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func resource(id string, isSpecial, isTaken bool, location string, createdAt time.Time) models.Resource {
	return models.Resource{ID: id, IsSpecial: isSpecial, IsTaken: isTaken, Location: location, CreatedAt: createdAt}
}

func message(id, resourceID string, read bool, createdAt time.Time) models.Message {
	m := models.Message{ID: id, ResourceID: resourceID, CreatedAt: createdAt}
	if read {
		m.ReadAt = ptr(createdAt.Add(time.Minute))
	}
	return m
}

func TestActiveListings(t *testing.T) {
	tests := []struct {
		total, matches, want int64
	}{
		{5, 2, 3},
		{2, 5, 0},
		{0, 0, 0},
		{7, 7, 0},
		{10, 0, 10},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d-%d", tt.total, tt.matches), func(t *testing.T) {
			assert.Equal(t, tt.want, ActiveListings(tt.total, tt.matches))
		})
	}
}

func TestSampleStatistics(t *testing.T) {
	st := SampleStatistics()
	assert.Equal(t, PlatformStatistics{
		TotalListings:      5,
		SuccessfulMatches:  2,
		PendingConnections: 2,
		ActiveListings:     3,
		TotalInterests:     5,
		IsUsingSampleData:  true,
	}, st)
	assert.Equal(t, ActiveListings(st.TotalListings, st.SuccessfulMatches), st.ActiveListings)
}

func TestCategoryLabel(t *testing.T) {
	assert.Equal(t, "Special Tools", CategoryLabel(true))
	assert.Equal(t, "Available Staff", CategoryLabel(false))
}

func TestRegion(t *testing.T) {
	assert.Equal(t, "Stockholm", Region("Stockholm"))
	assert.Equal(t, "-", Region(""))
}

func TestClassifyMessage(t *testing.T) {
	tests := []struct {
		name       string
		taken      bool
		read       bool
		wantAction string
		wantStatus Status
		wantOK     bool
	}{
		{"taken and read", true, true, "Accepted match", StatusCompleted, true},
		{"taken and unread", true, false, "Showed interest", StatusPending, true},
		{"open and read", false, true, "Rejected interest", StatusRejected, true},
		{"open and unread", false, false, "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, status, ok := ClassifyMessage(tt.taken, tt.read)
			assert.Equal(t, tt.wantAction, action)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestIndexMessages(t *testing.T) {
	msgs := []models.Message{
		message("m1", "r1", false, base),
		message("m2", "r2", true, base),
		message("m3", "r1", true, base.Add(-time.Hour)),
	}
	idx := IndexMessages(msgs)
	require.Len(t, idx, 2)
	require.Len(t, idx["r1"], 2)
	assert.Equal(t, "m1", idx["r1"][0].ID)
	assert.Equal(t, "m3", idx["r1"][1].ID)
	assert.Len(t, idx["r2"], 1)
	assert.Empty(t, idx["r3"])
}

func TestBuildActivity_ResourceWithoutMessages(t *testing.T) {
	for _, taken := range []bool{false, true} {
		t.Run(fmt.Sprintf("taken=%v", taken), func(t *testing.T) {
			r := resource("r1", false, taken, "Lund", base)
			got := BuildActivity([]models.Resource{r}, nil, 20)
			require.Len(t, got, 1)
			assert.Equal(t, RecentActivity{
				Datetime: base,
				Action:   "Created listing",
				Category: "Available Staff",
				Region:   "Lund",
				Status:   StatusActive,
			}, got[0])
		})
	}
}

func TestBuildActivity_TakenAndRead(t *testing.T) {
	r := resource("r1", true, true, "", base.Add(-48*time.Hour))
	m := message("m1", "r1", true, base)

	got := BuildActivity([]models.Resource{r}, []models.Message{m}, 20)
	require.Len(t, got, 1)
	assert.Equal(t, StatusCompleted, got[0].Status)
	assert.Equal(t, "Accepted match", got[0].Action)
	assert.Equal(t, "Special Tools", got[0].Category)
	assert.Equal(t, "-", got[0].Region)
	assert.True(t, got[0].Datetime.Equal(base), "entry uses the message time")
}

func TestBuildActivity_OpenAndUnreadYieldsNothing(t *testing.T) {
	r := resource("r1", false, false, "Kiruna", base)
	m := message("m1", "r1", false, base)

	got := BuildActivity([]models.Resource{r}, []models.Message{m}, 20)
	assert.Empty(t, got)
}

func TestBuildActivity_OneEntryPerMessage(t *testing.T) {
	r := resource("r1", false, true, "Umeå", base.Add(-72*time.Hour))
	msgs := []models.Message{
		message("m1", "r1", true, base.Add(-1*time.Hour)),
		message("m2", "r1", false, base.Add(-2*time.Hour)),
		message("m3", "r1", false, base.Add(-3*time.Hour)),
	}

	got := BuildActivity([]models.Resource{r}, msgs, 20)
	require.Len(t, got, 3)
	assert.Equal(t, StatusCompleted, got[0].Status)
	assert.Equal(t, StatusPending, got[1].Status)
	assert.Equal(t, StatusPending, got[2].Status)
	for _, e := range got {
		assert.NotEqual(t, "Created listing", e.Action)
	}
}

func TestBuildActivity_IgnoresMessagesForUnknownResources(t *testing.T) {
	r := resource("r1", false, false, "", base)
	m := message("m1", "r-outside-window", true, base)

	got := BuildActivity([]models.Resource{r}, []models.Message{m}, 20)
	require.Len(t, got, 1)
	assert.Equal(t, "Created listing", got[0].Action)
}

func TestBuildActivity_SortsAndTruncates(t *testing.T) {
	var resources []models.Resource
	var messages []models.Message
	// 15 listings without interest and 15 taken listings with a read message.
	for i := 0; i < 15; i++ {
		resources = append(resources, resource(fmt.Sprintf("open-%d", i), false, false, "", base.Add(-time.Duration(2*i)*time.Hour)))
	}
	for i := 0; i < 15; i++ {
		id := fmt.Sprintf("taken-%d", i)
		resources = append(resources, resource(id, true, true, "", base.Add(-500*time.Hour)))
		messages = append(messages, message("m-"+id, id, true, base.Add(-time.Duration(2*i+1)*time.Hour)))
	}

	got := BuildActivity(resources, messages, 20)
	require.Len(t, got, 20)
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].Datetime.After(got[i].Datetime),
			"entry %d (%s) not after entry %d (%s)", i-1, got[i-1].Datetime, i, got[i].Datetime)
	}
	assert.True(t, got[0].Datetime.Equal(base))
	assert.True(t, got[19].Datetime.Equal(base.Add(-19*time.Hour)))
}

func TestBuildActivity_StableForEqualTimes(t *testing.T) {
	resources := []models.Resource{
		resource("a", false, false, "first", base),
		resource("b", false, false, "second", base),
	}
	got := BuildActivity(resources, nil, 20)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Region)
	assert.Equal(t, "second", got[1].Region)
}

func TestBuildActivity_NoLimit(t *testing.T) {
	var resources []models.Resource
	for i := 0; i < 30; i++ {
		resources = append(resources, resource(fmt.Sprintf("r%d", i), false, false, "", base.Add(-time.Duration(i)*time.Minute)))
	}
	assert.Len(t, BuildActivity(resources, nil, 0), 30)
}

func TestSummarizeCategories_Empty(t *testing.T) {
	got := SummarizeCategories(nil, nil)
	require.Len(t, got, 2)
	assert.Equal(t, CategoryPerformance{Name: "Available Staff"}, got[0])
	assert.Equal(t, CategoryPerformance{Name: "Special Tools"}, got[1])
}

func TestSummarizeCategories_ThreeOfFour(t *testing.T) {
	resources := []models.Resource{
		resource("r1", true, true, "", base),
		resource("r2", true, true, "", base),
		resource("r3", true, true, "", base),
		resource("r4", true, false, "", base),
	}
	messages := []models.Message{
		message("m1", "r1", true, base),
		message("m2", "r2", true, base),
		message("m3", "r3", true, base),
		message("m4", "r4", true, base),
	}

	got := SummarizeCategories(resources, messages)
	require.Len(t, got, 2)
	assert.Equal(t, CategoryPerformance{Name: "Available Staff"}, got[0])
	assert.Equal(t, CategoryPerformance{
		Name:          "Special Tools",
		TotalListings: 4,
		Active:        1,
		Completed:     3,
		SuccessRate:   75,
	}, got[1])
}

func TestSummarizeCategories_TwoWayClassification(t *testing.T) {
	resources := []models.Resource{
		resource("taken-unread", false, true, "", base),
		resource("taken-no-messages", false, true, "", base),
		resource("open-read", false, false, "", base),
		resource("taken-mixed", false, true, "", base),
	}
	messages := []models.Message{
		message("m1", "taken-unread", false, base),
		message("m2", "open-read", true, base),
		message("m3", "taken-mixed", false, base),
		message("m4", "taken-mixed", true, base),
	}

	got := SummarizeCategories(resources, messages)
	staff := got[0]
	assert.Equal(t, 4, staff.TotalListings)
	assert.Equal(t, 1, staff.Completed)
	assert.Equal(t, 3, staff.Active)
	assert.Equal(t, staff.TotalListings, staff.Active+staff.Completed)
	assert.Equal(t, 25, staff.SuccessRate)
}

func TestSuccessRate(t *testing.T) {
	tests := []struct {
		completed, total, want int
	}{
		{0, 0, 0},
		{3, 4, 75},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
		{5, 5, 100},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.completed, tt.total), func(t *testing.T) {
			assert.Equal(t, tt.want, SuccessRate(tt.completed, tt.total))
		})
	}
}
