// Package notify posts marketplace digests to chat platforms.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/matchyard/matchyard/internal/stats"
)

// Sidebar colors for digest attachments.
const (
	ColorHealthy = "#36a64f"
	ColorSample  = "#daa038"
)

// Notifier delivers a digest to one chat destination.
type Notifier interface {
	// Name identifies the platform in logs, e.g. "slack".
	Name() string
	Send(ctx context.Context, d Digest) error
}

// Digest is a platform-neutral summary of the marketplace.
type Digest struct {
	Title       string
	Summary     string
	Color       string
	Fields      []Field
	GeneratedAt time.Time
}

// Field is a key-value pair displayed in a digest attachment.
type Field struct {
	Name  string
	Value string
	Short bool // hint: render side-by-side with another field
}

// BuildDigest summarizes an overview: the headline counters followed by one
// field per category.
func BuildDigest(ov stats.Overview, now time.Time) Digest {
	st := ov.Statistics
	d := Digest{
		Title:       "Marketplace digest",
		Summary:     fmt.Sprintf("%d listings, %d successful matches, %d pending connections.", st.TotalListings, st.SuccessfulMatches, st.PendingConnections),
		Color:       ColorHealthy,
		GeneratedAt: now,
		Fields: []Field{
			{Name: "Total listings", Value: FormatCount(st.TotalListings), Short: true},
			{Name: "Active listings", Value: FormatCount(st.ActiveListings), Short: true},
			{Name: "Successful matches", Value: FormatCount(st.SuccessfulMatches), Short: true},
			{Name: "Pending connections", Value: FormatCount(st.PendingConnections), Short: true},
			{Name: "Total interests", Value: FormatCount(st.TotalInterests), Short: true},
		},
	}
	if st.IsUsingSampleData {
		d.Color = ColorSample
		d.Summary += " Sample data: the marketplace tables could not be read."
	}
	for _, c := range ov.Categories {
		d.Fields = append(d.Fields, Field{
			Name:  c.Name,
			Value: fmt.Sprintf("%d%% success (%d of %d completed, %d active)", c.SuccessRate, c.Completed, c.TotalListings, c.Active),
		})
	}
	return d
}

// Text renders the digest as plain text, used as a chat fallback.
func (d Digest) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s* (%s)\n%s", d.Title, d.GeneratedAt.Format("2006-01-02 15:04"), d.Summary)
	for _, f := range d.Fields {
		fmt.Fprintf(&b, "\n%s: %s", f.Name, f.Value)
	}
	return b.String()
}

// FormatCount renders n with thousands separators.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}
