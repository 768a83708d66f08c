package model

import (
	"fmt"
	"strings"
	"time"
)

// BusinessListing mirrors tb_business. Longitude/latitude live in x/y columns;
// Distance is annotated at query time from the geo index and never persisted.
type BusinessListing struct {
	ID               int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name             string    `gorm:"column:name" json:"name"`
	Slug             string    `gorm:"column:slug" json:"slug"`
	Category         string    `gorm:"column:category" json:"category"`
	Tags             string    `gorm:"column:tags" json:"tags"`
	Description      string    `gorm:"column:description" json:"description"`
	Branch           string    `gorm:"column:branch" json:"branch"`
	Area             string    `gorm:"column:area" json:"area"`
	Address          string    `gorm:"column:address" json:"address"`
	City             string    `gorm:"column:city" json:"city"`
	State            string    `gorm:"column:state" json:"state"`
	PostalCode       string    `gorm:"column:postal_code" json:"postalCode"`
	Images           string    `gorm:"column:images" json:"images"`
	X                float64   `gorm:"column:x" json:"x"`
	Y                float64   `gorm:"column:y" json:"y"`
	HasGeo           bool      `gorm:"column:has_geo" json:"hasGeo"`
	RatingAvg        float64   `gorm:"column:rating_avg" json:"ratingAvg"`
	ReviewCount      int64     `gorm:"column:review_count" json:"reviewCount"`
	Stars1           int64     `gorm:"column:stars_1" json:"stars1"`
	Stars2           int64     `gorm:"column:stars_2" json:"stars2"`
	Stars3           int64     `gorm:"column:stars_3" json:"stars3"`
	Stars4           int64     `gorm:"column:stars_4" json:"stars4"`
	Stars5           int64     `gorm:"column:stars_5" json:"stars5"`
	Amenities        string    `gorm:"column:amenities" json:"amenities"`
	Offers           string    `gorm:"column:offers" json:"offers"`
	OpenHours        string    `gorm:"column:open_hours" json:"openHours"`
	SEOTitle         string    `gorm:"column:seo_title" json:"seoTitle"`
	SEODescription   string    `gorm:"column:seo_description" json:"seoDescription"`
	Active           bool      `gorm:"column:active" json:"active"`
	PlatformDisabled bool      `gorm:"column:platform_disabled" json:"platformDisabled"`
	CreateTime       time.Time `gorm:"column:create_time" json:"createTime"`
	UpdateTime       time.Time `gorm:"column:update_time" json:"updateTime"`

	Distance *float64          `gorm:"-" json:"distance,omitempty"`
	Services []ServiceOffering `gorm:"foreignKey:BusinessID" json:"services,omitempty"`
}

func (BusinessListing) TableName() string { return "tb_business" }

// Eligible reports whether the listing may appear in any search result.
func (b *BusinessListing) Eligible() bool {
	return b.Active && !b.PlatformDisabled
}

// TagList splits the comma-separated tags column.
func (b *BusinessListing) TagList() []string { return splitList(b.Tags) }

// AmenityList splits the comma-separated amenities column.
func (b *BusinessListing) AmenityList() []string { return splitList(b.Amenities) }

// OfferList splits the comma-separated offers column.
func (b *BusinessListing) OfferList() []string { return splitList(b.Offers) }

// ImageList splits the comma-separated images column.
func (b *BusinessListing) ImageList() []string { return splitList(b.Images) }

// RecomputeRating derives the average from the per-star counters. The stored
// average is never treated as authoritative on its own.
func (b *BusinessListing) RecomputeRating() {
	total := b.Stars1 + b.Stars2 + b.Stars3 + b.Stars4 + b.Stars5
	b.ReviewCount = total
	if total == 0 {
		b.RatingAvg = 0
		return
	}
	sum := b.Stars1 + 2*b.Stars2 + 3*b.Stars3 + 4*b.Stars4 + 5*b.Stars5
	b.RatingAvg = float64(sum) / float64(total)
}

// IsOpenAt parses the "HH:MM-HH:MM" open_hours column against the given time.
// Empty or malformed hours report closed; overnight windows are supported.
func (b *BusinessListing) IsOpenAt(t time.Time) bool {
	parts := strings.SplitN(b.OpenHours, "-", 2)
	if len(parts) != 2 {
		return false
	}
	open, okOpen := parseClock(strings.TrimSpace(parts[0]))
	close, okClose := parseClock(strings.TrimSpace(parts[1]))
	if !okOpen || !okClose {
		return false
	}
	now := t.Hour()*60 + t.Minute()
	if close < open {
		// Overnight window, e.g. 18:00-02:00.
		return now >= open || now < close
	}
	return now >= open && now < close
}

func parseClock(s string) (int, bool) {
	var h, m int
	n, err := fmt.Sscanf(s, "%d:%d", &h, &m)
	if err != nil || n != 2 || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
