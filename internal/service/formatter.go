package service

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"bizdir-backend/internal/dto"
	"bizdir-backend/internal/model"
	"bizdir-backend/internal/utils"
)

const descriptionSnippetLen = 160

// Formatter projects ranked candidates into the public payload shape and
// applies the outbound obfuscation pass.
type Formatter struct {
	key []byte
}

func NewFormatter(obfuscationKey string) *Formatter {
	return &Formatter{key: []byte(obfuscationKey)}
}

// Project shapes candidates for the outside world: public-safe fields only,
// open/closed derived from working hours at now, capped service preview.
func (f *Formatter) Project(cands []Candidate, now time.Time) []dto.ListingView {
	views := make([]dto.ListingView, 0, len(cands))
	for _, c := range cands {
		l := c.Listing
		view := dto.ListingView{
			ID:       l.ID,
			Name:     l.Name,
			Slug:     l.Slug,
			Category: l.Category,
			Branch:   l.Branch,
			Area:     l.Area,
			Address:  l.Address,
			City:     l.City,
			State:    l.State,
			Images:   l.ImageList(),
			Rating: dto.RatingSummary{
				Average: l.RatingAvg,
				Count:   l.ReviewCount,
			},
			IsOpen:      l.IsOpenAt(now),
			Description: snippet(l.Description),
			Offers:      l.OfferList(),
		}
		if c.Distance != nil {
			d := *c.Distance
			view.Distance = &d
			view.DistanceText = distanceText(d)
		}
		view.Services = servicePreview(c)
		views = append(views, view)
	}
	return views
}

// Package serializes views and applies the reversible XOR obfuscation.
func (f *Formatter) Package(views []dto.ListingView) (string, error) {
	raw, err := json.Marshal(views)
	if err != nil {
		return "", fmt.Errorf("marshal listing payload: %w", err)
	}
	return utils.Obfuscate(raw, f.key), nil
}

// Unpackage reverses Package; used by tests and internal consumers.
func (f *Formatter) Unpackage(payload string) ([]dto.ListingView, error) {
	raw, err := utils.Deobfuscate(payload, f.key)
	if err != nil {
		return nil, err
	}
	var views []dto.ListingView
	if err := json.Unmarshal(raw, &views); err != nil {
		return nil, fmt.Errorf("unmarshal listing payload: %w", err)
	}
	return views, nil
}

func servicePreview(c Candidate) []dto.ServicePreview {
	services := make([]dto.ServicePreview, 0, utils.SERVICE_PREVIEW_LIMIT)
	ordered := append([]model.ServiceOffering(nil), c.Listing.Services...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].DisplayOrder < ordered[j].DisplayOrder
	})
	for _, svc := range ordered {
		if !svc.Active {
			continue
		}
		services = append(services, dto.ServicePreview{
			Name:        svc.Name,
			Category:    svc.Category,
			Price:       svc.MinPrice(),
			DurationMin: svc.DurationMin,
		})
		if len(services) == utils.SERVICE_PREVIEW_LIMIT {
			break
		}
	}
	return services
}

func distanceText(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0f m", meters)
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}

func snippet(desc string) string {
	desc = strings.TrimSpace(desc)
	if len(desc) <= descriptionSnippetLen {
		return desc
	}
	cut := desc[:descriptionSnippetLen]
	// Back off to a rune boundary so the cut never splits a multi-byte
	// character.
	for len(cut) > 0 && !utf8.RuneStart(desc[len(cut)]) {
		cut = cut[:len(cut)-1]
	}
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "…"
}
