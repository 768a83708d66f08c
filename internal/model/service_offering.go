package model

import "encoding/json"

// ServiceOffering mirrors tb_service. Each row belongs to exactly one
// business. Price may be direct or carried by the priced options JSON.
type ServiceOffering struct {
	ID              int64   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	BusinessID      int64   `gorm:"column:business_id;index" json:"businessId"`
	Name            string  `gorm:"column:name" json:"name"`
	Category        string  `gorm:"column:category" json:"category"`
	Price           float64 `gorm:"column:price" json:"price"`
	Options         string  `gorm:"column:options" json:"options"`
	DurationMin     int     `gorm:"column:duration_min" json:"durationMin"`
	Active          bool    `gorm:"column:active" json:"active"`
	AvailableOnline bool    `gorm:"column:available_online" json:"availableOnline"`
	DisplayOrder    int     `gorm:"column:display_order" json:"displayOrder"`
}

func (ServiceOffering) TableName() string { return "tb_service" }

// ServiceOption is a priced variant stored in the options JSON column.
type ServiceOption struct {
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Active bool    `json:"active"`
}

// OptionList parses the options column. Malformed JSON yields no options
// rather than an error; the direct price still applies.
func (s *ServiceOffering) OptionList() []ServiceOption {
	if s.Options == "" {
		return nil
	}
	var opts []ServiceOption
	if err := json.Unmarshal([]byte(s.Options), &opts); err != nil {
		return nil
	}
	return opts
}

// PriceInRange reports whether the direct price or any active priced option
// falls inside [min, max].
func (s *ServiceOffering) PriceInRange(min, max float64) bool {
	if s.Price > 0 && s.Price >= min && s.Price <= max {
		return true
	}
	for _, opt := range s.OptionList() {
		if opt.Active && opt.Price >= min && opt.Price <= max {
			return true
		}
	}
	return false
}

// MinPrice returns the lowest positive price across the direct price and
// active options, or 0 when the offering is unpriced.
func (s *ServiceOffering) MinPrice() float64 {
	min := 0.0
	if s.Price > 0 {
		min = s.Price
	}
	for _, opt := range s.OptionList() {
		if !opt.Active || opt.Price <= 0 {
			continue
		}
		if min == 0 || opt.Price < min {
			min = opt.Price
		}
	}
	return min
}
