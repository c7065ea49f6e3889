package models

import "fmt"

// Category is a free-form grouping label with a suggested budget. It
// has no effect on enforcement; the suggested limit only pre-fills the
// add-site form.
type Category struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	SuggestedLimitMinutes int    `json:"suggested_limit_minutes"`
}

func (c *Category) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("category name cannot be empty")
	}
	if c.SuggestedLimitMinutes <= 0 {
		return fmt.Errorf("suggested limit must be a positive number of minutes")
	}
	return nil
}

// PresetCategories is the fixed list seeded on first install.
var PresetCategories = []Category{
	{Name: "Social Media", SuggestedLimitMinutes: 30},
	{Name: "Video Streaming", SuggestedLimitMinutes: 60},
	{Name: "Gaming", SuggestedLimitMinutes: 60},
	{Name: "News", SuggestedLimitMinutes: 30},
	{Name: "Productivity", SuggestedLimitMinutes: 120},
	{Name: "Education", SuggestedLimitMinutes: 90},
	{Name: "Shopping", SuggestedLimitMinutes: 30},
	{Name: "Other", SuggestedLimitMinutes: 60},
}
