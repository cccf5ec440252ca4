// Package catalog defines the closed set of content categories. Which of
// them are visible to free users is configuration, not part of the catalog.
package catalog

import "strings"

// Category represents a content topic with metadata for display
type Category struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"` // Hex color code for UI display
}

// categories holds all available content categories
var categories = []Category{
	{Name: "Conversations", Description: "Everyday dialogues and small talk", Color: "#3B82F6"},
	{Name: "Technology", Description: "Gadgets, software and the digital world", Color: "#6366F1"},
	{Name: "Literature", Description: "Authors, books and literary passages", Color: "#8B5CF6"},
	{Name: "Work", Description: "Office life, meetings and careers", Color: "#0EA5E9"},
	{Name: "Studies", Description: "School, university and learning", Color: "#14B8A6"},
	{Name: "Short Stories", Description: "Brief narratives for extended reading", Color: "#F59E0B"},
	{Name: "Home", Description: "Household routines and family life", Color: "#84CC16"},
	{Name: "Travel", Description: "Trips, transport and getting around", Color: "#06B6D4"},
	{Name: "Food", Description: "Cooking, restaurants and ordering meals", Color: "#EF4444"},
	{Name: "Entertainment", Description: "Movies, music and leisure", Color: "#EC4899"},
	{Name: "Health", Description: "Wellness, fitness and visiting the doctor", Color: "#10B981"},
	{Name: "City", Description: "Urban life, directions and services", Color: "#6B7280"},
	{Name: "Nature", Description: "Outdoors, weather and the environment", Color: "#22C55E"},
	{Name: "Irregular Verbs", Description: "Practice with common irregular verb forms", Color: "#A855F7"},
}

// All returns all available categories
func All() []Category {
	result := make([]Category, len(categories))
	copy(result, categories)
	return result
}

// Names returns the names of all categories in catalog order
func Names() []string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}
	return names
}

// IsValid checks whether name is a known category (case-insensitive)
func IsValid(name string) bool {
	for _, c := range categories {
		if strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

// Get returns the category with the given name (case-insensitive)
func Get(name string) (Category, bool) {
	for _, c := range categories {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Category{}, false
}
