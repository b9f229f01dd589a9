// Package models defines the domain types for Mannaz.
package models

import "time"

// Profile represents one parsed Markdown profile document.
type Profile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Sections     []Section `json:"sections"`
	Checklist    []string  `json:"checklist"`
	RawContent   string    `json:"-"`
	LastModified time.Time `json:"lastModified"`
}

// Section is one heading line plus the body text up to the next heading.
// Sections form a flat list in document order; a deeper heading is a
// sibling entry, not a child.
type Section struct {
	Title   string `json:"title"`
	Level   int    `json:"level"`
	Content string `json:"content"`
}

// ProfileSummary is the lightweight representation used for listings and
// the persisted index. Field names are the persisted wire format.
type ProfileSummary struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	ChecklistCount int       `json:"checklistCount"`
	SectionCount   int       `json:"sectionCount"`
	LastModified   time.Time `json:"lastModified"`
}

// Summary derives the listing/index representation of the profile.
func (p *Profile) Summary() ProfileSummary {
	return ProfileSummary{
		ID:             p.ID,
		Name:           p.Name,
		ChecklistCount: len(p.Checklist),
		SectionCount:   len(p.Sections),
		LastModified:   p.LastModified,
	}
}

// Index is the persisted summary index, rewritten wholesale on every
// initialize/reload.
type Index struct {
	ProfileCount int              `json:"profileCount"`
	Profiles     []ProfileSummary `json:"profiles"`
}
