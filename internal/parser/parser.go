// Package parser extracts the structured profile representation (title,
// description, sections, checklist) from Markdown content.
package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/starford/mannaz/internal/models"
)

var (
	headingRe   = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	checklistRe = regexp.MustCompile(`^[-*+]\s+\[([ xX])\]\s+(.*)$`)
)

// Parse builds a Profile from raw Markdown bytes. It is total: any input
// is accepted, degenerate documents simply yield empty sections, an empty
// description, and the id as the name.
//
// Line endings: CRLF input is recognised everywhere, but Section.Content
// and Description are LF-joined (the trailing \r is stripped per line).
// RawContent alone preserves the source byte-for-byte.
func Parse(data []byte, id string, modifiedAt time.Time) *models.Profile {
	raw := string(data)
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}

	var sections []models.Section
	var checklist []string
	name := ""
	titleLine := -1
	spanStart := 0

	closeSection := func(end int) {
		if len(sections) == 0 {
			return
		}
		sections[len(sections)-1].Content = joinTrimmed(lines[spanStart:end])
	}

	for i, line := range lines {
		if m := headingRe.FindStringSubmatch(line); m != nil {
			closeSection(i)
			level := len(m[1])
			title := strings.TrimSpace(m[2])
			sections = append(sections, models.Section{Title: title, Level: level})
			spanStart = i + 1
			if level == 1 && name == "" {
				name = title
				titleLine = i
			}
			continue
		}
		if m := checklistRe.FindStringSubmatch(line); m != nil {
			checklist = append(checklist, "["+strings.ToLower(m[1])+"] "+m[2])
		}
	}
	closeSection(len(lines))

	if name == "" {
		name = id
	}

	return &models.Profile{
		ID:           id,
		Name:         name,
		Description:  firstParagraph(lines, titleLine),
		Sections:     sections,
		Checklist:    checklist,
		RawContent:   raw,
		LastModified: modifiedAt,
	}
}

// firstParagraph returns the first block of consecutive non-blank,
// non-heading, non-checklist lines following the title line. Blank lines
// directly under the title are skipped; the block ends at the first blank
// line, heading, or checklist item.
func firstParagraph(lines []string, titleLine int) string {
	if titleLine < 0 {
		return ""
	}
	i := titleLine + 1
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	var para []string
	for ; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" || headingRe.MatchString(line) || checklistRe.MatchString(line) {
			break
		}
		para = append(para, line)
	}
	return strings.TrimSpace(strings.Join(para, "\n"))
}

// joinTrimmed joins a section's body lines, dropping leading and trailing
// blank lines while keeping interior lines verbatim.
func joinTrimmed(lines []string) string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}
