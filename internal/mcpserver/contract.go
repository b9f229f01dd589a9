package mcpserver

// ProfileFormat describes the canonical Markdown profile format that
// authors and LLM consumers should follow when writing profile documents.
const ProfileFormat = `# Mannaz Profile Format

A profile is one Markdown file in the profile directory. The file's base
name (without extension) is its id.

## Structure

` + "```" + `markdown
# Human-readable profile name

One short paragraph describing the profile. It becomes the profile's
description and ends at the first blank line.

## Any section

Free-form Markdown body. Every heading (levels 1-6) opens a new section;
sections are tracked as a flat list in document order.

## Checklist

- [ ] An open item
- [x] A completed item
` + "```" + `

## Rules

1. **The first level-1 heading is the profile name.** Without one, the
   file's id is used instead.
2. **The first paragraph under the name is the description.** It stops at
   a blank line, the next heading, or a checklist item.
3. **Checklist items** are bulleted checkbox lines anywhere in the file:
   ` + "`- [ ] text`" + `, ` + "`* [x] text`" + `, or ` + "`+ [X] text`" + `.
   They are collected in document order and normalised to
   ` + "`[ ] text`" + ` / ` + "`[x] text`" + `.
4. **File names** end with ` + "`.md`" + ` or ` + "`.markdown`" + ` and must be
   unique: two files with the same base name shadow each other.
5. **Encoding** is UTF-8. No front-matter or schema is required; any
   prose is a valid profile.
6. ` + "`metadata.json`" + ` in the profile directory is the generated summary
   index — never edit it by hand, it is rewritten on every reload.
`
