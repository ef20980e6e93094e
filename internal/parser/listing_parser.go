package parser

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/jobs-search/internal/models"
)

// NoJobsMarker is what the model replies with when nothing matched.
const NoJobsMarker = "NO_JOBS_FOUND"

type field int

const (
	fieldNone field = iota
	fieldOther      // a "Label: value" line with a label we don't track
	fieldTitle
	fieldCompany
	fieldLocation
	fieldDescription
	fieldLink
)

var labelAliases = map[string]field{
	"title":            fieldTitle,
	"job title":        fieldTitle,
	"position":         fieldTitle,
	"position title":   fieldTitle,
	"role":             fieldTitle,
	"company":          fieldCompany,
	"company name":     fieldCompany,
	"employer":         fieldCompany,
	"organization":     fieldCompany,
	"location":         fieldLocation,
	"job location":     fieldLocation,
	"description":      fieldDescription,
	"job description":  fieldDescription,
	"summary":          fieldDescription,
	"details":          fieldDescription,
	"link":             fieldLink,
	"url":              fieldLink,
	"job link":         fieldLink,
	"apply":            fieldLink,
	"apply link":       fieldLink,
	"application link": fieldLink,
	"application url":  fieldLink,
}

var (
	labelLine       = regexp.MustCompile(`^(?:#{1,6}\s*)?(?:[-*•+]\s+)?(?:\d{1,2}[.)]\s+)?(?:\*\*|__)?\s*([A-Za-z][A-Za-z ]{0,30}?)\s*(?:\*\*|__)?\s*[:：]\s*(?:\*\*|__)?(.*)$`)
	separatorLine   = regexp.MustCompile(`^(?:-{3,}|\*{3,}|={3,}|_{3,})$`)
	markdownHeading = regexp.MustCompile(`^#{1,6}\s*(.*)$`)
	jobHeading      = regexp.MustCompile(`(?i)^(?:\*\*|__)?\s*(?:job|listing|posting|opening|position)\s*#?\s*\d+\b\s*[:.)\-–—]?\s*(.*)$`)
	numberedHeading = regexp.MustCompile(`^(?:\*\*|__)?\d{1,2}[.)]\s+(.+)$`)
	ordinalOnly     = regexp.MustCompile(`^#?\d{1,2}[.):]?$`)
	bulletPrefix    = regexp.MustCompile(`^[-*•+]\s+`)
)

// Parse extracts listings from a model reply. It never fails: malformed
// blocks are dropped or partially filled, and a reply without any labelled
// blocks yields an empty slice.
func Parse(reply string) []models.JobListing {
	listings := make([]models.JobListing, 0)
	if NoResults(reply) {
		return listings
	}

	lines := strings.Split(strings.ReplaceAll(reply, "\r\n", "\n"), "\n")
	var cur block
	flush := func() {
		if listing, ok := cur.finish(); ok {
			listings = append(listings, listing)
		} else if cur.touched {
			slog.Debug("dropping malformed listing block", slog.String("description", cur.listing.Description))
		}
		cur = block{}
	}

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			cur.last = fieldNone
		case strings.HasPrefix(line, "```"):
			// fenced output, the content inside is parsed as usual
		case separatorLine.MatchString(line):
			flush()
		default:
			if f, value, ok := matchLabel(line); ok {
				if cur.filled(f) {
					flush()
				}
				cur.set(f, value)
				continue
			}
			if title, ok := matchHeading(line, nextNonEmpty(lines, i+1)); ok {
				flush()
				cur.headingTitle = title
				continue
			}
			cur.appendLine(line)
		}
	}
	flush()

	return listings
}

// NoResults reports whether the reply is the model saying nothing matched.
func NoResults(reply string) bool {
	if !strings.Contains(strings.ToUpper(reply), NoJobsMarker) {
		return false
	}
	for _, line := range strings.Split(reply, "\n") {
		if f, _, ok := matchLabel(strings.TrimSpace(line)); ok && f != fieldOther {
			return false
		}
	}
	return true
}

type block struct {
	listing      models.JobListing
	headingTitle string
	hasTitle     bool
	touched      bool
	last         field
}

func (b *block) set(f field, raw string) {
	b.touched = true
	b.last = f
	value := cleanValue(f, raw)
	switch f {
	case fieldTitle:
		b.listing.Title = value
		b.hasTitle = true
	case fieldCompany:
		b.listing.Company = value
	case fieldLocation:
		b.listing.Location = value
	case fieldDescription:
		b.listing.Description = value
	case fieldLink:
		b.listing.ApplicationLink = value
	}
}

// filled reports whether f already holds a value, which means a new
// listing has started without a separator or heading.
func (b *block) filled(f field) bool {
	if f == fieldTitle {
		return b.hasTitle
	}
	return b.get(f) != ""
}

func (b *block) get(f field) string {
	switch f {
	case fieldTitle:
		return b.listing.Title
	case fieldCompany:
		return b.listing.Company
	case fieldLocation:
		return b.listing.Location
	case fieldDescription:
		return b.listing.Description
	case fieldLink:
		return b.listing.ApplicationLink
	}
	return ""
}

// appendLine handles an unlabelled line: it fills a label left empty on the
// previous line, or continues a description. Anything else is noise.
func (b *block) appendLine(line string) {
	line = bulletPrefix.ReplaceAllString(line, "")
	switch {
	case b.last > fieldOther && b.get(b.last) == "":
		b.set(b.last, line)
	case b.last == fieldDescription:
		if extra := cleanValue(fieldDescription, line); extra != "" {
			b.listing.Description += " " + extra
		}
	}
}

func (b *block) finish() (models.JobListing, bool) {
	if !b.touched {
		return models.JobListing{}, false
	}
	if b.listing.Title == "" {
		b.listing.Title = b.headingTitle
	}
	if b.listing.IsEmpty() {
		return models.JobListing{}, false
	}
	return b.listing, true
}

// matchLabel recognizes "Label: value" lines. ok is false for lines that are
// not label lines at all; unknown short labels come back as fieldOther.
func matchLabel(line string) (field, string, bool) {
	m := labelLine.FindStringSubmatch(line)
	if m == nil {
		return fieldNone, "", false
	}
	label := strings.ToLower(strings.Join(strings.Fields(m[1]), " "))
	value := m[2]
	if f, ok := labelAliases[label]; ok {
		return f, value, true
	}
	if strings.HasPrefix(strings.TrimSpace(value), "//") || len(strings.Fields(label)) > 3 {
		return fieldNone, "", false
	}
	return fieldOther, value, true
}

func isKnownLabel(line string) bool {
	f, _, ok := matchLabel(line)
	return ok && f > fieldOther
}

// matchHeading recognizes lines that open a new listing, like "### 2.", "## Go Developer",
// "**Job 3: Go Developer**" or "1. Backend Engineer" directly followed by
// labelled fields. The returned title is a fallback for blocks without a
// Title label.
func matchHeading(line, next string) (string, bool) {
	strong := false
	if m := markdownHeading.FindStringSubmatch(line); m != nil {
		line = strings.TrimSpace(m[1])
		strong = true
	}
	if m := jobHeading.FindStringSubmatch(line); m != nil {
		return cleanValue(fieldTitle, m[1]), true
	}
	if m := numberedHeading.FindStringSubmatch(line); m != nil {
		if strong || isKnownLabel(next) {
			return cleanValue(fieldTitle, m[1]), true
		}
		return "", false
	}
	if !strong || ordinalOnly.MatchString(line) {
		return "", strong
	}
	return cleanValue(fieldTitle, line), true
}

func nextNonEmpty(lines []string, from int) string {
	for _, l := range lines[from:] {
		if l = strings.TrimSpace(l); l != "" {
			return l
		}
	}
	return ""
}
