package presenter

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/jobs-search/internal/models"
)

const (
	lineWidth   = 76
	labelIndent = "   "
	labelWidth  = 13
)

var divider = strings.Repeat("=", 70)

// Render prints listings as numbered blocks in the order given.
func Render(w io.Writer, q models.SearchQuery, listings []models.JobListing) error {
	bw := bufio.NewWriter(w)

	if len(listings) == 0 {
		fmt.Fprintf(bw, "No jobs found for %q in %s.\n", q.Keywords, where(q))
		return bw.Flush()
	}

	noun := "jobs"
	if len(listings) == 1 {
		noun = "job"
	}
	fmt.Fprintf(bw, "Found %d %s for %q in %s\n", len(listings), noun, q.Keywords, where(q))
	fmt.Fprintln(bw, divider)

	for i, job := range listings {
		fmt.Fprintf(bw, "%d. %s\n", i+1, orDefault(job.Title, "Untitled position"))
		writeField(bw, "Company", orDefault(job.Company, "Not specified"))
		writeField(bw, "Location", orDefault(job.Location, "Not specified"))
		writeField(bw, "Description", orDefault(job.Description, "Not specified"))
		writeField(bw, "Apply", orDefault(job.ApplicationLink, "Not provided"))
		fmt.Fprintln(bw, divider)
	}

	return bw.Flush()
}

func writeField(w io.Writer, label, value string) {
	prefix := fmt.Sprintf("%s%-*s", labelIndent, labelWidth, label+":")
	pad := strings.Repeat(" ", len(prefix))

	for i, line := range wrap(value, lineWidth-len(prefix)) {
		if i == 0 {
			fmt.Fprintf(w, "%s%s\n", prefix, line)
			continue
		}
		fmt.Fprintf(w, "%s%s\n", pad, line)
	}
}

// wrap breaks text on spaces so lines stay within width. Words longer than
// width, such as URLs, get a line of their own.
func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
			continue
		}
		current += " " + word
	}
	return append(lines, current)
}

func where(q models.SearchQuery) string {
	if strings.TrimSpace(q.Location) == "" {
		return "any location"
	}
	return q.Location
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
