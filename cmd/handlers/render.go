package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"reviewsynth/internal/core"
	"reviewsynth/internal/quality"
)

var (
	headlineStyle = lipgloss.NewStyle().Bold(true)
	starStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	metaStyle     = lipgloss.NewStyle().Faint(true)
	cardStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder(), true).Padding(0, 1).Width(76)

	gradeStyles = map[string]lipgloss.Style{
		"A": lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		"B": lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		"C": lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		"D": lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
	}
)

func stars(rating int) string {
	if rating < 0 || rating > core.MaxRating {
		return fmt.Sprintf("%d★", rating)
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", core.MaxRating-rating)
}

// renderReview draws one review as a bordered card. A non-nil report adds
// its grade, overall score and tone to the header line.
func renderReview(r core.Review, report *quality.Report) string {
	header := starStyle.Render(stars(r.Rating))
	if r.Title != "" {
		header += "  " + headlineStyle.Render(r.Title)
	}
	if report != nil {
		style, ok := gradeStyles[report.GradeLetter()]
		if !ok {
			style = headlineStyle
		}
		header += "  " + style.Render(fmt.Sprintf("[%s %.2f]", report.GradeLetter(), report.Overall))
		if emoji := report.ToneEmoji(); emoji != "" {
			header += " " + emoji
		}
	}

	body := r.Body
	if body == "" {
		body = metaStyle.Render("(rating only)")
	}

	verified := ""
	if r.Verified {
		verified = " · ✅ verified purchase"
	}
	meta := metaStyle.Render(fmt.Sprintf("%s · %s · %s · %s%s",
		r.AuthorName, r.Date.Format("2006-01-02"), r.Locale, r.Persona, verified))

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, body, meta))
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// loadProduct reads a product from a YAML or JSON file; flag values override
// file fields when set.
func loadProduct(path, id, title, description string) (core.Product, error) {
	var product core.Product
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return product, fmt.Errorf("failed to read product file: %w", err)
		}
		if err := yaml.Unmarshal(data, &product); err != nil {
			return product, fmt.Errorf("failed to parse product file %s: %w", path, err)
		}
	}
	if id != "" {
		product.ID = id
	}
	if title != "" {
		product.Title = title
	}
	if description != "" {
		product.Description = description
	}
	return product, nil
}

// loadReviews reads a JSON array of reviews from path, or stdin when path
// is "-".
func loadReviews(path string) ([]core.Review, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open reviews file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var reviews []core.Review
	if err := json.NewDecoder(r).Decode(&reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	return reviews, nil
}

// loadCorpus reads one historical review body per non-empty line.
func loadCorpus(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}
	var corpus []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			corpus = append(corpus, line)
		}
	}
	return corpus, nil
}
