package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestTierFor(t *testing.T) {
	cases := map[int]Tier{
		5: TierPositive,
		4: TierPositive,
		3: TierNeutral,
		2: TierNegative,
		1: TierNegative,
	}
	for rating, want := range cases {
		if got := TierFor(rating); got != want {
			t.Errorf("TierFor(%d) = %s, want %s", rating, got, want)
		}
	}
}

func TestValidRating(t *testing.T) {
	for _, r := range []int{1, 2, 3, 4, 5} {
		if !ValidRating(r) {
			t.Errorf("rating %d should be valid", r)
		}
	}
	for _, r := range []int{0, 6, -1} {
		if ValidRating(r) {
			t.Errorf("rating %d should be invalid", r)
		}
	}
}

func TestInsightSet(t *testing.T) {
	set := InsightSet{
		FacetColor:    {"blue"},
		FacetMaterial: {"cotton", "linen"},
		FacetFit:      nil,
	}

	if set.Empty() {
		t.Error("set with tags should not be empty")
	}

	populated := set.Populated()
	if len(populated) != 2 || populated[0] != FacetMaterial || populated[1] != FacetColor {
		t.Errorf("Populated() = %v, want [material color]", populated)
	}

	tags := set.Tags()
	if len(tags) != 3 || tags[0] != "blue" || tags[2] != "linen" {
		t.Errorf("Tags() = %v", tags)
	}

	if !(InsightSet{}).Empty() {
		t.Error("zero set should be empty")
	}
}

func TestConfigurationError(t *testing.T) {
	err := NewConfigurationError("en:opening.positive", "empty candidate list")
	wrapped := fmt.Errorf("compose: %w", err)

	if !errors.Is(wrapped, ErrConfiguration) {
		t.Error("wrapped ConfigurationError should match ErrConfiguration")
	}

	var cfgErr *ConfigurationError
	if !errors.As(wrapped, &cfgErr) {
		t.Fatal("errors.As should find ConfigurationError")
	}
	if cfgErr.Key != "en:opening.positive" {
		t.Errorf("Key = %q", cfgErr.Key)
	}
	if errors.Is(wrapped, ErrAnalysisUnavailable) {
		t.Error("ConfigurationError must not match ErrAnalysisUnavailable")
	}
}

func TestReviewRatingOnly(t *testing.T) {
	if !(Review{Rating: 5}).RatingOnly() {
		t.Error("review without body should be rating-only")
	}
	if (Review{Body: "Great"}).RatingOnly() {
		t.Error("review with body should not be rating-only")
	}
}
