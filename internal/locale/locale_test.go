package locale

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewsynth/internal/core"
)

func TestLoadEmbeddedPacks(t *testing.T) {
	reg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"de", "en", "es", "fr"}, reg.Codes())

	for _, code := range reg.Codes() {
		p, err := reg.Get(code)
		require.NoError(t, err)
		assert.NoError(t, p.Validate(), code)
		assert.NotEmpty(t, p.Lexicon.StopWords, code)
		assert.NotEmpty(t, p.Lexicon.Positive, code)
		for _, facet := range core.Facets {
			assert.NotEmpty(t, p.Keywords[facet], "%s keywords for %s", code, facet)
		}
	}
}

func TestRegistryGetUnknownLocale(t *testing.T) {
	reg, err := Load("")
	require.NoError(t, err)

	_, err = reg.Get("xx")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrConfiguration))

	p, ok := reg.Lookup("EN")
	require.True(t, ok)
	assert.Equal(t, "en", p.Code)
}

func TestRatedBankMissingTier(t *testing.T) {
	p := &Pack{Code: "en", Rated: map[string]map[core.Tier][]string{
		SlotOpening: {core.TierPositive: {"Love it"}},
	}}

	bank, err := p.RatedBank(SlotOpening, core.TierPositive)
	require.NoError(t, err)
	assert.Equal(t, []string{"Love it"}, bank)

	_, err = p.RatedBank(SlotOpening, core.TierNegative)
	var cfgErr *core.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "en:opening.negative", cfgErr.Key)
}

func TestValidateReportsEveryEmptyBank(t *testing.T) {
	err := (&Pack{Code: "zz"}).Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrConfiguration))
	assert.Contains(t, err.Error(), "zz:title.positive")
	assert.Contains(t, err.Error(), "zz:generic")
	assert.Contains(t, err.Error(), "zz:insight.color")
	assert.Contains(t, err.Error(), "zz:connectives")
}

func TestAdjacencyAndBaseLanguage(t *testing.T) {
	reg, err := Load("")
	require.NoError(t, err)

	en, _ := reg.Get("en")
	assert.True(t, en.SameLanguage("en"))
	assert.True(t, en.SameLanguage("en-GB"))
	assert.True(t, en.IsAdjacent("nl"))
	assert.False(t, en.IsAdjacent("fr"))

	fr, _ := reg.Get("fr")
	assert.True(t, fr.IsAdjacent("it"))
	assert.True(t, fr.IsAdjacent("es"))
	assert.False(t, fr.SameLanguage("es"))
}

func TestLoadDirectoryOverridesEmbeddedPack(t *testing.T) {
	reg, err := Load("")
	require.NoError(t, err)
	en, _ := reg.Get("en")

	data, err := os.ReadFile(filepath.Join("packs", "en.yaml"))
	require.NoError(t, err)
	custom := strings.Replace(string(data), "name: English", "name: English (custom)", 1)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.yaml"), []byte(custom), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	overridden, err := Load(dir)
	require.NoError(t, err)
	got, _ := overridden.Get("en")
	assert.Equal(t, "English (custom)", got.Name)
	assert.Equal(t, "English", en.Name)
}

func TestLoadDirectoryRejectsBrokenPack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "xx.yaml"), []byte("code: xx\n"), 0644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrConfiguration))
}

func TestPrepareNormalisesTerms(t *testing.T) {
	reg, err := Load("")
	require.NoError(t, err)
	de, _ := reg.Get("de")

	for _, w := range de.Lexicon.StopWords {
		assert.Equal(t, strings.ToLower(w), w)
	}
	assert.Contains(t, de.Keywords[core.FacetColor]["Grün"], "grün")
}

func TestConnectiveContinuesSentence(t *testing.T) {
	assert.True(t, Connective{Kind: ConnComma}.ContinuesSentence())
	assert.True(t, Connective{Kind: ConnConjunction}.ContinuesSentence())
	assert.False(t, Connective{Kind: ConnPeriod}.ContinuesSentence())
	assert.False(t, Connective{Kind: ConnEllipsis}.ContinuesSentence())
}
