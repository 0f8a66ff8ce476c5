// Package locale loads the per-language phrase packs the composer and the
// scorer draw from. Packs are embedded in the binary and may be overridden or
// extended from a directory of YAML files. A loaded Registry is immutable.
package locale

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"reviewsynth/internal/core"
	"reviewsynth/internal/logger"
	"reviewsynth/internal/textclean"
)

//go:embed packs/*.yaml
var embeddedPacks embed.FS

// Rated slots: phrase banks that are scoped by rating tier.
const (
	SlotTitle   = "title"
	SlotShort   = "short"
	SlotOpening = "opening"
	SlotQuality = "quality"
	SlotFit     = "fit"
	SlotClosing = "closing"
)

// RatedSlots lists every slot that must carry one bank per tier.
var RatedSlots = []string{SlotTitle, SlotShort, SlotOpening, SlotQuality, SlotFit, SlotClosing}

// Rating-agnostic phrase categories.
const (
	CategoryStyle    = "style"
	CategoryUsage    = "usage"
	CategoryPersonal = "personal"
	CategoryGeneric  = "generic"
	CategorySlang    = "slang"
)

// Categories lists every rating-agnostic bank a pack must carry.
var Categories = []string{CategoryStyle, CategoryUsage, CategoryPersonal, CategoryGeneric, CategorySlang}

// Connective kinds.
const (
	ConnPeriod      = "period"
	ConnExclamation = "exclamation"
	ConnComma       = "comma"
	ConnDash        = "dash"
	ConnConjunction = "conjunction"
	ConnEllipsis    = "ellipsis"
)

// Connective joins two composed fragments.
type Connective struct {
	Kind   string  `yaml:"kind"`
	Text   string  `yaml:"text"`
	Weight float64 `yaml:"weight"`
}

// ContinuesSentence reports whether the fragment after this connective stays
// in the same sentence.
func (c Connective) ContinuesSentence() bool {
	return c.Kind == ConnComma || c.Kind == ConnDash || c.Kind == ConnConjunction
}

// Lexicon holds the word lists the scorer matches against.
type Lexicon struct {
	Personal   []string            `yaml:"personal"`
	Experience []string            `yaml:"experience"`
	Emotion    []string            `yaml:"emotion"`
	Positive   map[string]float64  `yaml:"positive"`
	Negative   map[string]float64  `yaml:"negative"`
	Negations  []string            `yaml:"negations"`
	StopWords  []string            `yaml:"stop_words"`
	Diacritics string              `yaml:"diacritics"`
	Topics     map[string][]string `yaml:"topics"`
	Criticism  []string            `yaml:"criticism"`
	Value      []string            `yaml:"value"`
}

// Authors is the name bank display names are built from.
type Authors struct {
	First        []string `yaml:"first"`
	LastInitials string   `yaml:"last_initials"`
}

// Pack is the full configuration of one locale.
type Pack struct {
	Code                string                             `yaml:"code"`
	Name                string                             `yaml:"name"`
	Adjacent            []string                           `yaml:"adjacent"`
	LowercaseAfterComma bool                               `yaml:"lowercase_after_comma"`
	GenericProduct      string                             `yaml:"generic_product"`
	FallbackTitle       string                             `yaml:"fallback_title"`
	Connectives         []Connective                       `yaml:"connectives"`
	Rated               map[string]map[core.Tier][]string  `yaml:"rated"`
	Phrases             map[string][]string                `yaml:"phrases"`
	InsightTemplates    map[core.Facet][]string            `yaml:"insight_templates"`
	Keywords            map[core.Facet]map[string][]string `yaml:"keywords"`
	Personas            map[string]map[string][]string     `yaml:"personas"`
	Persuasion          map[string][]string                `yaml:"persuasion"`
	Lexicon             Lexicon                            `yaml:"lexicon"`
	Authors             Authors                            `yaml:"authors"`
}

func (p *Pack) key(category string) string {
	return p.Code + ":" + category
}

// RatedCategory is the ledger category of a rated slot bank, e.g. "opening.positive".
func RatedCategory(slot string, tier core.Tier) string {
	return slot + "." + string(tier)
}

// RatedBank returns the tier bank of slot.
func (p *Pack) RatedBank(slot string, tier core.Tier) ([]string, error) {
	bank := p.Rated[slot][tier]
	if len(bank) == 0 {
		return nil, core.NewConfigurationError(p.key(RatedCategory(slot, tier)), "empty phrase bank")
	}
	return bank, nil
}

// Bank returns a rating-agnostic phrase bank.
func (p *Pack) Bank(category string) ([]string, error) {
	bank := p.Phrases[category]
	if len(bank) == 0 {
		return nil, core.NewConfigurationError(p.key(category), "empty phrase bank")
	}
	return bank, nil
}

// Templates returns the insight templates of facet.
func (p *Pack) Templates(facet core.Facet) ([]string, error) {
	bank := p.InsightTemplates[facet]
	if len(bank) == 0 {
		return nil, core.NewConfigurationError(p.key("insight."+string(facet)), "empty template bank")
	}
	return bank, nil
}

// Base returns the base language of the pack code.
func (p *Pack) Base() language.Base {
	base, _ := language.Make(p.Code).Base()
	return base
}

// IsAdjacent reports whether lang (any BCP 47 tag) is a neighbour of this
// pack's language that identifiers commonly confuse it with.
func (p *Pack) IsAdjacent(lang string) bool {
	base, _ := language.Make(lang).Base()
	for _, adj := range p.Adjacent {
		if b, _ := language.Make(adj).Base(); b == base {
			return true
		}
	}
	return false
}

// SameLanguage reports whether lang shares this pack's base language.
func (p *Pack) SameLanguage(lang string) bool {
	base, conf := language.Make(lang).Base()
	return conf != language.No && base == p.Base()
}

// Validate checks that every bank the composer needs is present and non-empty.
// All problems are reported, each as a ConfigurationError.
func (p *Pack) Validate() error {
	var errs []error
	add := func(key, reason string) {
		errs = append(errs, core.NewConfigurationError(p.key(key), reason))
	}

	if p.Code == "" {
		return core.NewConfigurationError("locale", "pack without code")
	}
	for _, slot := range RatedSlots {
		for _, tier := range []core.Tier{core.TierPositive, core.TierNeutral, core.TierNegative} {
			if len(p.Rated[slot][tier]) == 0 {
				add(RatedCategory(slot, tier), "empty phrase bank")
			}
		}
	}
	for _, category := range Categories {
		if len(p.Phrases[category]) == 0 {
			add(category, "empty phrase bank")
		}
	}
	for _, facet := range core.Facets {
		if len(p.InsightTemplates[facet]) == 0 {
			add("insight."+string(facet), "empty template bank")
		}
	}

	total := 0.0
	for _, c := range p.Connectives {
		if c.Weight < 0 {
			add("connectives."+c.Kind, "negative weight")
		}
		total += c.Weight
	}
	if total <= 0 {
		add("connectives", "no positive connective weight")
	}
	if len(p.Authors.First) == 0 || p.Authors.LastInitials == "" {
		add("authors", "empty name bank")
	}
	if p.FallbackTitle == "" {
		add("fallback_title", "missing")
	}

	return errors.Join(errs...)
}

// prepare normalises every matching term so lookups against normalised text
// agree with the pack regardless of how the YAML was written.
func (p *Pack) prepare() {
	p.Code = strings.ToLower(p.Code)
	for _, tags := range p.Keywords {
		for tag, terms := range tags {
			tags[tag] = normalizeAll(terms)
		}
	}
	for _, categories := range p.Personas {
		for name, terms := range categories {
			categories[name] = normalizeAll(terms)
		}
	}
	for name, terms := range p.Persuasion {
		p.Persuasion[name] = normalizeAll(terms)
	}

	lex := &p.Lexicon
	lex.Personal = normalizeAll(lex.Personal)
	lex.Experience = normalizeAll(lex.Experience)
	lex.Emotion = normalizeAll(lex.Emotion)
	lex.Negations = normalizeAll(lex.Negations)
	lex.StopWords = normalizeAll(lex.StopWords)
	lex.Criticism = normalizeAll(lex.Criticism)
	lex.Value = normalizeAll(lex.Value)
	lex.Diacritics = textclean.Normalize(lex.Diacritics)
	lex.Positive = normalizeWeights(lex.Positive)
	lex.Negative = normalizeWeights(lex.Negative)
	for topic, terms := range lex.Topics {
		lex.Topics[topic] = normalizeAll(terms)
	}
}

func normalizeAll(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = textclean.Normalize(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func normalizeWeights(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for word, w := range in {
		out[textclean.Normalize(word)] = w
	}
	return out
}

// Registry maps locale codes to packs.
type Registry struct {
	packs map[string]*Pack
}

// NewRegistry builds a registry from already parsed packs, validating each.
func NewRegistry(packs ...*Pack) (*Registry, error) {
	r := &Registry{packs: make(map[string]*Pack, len(packs))}
	for _, p := range packs {
		p.prepare()
		if err := p.Validate(); err != nil {
			return nil, err
		}
		r.packs[p.Code] = p
	}
	return r, nil
}

// Load reads the embedded packs and, when dir is non-empty, every *.yaml or
// *.yml file in dir. A file in dir replaces the embedded pack with the same
// code.
func Load(dir string) (*Registry, error) {
	packs := make(map[string]*Pack)

	err := fs.WalkDir(embeddedPacks, "packs", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := embeddedPacks.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read embedded pack %s: %w", path, err)
		}
		p, err := Parse(data)
		if err != nil {
			return fmt.Errorf("failed to parse embedded pack %s: %w", path, err)
		}
		packs[strings.ToLower(p.Code)] = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if dir != "" {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read locale directory %s: %w", dir, err)
		}
		for _, e := range entries {
			ext := strings.ToLower(filepath.Ext(e.Name()))
			if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
				continue
			}
			path := filepath.Join(dir, e.Name())
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read locale pack %s: %w", path, err)
			}
			p, err := Parse(data)
			if err != nil {
				return nil, fmt.Errorf("failed to parse locale pack %s: %w", path, err)
			}
			if _, exists := packs[strings.ToLower(p.Code)]; exists {
				logger.Info("Overriding embedded locale pack", "locale", p.Code, "path", path)
			}
			packs[strings.ToLower(p.Code)] = p
		}
	}

	list := make([]*Pack, 0, len(packs))
	for _, code := range sortedCodes(packs) {
		list = append(list, packs[code])
	}
	return NewRegistry(list...)
}

// Parse decodes a single YAML pack.
func Parse(data []byte) (*Pack, error) {
	var p Pack
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	if p.Code == "" {
		return nil, core.NewConfigurationError("locale", "pack without code")
	}
	return &p, nil
}

// Get returns the pack for code, or a ConfigurationError when unknown.
func (r *Registry) Get(code string) (*Pack, error) {
	if p, ok := r.packs[strings.ToLower(code)]; ok {
		return p, nil
	}
	return nil, core.NewConfigurationError(code, "unknown locale")
}

// Lookup returns the pack for code if present.
func (r *Registry) Lookup(code string) (*Pack, bool) {
	p, ok := r.packs[strings.ToLower(code)]
	return p, ok
}

// Codes returns the registered locale codes, sorted.
func (r *Registry) Codes() []string {
	return sortedCodes(r.packs)
}

func sortedCodes(m map[string]*Pack) []string {
	codes := make([]string, 0, len(m))
	for c := range m {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// AllPhrases returns every phrase the composer can emit for this pack, used
// to verify that composed text never leaves the locale.
func (p *Pack) AllPhrases() []string {
	var out []string
	for _, slot := range RatedSlots {
		for _, tier := range []core.Tier{core.TierPositive, core.TierNeutral, core.TierNegative} {
			out = append(out, p.Rated[slot][tier]...)
		}
	}
	for _, category := range Categories {
		out = append(out, p.Phrases[category]...)
	}
	return out
}
