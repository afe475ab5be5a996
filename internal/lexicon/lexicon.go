// Package lexicon holds the per-language word tables used to interpret voice
// transcripts. Languages are data: adding one means registering a Language,
// never touching parser control flow.
package lexicon

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/voicecart/backend/internal/domain"
)

// Language is the raw word table for one language. Keyword and phrase
// entries may span several words ("look for", "show my cart").
type Language struct {
	Code        string
	Keywords    map[domain.Intent][]string
	CartPhrases map[domain.Intent][]string
	NumberWords map[string]int
	Fillers     []string
	Corrections map[string]string
}

// phrase is a normalized multi-token keyword bound to an intent
type phrase struct {
	tokens []string
	intent domain.Intent
}

// compiled is the lookup form of a Language
type compiled struct {
	code        string
	keywords    map[string][]phrase // first token -> candidates, longest first
	cartPhrases []phrase
	numbers     map[string]int
	fillers     map[string]bool
	corrections map[string]string
	vocabulary  map[string]bool
}

// Lexicon is a registry of compiled languages. It is safe for concurrent use.
type Lexicon struct {
	mu              sync.RWMutex
	languages       map[string]*compiled
	order           []string
	defaultLanguage string
}

// New builds a lexicon from the given languages. The default language must be
// among them.
func New(defaultLanguage string, languages ...Language) (*Lexicon, error) {
	l := &Lexicon{
		languages:       make(map[string]*compiled),
		defaultLanguage: CanonicalCode(defaultLanguage),
	}
	for _, lang := range languages {
		if err := l.Register(lang); err != nil {
			return nil, err
		}
	}
	if _, ok := l.languages[l.defaultLanguage]; !ok {
		return nil, fmt.Errorf("default language %q is not registered", defaultLanguage)
	}
	return l, nil
}

// Default returns a lexicon with the built-in languages and English as default
func Default() *Lexicon {
	l, err := New("en", Builtin()...)
	if err != nil {
		panic(err)
	}
	return l
}

// Register adds or replaces a language
func (l *Lexicon) Register(lang Language) error {
	code := CanonicalCode(lang.Code)
	if code == "" {
		return fmt.Errorf("%w: language code is required", domain.ErrInvalidRequest)
	}

	c := &compiled{
		code:        code,
		keywords:    make(map[string][]phrase),
		numbers:     make(map[string]int),
		fillers:     make(map[string]bool),
		corrections: make(map[string]string),
		vocabulary:  make(map[string]bool),
	}

	for intent, words := range lang.Keywords {
		for _, w := range words {
			tokens := Tokens(w)
			if len(tokens) == 0 {
				continue
			}
			c.keywords[tokens[0]] = append(c.keywords[tokens[0]], phrase{tokens: tokens, intent: intent})
			c.addVocabulary(tokens...)
		}
	}
	for first := range c.keywords {
		candidates := c.keywords[first]
		sort.SliceStable(candidates, func(i, j int) bool {
			return len(candidates[i].tokens) > len(candidates[j].tokens)
		})
	}

	for intent, phrases := range lang.CartPhrases {
		for _, p := range phrases {
			tokens := Tokens(p)
			if len(tokens) == 0 {
				continue
			}
			c.cartPhrases = append(c.cartPhrases, phrase{tokens: tokens, intent: intent})
			c.addVocabulary(tokens...)
		}
	}
	sort.SliceStable(c.cartPhrases, func(i, j int) bool {
		return len(c.cartPhrases[i].tokens) > len(c.cartPhrases[j].tokens)
	})

	for word, n := range lang.NumberWords {
		if n <= 0 {
			continue
		}
		key := Normalize(word)
		c.numbers[key] = n
		c.addVocabulary(key)
	}
	for _, f := range lang.Fillers {
		for _, t := range Tokens(f) {
			c.fillers[t] = true
			c.addVocabulary(t)
		}
	}
	for from, to := range lang.Corrections {
		c.corrections[Normalize(from)] = Normalize(to)
		c.addVocabulary(Normalize(from))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.languages[code]; !exists {
		l.order = append(l.order, code)
	}
	l.languages[code] = c
	return nil
}

func (c *compiled) addVocabulary(tokens ...string) {
	for _, t := range tokens {
		c.vocabulary[t] = true
	}
}

// DefaultLanguage returns the fallback language code
func (l *Lexicon) DefaultLanguage() string {
	return l.defaultLanguage
}

// Supports reports whether a language code (or its base code) is registered
func (l *Lexicon) Supports(code string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.languages[CanonicalCode(code)]
	return ok
}

// Languages returns the registered codes in registration order
func (l *Lexicon) Languages() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// Detect picks the language for a transcript. A supported hint wins;
// otherwise the language whose vocabulary covers the most tokens is chosen,
// falling back to the default language.
func (l *Lexicon) Detect(hint string, transcript string) string {
	if code := CanonicalCode(hint); code != "" && l.Supports(code) {
		return code
	}

	tokens := Tokens(transcript)
	l.mu.RLock()
	defer l.mu.RUnlock()

	best := l.defaultLanguage
	bestHits := 0
	if c, ok := l.languages[best]; ok {
		bestHits = c.coverage(tokens)
	}
	for _, code := range l.order {
		if hits := l.languages[code].coverage(tokens); hits > bestHits {
			best, bestHits = code, hits
		}
	}
	return best
}

func (c *compiled) coverage(tokens []string) int {
	hits := 0
	for _, t := range tokens {
		if c.vocabulary[t] {
			hits++
		}
	}
	return hits
}

// Table returns the lookup view for a language, falling back to the default
func (l *Lexicon) Table(code string) *Table {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if c, ok := l.languages[CanonicalCode(code)]; ok {
		return &Table{c: c}
	}
	return &Table{c: l.languages[l.defaultLanguage]}
}

// CanonicalCode reduces "en-US" or "EN_gb" to "en"
func CanonicalCode(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	return code
}

// Table answers word-level questions for a single language
type Table struct {
	c *compiled
}

// Code returns the language code
func (t *Table) Code() string {
	return t.c.code
}

// Correct applies voice-recognition corrections token by token
func (t *Table) Correct(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		if fixed, ok := t.c.corrections[tok]; ok {
			out[i] = fixed
			continue
		}
		out[i] = tok
	}
	return out
}

// MatchCartPhrase looks for a cart-level phrase (view/clear) anywhere in tokens
func (t *Table) MatchCartPhrase(tokens []string) (domain.Intent, bool) {
	for _, p := range t.c.cartPhrases {
		if containsSequence(tokens, p.tokens) {
			return p.intent, true
		}
	}
	return "", false
}

// MatchKeyword checks whether an intent keyword starts at tokens[i].
// It returns the intent and the number of tokens the keyword spans.
func (t *Table) MatchKeyword(tokens []string, i int) (domain.Intent, int, bool) {
	if i < 0 || i >= len(tokens) {
		return "", 0, false
	}
	for _, p := range t.c.keywords[tokens[i]] {
		if hasPrefixAt(tokens, i, p.tokens) {
			return p.intent, len(p.tokens), true
		}
	}
	return "", 0, false
}

// Number maps a number word to its value
func (t *Table) Number(token string) (int, bool) {
	n, ok := t.c.numbers[token]
	return n, ok
}

// IsFiller reports whether a token carries no product meaning
func (t *Table) IsFiller(token string) bool {
	return t.c.fillers[token]
}

func hasPrefixAt(tokens []string, i int, seq []string) bool {
	if i+len(seq) > len(tokens) {
		return false
	}
	for j, s := range seq {
		if tokens[i+j] != s {
			return false
		}
	}
	return true
}

func containsSequence(tokens, seq []string) bool {
	for i := range tokens {
		if hasPrefixAt(tokens, i, seq) {
			return true
		}
	}
	return false
}
