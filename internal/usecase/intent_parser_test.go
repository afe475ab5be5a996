package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/voicecart/backend/internal/domain"
	"github.com/voicecart/backend/internal/lexicon"
)

func TestIntentParser_Parse(t *testing.T) {
	parser := NewIntentParser(lexicon.Default(), true, testLogger())

	tests := []struct {
		name       string
		transcript string
		language   string
		intent     domain.Intent
		product    string
		quantity   int
		wantLang   string
	}{
		{"number word and unit filler", "add two packets of milk", "en", domain.IntentAdd, "milk", 2, "en"},
		{"remove with trailing fillers", "remove bread from my cart", "en", domain.IntentRemove, "bread", 1, "en"},
		{"digit quantity and plural correction", "Add 3 apples to the cart", "en", domain.IntentAdd, "apple", 3, "en"},
		{"digit with unit suffix", "add 2kg rice", "en", domain.IntentAdd, "rice", 2, "en"},
		{"zero is not a quantity", "add 0 milk", "en", domain.IntentAdd, "milk", 1, "en"},
		{"large quantity is capped", "add 50000 milk", "en", domain.IntentAdd, "milk", domain.MaxLineQuantity, "en"},
		{"out of range quantity is capped", "add 9223372036854775807 milk", "en", domain.IntentAdd, "milk", domain.MaxLineQuantity, "en"},
		{"leading filler", "please find rice", "en", domain.IntentSearch, "rice", 1, "en"},
		{"multi-word keyword", "i want some orange juice", "en", domain.IntentAdd, "orange juice", 1, "en"},
		{"search with pronoun", "show me apples", "en", domain.IntentSearch, "apple", 1, "en"},
		{"voice corrections", "ad melk to my kart", "en", domain.IntentAdd, "milk", 1, "en"},
		{"dozen", "buy a dozen eggs", "en", domain.IntentAdd, "eggs", 12, "en"},
		{"unrecognized", "hello there", "en", domain.IntentUnknown, "hello there", 1, "en"},
		{"empty transcript", "", "en", domain.IntentUnknown, "", 1, "en"},
		{"spanish detected from vocabulary", "¡Añade dos leches al carrito!", "", domain.IntentAdd, "leches", 2, "es"},
		{"spanish interior filler kept", "quita la leche de almendra del carrito", "es", domain.IntentRemove, "leche de almendra", 1, "es"},
		{"french", "ajoute trois pommes dans mon panier", "fr-FR", domain.IntentAdd, "pommes", 3, "fr"},
		{"hindi number word", "do packet doodh cart mein daalo", "hi", domain.IntentAdd, "doodh", 2, "hi"},
		{"hindi keyword span is not a quantity", "hata do ek kela", "hi", domain.IntentRemove, "kela", 1, "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parser.Parse(tt.transcript, tt.language)
			assert.Equal(t, tt.intent, got.Intent)
			assert.Equal(t, tt.product, got.RawText)
			assert.Equal(t, tt.quantity, got.Quantity)
			assert.Equal(t, tt.wantLang, got.Language)
		})
	}
}

func TestIntentParser_CartPhrases(t *testing.T) {
	parser := NewIntentParser(nil, false, nil)

	tests := []struct {
		transcript string
		language   string
		intent     domain.Intent
	}{
		{"show my cart", "en", domain.IntentViewCart},
		{"what's in my cart?", "en", domain.IntentViewCart},
		{"please clear my cart", "en", domain.IntentClearCart},
		{"remove all", "en", domain.IntentClearCart},
		{"ver mi carrito", "es", domain.IntentViewCart},
		{"vider mon panier", "fr", domain.IntentClearCart},
		{"mera cart dikhao", "hi", domain.IntentViewCart},
	}

	for _, tt := range tests {
		t.Run(tt.transcript, func(t *testing.T) {
			got := parser.Parse(tt.transcript, tt.language)
			assert.Equal(t, tt.intent, got.Intent)
			assert.Empty(t, got.RawText)
			assert.Equal(t, 1, got.Quantity)
		})
	}
}

func TestIntentParser_FirstKeywordWins(t *testing.T) {
	parser := NewIntentParser(lexicon.Default(), false, testLogger())

	got := parser.Parse("add milk then remove bread", "en")
	assert.Equal(t, domain.IntentAdd, got.Intent)
}

func TestIntentParser_NeverFails(t *testing.T) {
	parser := NewIntentParser(lexicon.Default(), false, testLogger())

	inputs := []string{"   ", "!!!", "12345", "add", "add add add", "🙂🙂", "remove 99999999999999999999999 milk"}
	for _, in := range inputs {
		got := parser.Parse(in, "")
		assert.GreaterOrEqual(t, got.Quantity, 1, "input %q", in)
		assert.NotEmpty(t, got.Language, "input %q", in)
	}
}

func TestIntentParser_Transcript(t *testing.T) {
	parser := NewIntentParser(lexicon.Default(), false, testLogger())

	got := parser.Parse("  Ad   Bred!  ", "en")
	assert.Equal(t, "add bread", got.Transcript)
}
