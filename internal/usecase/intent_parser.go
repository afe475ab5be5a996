package usecase

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/voicecart/backend/internal/domain"
	"github.com/voicecart/backend/internal/lexicon"
)

const defaultQuantity = 1

// Matches quantity tokens like "2" or "3kg"
var leadingNumberPattern = regexp.MustCompile(`^(\d+)\p{L}*$`)

// IntentParser turns a transcript into a structured command. It never fails:
// anything it cannot classify comes back as IntentUnknown.
type IntentParser struct {
	lexicon            *lexicon.Lexicon
	enableDebugLogging bool
	logger             logrus.FieldLogger
}

// NewIntentParser creates a parser over the given lexicon
func NewIntentParser(lex *lexicon.Lexicon, enableDebugLogging bool, logger logrus.FieldLogger) *IntentParser {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &IntentParser{
		lexicon:            lex,
		enableDebugLogging: enableDebugLogging,
		logger:             orStandardLogger(logger),
	}
}

// Parse extracts intent, quantity and product phrase from a transcript.
// Steps: normalize -> correct -> cart phrase -> intent keyword -> quantity -> phrase
func (p *IntentParser) Parse(transcript, language string) domain.ParsedCommand {
	lang := p.lexicon.Detect(language, transcript)
	table := p.lexicon.Table(lang)
	tokens := table.Correct(lexicon.Tokens(transcript))

	cmd := domain.ParsedCommand{
		Intent:     domain.IntentUnknown,
		Quantity:   defaultQuantity,
		Language:   table.Code(),
		Transcript: strings.Join(tokens, " "),
	}
	if len(tokens) == 0 {
		return cmd
	}

	if intent, ok := table.MatchCartPhrase(tokens); ok {
		cmd.Intent = intent
		p.debug(cmd)
		return cmd
	}

	// First keyword wins, scanning left to right
	kwStart, kwEnd := -1, -1
	for i := range tokens {
		if intent, span, ok := table.MatchKeyword(tokens, i); ok {
			cmd.Intent = intent
			kwStart, kwEnd = i, i+span
			break
		}
	}
	inKeyword := func(i int) bool { return i >= kwStart && i < kwEnd }

	qtyIndex := -1
	for i, tok := range tokens {
		if inKeyword(i) {
			continue
		}
		if n, ok := parseQuantity(table, tok); ok {
			cmd.Quantity = n
			qtyIndex = i
			break
		}
	}

	var phrase []string
	for i, tok := range tokens {
		if inKeyword(i) || i == qtyIndex || isNumeric(tok) {
			continue
		}
		phrase = append(phrase, tok)
	}
	cmd.RawText = strings.Join(trimFillers(table, phrase), " ")

	p.debug(cmd)
	return cmd
}

func (p *IntentParser) debug(cmd domain.ParsedCommand) {
	if !p.enableDebugLogging {
		return
	}
	p.logger.WithFields(logrus.Fields{
		"transcript": cmd.Transcript,
		"intent":     cmd.Intent,
		"product":    cmd.RawText,
		"quantity":   cmd.Quantity,
		"language":   cmd.Language,
	}).Debug("parsed command")
}

// parseQuantity reads a positive integer or number word. Digits beyond
// domain.MaxLineQuantity are clamped to it.
func parseQuantity(table *lexicon.Table, tok string) (int, bool) {
	if m := leadingNumberPattern.FindStringSubmatch(tok); m != nil {
		n, err := strconv.Atoi(m[1])
		if errors.Is(err, strconv.ErrRange) {
			return domain.MaxLineQuantity, true
		}
		if err != nil || n <= 0 {
			return 0, false
		}
		return min(n, domain.MaxLineQuantity), true
	}
	return table.Number(tok)
}

func isNumeric(tok string) bool {
	return leadingNumberPattern.MatchString(tok)
}

// trimFillers drops filler words from both ends only, so multi-word names
// like "leche de almendra" survive.
func trimFillers(table *lexicon.Table, tokens []string) []string {
	start, end := 0, len(tokens)
	for start < end && table.IsFiller(tokens[start]) {
		start++
	}
	for end > start && table.IsFiller(tokens[end-1]) {
		end--
	}
	return tokens[start:end]
}
