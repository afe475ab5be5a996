package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/voicecart/backend/internal/domain"
)

const (
	defaultRecommendations = 3
	defaultHistoryLimit    = 20
	maxHistoryLimit        = 100
)

// VoiceServiceConfig holds configuration for the voice command service
type VoiceServiceConfig struct {
	Recommendations int
	SearchLimit     int
}

// VoiceService executes transcripts end to end: parse, resolve, then act on
// the user's cart. Every handled command is recorded as an activity.
type VoiceService struct {
	parser          *IntentParser
	resolver        *Resolver
	carts           *CartService
	activities      domain.ActivityRepository
	feedback        domain.FeedbackRepository
	recommendations int
	searchLimit     int
	newID           func() string
	now             func() time.Time
	logger          logrus.FieldLogger
}

// NewVoiceService creates a voice command service with dependencies
func NewVoiceService(
	parser *IntentParser,
	resolver *Resolver,
	carts *CartService,
	activities domain.ActivityRepository,
	feedback domain.FeedbackRepository,
	config VoiceServiceConfig,
	logger logrus.FieldLogger,
) *VoiceService {
	recs := config.Recommendations
	if recs <= 0 {
		recs = defaultRecommendations
	}
	limit := config.SearchLimit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	return &VoiceService{
		parser:          parser,
		resolver:        resolver,
		carts:           carts,
		activities:      activities,
		feedback:        feedback,
		recommendations: recs,
		searchLimit:     limit,
		newID:           uuid.NewString,
		now:             time.Now,
		logger:          orStandardLogger(logger),
	}
}

// Handle runs one voice command. Domain outcomes (unknown intent, unknown
// product, item not in cart) are reported through the result status with a
// nil error. Persistence failures return a PERSISTENCE_FAILURE result and an
// error wrapping domain.ErrPersistenceFailure.
func (s *VoiceService) Handle(ctx context.Context, request *domain.VoiceCommandRequest) (*domain.CommandResult, error) {
	if request == nil {
		return nil, domain.ErrInvalidRequest
	}
	userName, err := validUserName(request.UserName)
	if err != nil {
		return nil, err
	}

	cmd := s.parser.Parse(request.Text, request.Language)
	result := &domain.CommandResult{
		Intent:   cmd.Intent,
		Language: cmd.Language,
		Quantity: cmd.Quantity,
	}

	err = s.execute(ctx, userName, cmd, result)
	if errors.Is(err, domain.ErrPersistenceFailure) {
		result.Status = domain.StatusPersistenceFailure
		result.Message = "Sorry, your cart could not be saved. Please try again."
	} else if err != nil {
		return nil, err
	}

	s.record(ctx, userName, cmd, result)
	return result, err
}

func (s *VoiceService) execute(ctx context.Context, userName string, cmd domain.ParsedCommand, result *domain.CommandResult) error {
	switch cmd.Intent {
	case domain.IntentViewCart:
		cart, err := s.carts.Get(ctx, userName)
		if err != nil {
			return err
		}
		result.Status = domain.StatusOK
		result.Cart = cart
		result.Quantity = 0
		result.Message = fmt.Sprintf("Your cart has %d item(s).", len(cart.Entries))
		return nil

	case domain.IntentClearCart:
		cart, err := s.carts.Clear(ctx, userName)
		if err != nil {
			return err
		}
		result.Status = domain.StatusOK
		result.Cart = cart
		result.Quantity = 0
		result.Message = "Your cart is now empty."
		return nil

	case domain.IntentSearch:
		return s.search(ctx, cmd, result)

	case domain.IntentAdd, domain.IntentRemove:
		return s.mutate(ctx, userName, cmd, result)

	default:
		result.Status = domain.StatusUnrecognizedIntent
		result.Quantity = 0
		result.Message = "Sorry, I didn't understand that. Try \"add two milk\" or \"remove bread\"."
		return nil
	}
}

func (s *VoiceService) search(ctx context.Context, cmd domain.ParsedCommand, result *domain.CommandResult) error {
	products, err := s.resolver.Search(ctx, cmd.RawText, cmd.Language, s.searchLimit)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		result.Status = domain.StatusProductNotFound
		result.Message = fmt.Sprintf("No products found for %q.", cmd.RawText)
		return nil
	}

	result.Status = domain.StatusOK
	result.Results = products
	result.Message = fmt.Sprintf("Found %d product(s).", len(products))
	return nil
}

func (s *VoiceService) mutate(ctx context.Context, userName string, cmd domain.ParsedCommand, result *domain.CommandResult) error {
	resolved, err := s.resolver.Resolve(ctx, cmd.RawText, cmd.Language)
	if err != nil {
		return err
	}
	if !resolved.Found() {
		result.Status = domain.StatusProductNotFound
		result.Suggestions = resolved.Suggestions
		result.Message = notFoundMessage(cmd.RawText, resolved.Suggestions)
		return nil
	}

	product := *resolved.Exact
	result.Product = &product

	if cmd.Intent == domain.IntentAdd {
		cart, err := s.carts.Add(ctx, userName, product.ID, cmd.Quantity)
		if err != nil {
			return err
		}
		result.Status = domain.StatusOK
		result.Cart = cart
		result.Recommendations = s.resolver.Related(product.ID, s.recommendations)
		result.Message = fmt.Sprintf("Added %d %s to your cart.", cmd.Quantity, product.CanonicalName)
		return nil
	}

	cart, removed, err := s.carts.Remove(ctx, userName, product.ID, cmd.Quantity)
	if err != nil {
		return err
	}
	result.Cart = cart
	if !removed {
		result.Status = domain.StatusCartItemNotPresent
		result.Message = fmt.Sprintf("%s is not in your cart.", product.CanonicalName)
		return nil
	}
	result.Status = domain.StatusOK
	result.Message = fmt.Sprintf("Removed %d %s from your cart.", cmd.Quantity, product.CanonicalName)
	return nil
}

// record stores the command outcome. Failures are logged and never surface
// to the caller.
func (s *VoiceService) record(ctx context.Context, userName string, cmd domain.ParsedCommand, result *domain.CommandResult) {
	if s.activities == nil {
		return
	}

	activity := &domain.Activity{
		ID:         s.newID(),
		UserName:   userName,
		Transcript: cmd.Transcript,
		Intent:     cmd.Intent,
		Quantity:   result.Quantity,
		Status:     result.Status,
		Language:   cmd.Language,
		CreatedAt:  s.now().UTC().Truncate(time.Millisecond),
	}
	if result.Product != nil {
		activity.ProductID = result.Product.ID
		activity.Category = result.Product.Category
	}

	if err := s.activities.Record(ctx, activity); err != nil {
		s.logger.WithError(err).WithField("user", userName).Warn("failed to record activity")
	}
}

// History returns the user's most recent commands, newest first, with a
// success rate in percent.
func (s *VoiceService) History(ctx context.Context, userName string, limit int) (*domain.ActivityHistory, error) {
	userName, err := validUserName(userName)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	limit = min(limit, maxHistoryLimit)

	activities, err := s.recent(ctx, userName, limit)
	if err != nil {
		return nil, err
	}

	history := &domain.ActivityHistory{
		UserName:      userName,
		TotalCommands: len(activities),
		Activities:    activities,
	}
	for _, a := range activities {
		if a.Succeeded() {
			history.SuccessfulCommands++
		}
	}
	if history.TotalCommands > 0 {
		rate := float64(history.SuccessfulCommands) / float64(history.TotalCommands) * 100
		history.SuccessRate = math.Round(rate*100) / 100
	}

	return history, nil
}

// recent lists the user's newest activities, never returning nil
func (s *VoiceService) recent(ctx context.Context, userName string, limit int) ([]domain.Activity, error) {
	if s.activities == nil {
		return []domain.Activity{}, nil
	}
	activities, err := s.activities.ListByUser(ctx, userName, limit)
	if err != nil {
		s.logger.WithError(err).WithField("user", userName).Error("list activities failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}
	if activities == nil {
		activities = []domain.Activity{}
	}
	return activities, nil
}

func notFoundMessage(phrase string, suggestions []domain.MatchResult) string {
	if phrase == "" {
		return "Which product did you mean?"
	}
	if len(suggestions) == 0 {
		return fmt.Sprintf("Sorry, %q is not in our catalog.", phrase)
	}
	names := make([]string, len(suggestions))
	for i, m := range suggestions {
		names[i] = m.Product.CanonicalName
	}
	return fmt.Sprintf("Sorry, %q is not in our catalog. Did you mean %s?", phrase, strings.Join(names, ", "))
}
