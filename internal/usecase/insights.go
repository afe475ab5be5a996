package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/voicecart/backend/internal/domain"
)

const (
	profileWindow        = 100
	recommendationWindow = 20
	cartActivityWindow   = 50
	favoriteCategories   = 3

	defaultRecommendationLimit = 5
	maxRecommendationLimit     = 20
)

// Profile summarizes the user's recent commands: what they add most and
// which categories they favor.
func (s *VoiceService) Profile(ctx context.Context, userName string) (*domain.UserProfile, error) {
	userName, err := validUserName(userName)
	if err != nil {
		return nil, err
	}

	activities, err := s.recent(ctx, userName, profileWindow)
	if err != nil {
		return nil, err
	}

	profile := &domain.UserProfile{
		UserName:          userName,
		TotalInteractions: len(activities),
		Preferences:       map[string]int{},
	}
	if len(activities) == 0 {
		profile.IsNewUser = true
		profile.Message = "Welcome! This is your first visit."
		return profile, nil
	}

	lastVisit := activities[0].CreatedAt
	profile.LastVisit = &lastVisit

	products := make(map[string]int)
	for _, a := range activities {
		if !a.AddedProduct() {
			continue
		}
		products[a.ProductID]++
		if category := s.categoryOf(a); category != "" {
			profile.Preferences[category]++
		}
	}
	if ranked := rankByCount(profile.Preferences); len(ranked) > 0 {
		profile.FavoriteCategory = ranked[0]
	}
	if ranked := rankByCount(products); len(ranked) > 0 {
		profile.MostAddedProduct = ranked[0]
	}
	profile.Message = fmt.Sprintf("Welcome back! You have %d recent interaction(s).", len(activities))

	return profile, nil
}

// Recommendations suggests products the user has not added recently, taken
// first from their favorite categories and then from the rest of the catalog.
// A user with no history gets the head of the catalog.
func (s *VoiceService) Recommendations(ctx context.Context, userName string, limit int) (*domain.Recommendations, error) {
	userName, err := validUserName(userName)
	if err != nil {
		return nil, err
	}
	limit = recommendationLimit(limit)

	activities, err := s.recent(ctx, userName, recommendationWindow)
	if err != nil {
		return nil, err
	}

	added := []string{}
	exclude := make(map[string]bool)
	categories := make(map[string]int)
	for _, a := range activities {
		if !a.AddedProduct() {
			continue
		}
		if !exclude[a.ProductID] {
			exclude[a.ProductID] = true
			added = append(added, a.ProductID)
		}
		if category := s.categoryOf(a); category != "" {
			categories[category]++
		}
	}

	recs := &domain.Recommendations{
		UserName:        userName,
		TotalActivities: len(activities),
		RecentlyAdded:   added,
		Products:        s.pickProducts(rankByCount(categories), exclude, limit, true),
	}
	s.logger.WithFields(logrus.Fields{
		"user":     userName,
		"products": len(recs.Products),
	}).Debug("history recommendations")
	return recs, nil
}

// CartRecommendations suggests products from the categories already in the
// cart, then from the user's favorite categories. An empty cart gets none.
func (s *VoiceService) CartRecommendations(ctx context.Context, userName string, limit int) (*domain.CartRecommendations, error) {
	userName, err := validUserName(userName)
	if err != nil {
		return nil, err
	}
	limit = recommendationLimit(limit)

	cart, err := s.carts.Get(ctx, userName)
	if err != nil {
		return nil, err
	}
	activities, err := s.recent(ctx, userName, cartActivityWindow)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, a := range activities {
		if a.AddedProduct() {
			if category := s.categoryOf(a); category != "" {
				counts[category]++
			}
		}
	}
	favorites := rankByCount(counts)
	if len(favorites) > favoriteCategories {
		favorites = favorites[:favoriteCategories]
	}

	recs := &domain.CartRecommendations{
		UserName:           userName,
		CartCategories:     []string{},
		FavoriteCategories: favorites,
		TotalActivities:    len(activities),
		Products:           []domain.Product{},
	}
	if cart.IsEmpty() {
		return recs, nil
	}

	inCart := make(map[string]bool, len(cart.Entries))
	seen := make(map[string]bool)
	for _, e := range cart.Entries {
		inCart[e.ProductID] = true
		p, ok := s.resolver.catalog.Get(e.ProductID)
		if ok && p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			recs.CartCategories = append(recs.CartCategories, p.Category)
		}
	}

	order := append([]string{}, recs.CartCategories...)
	for _, c := range favorites {
		if !seen[c] {
			order = append(order, c)
		}
	}
	recs.Products = s.pickProducts(order, inCart, limit, false)
	return recs, nil
}

// ClearHistory deletes every recorded command for the user and returns how
// many were removed.
func (s *VoiceService) ClearHistory(ctx context.Context, userName string) (int64, error) {
	userName, err := validUserName(userName)
	if err != nil {
		return 0, err
	}
	if s.activities == nil {
		return 0, nil
	}

	deleted, err := s.activities.DeleteByUser(ctx, userName)
	if err != nil {
		s.logger.WithError(err).WithField("user", userName).Error("clear history failed")
		return 0, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}

	s.logger.WithFields(logrus.Fields{"user": userName, "deleted": deleted}).Info("history cleared")
	return deleted, nil
}

// SubmitFeedback stores the user's verdict on how a transcript was understood.
// ActualProductID, when given, must name a catalog product.
func (s *VoiceService) SubmitFeedback(ctx context.Context, feedback *domain.Feedback) (*domain.Feedback, error) {
	if feedback == nil {
		return nil, domain.ErrInvalidRequest
	}
	userName, err := validUserName(feedback.UserName)
	if err != nil {
		return nil, err
	}
	transcript := strings.TrimSpace(feedback.Transcript)
	if transcript == "" {
		return nil, fmt.Errorf("%w: transcript is required", domain.ErrInvalidRequest)
	}
	if id := feedback.ActualProductID; id != "" {
		if _, ok := s.resolver.catalog.Get(id); !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
		}
	}

	stored := &domain.Feedback{
		ID:              s.newID(),
		UserName:        userName,
		Transcript:      transcript,
		WasCorrect:      feedback.WasCorrect,
		ActualProductID: feedback.ActualProductID,
		CreatedAt:       s.now().UTC().Truncate(time.Millisecond),
	}

	entry := s.logger.WithFields(logrus.Fields{
		"user":        userName,
		"was_correct": stored.WasCorrect,
		"actual":      stored.ActualProductID,
	})
	if s.feedback == nil {
		entry.Info("feedback received")
		return stored, nil
	}
	if err := s.feedback.Record(ctx, stored); err != nil {
		entry.WithError(err).Error("record feedback failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}
	entry.Debug("feedback recorded")
	return stored, nil
}

// categoryOf prefers the category captured with the activity and falls back
// to the current catalog entry.
func (s *VoiceService) categoryOf(a domain.Activity) string {
	if a.Category != "" {
		return a.Category
	}
	if p, ok := s.resolver.catalog.Get(a.ProductID); ok {
		return p.Category
	}
	return ""
}

// pickProducts walks categories in order, taking catalog products that are
// not excluded. With fill set, the rest of the catalog tops up the list.
func (s *VoiceService) pickProducts(categories []string, exclude map[string]bool, limit int, fill bool) []domain.Product {
	all := s.resolver.catalog.All()
	out := []domain.Product{}
	taken := make(map[string]bool)
	take := func(p domain.Product) bool {
		if exclude[p.ID] || taken[p.ID] {
			return false
		}
		taken[p.ID] = true
		out = append(out, p)
		return len(out) == limit
	}

	for _, category := range categories {
		for _, p := range all {
			if p.Category == category && take(p) {
				return out
			}
		}
	}
	if fill {
		for _, p := range all {
			if take(p) {
				return out
			}
		}
	}
	return out
}

// rankByCount orders keys by count, highest first, ties alphabetical
func rankByCount(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

func recommendationLimit(limit int) int {
	if limit <= 0 {
		return defaultRecommendationLimit
	}
	return min(limit, maxRecommendationLimit)
}
