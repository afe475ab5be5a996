package domain

import "time"

// UserProfile summarizes what a user tends to add to the cart
type UserProfile struct {
	UserName          string         `json:"userName"`
	IsNewUser         bool           `json:"isNewUser"`
	TotalInteractions int            `json:"totalInteractions"`
	FavoriteCategory  string         `json:"favoriteCategory,omitempty"`
	MostAddedProduct  string         `json:"mostAddedProduct,omitempty"`
	LastVisit         *time.Time     `json:"lastVisit,omitempty"`
	Preferences       map[string]int `json:"preferences"`
	Message           string         `json:"message,omitempty"`
}

// Recommendations are catalog products picked from a user's add history
type Recommendations struct {
	UserName        string    `json:"userName"`
	TotalActivities int       `json:"totalActivities"`
	RecentlyAdded   []string  `json:"recentlyAdded"`
	Products        []Product `json:"recommendations"`
}

// CartRecommendations are products picked from the categories in the cart
// and the user's favorite categories
type CartRecommendations struct {
	UserName           string    `json:"userName"`
	CartCategories     []string  `json:"cartCategories"`
	FavoriteCategories []string  `json:"favoriteCategories"`
	TotalActivities    int       `json:"totalActivities"`
	Products           []Product `json:"recommendations"`
}

// Feedback is a user's report on whether a command resolved to the right product
type Feedback struct {
	ID              string    `json:"id" bson:"_id"`
	UserName        string    `json:"userName" bson:"user_name"`
	Transcript      string    `json:"transcript" bson:"transcript"`
	WasCorrect      bool      `json:"wasCorrect" bson:"was_correct"`
	ActualProductID string    `json:"actualProductId,omitempty" bson:"actual_product_id,omitempty"`
	CreatedAt       time.Time `json:"createdAt" bson:"created_at"`
}
