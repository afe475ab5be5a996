package domain

import "time"

// Intent is the user's high-level goal extracted from a transcript
type Intent string

const (
	IntentAdd       Intent = "ADD"
	IntentRemove    Intent = "REMOVE"
	IntentSearch    Intent = "SEARCH"
	IntentViewCart  Intent = "VIEW_CART"
	IntentClearCart Intent = "CLEAR_CART"
	IntentUnknown   Intent = "UNKNOWN"
)

// ParsedCommand is the structured form of a single utterance
type ParsedCommand struct {
	Intent     Intent `json:"intent"`
	RawText    string `json:"rawText"`
	Quantity   int    `json:"quantity"`
	Language   string `json:"language"`
	Transcript string `json:"transcript"`
}

// Status is the outcome reported to the presentation layer
type Status string

const (
	StatusOK                 Status = "OK"
	StatusUnrecognizedIntent Status = "UNRECOGNIZED_INTENT"
	StatusProductNotFound    Status = "PRODUCT_NOT_FOUND"
	StatusCartItemNotPresent Status = "CART_ITEM_NOT_PRESENT"
	StatusPersistenceFailure Status = "PERSISTENCE_FAILURE"
)

// VoiceCommandRequest is the input boundary: a transcript from the speech capture layer
type VoiceCommandRequest struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
	UserName string `json:"userName" binding:"required"`
}

// CommandResult is the output boundary for a single voice command
type CommandResult struct {
	Status          Status        `json:"status"`
	Intent          Intent        `json:"intent"`
	Language        string        `json:"language"`
	Quantity        int           `json:"quantity,omitempty"`
	Product         *Product      `json:"product,omitempty"`
	Cart            *Cart         `json:"cart,omitempty"`
	Suggestions     []MatchResult `json:"suggestions,omitempty"`
	Results         []Product     `json:"results,omitempty"`
	Recommendations []Product     `json:"recommendations,omitempty"`
	Message         string        `json:"message"`
}

// Activity is one recorded voice command for a user
type Activity struct {
	ID         string    `json:"id" bson:"_id"`
	UserName   string    `json:"userName" bson:"user_name"`
	Transcript string    `json:"transcript" bson:"transcript"`
	Intent     Intent    `json:"intent" bson:"intent"`
	ProductID  string    `json:"productId,omitempty" bson:"product_id,omitempty"`
	Category   string    `json:"category,omitempty" bson:"category,omitempty"`
	Quantity   int       `json:"quantity" bson:"quantity"`
	Status     Status    `json:"status" bson:"status"`
	Language   string    `json:"language" bson:"language"`
	CreatedAt  time.Time `json:"createdAt" bson:"created_at"`
}

// Succeeded reports whether the command was carried out
func (a Activity) Succeeded() bool {
	return a.Status == StatusOK
}

// AddedProduct reports whether the command put a product into the cart
func (a Activity) AddedProduct() bool {
	return a.Intent == IntentAdd && a.Succeeded() && a.ProductID != ""
}

// ActivityHistory summarizes a user's recent commands
type ActivityHistory struct {
	UserName           string     `json:"userName"`
	TotalCommands      int        `json:"totalCommands"`
	SuccessfulCommands int        `json:"successfulCommands"`
	SuccessRate        float64    `json:"successRate"`
	Activities         []Activity `json:"activities"`
}
