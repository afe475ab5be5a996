package domain

import "time"

// MaxLineQuantity caps the quantity of a single cart entry
const MaxLineQuantity = 10000

// CartEntry is a product line in a cart. Quantity is always positive.
type CartEntry struct {
	ProductID string `json:"productId" bson:"product_id"`
	Quantity  int    `json:"quantity" bson:"quantity"`
}

// Cart is a user's ordered collection of entries. Entries keep first-added order.
type Cart struct {
	UserName  string      `json:"userName" bson:"user_name"`
	Entries   []CartEntry `json:"entries" bson:"entries"`
	CreatedAt time.Time   `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time   `json:"updatedAt" bson:"updated_at"`
}

// NewCart returns an empty cart for a user
func NewCart(userName string) *Cart {
	return &Cart{
		UserName: userName,
		Entries:  []CartEntry{},
	}
}

// IsEmpty reports whether the cart has no entries
func (c *Cart) IsEmpty() bool {
	return len(c.Entries) == 0
}

// Quantity returns the quantity held for a product, or 0
func (c *Cart) Quantity(productID string) int {
	if i := c.indexOf(productID); i >= 0 {
		return c.Entries[i].Quantity
	}
	return 0
}

// TotalItems sums quantities across all entries
func (c *Cart) TotalItems() int {
	total := 0
	for _, e := range c.Entries {
		total += e.Quantity
	}
	return total
}

// CanAdd reports whether qty more of a product stays within MaxLineQuantity
func (c *Cart) CanAdd(productID string, qty int) bool {
	return qty > 0 && qty <= MaxLineQuantity && c.Quantity(productID) <= MaxLineQuantity-qty
}

// Add merges qty into an existing entry or appends a new one.
// Non-positive quantities are ignored and the result saturates at MaxLineQuantity.
func (c *Cart) Add(productID string, qty int) {
	if qty <= 0 {
		return
	}
	qty = min(qty, MaxLineQuantity)
	if i := c.indexOf(productID); i >= 0 {
		c.Entries[i].Quantity = min(c.Entries[i].Quantity, MaxLineQuantity-qty) + qty
		return
	}
	c.Entries = append(c.Entries, CartEntry{ProductID: productID, Quantity: qty})
}

// Remove decrements an entry by qty, deleting it when the quantity reaches zero.
// Returns false when the product is not in the cart.
func (c *Cart) Remove(productID string, qty int) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	remaining := c.Entries[i].Quantity - qty
	if remaining <= 0 {
		c.Entries = append(c.Entries[:i:i], c.Entries[i+1:]...)
		return true
	}
	c.Entries[i].Quantity = remaining
	return true
}

// Clear drops every entry
func (c *Cart) Clear() {
	c.Entries = []CartEntry{}
}

// Clone returns a deep copy so callers cannot mutate stored state
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	out := *c
	out.Entries = make([]CartEntry, len(c.Entries))
	copy(out.Entries, c.Entries)
	return &out
}

func (c *Cart) indexOf(productID string) int {
	for i, e := range c.Entries {
		if e.ProductID == productID {
			return i
		}
	}
	return -1
}

// UserSession ties a user identity to that user's persisted cart
type UserSession struct {
	UserName  string    `json:"userName"`
	Cart      *Cart     `json:"cart"`
	Returning bool      `json:"isReturningUser"`
	StartedAt time.Time `json:"startedAt"`
	Message   string    `json:"message"`
}
