package models

type ItemType string

const (
	ImageItem ItemType = "IMAGE"
	TextItem  ItemType = "TEXT"
	NoteItem  ItemType = "NOTE"
)

// Item is a single visual unit placed on a board: an image with an
// optional caption, or a sticky note with an optional category title
// and background color. Color is only set for notes; that is a
// creation-path convention, not a type-level rule.
type Item struct {
	ID      string   `json:"id"`
	Type    ItemType `json:"type"`
	Content string   `json:"content"`
	Title   string   `json:"title,omitempty"`
	Color   string   `json:"color,omitempty"`
}

// Board is a named, ordered collection of items. Items are kept
// newest-first: additions always go to the front.
type Board struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Items     []Item `json:"items"`
	CreatedAt int64  `json:"createdAt"` // epoch milliseconds
}

// GoalSuggestion is one generated vision-board goal with its category.
type GoalSuggestion struct {
	Category string `json:"category"`
	Goal     string `json:"goal"`
}

// NoteColors is the fixed palette for sticky notes. New notes get a
// color picked from this list at creation time.
var NoteColors = []string{
	"bg-yellow-100",
	"bg-blue-100",
	"bg-green-100",
	"bg-pink-100",
	"bg-purple-100",
	"bg-orange-100",
}
