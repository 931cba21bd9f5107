package model

// Category tags items by practice area (scales, pieces, theory, etc.).
// Items reference a category by name, not by id.
type Category struct {
	ID        string `gorm:"primaryKey" json:"id" yaml:"id" toml:"id"`
	Name      string `gorm:"index" json:"name" yaml:"name" toml:"name"`
	CreatedAt string `json:"createdAt" yaml:"createdAt" toml:"createdAt"`
}

// DefaultCategories are seeded into an empty category set.
var DefaultCategories = []string{
	"Scales",
	"Chords",
	"Pieces",
	"Technique",
	"Theory",
	"Sight Reading",
}
