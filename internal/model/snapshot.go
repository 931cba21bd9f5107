package model

// Snapshot is the persisted layout shared by every store and by export files.
// A nil collection means "absent": Import leaves the stored collection untouched.
type Snapshot struct {
	Items       []Item      `json:"items" yaml:"items" toml:"items"`
	Categories  []Category  `json:"categories" yaml:"categories" toml:"categories"`
	Completions Completions `json:"completions" yaml:"completions" toml:"completions"`
	ExportDate  string      `json:"exportDate,omitempty" yaml:"exportDate,omitempty" toml:"exportDate,omitempty"`
}

// HasData is true when at least one collection is non-empty.
func (s Snapshot) HasData() bool {
	return len(s.Items) > 0 || len(s.Categories) > 0 || len(s.Completions) > 0
}

// Normalized returns a copy where every collection is present, so importing it
// replaces all stored collections.
func (s Snapshot) Normalized() Snapshot {
	if s.Items == nil {
		s.Items = []Item{}
	}
	if s.Categories == nil {
		s.Categories = []Category{}
	}
	if s.Completions == nil {
		s.Completions = Completions{}
	}
	return s
}
