package model

// ItemStatus controls whether an item takes part in scheduling.
type ItemStatus string

const (
	StatusActive ItemStatus = "active"
	StatusPaused ItemStatus = "paused"
)

// DefaultRecurDays is used when an item is created without an interval.
const DefaultRecurDays = 7

// Item represents a single practice task. An item with a ParentID is a sub-item.
type Item struct {
	ID          string     `gorm:"primaryKey" json:"id" yaml:"id" toml:"id"`
	Name        string     `json:"name" yaml:"name" toml:"name"`
	Category    string     `gorm:"index" json:"category" yaml:"category" toml:"category"`
	Description string     `json:"description" yaml:"description" toml:"description"`
	RecurDays   int        `json:"recurDays" yaml:"recurDays" toml:"recurDays"`
	ParentID    string     `gorm:"index" json:"parentId,omitempty" yaml:"parentId,omitempty" toml:"parentId,omitempty"`
	Status      ItemStatus `gorm:"default:active" json:"status" yaml:"status" toml:"status"`
	CreatedAt   string     `json:"createdAt" yaml:"createdAt" toml:"createdAt"`
}

func (i Item) IsSubItem() bool {
	return i.ParentID != ""
}

func (i Item) IsPaused() bool {
	return i.Status == StatusPaused
}

// ItemFilter narrows item listings. Empty fields match everything.
type ItemFilter struct {
	Category string
	Status   ItemStatus
}

func (f ItemFilter) Match(item Item) bool {
	if f.Category != "" && item.Category != f.Category {
		return false
	}
	if f.Status != "" && item.Status != f.Status {
		return false
	}
	return true
}
