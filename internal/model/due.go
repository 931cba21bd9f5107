package model

// DueItem is an item scheduled for a given day together with its state on that day.
type DueItem struct {
	Item        `yaml:",inline"`
	IsCompleted bool `json:"isCompleted" yaml:"isCompleted"`
	// DaysSinceLastCompletion is nil when the item was never completed.
	DaysSinceLastCompletion *int `json:"daysSinceLastCompletion" yaml:"daysSinceLastCompletion"`
}

// DueGroup is a due item with the due sub-items nested under it.
type DueGroup struct {
	DueItem  `yaml:",inline"`
	SubItems []DueItem `json:"subItems,omitempty" yaml:"subItems,omitempty"`
}

// Stats aggregates completion progress over a due set.
type Stats struct {
	Total      int `json:"total" yaml:"total"`
	Completed  int `json:"completed" yaml:"completed"`
	Remaining  int `json:"remaining" yaml:"remaining"`
	Percentage int `json:"percentage" yaml:"percentage"`
}

// SyncStatus is reported by the remote store around every operation.
type SyncStatus string

const (
	SyncStatusSyncing SyncStatus = "syncing"
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusOffline SyncStatus = "offline"
)
