package models

// PolicyCounter backs per-year policy number sequences.
type PolicyCounter struct {
	Year      int   `gorm:"column:year;primaryKey"`
	LastValue int64 `gorm:"column:last_value;not null;default:0"`
}

func (PolicyCounter) TableName() string { return "policy_counters" }
