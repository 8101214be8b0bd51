package timeline

import "time"

type EpisodeModel struct {
	ID        uint   `gorm:"primaryKey"`
	EpisodeID string `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (EpisodeModel) TableName() string { return "episodes" }

type IntervalModel struct {
	ID        uint    `gorm:"primaryKey"`
	EpisodeID string  `gorm:"not null;index"`
	Seq       int     `gorm:"not null"`
	Name      string  `gorm:"not null"`
	Kind      string  `gorm:"not null;index"`
	EventKey  string  `gorm:"column:event_key;not null"`
	Start     float64 `gorm:"column:start_time;not null"`
	End       float64 `gorm:"column:end_time;not null"`
	Forced    bool    `gorm:"not null;default:false"`
	CreatedAt time.Time
}

func (IntervalModel) TableName() string { return "intervals" }
