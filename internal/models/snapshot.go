package models

import "time"

type DitchType string

const (
	DitchCurrent DitchType = "current"
	DitchPast    DitchType = "past"
)

// LongestDitch is the longest stretch without a stream. A current ditch is
// still open and has no duration.
type LongestDitch struct {
	Type     DitchType `json:"type"`
	From     time.Time `json:"from"`
	Duration string    `json:"duration,omitempty"`
}

type GameModel struct {
	MinutesStreamed  uint64 `json:"minutesStreamed"`
	Category         string `json:"category"`
	CategoryImageUrl string `json:"categoryImageUrl"`
}

// YearSnapshot is the computed result for one calendar year. It is never
// modified after it has been stored.
type YearSnapshot struct {
	Year             int          `json:"year"`
	MainGame         string       `json:"mainGame"`
	TotalTimeMinutes uint64       `json:"totalTimeMinutes"`
	AtLeastOneStream bool         `json:"atLeastOneStream"`
	VarietyPercent   float64      `json:"varietyPercent"`
	MainPercent      float64      `json:"mainPercent"`
	IsVarietyChannel bool         `json:"isVarietyChannel"`
	DaysStreamed     int          `json:"daysStreamed"`
	DaysDitched      int          `json:"daysDitched"`
	DaysUntilNow     int          `json:"daysUntilNow"`
	PercentDitched   float64      `json:"percentDitched"`
	PerDayMinutes    []float64    `json:"perDayMinutes"`
	MaxDayMinutes    float64      `json:"maxDayMinutes"`
	WeekStartOffset  int          `json:"weekStartOffset"`
	LongestDitch     LongestDitch `json:"longestDitch"`
	Games            []GameModel  `json:"games"`
	ComputedAt       time.Time    `json:"computedAt"`
}

// YearResult is what the coordinator hands out: a snapshot plus the
// historical years that can be requested next. FreshFor is how much longer
// the snapshot will be served without a refresh; 0 means it must not be
// reused at all.
type YearResult struct {
	Snapshot   *YearSnapshot `json:"snapshot"`
	KnownYears []int         `json:"knownYears"`
	FreshFor   time.Duration `json:"-"`
}
