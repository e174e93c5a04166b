// Package analytics turns one year of upstream games and streams into a
// YearSnapshot. Everything here is pure: the caller supplies "now".
package analytics

import (
	"strings"
	"time"
	"varietyd/internal/models"

	"github.com/RoaringBitmap/roaring/v2"
)

const (
	DefaultVarietyThreshold = 0.30
	minMaxDayMinutes        = 0.1
)

type Engine struct {
	mainGame         string
	varietyThreshold float64
}

func NewEngine(mainGame string, varietyThreshold float64) *Engine {
	return &Engine{mainGame: mainGame, varietyThreshold: varietyThreshold}
}

// Compute builds the snapshot for year. The year counts as current when it
// matches now's year. streams must be ordered newest first.
func (e *Engine) Compute(year int, now time.Time, games []models.GameRecord, streams []models.StreamInterval) (*models.YearSnapshot, error) {
	now = now.UTC()

	gameModels, totalSec, mainSec, err := e.aggregateGames(games)
	if err != nil {
		return nil, err
	}
	mainRatio, varietyRatio := Ratios(mainSec, totalSec)

	perDay, maxDay, daysStreamed := Histogram(year, streams)
	daysElapsed := models.DaysElapsed(year, now)
	daysDitched := max(daysElapsed-daysStreamed, 0)

	return &models.YearSnapshot{
		Year:             year,
		MainGame:         e.mainGame,
		TotalTimeMinutes: totalSec / 60,
		AtLeastOneStream: len(streams) > 0,
		VarietyPercent:   varietyRatio,
		MainPercent:      mainRatio,
		IsVarietyChannel: varietyRatio >= e.varietyThreshold,
		DaysStreamed:     daysStreamed,
		DaysDitched:      daysDitched,
		DaysUntilNow:     daysElapsed,
		PercentDitched:   PercentDitched(daysDitched, daysElapsed),
		PerDayMinutes:    perDay,
		MaxDayMinutes:    maxDay,
		WeekStartOffset:  models.WeekdayOffset(year),
		LongestDitch:     FindLongestDitch(year, now, streams),
		Games:            gameModels,
		ComputedAt:       now,
	}, nil
}

func (e *Engine) aggregateGames(games []models.GameRecord) ([]models.GameModel, uint64, uint64, error) {
	out := make([]models.GameModel, 0, len(games))
	var total, main uint64
	for _, g := range games {
		category, image, err := models.ParseCategory(g.RawCategory)
		if err != nil {
			return nil, 0, 0, err
		}
		total += g.SecondsStreamed
		if e.mainGame != "" && strings.HasPrefix(category, e.mainGame) {
			main += g.SecondsStreamed
		}
		out = append(out, models.GameModel{
			MinutesStreamed:  g.SecondsStreamed / 60,
			Category:         category,
			CategoryImageUrl: image,
		})
	}
	return out, total, main, nil
}

// Ratios returns the main-game share and its complement. Both are 0 when
// nothing was streamed.
func Ratios(mainTime, totalTime uint64) (mainRatio, varietyRatio float64) {
	if totalTime == 0 {
		return 0, 0
	}
	mainRatio = float64(mainTime) / float64(totalTime)
	return mainRatio, 1 - mainRatio
}

// PercentDitched is 1 when no day has elapsed yet.
func PercentDitched(daysDitched, daysElapsed int) float64 {
	if daysElapsed == 0 {
		return 1
	}
	return float64(daysDitched) / float64(daysElapsed)
}

// Histogram spreads every stream over the days it touches and counts the
// distinct days streamed. A zero-length stream still marks its start day.
func Histogram(year int, streams []models.StreamInterval) (perDay []float64, maxDay float64, daysStreamed int) {
	perDay = make([]float64, models.DaysInYear(year))
	touched := roaring.New()
	maxDay = minMaxDayMinutes

	for _, s := range streams {
		start := s.StartTime.UTC()
		if start.Year() == year {
			touched.Add(uint32(start.YearDay() - 1))
		}
		for _, slice := range models.SplitByDay(year, start, s.End()) {
			touched.Add(uint32(slice.Day))
			perDay[slice.Day] += slice.Minutes
			if perDay[slice.Day] > maxDay {
				maxDay = perDay[slice.Day]
			}
		}
	}
	return perDay, maxDay, int(touched.GetCardinality())
}
