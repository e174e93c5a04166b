package models

import "time"

// GameRecord is one row of the upstream games table.
type GameRecord struct {
	SecondsStreamed uint64 `json:"streamtime"`
	RawCategory     string `json:"gamesplayed"`
}

// StreamInterval is one row of the upstream streams table.
type StreamInterval struct {
	StartTime     time.Time `json:"startDateTime"`
	LengthMinutes int64     `json:"length"`
}

func (s StreamInterval) End() time.Time {
	return s.StartTime.Add(time.Duration(s.LengthMinutes) * time.Minute)
}

// GapTo returns the time between the earlier interval's end and the later
// interval's start, whichever order the two are given in.
func (s StreamInterval) GapTo(other StreamInterval) time.Duration {
	if s.StartTime.After(other.StartTime) {
		return other.GapTo(s)
	}
	return other.StartTime.Sub(s.End())
}
