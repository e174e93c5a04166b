package upstream

import (
	"context"
	"slices"
	"varietyd/internal/models"
	"varietyd/internal/providers"
)

type FetcherInterface interface {
	Games(ctx context.Context, year int) ([]models.GameRecord, error)
	// Streams returns the year's streams ordered newest first.
	Streams(ctx context.Context, year int) ([]models.StreamInterval, error)
}

type Fetcher struct {
	source PageSource
	logger providers.Logger
}

func NewFetcher(source PageSource, logger providers.Logger) FetcherInterface {
	return &Fetcher{source: source, logger: logger}
}

func (f *Fetcher) Games(ctx context.Context, year int) ([]models.GameRecord, error) {
	return fetchAll(ctx, f.source, f.logger, gamesResource, year)
}

func (f *Fetcher) Streams(ctx context.Context, year int) ([]models.StreamInterval, error) {
	streams, err := fetchAll(ctx, f.source, f.logger, streamsResource, year)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(streams, func(a, b models.StreamInterval) int {
		return b.StartTime.Compare(a.StartTime)
	})
	return streams, nil
}
