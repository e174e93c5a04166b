package upstream

import (
	"context"
	"sync"
	"varietyd/internal/models"
	"varietyd/internal/providers"
)

// page is the envelope of every channel table response.
type page[T any] struct {
	RecordsTotal int `json:"recordsTotal"`
	Data         []T `json:"data"`
}

func (p *page[T]) total() int { return p.RecordsTotal }
func (p *page[T]) items() []T { return p.Data }

// resource binds a table kind to its row type.
type resource[T any] struct {
	kind Kind
}

var (
	gamesResource   = resource[models.GameRecord]{kind: KindGames}
	streamsResource = resource[models.StreamInterval]{kind: KindStreams}
)

func (r resource[T]) fetch(ctx context.Context, src PageSource, year, offset int) (*page[T], error) {
	p := &page[T]{}
	if err := src.FetchPage(ctx, r.kind, year, offset, p); err != nil {
		return nil, &models.UpstreamFetchError{Kind: string(r.kind), Year: year, Offset: offset, Err: err}
	}
	return p, nil
}

// maxPages bounds how many pages one table read may request, whatever
// recordsTotal claims. A year of streams is a few hundred rows.
const maxPages = 100

// remainingPages is the number of pages after the first one needed to cover
// total, capped at maxPages overall.
func remainingPages(total int) int {
	if total <= PageSize {
		return 0
	}
	return min((total-1)/PageSize, maxPages-1)
}

// fetchAll reads every page of one table for year. The first page is
// mandatory; the rest are fetched concurrently and a failed one only loses
// its own rows.
func fetchAll[T any](ctx context.Context, src PageSource, logger providers.Logger, r resource[T], year int) ([]T, error) {
	first, err := r.fetch(ctx, src, year, 0)
	if err != nil {
		return nil, err
	}

	rest := make([]*page[T], remainingPages(first.total()))
	if len(rest) == maxPages-1 && first.total() > maxPages*PageSize {
		logger.Warnf(providers.TypeUpstream, "%s %d reports %d rows, reading the first %d only", r.kind, year, first.total(), maxPages*PageSize)
	}
	var wg sync.WaitGroup
	for i := range rest {
		offset := (i + 1) * PageSize
		wg.Go(func() {
			p, err := r.fetch(ctx, src, year, offset)
			if err != nil {
				logger.Warnf(providers.TypeUpstream, "skipping page: %v", err)
				return
			}
			rest[i] = p
		})
	}
	wg.Wait()

	size := len(first.items())
	for _, p := range rest {
		if p != nil {
			size += len(p.items())
		}
	}
	out := make([]T, 0, size)
	out = append(out, first.items()...)
	for _, p := range rest {
		if p != nil {
			out = append(out, p.items()...)
		}
	}
	return out, nil
}
