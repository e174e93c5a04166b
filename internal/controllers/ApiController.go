package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"varietyd/internal/models"
	"varietyd/internal/providers"
	"varietyd/internal/services"
	"varietyd/internal/statistic"
	"varietyd/internal/statistic/interfaces"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"
)

type ApiController struct {
	logger      providers.Logger
	coordinator services.CoordinatorInterface
	cache       providers.CacheProviderInterface
	compressor  interfaces.CompressorInterface
}

func NewApiController(logger providers.Logger, coordinator services.CoordinatorInterface, cache providers.CacheProviderInterface, compressor interfaces.CompressorInterface) *ApiController {
	return &ApiController{
		logger:      logger,
		coordinator: coordinator,
		cache:       cache,
		compressor:  compressor,
	}
}

type yearsResponse struct {
	KnownYears []int `json:"knownYears"`
}

// acceptsZstd reports whether the client listed zstd in Accept-Encoding
// without disabling it through q=0.
func acceptsZstd(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		token, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if !strings.EqualFold(strings.TrimSpace(token), statistic.ContentEncoding) {
			continue
		}
		params = strings.ReplaceAll(params, " ", "")
		return params != "q=0" && params != "q=0.0"
	}
	return false
}

// writePayload sends a compressed payload either as-is or decompressed,
// depending on what the client accepts.
func (ac *ApiController) writePayload(w http.ResponseWriter, r *http.Request, compressed []byte) error {
	w.Header().Set("Vary", "Accept-Encoding")
	if acceptsZstd(r) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Encoding", statistic.ContentEncoding)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(compressed)
		return nil
	}

	plain, err := ac.compressor.Decompress(compressed)
	if err != nil {
		return err
	}
	writeJSON(w, plain)
	return nil
}

// serveFromCacheOrCompute keeps a computed body only as long as the snapshot
// inside it would be served by the coordinator.
func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, r *http.Request, cacheKey string, compute func(ctx context.Context) (models.YearResult, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		if err := ac.writePayload(w, r, data); err == nil {
			return
		}
		ac.logger.Warnf(providers.TypeHttp, "Dropping unreadable cache entry %s", cacheKey)
	}

	result, err := compute(r.Context())
	if err != nil {
		ac.writeError(w, r, err)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}

	compressed, err := ac.compressor.Compress(gson)
	if err != nil {
		ac.logger.Errorf(providers.TypeHttp, "Compress %s: %s", cacheKey, err)
		writeJSON(w, gson)
		return
	}
	if result.FreshFor > 0 {
		ac.cache.Set(cacheKey, compressed, result.FreshFor)
	}

	if acceptsZstd(r) {
		_ = ac.writePayload(w, r, compressed)
		return
	}
	w.Header().Set("Vary", "Accept-Encoding")
	writeJSON(w, gson)
}

func (ac *ApiController) GetCurrent(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, r, "current", func(ctx context.Context) (models.YearResult, error) {
		return ac.coordinator.GetCurrentYear(ctx)
	})
}

func (ac *ApiController) GetYear(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("y"))
	year, err := cast.ToIntE(raw)
	if raw == "" || err != nil || year <= 0 {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	ac.serveFromCacheOrCompute(w, r, "year:"+strconv.Itoa(year), func(ctx context.Context) (models.YearResult, error) {
		return ac.coordinator.GetYear(ctx, year)
	})
}

func (ac *ApiController) GetYears(w http.ResponseWriter, r *http.Request) {
	gson, err := json.Marshal(yearsResponse{KnownYears: ac.coordinator.KnownYears()})
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	writeJSON(w, gson)
}

func statusFor(err error) int {
	var fetchErr *models.UpstreamFetchError
	switch {
	case errors.Is(err, models.ErrUntrackedYear):
		return http.StatusNotFound
	case errors.Is(err, models.ErrCoordinatorOverloaded):
		return http.StatusTooManyRequests
	case errors.Is(err, models.ErrCoordinatorStopped),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (ac *ApiController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		ac.logger.Errorf(providers.TypeHttp, "%s %s: %s", r.Method, r.URL.Path, err)
	}
	http.Error(w, http.StatusText(status), status)
}

func writeJSON(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
