package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

var (
	baseURL      = flag.String("url", "http://127.0.0.1:8934", "varietyd address")
	numWorkers   = flag.Int("workers", 50, "concurrent clients")
	testDuration = flag.Duration("duration", 10*time.Second, "length of each phase")
	firstYear    = flag.Int("from", 2021, "oldest year to request")
)

var httpClient = &http.Client{
	Timeout: 45 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DisableCompression:  true,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint   string
	status     int
	latency    time.Duration
	err        bool
	overloaded bool
}

type stats struct {
	count      int64
	errors     int64
	overloaded int64
	latencies  []time.Duration
}

func main() {
	flag.Parse()
	currentYear := time.Now().UTC().Year()

	fmt.Println("=== varietyd Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s | Years: %d-%d\n\n", *numWorkers, *testDuration, *firstYear, currentYear)

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(*baseURL + "/health")
		if err == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	// Phase 1: everybody asks for the current year at once; refreshes coalesce
	fmt.Println("\n--- Phase 1: Current year stampede ---")
	runPhase(*testDuration, func(rng *rand.Rand) result {
		return doGet("/current", "GET /current", rng.Float64() < 0.5)
	})

	// Phase 2: mixed history reads
	fmt.Println("\n--- Phase 2: Mixed (40% current, 50% history, 10% years) ---")
	runPhase(*testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.40:
			return doGet("/current", "GET /current", rng.Float64() < 0.5)
		case r < 0.90:
			y := *firstYear + rng.Intn(max(currentYear-*firstYear, 1))
			return doGet(fmt.Sprintf("/year?y=%d", y), "GET /year", rng.Float64() < 0.5)
		default:
			return doGet("/years", "GET /years", false)
		}
	})
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := 0; i < *numWorkers; i++ {
		seed := rand.Int63() + int64(i)
		wg.Go(func() {
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					results <- workFn(rng)
					totalOps.Add(1)
				}
			}
		})
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			if r.overloaded {
				s.overloaded++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps, totalErrors, totalOverloaded int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-16s %8s %6s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "429", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 86))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors
		totalOverloaded += s.overloaded

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-16s %8d %6d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors, s.overloaded,
			fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	if totalOps == 0 {
		fmt.Println("  no requests completed")
		return
	}
	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + strings.Repeat("-", 86))
	fmt.Printf("  Total: %s reqs | Errors: %d (%.1f%%) | Overloaded: %d | RPS: %s\n",
		humanize.Comma(totalOps), totalErrors, float64(totalErrors)/float64(totalOps)*100,
		totalOverloaded, humanize.Comma(int64(rps)))
}

// doGet requests path, optionally asking for the zstd payload. 404 counts as
// an answer: years without data are untracked.
func doGet(path, endpoint string, zstd bool) result {
	req, err := http.NewRequest(http.MethodGet, *baseURL+path, http.NoBody)
	if err != nil {
		return result{endpoint: endpoint, err: true}
	}
	if zstd {
		req.Header.Set("Accept-Encoding", "zstd")
	}

	start := time.Now()
	resp, err := httpClient.Do(req)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint: endpoint, latency: lat, err: true}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	ok := resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNotFound
	return result{
		endpoint:   endpoint,
		status:     resp.StatusCode,
		latency:    lat,
		err:        !ok && resp.StatusCode != http.StatusTooManyRequests,
		overloaded: resp.StatusCode == http.StatusTooManyRequests,
	}
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := min(int(float64(len(d))*p), len(d)-1)
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dus", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
