package main

import (
	"bytes"
	"fmt"
	json "github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/atomic"
	"io"
	"math/rand"
	"net"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"
)

const (
	baseURL      = "http://127.0.0.1:18090"
	numWorkers   = 50
	testDuration = 10 * time.Second
	numUsers     = 200
	historyDays  = 400
)

var phrases = []string{
	"morning coffee on the balcony",
	"a long call with an old friend",
	"finished the book I was reading",
	"sunset walk by the river",
	"fresh bread from the bakery",
	"my plants finally bloomed",
}

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

var tokens []string

func mintTokens(secret string) {
	tokens = make([]string, numUsers)
	exp := time.Now().Add(time.Hour).Unix()
	for i := range tokens {
		sub := fmt.Sprintf("loadtest-user-%d", i)
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":   sub,
			"email": sub + "@example.com",
			"exp":   exp,
		}).SignedString([]byte(secret))
		if err != nil {
			panic(err)
		}
		tokens[i] = "Bearer " + signed
	}
}

func main() {
	secret := os.Getenv("OGT_JWT_SECRET")
	if secret == "" {
		fmt.Println("OGT_JWT_SECRET must match the server's auth.jwtSecret")
		return
	}
	mintTokens(secret)

	fmt.Println("=== OneGoodThing Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s\n", numWorkers, testDuration)
	fmt.Printf("Users: %d | History: %d days\n\n", numUsers, historyDays)

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	fmt.Println("\n--- Phase 1: Seeding history (POST /api/entries) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		return doPostEntry(rng)
	})

	fmt.Println("\n--- Phase 2: Mixed load (20% POST, 80% GET) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.20:
			return doPostEntry(rng)
		case r < 0.45:
			return doGet(rng, "/api/stats")
		case r < 0.60:
			return doGet(rng, "/api/stats/grid?days=90")
		case r < 0.75:
			return doGet(rng, "/api/insights")
		case r < 0.85:
			return doGet(rng, "/api/memories")
		default:
			return doGet(rng, "/api/entries")
		}
	})

	fmt.Println("\n--- Phase 3: Cached reads (GET /api/stats) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		return doGet(rng, "/api/stats")
	})
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	totalOps := atomic.NewInt64(0)
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					r := workFn(rng)
					totalOps.Inc()
					results <- r
				}
			}
		}(rand.Int63() + int64(i))
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
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-32s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + repeat("-", 88))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		avg := avgDuration(s.latencies)
		p50 := percentile(s.latencies, 0.50)
		p95 := percentile(s.latencies, 0.95)
		p99 := percentile(s.latencies, 0.99)

		fmt.Printf("  %-32s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors, fmtDur(avg), fmtDur(p50), fmtDur(p95), fmtDur(p99))
	}

	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + repeat("-", 88))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func authorized(method, url string, body io.Reader, rng *rand.Rand) (*http.Request, error) {
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", tokens[rng.Intn(len(tokens))])
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// doPostEntry writes a random past day. A 409 means the day was already
// taken, which is expected once the history fills up.
func doPostEntry(rng *rand.Rand) result {
	body := map[string]interface{}{
		"entryText": phrases[rng.Intn(len(phrases))],
		"entryDate": time.Now().UTC().AddDate(0, 0, -rng.Intn(historyDays)).Format("2006-01-02"),
		"tags":      []string{"loadtest"},
	}
	if rng.Float64() < 0.8 {
		body["moodScore"] = rng.Intn(5) + 1
	}

	data, _ := json.Marshal(body)
	req, err := authorized(http.MethodPost, baseURL+"/api/entries", bytes.NewReader(data), rng)
	if err != nil {
		return result{"POST /api/entries", 0, 0, true}
	}
	start := time.Now()
	resp, err := httpClient.Do(req)
	lat := time.Since(start)
	if err != nil {
		return result{"POST /api/entries", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	ok := resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusConflict
	return result{"POST /api/entries", resp.StatusCode, lat, !ok}
}

func doGet(rng *rand.Rand, path string) result {
	endpoint := "GET " + path
	req, err := authorized(http.MethodGet, baseURL+path, nil, rng)
	if err != nil {
		return result{endpoint, 0, 0, true}
	}
	start := time.Now()
	resp, err := httpClient.Do(req)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{endpoint, resp.StatusCode, lat, resp.StatusCode != http.StatusOK}
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
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
