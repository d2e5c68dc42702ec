package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Simple Prometheus-style metrics for HTTP requests and extraction
// outcomes. This is intentionally minimal and in-memory only.

var (
	mu             sync.RWMutex
	requestsTotal  = make(map[reqKey]int64)
	latencyMsSum   = make(map[latKey]int64)
	latencyMsCount = make(map[latKey]int64)

	extractionsTotal = make(map[extractKey]int64)
	cacheLookups     = make(map[string]int64)
	llmCoerces       = make(map[llmKey]int64)

	retentionAttemptsDeleted int64
	cacheEntriesSwept        int64
)

type reqKey struct {
	Method string
	Path   string
	Status int
}

type latKey struct {
	Method string
	Path   string
}

type extractKey struct {
	Method  string
	Success string
}

type llmKey struct {
	Provider string
	Model    string
	Success  string
}

func boolLabel(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// RecordRequest increments request counter and records latency.
func RecordRequest(method, path string, status int, latencyMs int64) {
	mu.Lock()
	defer mu.Unlock()

	rk := reqKey{Method: method, Path: path, Status: status}
	requestsTotal[rk]++

	lk := latKey{Method: method, Path: path}
	latencyMsSum[lk] += latencyMs
	latencyMsCount[lk]++
}

// RecordExtraction counts one strategy invocation by method and outcome.
func RecordExtraction(method string, success bool) {
	mu.Lock()
	defer mu.Unlock()
	extractionsTotal[extractKey{Method: method, Success: boolLabel(success)}]++
}

// RecordCacheLookup counts cache hits and misses.
func RecordCacheLookup(hit bool) {
	mu.Lock()
	defer mu.Unlock()
	if hit {
		cacheLookups["hit"]++
	} else {
		cacheLookups["miss"]++
	}
}

// RecordCacheSweep accumulates entries purged by periodic sweeps.
func RecordCacheSweep(purged int) {
	if purged <= 0 {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	cacheEntriesSwept += int64(purged)
}

// RecordLLMCoerce increments language-model fallback counters.
func RecordLLMCoerce(provider, model string, success bool) {
	mu.Lock()
	defer mu.Unlock()
	llmCoerces[llmKey{Provider: provider, Model: model, Success: boolLabel(success)}]++
}

// RecordRetentionAttempts increments the counter of attempt rows
// deleted by TTL cleanup.
func RecordRetentionAttempts(deleted int64) {
	if deleted <= 0 {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	retentionAttemptsDeleted += deleted
}

// Export returns Prometheus-style metrics text.
func Export() string {
	mu.RLock()
	defer mu.RUnlock()

	var b strings.Builder

	b.WriteString("# HELP jobfetch_http_requests_total Total HTTP requests\n")
	b.WriteString("# TYPE jobfetch_http_requests_total counter\n")

	// Sort keys for stable output
	var reqKeys []reqKey
	for k := range requestsTotal {
		reqKeys = append(reqKeys, k)
	}
	sort.Slice(reqKeys, func(i, j int) bool {
		if reqKeys[i].Method != reqKeys[j].Method {
			return reqKeys[i].Method < reqKeys[j].Method
		}
		if reqKeys[i].Path != reqKeys[j].Path {
			return reqKeys[i].Path < reqKeys[j].Path
		}
		return reqKeys[i].Status < reqKeys[j].Status
	})

	for _, k := range reqKeys {
		fmt.Fprintf(&b, "jobfetch_http_requests_total{method=\"%s\",path=\"%s\",status=\"%d\"} %d\n",
			k.Method, k.Path, k.Status, requestsTotal[k])
	}

	b.WriteString("# HELP jobfetch_http_request_duration_ms_sum Total request duration in milliseconds\n")
	b.WriteString("# TYPE jobfetch_http_request_duration_ms_sum counter\n")
	b.WriteString("# HELP jobfetch_http_request_duration_ms_count Request count for latency metric\n")
	b.WriteString("# TYPE jobfetch_http_request_duration_ms_count counter\n")

	var latKeys []latKey
	for k := range latencyMsSum {
		latKeys = append(latKeys, k)
	}
	sort.Slice(latKeys, func(i, j int) bool {
		if latKeys[i].Method != latKeys[j].Method {
			return latKeys[i].Method < latKeys[j].Method
		}
		return latKeys[i].Path < latKeys[j].Path
	})

	for _, k := range latKeys {
		fmt.Fprintf(&b, "jobfetch_http_request_duration_ms_sum{method=\"%s\",path=\"%s\"} %d\n",
			k.Method, k.Path, latencyMsSum[k])
		fmt.Fprintf(&b, "jobfetch_http_request_duration_ms_count{method=\"%s\",path=\"%s\"} %d\n",
			k.Method, k.Path, latencyMsCount[k])
	}

	b.WriteString("# HELP jobfetch_extractions_total Strategy invocations by method and outcome\n")
	b.WriteString("# TYPE jobfetch_extractions_total counter\n")

	var extKeys []extractKey
	for k := range extractionsTotal {
		extKeys = append(extKeys, k)
	}
	sort.Slice(extKeys, func(i, j int) bool {
		if extKeys[i].Method != extKeys[j].Method {
			return extKeys[i].Method < extKeys[j].Method
		}
		return extKeys[i].Success < extKeys[j].Success
	})

	for _, k := range extKeys {
		fmt.Fprintf(&b, "jobfetch_extractions_total{method=\"%s\",success=\"%s\"} %d\n",
			k.Method, k.Success, extractionsTotal[k])
	}

	b.WriteString("# HELP jobfetch_cache_lookups_total Description cache lookups by outcome\n")
	b.WriteString("# TYPE jobfetch_cache_lookups_total counter\n")

	var cacheKeys []string
	for k := range cacheLookups {
		cacheKeys = append(cacheKeys, k)
	}
	sort.Strings(cacheKeys)
	for _, k := range cacheKeys {
		fmt.Fprintf(&b, "jobfetch_cache_lookups_total{outcome=\"%s\"} %d\n", k, cacheLookups[k])
	}

	b.WriteString("# HELP jobfetch_llm_coerce_requests_total Language-model fallback calls\n")
	b.WriteString("# TYPE jobfetch_llm_coerce_requests_total counter\n")

	var llmKeys []llmKey
	for k := range llmCoerces {
		llmKeys = append(llmKeys, k)
	}
	sort.Slice(llmKeys, func(i, j int) bool {
		if llmKeys[i].Provider != llmKeys[j].Provider {
			return llmKeys[i].Provider < llmKeys[j].Provider
		}
		if llmKeys[i].Model != llmKeys[j].Model {
			return llmKeys[i].Model < llmKeys[j].Model
		}
		return llmKeys[i].Success < llmKeys[j].Success
	})

	for _, k := range llmKeys {
		fmt.Fprintf(&b, "jobfetch_llm_coerce_requests_total{provider=\"%s\",model=\"%s\",success=\"%s\"} %d\n",
			k.Provider, k.Model, k.Success, llmCoerces[k])
	}

	fmt.Fprintf(&b, "# HELP jobfetch_cache_entries_swept_total Cache entries purged by sweeps\n")
	fmt.Fprintf(&b, "# TYPE jobfetch_cache_entries_swept_total counter\n")
	fmt.Fprintf(&b, "jobfetch_cache_entries_swept_total %d\n", cacheEntriesSwept)

	fmt.Fprintf(&b, "# HELP jobfetch_retention_attempts_deleted_total Attempt rows deleted by retention cleanup\n")
	fmt.Fprintf(&b, "# TYPE jobfetch_retention_attempts_deleted_total counter\n")
	fmt.Fprintf(&b, "jobfetch_retention_attempts_deleted_total %d\n", retentionAttemptsDeleted)

	return b.String()
}
