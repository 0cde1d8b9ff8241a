package observability

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
	flowCount    map[string]int64
	flowLatency  map[string]time.Duration
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		flowCount:    make(map[string]int64),
		flowLatency:  make(map[string]time.Duration),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordFlow counts a flow invocation by outcome ("ok" or an error code) and
// accumulates its latency.
func (m *Metrics) RecordFlow(flow, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	key := flow + "|" + outcome
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flowCount[key]++
	m.flowLatency[flow] += duration
}

// FlowStat summarizes invocations of one flow.
type FlowStat struct {
	Flow           string           `json:"flow"`
	Outcomes       map[string]int64 `json:"outcomes"`
	Total          int64            `json:"total"`
	AverageLatency string           `json:"average_latency"`
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Requests map[string]int64 `json:"requests"`
	Errors   map[string]int64 `json:"errors"`
	Flows    []FlowStat       `json:"flows"`
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{Requests: map[string]int64{}, Errors: map[string]int64{}, Flows: []FlowStat{}}
	if m == nil {
		return snap
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, v := range m.requestCount {
		snap.Requests[k] = v
	}
	for k, v := range m.errorCount {
		snap.Errors[k] = v
	}

	byFlow := map[string]*FlowStat{}
	for key, count := range m.flowCount {
		flow, outcome, _ := strings.Cut(key, "|")
		stat, ok := byFlow[flow]
		if !ok {
			stat = &FlowStat{Flow: flow, Outcomes: map[string]int64{}}
			byFlow[flow] = stat
		}
		stat.Outcomes[outcome] += count
		stat.Total += count
	}
	for flow, stat := range byFlow {
		stat.AverageLatency = (m.flowLatency[flow] / time.Duration(stat.Total)).String()
		snap.Flows = append(snap.Flows, *stat)
	}
	sort.Slice(snap.Flows, func(i, j int) bool { return snap.Flows[i].Flow < snap.Flows[j].Flow })
	return snap
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
