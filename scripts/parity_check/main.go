// Command parity_check replays the public read endpoints against both the Go
// API and the legacy Next.js deployment and reports status or body drift.
// Run it during cutover; a non-zero exit means a critical endpoint diverged.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"reflect"
	"strings"
	"time"
)

type endpoint struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
}

// defaultEndpoints covers every unauthenticated read route. Mutating routes
// are excluded on purpose; replaying them against production is not safe.
var defaultEndpoints = []endpoint{
	{Method: http.MethodGet, Path: "/api/subjects", Critical: true},
	{Method: http.MethodGet, Path: "/api/subjects?type=diploma", Critical: true},
	{Method: http.MethodGet, Path: "/api/diploma-subjects", Critical: true},
	{Method: http.MethodGet, Path: "/api/subject-details", Critical: true},
	{Method: http.MethodGet, Path: "/api/diploma-subject-details", Critical: true},
	{Method: http.MethodGet, Path: "/api/activities", Critical: true},
	{Method: http.MethodGet, Path: "/api/activity-images", Critical: true},
	{Method: http.MethodGet, Path: "/api/public/faculty", Critical: true},
	{Method: http.MethodGet, Path: "/api/public/activity-blogs", Critical: true},
	{Method: http.MethodGet, Path: "/api/stats", Critical: false},
}

type result struct {
	Endpoint     endpoint
	GoStatus     int
	LegacyStatus int
	StatusMatch  bool
	BodyMatch    bool
	Err          error
	GoDuration   time.Duration
	LegacyDur    time.Duration
}

func main() {
	var (
		goBase     string
		legacyBase string
		targets    string
		timeout    time.Duration
	)
	flag.StringVar(&goBase, "go-base", "http://localhost:8080", "Go API base URL")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:3000", "legacy Next.js base URL")
	flag.StringVar(&targets, "targets", "", "optional JSON file overriding the built-in endpoint list")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "per-request timeout")
	flag.Parse()

	endpoints := defaultEndpoints
	if targets != "" {
		loaded, err := loadEndpoints(targets)
		if err != nil {
			log.Fatalf("failed to load targets: %v", err)
		}
		endpoints = loaded
	}

	client := &http.Client{Timeout: timeout}
	breaking := 0
	fmt.Println("Cutover Parity Report")
	fmt.Println("=====================")
	for _, ep := range endpoints {
		res := compare(client, goBase, legacyBase, ep)
		report(res)
		if ep.Critical && (res.Err != nil || !res.StatusMatch || !res.BodyMatch) {
			breaking++
		}
	}

	fmt.Printf("Critical diffs: %d\n", breaking)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadEndpoints(path string) ([]endpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var endpoints []endpoint
	if err := json.Unmarshal(data, &endpoints); err != nil {
		return nil, err
	}
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("no endpoints defined in %s", path)
	}
	return endpoints, nil
}

func compare(client *http.Client, goBase, legacyBase string, ep endpoint) result {
	res := result{Endpoint: ep}

	goBody, goStatus, goDur, err := fetch(client, goBase, ep)
	if err != nil {
		res.Err = fmt.Errorf("go request failed: %w", err)
		return res
	}
	legacyBody, legacyStatus, legacyDur, err := fetch(client, legacyBase, ep)
	if err != nil {
		res.Err = fmt.Errorf("legacy request failed: %w", err)
		return res
	}

	res.GoStatus = goStatus
	res.LegacyStatus = legacyStatus
	res.GoDuration = goDur
	res.LegacyDur = legacyDur
	res.StatusMatch = goStatus == legacyStatus
	res.BodyMatch = bodiesEqual(goBody, legacyBody)
	return res
}

func fetch(client *http.Client, base string, ep endpoint) ([]byte, int, time.Duration, error) {
	method := strings.ToUpper(strings.TrimSpace(ep.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := ep.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequest(method, strings.TrimRight(base, "/")+path, nil)
	if err != nil {
		return nil, 0, 0, err
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, 0, err
	}
	return body, resp.StatusCode, time.Since(start), nil
}

// bodiesEqual compares responses structurally. The meta block carries a
// per-request timestamp and request id, so it is stripped before the diff.
func bodiesEqual(a, b []byte) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}

	var aj, bj interface{}
	if err := json.Unmarshal(a, &aj); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bj); err != nil {
		return false
	}
	normalize(&aj)
	normalize(&bj)
	return reflect.DeepEqual(aj, bj)
}

func normalize(v *interface{}) {
	switch val := (*v).(type) {
	case map[string]interface{}:
		delete(val, "meta")
		for k, v2 := range val {
			normalize(&v2)
			val[k] = v2
		}
	case []interface{}:
		for i, v2 := range val {
			normalize(&v2)
			val[i] = v2
		}
	case float64:
		// Legacy serializes whole numbers without a fraction; align both sides.
		if val == float64(int64(val)) {
			*v = int64(val)
		}
	}
}

func report(res result) {
	status := "OK"
	switch {
	case res.Err != nil:
		status = "ERROR"
	case !res.StatusMatch || !res.BodyMatch:
		status = "DIFF"
	}
	fmt.Printf("[%s] %s %s\n", status, res.Endpoint.Method, res.Endpoint.Path)
	if res.Err != nil {
		fmt.Printf("  %v\n", res.Err)
		return
	}
	fmt.Printf("  go: %d (%s)  legacy: %d (%s)\n", res.GoStatus, res.GoDuration, res.LegacyStatus, res.LegacyDur)
	if !res.BodyMatch {
		fmt.Println("  body mismatch")
	}
}
