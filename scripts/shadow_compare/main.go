// Command shadow_compare replays LUCT requests against the legacy service and
// this API, then reports status and body differences per endpoint.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"go.uber.org/zap"
)

type target struct {
	Method   string          `json:"method"`
	Path     string          `json:"path"`
	Role     string          `json:"role"`
	Body     json.RawMessage `json:"body,omitempty"`
	Critical bool            `json:"critical"`
}

type targetFile struct {
	// Tokens maps a role to the bearer token used for targets with that role.
	Tokens  map[string]string `json:"tokens"`
	Ignore  []string          `json:"ignore"`
	Targets []target          `json:"targets"`
}

type comparison struct {
	Target         target
	LegacyStatus   int
	GoStatus       int
	StatusMatch    bool
	BodyMatch      bool
	Error          error
	DurationGo     time.Duration
	DurationLegacy time.Duration
}

type comparer struct {
	client     *http.Client
	goBase     string
	legacyBase string
	tokens     map[string]string
	ignore     map[string]struct{}
}

func main() {
	var (
		goBase      string
		legacyBase  string
		targetsPath string
		timeout     time.Duration
	)

	flag.StringVar(&goBase, "go-base", "http://localhost:8080/api", "Go API base URL")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:5000/api", "Legacy API base URL")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "shadow_compare", "targets.json"), "Path to JSON targets file")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync() //nolint:errcheck

	file, err := loadTargets(targetsPath)
	if err != nil {
		logger.Fatal("failed to load targets", zap.Error(err))
	}

	c := newComparer(&http.Client{Timeout: timeout}, goBase, legacyBase, file)
	var (
		comparisons  []comparison
		breaking     int
		optionalDiff int
	)
	for _, t := range file.Targets {
		comp := c.compare(t)
		if comp.Error != nil || !comp.StatusMatch || !comp.BodyMatch {
			if t.Critical {
				breaking++
			} else {
				optionalDiff++
			}
		}
		if comp.Error != nil {
			logger.Warn("comparison failed", zap.String("path", t.Path), zap.Error(comp.Error))
		}
		comparisons = append(comparisons, comp)
	}

	printReport(os.Stdout, comparisons)
	fmt.Printf("Breaking diffs: %d, Optional diffs: %d\n", breaking, optionalDiff)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) (*targetFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file targetFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	for role, token := range file.Tokens {
		// SHADOW_TOKEN_<ROLE> overrides tokens checked into the file.
		if env := os.Getenv("SHADOW_TOKEN_" + strings.ToUpper(role)); env != "" {
			file.Tokens[role] = env
		} else if token == "" {
			delete(file.Tokens, role)
		}
	}
	return &file, nil
}

func newComparer(client *http.Client, goBase, legacyBase string, file *targetFile) *comparer {
	ignore := make(map[string]struct{}, len(file.Ignore))
	for _, key := range file.Ignore {
		ignore[key] = struct{}{}
	}
	return &comparer{client: client, goBase: goBase, legacyBase: legacyBase, tokens: file.Tokens, ignore: ignore}
}

func (c *comparer) compare(tgt target) comparison {
	comp := comparison{Target: tgt}
	goStatus, goBody, goDur, goErr := c.perform(c.goBase, tgt)
	legacyStatus, legacyBody, legacyDur, legacyErr := c.perform(c.legacyBase, tgt)
	comp.DurationGo = goDur
	comp.DurationLegacy = legacyDur

	if goErr != nil {
		comp.Error = fmt.Errorf("go request failed: %w", goErr)
		return comp
	}
	if legacyErr != nil {
		comp.Error = fmt.Errorf("legacy request failed: %w", legacyErr)
		return comp
	}

	comp.GoStatus = goStatus
	comp.LegacyStatus = legacyStatus
	comp.StatusMatch = goStatus == legacyStatus
	comp.BodyMatch = c.bodiesEqual(goBody, legacyBody)
	return comp
}

func (c *comparer) perform(base string, tgt target) (int, []byte, time.Duration, error) {
	if c.client == nil {
		return 0, nil, 0, errors.New("nil client")
	}
	method := strings.ToUpper(strings.TrimSpace(tgt.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := tgt.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var body io.Reader
	if len(tgt.Body) > 0 {
		body = bytes.NewReader(tgt.Body)
	}
	req, err := http.NewRequest(method, strings.TrimRight(base, "/")+path, body)
	if err != nil {
		return 0, nil, 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tgt.Role != "" {
		token, ok := c.tokens[tgt.Role]
		if !ok {
			return 0, nil, 0, fmt.Errorf("no token configured for role %q", tgt.Role)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, 0, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, data, time.Since(start), nil
}

func (c *comparer) bodiesEqual(a, b []byte) bool {
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
	return reflect.DeepEqual(c.normalize(aj), c.normalize(bj))
}

// normalize drops ignored keys at any depth and folds whole floats into
// integers so 12 and 12.0 compare equal.
func (c *comparer) normalize(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, v2 := range val {
			if _, skip := c.ignore[k]; skip {
				continue
			}
			out[k] = c.normalize(v2)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, v2 := range val {
			out[i] = c.normalize(v2)
		}
		return out
	case float64:
		if val == float64(int64(val)) {
			return int64(val)
		}
	}
	return v
}

func printReport(w io.Writer, results []comparison) {
	fmt.Fprintln(w, "Shadow Compare Report")
	fmt.Fprintln(w, "======================")
	for _, res := range results {
		status := "OK"
		if res.Error != nil {
			status = "ERROR"
		} else if !res.StatusMatch || !res.BodyMatch {
			status = "DIFF"
		}
		role := res.Target.Role
		if role == "" {
			role = "anonymous"
		}
		fmt.Fprintf(w, "[%s] %s %s (%s)\n", status, res.Target.Method, res.Target.Path, role)
		fmt.Fprintf(w, "  Go Status: %d (%s)\n", res.GoStatus, res.DurationGo)
		fmt.Fprintf(w, "  Legacy Status: %d (%s)\n", res.LegacyStatus, res.DurationLegacy)
		if res.Error != nil {
			fmt.Fprintf(w, "  Error: %v\n", res.Error)
		} else {
			fmt.Fprintf(w, "  Status match: %t | Body match: %t | Critical: %t\n", res.StatusMatch, res.BodyMatch, res.Target.Critical)
		}
	}
}
