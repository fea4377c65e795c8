// Package source discovers per-project JSONL usage logs and parses them
// into priced usage events.
package source

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"ccmeter/internal/config"
	"ccmeter/internal/model"
)

// Ingester reads usage events from JSONL files under a projects root.
// It re-derives everything from disk on every call; nothing is cached
// at this layer.
type Ingester struct {
	root    string
	pricing *config.Pricing
}

// New validates the projects root and returns an Ingester. A missing or
// non-directory root is fatal: nothing downstream can operate without it.
func New(root string, pricing *config.Pricing) (*Ingester, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("projects directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("projects path %s is not a directory", root)
	}
	return &Ingester{root: root, pricing: pricing}, nil
}

// Root returns the configured projects directory.
func (ing *Ingester) Root() string {
	return ing.root
}

// Projects returns the sorted names of the immediate subdirectories of
// the root. A project with no parseable logs still appears here.
func (ing *Ingester) Projects() ([]string, error) {
	entries, err := os.ReadDir(ing.root)
	if err != nil {
		return nil, fmt.Errorf("listing projects in %s: %w", ing.root, err)
	}

	var projects []string
	for _, e := range entries {
		if e.IsDir() {
			projects = append(projects, e.Name())
		}
	}
	sort.Strings(projects)
	return projects, nil
}

// LoadRecent returns events from the last `hours` hours, sorted by
// timestamp ascending. Files whose mtime predates the lookback are
// skipped as an optimization; the events themselves are filtered by
// timestamp so a freshly touched file cannot smuggle in old data.
func (ing *Ingester) LoadRecent(hours int, project string) ([]model.UsageEvent, error) {
	cutoff := time.Now().Add(-time.Duration(hours) * time.Hour)
	files, err := ing.findFiles(project, cutoff)
	if err != nil {
		return nil, err
	}

	var events []model.UsageEvent
	for _, f := range files {
		for _, ev := range ing.parseFile(f, project) {
			if !ev.Timestamp.Before(cutoff) {
				events = append(events, ev)
			}
		}
	}

	sortByTime(events)
	return events, nil
}

// LoadAll returns every event on disk, sorted by timestamp ascending.
// No mtime prefilter applies: full history is full history.
func (ing *Ingester) LoadAll(project string) ([]model.UsageEvent, error) {
	files, err := ing.findFiles(project, time.Time{})
	if err != nil {
		return nil, err
	}

	var events []model.UsageEvent
	for _, f := range files {
		events = append(events, ing.parseFile(f, project)...)
	}

	sortByTime(events)
	return events, nil
}

// LoadToday returns events since local midnight, sorted ascending.
func (ing *Ingester) LoadToday(project string) ([]model.UsageEvent, error) {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	files, err := ing.findFiles(project, now.Add(-24*time.Hour))
	if err != nil {
		return nil, err
	}

	var events []model.UsageEvent
	for _, f := range files {
		for _, ev := range ing.parseFile(f, project) {
			if !ev.Timestamp.Before(midnight) {
				events = append(events, ev)
			}
		}
	}

	sortByTime(events)
	return events, nil
}

// findFiles walks the root (or one project subtree) collecting .jsonl
// paths. A non-zero mtimeCutoff skips files last modified before it.
// Unreadable entries are skipped; the walk continues.
func (ing *Ingester) findFiles(project string, mtimeCutoff time.Time) ([]string, error) {
	base := ing.root
	if project != "" {
		base = filepath.Join(ing.root, project)
		if _, err := os.Stat(base); err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, fmt.Errorf("project directory %s: %w", base, err)
		}
	}

	var files []string
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // skip unreadable entries, keep walking
		}
		if d.IsDir() || filepath.Ext(path) != ".jsonl" {
			return nil
		}
		if !mtimeCutoff.IsZero() {
			info, err := d.Info()
			if err != nil || info.ModTime().Before(mtimeCutoff) {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", base, err)
	}
	return files, nil
}

// parseFile reads one JSONL file into events. An unreadable file is
// logged and skipped; malformed lines are skipped silently.
func (ing *Ingester) parseFile(path, project string) []model.UsageEvent {
	f, err := os.Open(path) //nolint:gosec // paths come from our own walk
	if err != nil {
		log.Printf("skipping unreadable log %s: %v", path, err)
		return nil
	}
	defer func() { _ = f.Close() }()

	if project == "" {
		project = ing.projectFor(path)
	}

	var events []model.UsageEvent

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 256*1024), 2*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec rawRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		if rec.Timestamp == "" || rec.Message == nil || rec.Message.Usage == nil {
			continue
		}
		ts, err := time.Parse(time.RFC3339Nano, rec.Timestamp)
		if err != nil {
			continue
		}

		events = append(events, ing.buildEvent(ts, rec, project))
	}
	if err := scanner.Err(); err != nil {
		log.Printf("skipping remainder of %s: %v", path, err)
	}

	return events
}

// buildEvent prices a raw record. An explicit costUSD wins verbatim;
// otherwise the pricing table decides, and an unmatched model yields a
// zero-cost unpriced event rather than an error.
func (ing *Ingester) buildEvent(ts time.Time, rec rawRecord, project string) model.UsageEvent {
	u := rec.Message.Usage
	modelID := rec.Message.Model
	if modelID == "" {
		modelID = "unknown"
	}

	ev := model.UsageEvent{
		Timestamp:        ts,
		Model:            modelID,
		Project:          project,
		InputTokens:      u.InputTokens,
		OutputTokens:     u.OutputTokens,
		CacheWriteTokens: u.CacheCreationInputTokens,
		CacheReadTokens:  u.CacheReadInputTokens,
	}
	ev.TotalTokens = ev.InputTokens + ev.OutputTokens + ev.CacheWriteTokens + ev.CacheReadTokens

	switch {
	case rec.CostUSD != nil:
		ev.Cost = *rec.CostUSD
		ev.Source = model.CostSupplied
	default:
		cost, bd, ok := ing.pricing.Price(modelID, ev.InputTokens, ev.OutputTokens, ev.CacheWriteTokens, ev.CacheReadTokens)
		if ok {
			ev.Cost = cost
			ev.Breakdown = bd
			ev.Source = model.CostComputed
		} else {
			ev.Source = model.CostUnpriced
		}
	}

	return ev
}

// projectFor infers the project name from the first path segment under
// the root.
func (ing *Ingester) projectFor(path string) string {
	rel, err := filepath.Rel(ing.root, path)
	if err != nil {
		return ""
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) < 2 {
		return ""
	}
	return parts[0]
}

func sortByTime(events []model.UsageEvent) {
	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
}
