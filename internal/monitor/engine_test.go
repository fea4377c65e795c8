package monitor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ccmeter/internal/config"
	"ccmeter/internal/model"
	"ccmeter/internal/source"
	"ccmeter/internal/store"
)

func writeLog(t *testing.T, root, project, name string, lines ...string) {
	t.Helper()
	dir := filepath.Join(root, project)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name+".jsonl")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
}

func usageLine(ts time.Time, modelID string, in, out int64) string {
	return fmt.Sprintf(`{"timestamp":%q,"message":{"model":%q,"usage":{"input_tokens":%d,"output_tokens":%d}}}`,
		ts.UTC().Format(time.RFC3339), modelID, in, out)
}

func newTestEngine(t *testing.T, root string, cache *store.Cache) *Engine {
	t.Helper()
	ing, err := source.New(root, config.DefaultPricing())
	if err != nil {
		t.Fatal(err)
	}
	plan := config.PlanByName("Pro")
	return New(ing, config.DefaultPricing(), plan, cache, time.Minute)
}

func TestCurrentStats_LiveSessionAndTodayTotals(t *testing.T) {
	root := t.TempDir()
	now := time.Now()
	writeLog(t, root, "proj", "s1",
		usageLine(now.Add(-3*time.Minute), "claude-3-5-haiku-20241022", 1_000_000, 0),
		usageLine(now.Add(-1*time.Minute), "claude-3-5-haiku-20241022", 1_000_000, 0),
	)

	stats, err := newTestEngine(t, root, nil).CurrentStats("")
	if err != nil {
		t.Fatal(err)
	}

	if stats.CurrentSession == nil {
		t.Fatal("no current session despite recent activity")
	}
	if len(stats.CurrentSession.Events) != 2 {
		t.Errorf("session events = %d, want 2", len(stats.CurrentSession.Events))
	}
	if stats.TodayMessages != 2 {
		t.Errorf("todayMessages = %d, want 2", stats.TodayMessages)
	}
	if stats.TodayTokens != 2_000_000 {
		t.Errorf("todayTokens = %d, want 2000000", stats.TodayTokens)
	}
	// 2M haiku input tokens at 0.8/M.
	if stats.TodayCost < 1.59 || stats.TodayCost > 1.61 {
		t.Errorf("todayCost = %v, want 1.6", stats.TodayCost)
	}
	if stats.MinutesUntilReset <= 0 {
		t.Errorf("minutesUntilReset = %d, want positive for a live window", stats.MinutesUntilReset)
	}
	if stats.SessionsStartedToday < 1 {
		t.Errorf("sessionsStartedToday = %d, want at least 1", stats.SessionsStartedToday)
	}
	if stats.Plan.Name != "Pro" {
		t.Errorf("plan = %q, want Pro", stats.Plan.Name)
	}
	// $1.60 today crosses the warning threshold.
	foundWarning := false
	for _, a := range stats.Alerts {
		if a.Level == model.AlertWarning {
			foundWarning = true
		}
	}
	if !foundWarning {
		t.Errorf("alerts = %+v, want a warning for moderate daily cost", stats.Alerts)
	}
}

func TestCurrentStats_EmptyDirIsZeroNotError(t *testing.T) {
	stats, err := newTestEngine(t, t.TempDir(), nil).CurrentStats("")
	if err != nil {
		t.Fatal(err)
	}
	if stats.CurrentSession != nil {
		t.Error("current session set with no data")
	}
	if stats.TodayMessages != 0 || stats.TodayCost != 0 {
		t.Errorf("today = %d msgs / $%v, want zeros", stats.TodayMessages, stats.TodayCost)
	}
	if stats.BurnRate != 0 || stats.MinutesUntilReset != 0 {
		t.Errorf("burnRate=%d minutes=%d, want zeros", stats.BurnRate, stats.MinutesUntilReset)
	}
}

func TestDailyReport_AggregatesAndMemoizes(t *testing.T) {
	root := t.TempDir()
	now := time.Now()
	writeLog(t, root, "proj", "s1",
		usageLine(now.Add(-30*time.Minute), "claude-3-5-haiku-20241022", 500_000, 0),
	)

	cache := store.New(time.Minute)
	eng := newTestEngine(t, root, cache)

	report, err := eng.DailyReport(7, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(report) != 1 {
		t.Fatalf("report days = %d, want 1", len(report))
	}
	if report[0].Events != 1 {
		t.Errorf("events = %d, want 1", report[0].Events)
	}

	// A new event on disk is invisible until the memo entry expires.
	writeLog(t, root, "proj", "s2",
		usageLine(now.Add(-20*time.Minute), "claude-3-5-haiku-20241022", 500_000, 0),
	)
	report, err = eng.DailyReport(7, "")
	if err != nil {
		t.Fatal(err)
	}
	if report[0].Events != 1 {
		t.Errorf("memoized report events = %d, want the cached 1", report[0].Events)
	}

	cache.Clear()
	report, err = eng.DailyReport(7, "")
	if err != nil {
		t.Fatal(err)
	}
	if report[0].Events != 2 {
		t.Errorf("recomputed report events = %d, want 2", report[0].Events)
	}
}

func TestCurrentStats_NeverCached(t *testing.T) {
	root := t.TempDir()
	now := time.Now()
	writeLog(t, root, "proj", "s1",
		usageLine(now.Add(-30*time.Minute), "claude-3-5-haiku-20241022", 1000, 0),
	)

	eng := newTestEngine(t, root, store.New(time.Hour))

	first, err := eng.CurrentStats("")
	if err != nil {
		t.Fatal(err)
	}
	writeLog(t, root, "proj", "s2",
		usageLine(now.Add(-5*time.Minute), "claude-3-5-haiku-20241022", 1000, 0),
	)
	second, err := eng.CurrentStats("")
	if err != nil {
		t.Fatal(err)
	}
	if second.TodayMessages != first.TodayMessages+1 {
		t.Errorf("todayMessages = %d, want %d (fresh read)", second.TodayMessages, first.TodayMessages+1)
	}
}

func TestMonthlyReport_UsesActivePlan(t *testing.T) {
	root := t.TempDir()
	now := time.Now()
	writeLog(t, root, "proj", "s1",
		usageLine(now.Add(-2*time.Hour), "claude-3-5-haiku-20241022", 1_000_000, 0),
	)

	eng := newTestEngine(t, root, nil)
	report, err := eng.MonthlyReport(3, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(report) == 0 {
		t.Fatal("empty monthly report")
	}
	m := report[len(report)-1]
	if m.PlanCost != 20 {
		t.Errorf("planCost = %v, want Pro's 20", m.PlanCost)
	}

	eng.SetPlan(config.PlanByName("Max5"))
	report, err = eng.MonthlyReport(3, "")
	if err != nil {
		t.Fatal(err)
	}
	if got := report[len(report)-1].PlanCost; got != 100 {
		t.Errorf("planCost after SetPlan = %v, want 100", got)
	}
}

func TestSetPlan_Plan(t *testing.T) {
	eng := newTestEngine(t, t.TempDir(), nil)
	if eng.Plan().Name != "Pro" {
		t.Fatalf("initial plan = %q, want Pro", eng.Plan().Name)
	}
	eng.SetPlan(config.PlanByName("Free"))
	if eng.Plan().Name != "Free" {
		t.Errorf("plan = %q, want Free", eng.Plan().Name)
	}
}

func TestComputeAlerts(t *testing.T) {
	now := time.Now()
	pro := config.PlanByName("Pro")
	free := config.PlanByName("Free")

	if got := ComputeAlerts(0.5, pro, now); len(got) != 0 {
		t.Errorf("alerts at $0.50 = %+v, want none", got)
	}

	got := ComputeAlerts(2.0, pro, now)
	if len(got) != 1 || got[0].Level != model.AlertWarning {
		t.Errorf("alerts at $2 = %+v, want one warning", got)
	}

	got = ComputeAlerts(7.5, pro, now)
	if len(got) != 1 || got[0].Level != model.AlertCritical {
		t.Errorf("alerts at $7.50 = %+v, want one critical", got)
	}

	// Free plan always carries the info alert, alongside any cost alert.
	got = ComputeAlerts(7.5, free, now)
	if len(got) != 2 {
		t.Fatalf("free-plan alerts = %+v, want critical + info", got)
	}
	if got[1].Level != model.AlertInfo {
		t.Errorf("second alert = %v, want info", got[1].Level)
	}

	// Pure function: same inputs, same output.
	again := ComputeAlerts(7.5, free, now)
	if len(again) != len(got) || again[0].Message != got[0].Message {
		t.Error("ComputeAlerts is not deterministic")
	}
}
