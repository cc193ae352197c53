package observ

import (
	"fmt"
	"strings"
	"time"
)

// Phase records the duration of one pass of a session.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer tracks pass durations and named counters of a session.
type Timer struct {
	phases   []Phase
	counters map[string]int
	order    []string
}

func NewTimer() *Timer {
	return &Timer{phases: make([]Phase, 0, 4), counters: make(map[string]int)}
}

// Begin starts a new phase and returns its index.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now()})
	return len(t.phases) - 1
}

// End finishes a phase by its index.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = time.Since(p.Start)
	p.Note = note
}

// Count adds n to the named counter.
func (t *Timer) Count(name string, n int) {
	if _, ok := t.counters[name]; !ok {
		t.order = append(t.order, name)
	}
	t.counters[name] += n
}

// Counter returns the value of the named counter.
func (t *Timer) Counter(name string) int { return t.counters[name] }

// Summary renders phases then counters, one per line.
func (t *Timer) Summary() string {
	report := t.Report()
	var b strings.Builder
	b.WriteString("timings:\n")
	for _, p := range report.Phases {
		fmt.Fprintf(&b, "  %-20s %7.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			b.WriteString("  // " + p.Note)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "  %-20s %7.2f ms\n", "total", report.TotalMS)
	for _, c := range report.Counters {
		fmt.Fprintf(&b, "  %-20s %7d\n", c.Name, c.Value)
	}
	return b.String()
}

type PhaseReport struct {
	Name       string  `json:"name" msgpack:"name"`
	DurationMS float64 `json:"duration_ms" msgpack:"duration_ms"`
	Note       string  `json:"note,omitempty" msgpack:"note,omitempty"`
}

type CounterReport struct {
	Name  string `json:"name" msgpack:"name"`
	Value int    `json:"value" msgpack:"value"`
}

// Report is the aggregated, serialisable form of a Timer.
type Report struct {
	TotalMS  float64         `json:"total_ms" msgpack:"total_ms"`
	Phases   []PhaseReport   `json:"phases" msgpack:"phases"`
	Counters []CounterReport `json:"counters,omitempty" msgpack:"counters,omitempty"`
}

func (t *Timer) Report() Report {
	report := Report{Phases: make([]PhaseReport, len(t.phases))}
	var total time.Duration
	for i, phase := range t.phases {
		total += phase.Dur
		report.Phases[i] = PhaseReport{
			Name:       phase.Name,
			DurationMS: durationToMillis(phase.Dur),
			Note:       phase.Note,
		}
	}
	report.TotalMS = durationToMillis(total)
	for _, name := range t.order {
		report.Counters = append(report.Counters, CounterReport{Name: name, Value: t.counters[name]})
	}
	return report
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
