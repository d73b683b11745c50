// Package vte computes VTE (venous thromboembolism) prevention metrics over
// the clinical sample dataset and checks them against quality goals.
package vte

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/clinsight-ai/clinsight/pkg/models"
)

// Store holds the patient dataset in memory and serves metric queries.
// Reload swaps the dataset atomically, so readers never see a partial load.
type Store struct {
	mu      sync.RWMutex
	records []models.PatientRecord
	path    string
}

// NewStore creates a Store over a JSON dataset file. The file does not need
// to exist yet; Reload or SetRecords populates it.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Reload reads the dataset file and replaces the in-memory records.
func (s *Store) Reload() (int, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return 0, fmt.Errorf("read vte dataset: %w", err)
	}
	var records []models.PatientRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return 0, fmt.Errorf("parse vte dataset: %w", err)
	}

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
	return len(records), nil
}

// Save writes the current records to the dataset file.
func (s *Store) Save() error {
	s.mu.RLock()
	records := s.records
	s.mu.RUnlock()

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal vte dataset: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write vte dataset: %w", err)
	}
	return nil
}

// SetRecords replaces the in-memory dataset.
func (s *Store) SetRecords(records []models.PatientRecord) {
	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
}

// Len returns the number of loaded records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Metrics aggregates prophylaxis and event rates per department, sorted by
// department name. Rates are percentages.
func (s *Store) Metrics() []models.DepartmentMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type acc struct {
		patients    int
		prophylaxis int
		events      int
	}
	byDept := make(map[string]*acc)
	for _, r := range s.records {
		a := byDept[r.Department]
		if a == nil {
			a = &acc{}
			byDept[r.Department] = a
		}
		a.patients++
		if r.ProphylaxisGiven {
			a.prophylaxis++
		}
		if r.VTEEvent {
			a.events++
		}
	}

	depts := make([]string, 0, len(byDept))
	for d := range byDept {
		depts = append(depts, d)
	}
	sort.Strings(depts)

	out := make([]models.DepartmentMetrics, 0, len(depts))
	for _, d := range depts {
		a := byDept[d]
		out = append(out, models.DepartmentMetrics{
			Department:      d,
			Patients:        a.patients,
			ProphylaxisRate: 100 * float64(a.prophylaxis) / float64(a.patients),
			VTEEvents:       a.events,
			VTERate:         100 * float64(a.events) / float64(a.patients),
		})
	}
	return out
}

// CheckThresholds flags departments whose prophylaxis rate misses goalPercent
// or whose VTE event rate exceeds maxEventRate (both percentages). A missed
// prophylaxis goal within ten points is a warning; further out, or any event
// rate breach, is critical.
func (s *Store) CheckThresholds(goalPercent, maxEventRate float64) models.ThresholdCheck {
	metrics := s.Metrics()
	check := models.ThresholdCheck{
		Timestamp:          time.Now().UTC(),
		DepartmentsChecked: len(metrics),
	}

	for _, m := range metrics {
		if m.ProphylaxisRate < goalPercent {
			severity := models.SeverityCritical
			if m.ProphylaxisRate >= goalPercent-10 {
				severity = models.SeverityWarning
			}
			check.Alerts = append(check.Alerts, models.Alert{
				Department: m.Department,
				Metric:     "prophylaxis_rate",
				Value:      m.ProphylaxisRate,
				Goal:       goalPercent,
				Severity:   severity,
			})
		}
		if m.VTERate > maxEventRate {
			check.Alerts = append(check.Alerts, models.Alert{
				Department: m.Department,
				Metric:     "vte_rate",
				Value:      m.VTERate,
				Goal:       maxEventRate,
				Severity:   models.SeverityCritical,
			})
		}
	}
	return check
}

// WeeklyReport compiles overall performance for the seven days ending at now.
// The period bounds the report; the metrics cover the whole loaded dataset,
// matching what the dashboard displays.
func (s *Store) WeeklyReport(now time.Time, goalPercent float64) models.WeeklyReport {
	s.mu.RLock()
	total := len(s.records)
	var prophylaxis, events int
	for _, r := range s.records {
		if r.ProphylaxisGiven {
			prophylaxis++
		}
		if r.VTEEvent {
			events++
		}
	}
	s.mu.RUnlock()

	report := models.WeeklyReport{
		PeriodStart:   now.AddDate(0, 0, -7).Format("2006-01-02"),
		PeriodEnd:     now.Format("2006-01-02"),
		TotalPatients: total,
		VTEEvents:     events,
	}
	if total > 0 {
		report.OverallProphylaxis = 100 * float64(prophylaxis) / float64(total)
		report.VTEEventRate = 100 * float64(events) / float64(total)
	}

	for _, m := range s.Metrics() {
		if m.ProphylaxisRate < goalPercent {
			report.DepartmentsBelowGoal = append(report.DepartmentsBelowGoal, m.Department)
		} else {
			report.DepartmentsMeetingGoal = append(report.DepartmentsMeetingGoal, m.Department)
		}
	}
	return report
}
