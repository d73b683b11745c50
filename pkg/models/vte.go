package models

import "time"

// PatientRecord is one row of the VTE prevention dataset.
type PatientRecord struct {
	PatientID          string    `json:"patient_id"`
	AdmissionDate      time.Time `json:"admission_date"`
	DischargeDate      time.Time `json:"discharge_date"`
	Department         string    `json:"department"`
	AttendingPhysician string    `json:"attending_physician"`
	RiskScore          string    `json:"vte_risk_score"`
	ProphylaxisOrdered bool      `json:"prophylaxis_ordered"`
	ProphylaxisGiven   bool      `json:"prophylaxis_given"`
	ProphylaxisType    string    `json:"prophylaxis_type"`
	VTEEvent           bool      `json:"vte_event"`
	VTEType            string    `json:"vte_type,omitempty"`
	LengthOfStay       int       `json:"length_of_stay"`
	Age                int       `json:"age"`
}

// DepartmentMetrics summarizes VTE prevention performance for one department.
type DepartmentMetrics struct {
	Department      string  `json:"department"`
	Patients        int     `json:"patients"`
	ProphylaxisRate float64 `json:"prophylaxis_rate"`
	VTEEvents       int     `json:"vte_events"`
	VTERate         float64 `json:"vte_rate"`
}

// AlertSeverity classifies how far a metric is from its goal.
type AlertSeverity string

const (
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// Alert flags a department metric that missed a clinical goal.
type Alert struct {
	Department string        `json:"department"`
	Metric     string        `json:"metric"`
	Value      float64       `json:"value"`
	Goal       float64       `json:"goal"`
	Severity   AlertSeverity `json:"severity"`
}

// ThresholdCheck is the outcome of one alerting pass over all departments.
type ThresholdCheck struct {
	Timestamp          time.Time `json:"timestamp"`
	DepartmentsChecked int       `json:"departments_checked"`
	Alerts             []Alert   `json:"alerts"`
}

// WeeklyReport compiles a week of VTE performance for stakeholders.
type WeeklyReport struct {
	PeriodStart            string   `json:"period_start"`
	PeriodEnd              string   `json:"period_end"`
	TotalPatients          int      `json:"total_patients"`
	OverallProphylaxis     float64  `json:"overall_prophylaxis_rate"`
	VTEEvents              int      `json:"vte_events"`
	VTEEventRate           float64  `json:"vte_event_rate"`
	DepartmentsBelowGoal   []string `json:"departments_below_goal"`
	DepartmentsMeetingGoal []string `json:"departments_meeting_goal"`
}
