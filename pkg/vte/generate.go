package vte

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/clinsight-ai/clinsight/pkg/models"
)

// Department base prophylaxis rates, tuned so the generated dataset shows
// realistic variation with a couple of departments below the 85% goal.
var deptBaseRate = map[string]float64{
	"Medical ICU":      0.92,
	"Surgical ICU":     0.88,
	"General Medicine": 0.78,
	"Orthopedics":      0.95,
	"Cardiology":       0.85,
	"Oncology":         0.82,
	"Neurology":        0.80,
	"Emergency":        0.72,
}

var physicians = []string{
	"Dr. Smith", "Dr. Johnson", "Dr. Williams", "Dr. Brown", "Dr. Jones",
	"Dr. Garcia", "Dr. Miller", "Dr. Davis", "Dr. Rodriguez", "Dr. Martinez",
}

var prophylaxisTypes = []string{"Enoxaparin", "Heparin", "Mechanical"}

// Generate produces n synthetic patient records across the given departments,
// deterministic for a fixed seed. Departments without a tuned base rate get
// an 80% prophylaxis rate.
func Generate(n int, seed int64, departments []string, baseDate time.Time) []models.PatientRecord {
	rng := rand.New(rand.NewSource(seed))
	records := make([]models.PatientRecord, 0, n)

	for i := range n {
		dept := departments[rng.Intn(len(departments))]
		rate, ok := deptBaseRate[dept]
		if !ok {
			rate = 0.80
		}

		given := rng.Float64() < rate

		// VTE events are far more likely without prophylaxis.
		eventRate := 0.02
		if !given {
			eventRate = 0.08
		}
		event := rng.Float64() < eventRate

		admission := baseDate.AddDate(0, 0, rng.Intn(180))
		stay := 1 + rng.Intn(14)

		rec := models.PatientRecord{
			PatientID:          fmt.Sprintf("PT%d", 1000+i),
			AdmissionDate:      admission,
			DischargeDate:      admission.AddDate(0, 0, stay),
			Department:         dept,
			AttendingPhysician: physicians[rng.Intn(len(physicians))],
			RiskScore:          riskScore(rng),
			ProphylaxisOrdered: given,
			ProphylaxisGiven:   given,
			LengthOfStay:       stay,
			Age:                25 + rng.Intn(61),
		}
		if given {
			rec.ProphylaxisType = prophylaxisTypes[rng.Intn(len(prophylaxisTypes))]
		} else {
			rec.ProphylaxisType = "None"
		}
		if event {
			rec.VTEEvent = true
			if rng.Intn(2) == 0 {
				rec.VTEType = "DVT"
			} else {
				rec.VTEType = "PE"
			}
		}

		records = append(records, rec)
	}
	return records
}

// riskScore draws Low/Moderate/High with 30/45/25 weights.
func riskScore(rng *rand.Rand) string {
	switch v := rng.Float64(); {
	case v < 0.30:
		return "Low"
	case v < 0.75:
		return "Moderate"
	default:
		return "High"
	}
}
