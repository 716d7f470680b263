package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kulpsin/healthAssistant/internal/domain/chart"
)

type mockChartRepo struct {
	demographics  *chart.Demographics
	encounters    []chart.Encounter
	conditions    map[string][]chart.Condition
	observations  map[string][]chart.Observation
	procedures    map[string][]chart.Procedure
	carePlans     map[string][]chart.CarePlan
	immunizations map[string][]chart.Immunization
	medications   map[string][]chart.Medication
}

func (m *mockChartRepo) GetDemographics(_ context.Context, patientID string) (*chart.Demographics, error) {
	if m.demographics == nil || m.demographics.ID != patientID {
		return nil, chart.ErrNotFound
	}
	return m.demographics, nil
}

func (m *mockChartRepo) ListEncounters(_ context.Context, _ string) ([]chart.Encounter, error) {
	return m.encounters, nil
}

func (m *mockChartRepo) ListConditions(_ context.Context, _, encounterID string) ([]chart.Condition, error) {
	return m.conditions[encounterID], nil
}

func (m *mockChartRepo) ListObservations(_ context.Context, _, encounterID string) ([]chart.Observation, error) {
	return m.observations[encounterID], nil
}

func (m *mockChartRepo) ListProcedures(_ context.Context, _, encounterID, _ string) ([]chart.Procedure, error) {
	return m.procedures[encounterID], nil
}

func (m *mockChartRepo) ListCarePlans(_ context.Context, _, encounterID string) ([]chart.CarePlan, error) {
	return m.carePlans[encounterID], nil
}

func (m *mockChartRepo) ListImmunizations(_ context.Context, _, encounterID string) ([]chart.Immunization, error) {
	return m.immunizations[encounterID], nil
}

func (m *mockChartRepo) ListMedications(_ context.Context, _, encounterID string) ([]chart.Medication, error) {
	return m.medications[encounterID], nil
}

func (m *mockChartRepo) ListAllergies(_ context.Context, _ string, _ bool) ([]chart.Allergy, error) {
	return nil, nil
}

func newTestBuilder(repo *mockChartRepo) *Builder {
	return NewBuilder(chart.NewService(repo, zerolog.Nop()), zerolog.Nop())
}

func date(y int, mo time.Month, d, h, mi int) time.Time {
	return time.Date(y, mo, d, h, mi, 0, 0, time.UTC)
}

func TestPatientReport(t *testing.T) {
	died := date(2020, 3, 2, 0, 0)
	abated := date(2015, 6, 1, 10, 0)
	reason := "Pneumonia"
	repo := &mockChartRepo{
		demographics: &chart.Demographics{
			ID:          "p1",
			Gender:      "male",
			DateOfBirth: date(1950, 3, 1, 0, 0),
			DeceasedAt:  &died,
		},
		encounters: []chart.Encounter{
			{
				ID:          "e1",
				Class:       "outpatient",
				Type:        "Encounter for check up",
				PeriodStart: date(2015, 5, 1, 9, 0),
				PeriodEnd:   date(2015, 5, 1, 9, 30),
				Duration:    30 * time.Minute,
			},
			{
				ID:          "e2",
				Class:       "inpatient",
				Type:        "Hospital admission",
				PeriodStart: date(2016, 1, 1, 8, 0),
				PeriodEnd:   date(2016, 1, 2, 10, 30),
				Duration:    26*time.Hour + 30*time.Minute,
				Reason:      &reason,
			},
		},
		conditions: map[string][]chart.Condition{
			"e1": {{Display: "Acute bronchitis", AbatementDate: &abated}},
		},
		observations: map[string][]chart.Observation{
			"e1": {{Components: []chart.Component{
				{Display: "Systolic Blood Pressure", Value: 120, Unit: "mmHg"},
				{Display: "Diastolic Blood Pressure", Value: 80, Unit: "mmHg"},
			}}},
		},
		procedures: map[string][]chart.Procedure{
			"e2": {{Display: "Chest X-ray"}},
		},
		carePlans: map[string][]chart.CarePlan{
			"e2": {{Details: "Diet and Education", Status: "active"}},
		},
		immunizations: map[string][]chart.Immunization{
			"e2": {{Display: "Influenza vaccine"}},
		},
		medications: map[string][]chart.Medication{
			"e2": {{Display: "Amoxicillin"}},
		},
	}

	got, err := newTestBuilder(repo).PatientReport(context.Background(), "p1")
	if err != nil {
		t.Fatalf("PatientReport: %v", err)
	}

	want := strings.Join([]string{
		"Patient is 70 year old male.",
		"**Date of Birth:** 1950-03-01 00:00:00",
		"",
		"## Medical encounters",
		"### Outpatient - Encounter for check up",
		"- **Date**: 2015-05-01 09:00:00",
		"- **Reason**: Not specified",
		"- **Conditions confirmed:** Acute bronchitis (until 2015-06-01 10:00:00)",
		"- **Observations**:",
		"  - Systolic Blood Pressure: 120 mmHg",
		"  - Diastolic Blood Pressure: 80 mmHg",
		"",
		"### Inpatient - Hospital admission",
		"- **Date**: 2016-01-01 08:00:00",
		"- **Duration**: 1 day, 2:30:00",
		"- **Reason**: Pneumonia",
		"- **Procedures**:",
		"  - Chest X-ray",
		"- **Care Plans**:",
		"  - Diet and Education (Status: active)",
		"- **Immunizations**:",
		"  - Influenza vaccine",
		"- **Medications**:",
		"  - Amoxicillin",
		"",
	}, "\n")

	if got != want {
		t.Errorf("report mismatch:\n--- got ---\n%s\n--- want ---\n%s", got, want)
	}
}

func TestPatientReportHourLongEncounterShowsDuration(t *testing.T) {
	repo := &mockChartRepo{
		demographics: &chart.Demographics{ID: "p1", Gender: "female", DateOfBirth: date(1990, 1, 1, 0, 0)},
		encounters: []chart.Encounter{{
			ID:          "e1",
			Class:       "ambulatory",
			Type:        "Consultation",
			PeriodStart: date(2015, 5, 1, 9, 0),
			PeriodEnd:   date(2015, 5, 1, 10, 0),
			Duration:    time.Hour,
		}},
	}

	got, err := newTestBuilder(repo).PatientReport(context.Background(), "p1")
	if err != nil {
		t.Fatalf("PatientReport: %v", err)
	}
	if !strings.Contains(got, "- **Duration**: 1:00:00") {
		t.Errorf("exactly one hour should be shown:\n%s", got)
	}
}

func TestPatientReportUnknownPatient(t *testing.T) {
	_, err := newTestBuilder(&mockChartRepo{}).PatientReport(context.Background(), "nope")
	if !errors.Is(err, chart.ErrNotFound) {
		t.Fatalf("error = %v, want chart.ErrNotFound", err)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{90 * time.Minute, "1:30:00"},
		{time.Hour, "1:00:00"},
		{26*time.Hour + 30*time.Minute, "1 day, 2:30:00"},
		{49 * time.Hour, "2 days, 1:00:00"},
	}
	for _, tc := range cases {
		if got := formatDuration(tc.d); got != tc.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}
