package chart

import "time"

// Read-side views over the normalized store. These are the shapes the
// narrative report and the chart endpoints consume; all instants come back
// already date-shifted, exactly as stored.

type Demographics struct {
	ID          string     `json:"id"`
	Gender      string     `json:"gender"`
	DateOfBirth time.Time  `json:"date_of_birth"`
	DeceasedAt  *time.Time `json:"deceased_at,omitempty"`
	Email       string     `json:"email"`
}

type Encounter struct {
	ID          string        `json:"id"`
	Status      string        `json:"status"`
	Class       string        `json:"class"`
	Type        string        `json:"type"`
	PeriodStart time.Time     `json:"period_start"`
	PeriodEnd   time.Time     `json:"period_end"`
	Duration    time.Duration `json:"-"`
	Reason      *string       `json:"reason,omitempty"`
}

type Condition struct {
	ID                 string     `json:"id"`
	ClinicalStatus     string     `json:"clinical_status"`
	VerificationStatus string     `json:"verification_status"`
	OnsetDate          time.Time  `json:"onset_date"`
	AbatementDate      *time.Time `json:"abatement_date,omitempty"`
	Display            string     `json:"display"`
}

// Component is one labeled measurement of an observation. Multi-component
// observations carry several; scalar ones carry exactly one.
type Component struct {
	Display string  `json:"display"`
	Value   float64 `json:"value"`
	Unit    string  `json:"unit"`
}

type Observation struct {
	ID         string      `json:"id"`
	Date       time.Time   `json:"date"`
	Status     string      `json:"status"`
	Components []Component `json:"components"`
}

type Procedure struct {
	ConditionID      *string    `json:"condition_id,omitempty"`
	Status           string     `json:"status"`
	PerformedDate    time.Time  `json:"performed_date"`
	PerformedDateEnd *time.Time `json:"performed_date_end,omitempty"`
	Display          string     `json:"display"`
}

type CarePlan struct {
	Status          string     `json:"status"`
	CategoryDisplay string     `json:"category_display"`
	PeriodStart     time.Time  `json:"period_start"`
	PeriodEnd       *time.Time `json:"period_end,omitempty"`
	Details         string     `json:"details"`
}

type Immunization struct {
	Date    time.Time `json:"date"`
	Status  string    `json:"status"`
	Display string    `json:"display"`
}

type Medication struct {
	DateWritten       time.Time `json:"date_written"`
	Display           string    `json:"display"`
	DosageInstruction *string   `json:"dosage_instruction,omitempty"`
}

type Allergy struct {
	AssertedDate   time.Time `json:"asserted_date"`
	ClinicalStatus string    `json:"clinical_status"`
	Type           string    `json:"type"`
	Category       string    `json:"category"`
	Criticality    string    `json:"criticality"`
	Display        string    `json:"display"`
}
