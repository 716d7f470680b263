package ingest

import "time"

// Normalized row-sets emitted by the projection dispatcher, one struct per
// table. All instants are already timezone-stripped and date-shifted.

type PatientRow struct {
	ID          string
	Gender      string
	DateOfBirth time.Time
	DeceasedAt  *time.Time
	Email       string
}

type EncounterRow struct {
	ID            string
	PatientID     string
	Status        string
	Class         string
	Type          string
	PeriodStart   time.Time
	PeriodEnd     time.Time
	ReasonDisplay *string
}

type ConditionRow struct {
	ID                 string
	PatientID          string
	EncounterID        string
	ClinicalStatus     string
	VerificationStatus string
	OnsetDate          time.Time
	AbatementDate      *time.Time
	CodeDisplay        string
}

// ObservationRow bundles the component measurements of one observation as
// positionally aligned parallel arrays of equal length.
type ObservationRow struct {
	ID              string
	PatientID       string
	EncounterID     string
	ObservationDate time.Time
	Status          string
	Display         []string
	Value           []float64
	Unit            []string
}

type ProcedureRow struct {
	PatientID        string
	EncounterID      string
	ConditionID      *string
	Status           string
	PerformedDate    time.Time
	PerformedDateEnd *time.Time
	CodeDisplay      string
}

type CarePlanRow struct {
	PatientID       string
	EncounterID     string
	Status          string
	CategoryDisplay string
	PeriodStartDate time.Time
	PeriodEndDate   *time.Time
	Details         string
}

type MedicationRequestRow struct {
	PatientID         string
	EncounterID       string
	DateWritten       time.Time
	MedicationDisplay string
	DosageInstruction *string
}

type ImmunizationRow struct {
	PatientID      string
	EncounterID    string
	Date           time.Time
	Status         string
	VaccineDisplay string
	WasGiven       bool
	PrimarySource  bool
}

type AllergyIntoleranceRow struct {
	PatientID      string
	AssertedDate   time.Time
	ClinicalStatus string
	Type           string
	Category       string
	Criticality    string
	Display        string
}
