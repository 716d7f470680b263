package chart

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a patient id resolves to nothing.
var ErrNotFound = errors.New("not found")

// Repository composes read queries over the normalized store. Optional
// filters take the empty string for "no filter"; ids are opaque, so the zero
// value never collides with a real one. Every list comes back in ascending
// order of its natural temporal column, so results are stable across calls.
type Repository interface {
	GetDemographics(ctx context.Context, patientID string) (*Demographics, error)
	ListEncounters(ctx context.Context, patientID string) ([]Encounter, error)
	ListConditions(ctx context.Context, patientID, encounterID string) ([]Condition, error)
	ListObservations(ctx context.Context, patientID, encounterID string) ([]Observation, error)
	ListProcedures(ctx context.Context, patientID, encounterID, conditionID string) ([]Procedure, error)
	ListCarePlans(ctx context.Context, patientID, encounterID string) ([]CarePlan, error)
	ListImmunizations(ctx context.Context, patientID, encounterID string) ([]Immunization, error)
	ListMedications(ctx context.Context, patientID, encounterID string) ([]Medication, error)
	ListAllergies(ctx context.Context, patientID string, onlyActive bool) ([]Allergy, error)
}
