package ingest

import "context"

// Repository persists projected rows. Every write has insert-or-skip
// semantics: re-ingesting an identical primary-keyed entity is a no-op,
// never an error and never a duplicate. Tables without a natural key
// (procedures, care plans, medication requests, immunizations, allergies)
// insert unconditionally; that duplicate-proneness is a documented property
// of the source schema.
type Repository interface {
	UpsertPatient(ctx context.Context, row *PatientRow) error
	UpsertEncounter(ctx context.Context, row *EncounterRow) error
	UpsertCondition(ctx context.Context, row *ConditionRow) error
	UpsertObservation(ctx context.Context, row *ObservationRow) error
	AddProcedure(ctx context.Context, row *ProcedureRow) error
	AddCarePlan(ctx context.Context, row *CarePlanRow) error
	AddMedicationRequest(ctx context.Context, row *MedicationRequestRow) error
	AddImmunization(ctx context.Context, row *ImmunizationRow) error
	AddAllergyIntolerance(ctx context.Context, row *AllergyIntoleranceRow) error
}
