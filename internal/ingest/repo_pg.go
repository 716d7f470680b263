package ingest

import (
	"context"

	"github.com/kulpsin/healthAssistant/internal/platform/db"
)

type repoPG struct {
	gw *db.Gateway
}

// NewRepo returns a Repository backed by the storage gateway. All statements
// go through the gateway so its transaction and retry semantics apply
// uniformly.
func NewRepo(gw *db.Gateway) Repository {
	return &repoPG{gw: gw}
}

func (r *repoPG) UpsertPatient(ctx context.Context, row *PatientRow) error {
	return r.gw.Exec(ctx, `
		INSERT INTO patients (id, date_of_birth, deceased_at, gender, email)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT DO NOTHING`,
		row.ID, row.DateOfBirth, row.DeceasedAt, row.Gender, row.Email,
	)
}

func (r *repoPG) UpsertEncounter(ctx context.Context, row *EncounterRow) error {
	return r.gw.Exec(ctx, `
		INSERT INTO encounters (id, patient_id, status, class, type, period_start, period_end, reason_display)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT DO NOTHING`,
		row.ID, row.PatientID, row.Status, row.Class, row.Type, row.PeriodStart, row.PeriodEnd, row.ReasonDisplay,
	)
}

func (r *repoPG) UpsertCondition(ctx context.Context, row *ConditionRow) error {
	return r.gw.Exec(ctx, `
		INSERT INTO conditions (id, patient_id, encounter_id, clinical_status, verification_status, onset_date, abatement_date, code_display)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT DO NOTHING`,
		row.ID, row.PatientID, row.EncounterID, row.ClinicalStatus, row.VerificationStatus, row.OnsetDate, row.AbatementDate, row.CodeDisplay,
	)
}

func (r *repoPG) UpsertObservation(ctx context.Context, row *ObservationRow) error {
	return r.gw.Exec(ctx, `
		INSERT INTO observations (id, patient_id, encounter_id, observation_date, status, display, value, unit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT DO NOTHING`,
		row.ID, row.PatientID, row.EncounterID, row.ObservationDate, row.Status, row.Display, row.Value, row.Unit,
	)
}

func (r *repoPG) AddProcedure(ctx context.Context, row *ProcedureRow) error {
	return r.gw.Exec(ctx, `
		INSERT INTO procedures (patient_id, encounter_id, condition_id, status, performed_date, performed_date_end, code_display)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT DO NOTHING`,
		row.PatientID, row.EncounterID, row.ConditionID, row.Status, row.PerformedDate, row.PerformedDateEnd, row.CodeDisplay,
	)
}

func (r *repoPG) AddCarePlan(ctx context.Context, row *CarePlanRow) error {
	return r.gw.Exec(ctx, `
		INSERT INTO care_plans (patient_id, encounter_id, status, category_display, period_start_date, period_end_date, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT DO NOTHING`,
		row.PatientID, row.EncounterID, row.Status, row.CategoryDisplay, row.PeriodStartDate, row.PeriodEndDate, row.Details,
	)
}

func (r *repoPG) AddMedicationRequest(ctx context.Context, row *MedicationRequestRow) error {
	return r.gw.Exec(ctx, `
		INSERT INTO medication_requests (patient_id, encounter_id, date_written, medication_display, dosage_instruction)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT DO NOTHING`,
		row.PatientID, row.EncounterID, row.DateWritten, row.MedicationDisplay, row.DosageInstruction,
	)
}

func (r *repoPG) AddImmunization(ctx context.Context, row *ImmunizationRow) error {
	return r.gw.Exec(ctx, `
		INSERT INTO immunizations (patient_id, encounter_id, date, status, vaccine_display, was_given, primary_source)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT DO NOTHING`,
		row.PatientID, row.EncounterID, row.Date, row.Status, row.VaccineDisplay, row.WasGiven, row.PrimarySource,
	)
}

func (r *repoPG) AddAllergyIntolerance(ctx context.Context, row *AllergyIntoleranceRow) error {
	return r.gw.Exec(ctx, `
		INSERT INTO allergy_intolerances (patient_id, asserted_date, clinical_status, type, category, criticality, display)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT DO NOTHING`,
		row.PatientID, row.AssertedDate, row.ClinicalStatus, row.Type, row.Category, row.Criticality, row.Display,
	)
}
