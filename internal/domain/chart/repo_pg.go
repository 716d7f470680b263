package chart

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/kulpsin/healthAssistant/internal/platform/db"
)

type repoPG struct {
	gw *db.Gateway
}

func NewRepo(gw *db.Gateway) Repository {
	return &repoPG{gw: gw}
}

// whereClause builds an additive AND predicate from column/value pairs,
// skipping empty values. Pairs must alternate column, value.
func whereClause(pairs ...string) (string, []any) {
	var conds []string
	var args []any
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			continue
		}
		args = append(args, pairs[i+1])
		conds = append(conds, fmt.Sprintf("%s = $%d", pairs[i], len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *repoPG) GetDemographics(ctx context.Context, patientID string) (*Demographics, error) {
	var d Demographics
	found := false
	err := r.gw.Query(ctx, `
		SELECT id, gender, date_of_birth, deceased_at, email
		FROM patients
		WHERE id = $1`,
		func(rows pgx.Rows) error {
			if !rows.Next() {
				return nil
			}
			found = true
			return rows.Scan(&d.ID, &d.Gender, &d.DateOfBirth, &d.DeceasedAt, &d.Email)
		},
		patientID,
	)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("patient %q: %w", patientID, ErrNotFound)
	}
	return &d, nil
}

func (r *repoPG) ListEncounters(ctx context.Context, patientID string) ([]Encounter, error) {
	var out []Encounter
	err := r.gw.Query(ctx, `
		SELECT id, status, class, type, period_start, period_end, reason_display
		FROM encounters
		WHERE patient_id = $1
		ORDER BY period_start`,
		func(rows pgx.Rows) error {
			for rows.Next() {
				var e Encounter
				if err := rows.Scan(&e.ID, &e.Status, &e.Class, &e.Type, &e.PeriodStart, &e.PeriodEnd, &e.Reason); err != nil {
					return err
				}
				e.Duration = e.PeriodEnd.Sub(e.PeriodStart)
				out = append(out, e)
			}
			return nil
		},
		patientID,
	)
	return out, err
}

func (r *repoPG) ListConditions(ctx context.Context, patientID, encounterID string) ([]Condition, error) {
	where, args := whereClause("patient_id", patientID, "encounter_id", encounterID)
	var out []Condition
	err := r.gw.Query(ctx, `
		SELECT id, clinical_status, verification_status, onset_date, abatement_date, code_display
		FROM conditions`+where+`
		ORDER BY onset_date`,
		func(rows pgx.Rows) error {
			for rows.Next() {
				var c Condition
				if err := rows.Scan(&c.ID, &c.ClinicalStatus, &c.VerificationStatus, &c.OnsetDate, &c.AbatementDate, &c.Display); err != nil {
					return err
				}
				out = append(out, c)
			}
			return nil
		},
		args...,
	)
	return out, err
}

func (r *repoPG) ListObservations(ctx context.Context, patientID, encounterID string) ([]Observation, error) {
	where, args := whereClause("patient_id", patientID, "encounter_id", encounterID)
	var out []Observation
	err := r.gw.Query(ctx, `
		SELECT id, observation_date, status, display, value, unit
		FROM observations`+where+`
		ORDER BY observation_date`,
		func(rows pgx.Rows) error {
			for rows.Next() {
				var o Observation
				var display, unit []string
				var value []float64
				if err := rows.Scan(&o.ID, &o.Date, &o.Status, &display, &value, &unit); err != nil {
					return err
				}
				if len(display) != len(value) || len(value) != len(unit) {
					return fmt.Errorf("observation %s: component arrays of unequal length", o.ID)
				}
				for i := range display {
					o.Components = append(o.Components, Component{Display: display[i], Value: value[i], Unit: unit[i]})
				}
				out = append(out, o)
			}
			return nil
		},
		args...,
	)
	return out, err
}

func (r *repoPG) ListProcedures(ctx context.Context, patientID, encounterID, conditionID string) ([]Procedure, error) {
	where, args := whereClause("patient_id", patientID, "encounter_id", encounterID, "condition_id", conditionID)
	var out []Procedure
	err := r.gw.Query(ctx, `
		SELECT condition_id, status, performed_date, performed_date_end, code_display
		FROM procedures`+where+`
		ORDER BY performed_date`,
		func(rows pgx.Rows) error {
			for rows.Next() {
				var p Procedure
				if err := rows.Scan(&p.ConditionID, &p.Status, &p.PerformedDate, &p.PerformedDateEnd, &p.Display); err != nil {
					return err
				}
				out = append(out, p)
			}
			return nil
		},
		args...,
	)
	return out, err
}

func (r *repoPG) ListCarePlans(ctx context.Context, patientID, encounterID string) ([]CarePlan, error) {
	where, args := whereClause("patient_id", patientID, "encounter_id", encounterID)
	var out []CarePlan
	err := r.gw.Query(ctx, `
		SELECT status, category_display, period_start_date, period_end_date, details
		FROM care_plans`+where+`
		ORDER BY period_start_date`,
		func(rows pgx.Rows) error {
			for rows.Next() {
				var cp CarePlan
				if err := rows.Scan(&cp.Status, &cp.CategoryDisplay, &cp.PeriodStart, &cp.PeriodEnd, &cp.Details); err != nil {
					return err
				}
				out = append(out, cp)
			}
			return nil
		},
		args...,
	)
	return out, err
}

func (r *repoPG) ListImmunizations(ctx context.Context, patientID, encounterID string) ([]Immunization, error) {
	where, args := whereClause("patient_id", patientID, "encounter_id", encounterID)
	if where == "" {
		where = " WHERE was_given IS TRUE"
	} else {
		where += " AND was_given IS TRUE"
	}
	var out []Immunization
	err := r.gw.Query(ctx, `
		SELECT date, status, vaccine_display
		FROM immunizations`+where+`
		ORDER BY date`,
		func(rows pgx.Rows) error {
			for rows.Next() {
				var im Immunization
				if err := rows.Scan(&im.Date, &im.Status, &im.Display); err != nil {
					return err
				}
				out = append(out, im)
			}
			return nil
		},
		args...,
	)
	return out, err
}

func (r *repoPG) ListMedications(ctx context.Context, patientID, encounterID string) ([]Medication, error) {
	where, args := whereClause("patient_id", patientID, "encounter_id", encounterID)
	var out []Medication
	err := r.gw.Query(ctx, `
		SELECT date_written, medication_display, dosage_instruction
		FROM medication_requests`+where+`
		ORDER BY date_written`,
		func(rows pgx.Rows) error {
			for rows.Next() {
				var m Medication
				if err := rows.Scan(&m.DateWritten, &m.Display, &m.DosageInstruction); err != nil {
					return err
				}
				out = append(out, m)
			}
			return nil
		},
		args...,
	)
	return out, err
}

func (r *repoPG) ListAllergies(ctx context.Context, patientID string, onlyActive bool) ([]Allergy, error) {
	where := " WHERE patient_id = $1 AND type = 'allergy'"
	if onlyActive {
		where += " AND clinical_status = 'active'"
	}
	var out []Allergy
	err := r.gw.Query(ctx, `
		SELECT asserted_date, clinical_status, type, category, criticality, display
		FROM allergy_intolerances`+where+`
		ORDER BY asserted_date`,
		func(rows pgx.Rows) error {
			for rows.Next() {
				var a Allergy
				if err := rows.Scan(&a.AssertedDate, &a.ClinicalStatus, &a.Type, &a.Category, &a.Criticality, &a.Display); err != nil {
					return err
				}
				out = append(out, a)
			}
			return nil
		},
		patientID,
	)
	return out, err
}
