package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Service is the resource projection dispatcher: it walks a bundle entry by
// entry, dispatches on the resourceType tag and projects each entry into one
// normalized row-set. Ingestion is fail-fast: the first unsupported or
// malformed entry aborts the rest of the bundle and is surfaced to the
// caller as a single error.
type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// The closed set of resource kinds this engine understands. Anything else is
// rejected rather than guessed at.
var handledKinds = map[string]struct{}{
	"Patient":            {},
	"Encounter":          {},
	"Observation":        {},
	"Condition":          {},
	"Procedure":          {},
	"DiagnosticReport":   {},
	"Immunization":       {},
	"CarePlan":           {},
	"MedicationRequest":  {},
	"AllergyIntolerance": {},
}

// IndexBundle validates and projects every entry of a bundle. A preflight
// pass checks that all kinds are recognized and that every cross-reference
// resolves to an entity declared somewhere in the bundle, so projection never
// depends on entry order and nothing is written for a bundle that would fail
// halfway through on a structural problem.
func (s *Service) IndexBundle(ctx context.Context, entries []Entry) error {
	if err := s.preflight(entries); err != nil {
		return err
	}

	for i, entry := range entries {
		var tag resourceTag
		if err := json.Unmarshal(entry.Resource, &tag); err != nil {
			return fmt.Errorf("entry %d: decode resource: %w", i, err)
		}
		if err := s.indexEntry(ctx, tag.ResourceType, entry.Resource); err != nil {
			return fmt.Errorf("entry %d (%s): %w", i, tag.ResourceType, err)
		}
	}

	s.log.Info().Int("entries", len(entries)).Msg("bundle indexed")
	return nil
}

// entryRefs is the union of every cross-reference field a handled resource
// kind can carry; used only by the preflight pass.
type entryRefs struct {
	Patient         *reference `json:"patient"`
	Subject         *reference `json:"subject"`
	Context         *reference `json:"context"`
	Encounter       *reference `json:"encounter"`
	ReasonReference *reference `json:"reasonReference"`
}

func (s *Service) preflight(entries []Entry) error {
	patients := make(map[string]struct{})
	encounters := make(map[string]struct{})
	conditions := make(map[string]struct{})

	kinds := make([]string, len(entries))
	for i, entry := range entries {
		var tag resourceTag
		if err := json.Unmarshal(entry.Resource, &tag); err != nil {
			return fmt.Errorf("entry %d: decode resource: %w", i, err)
		}
		if _, ok := handledKinds[tag.ResourceType]; !ok {
			return fmt.Errorf("entry %d: %w: %q", i, ErrUnrecognizedKind, tag.ResourceType)
		}
		kinds[i] = tag.ResourceType
		switch tag.ResourceType {
		case "Patient":
			patients[tag.ID] = struct{}{}
		case "Encounter":
			encounters[tag.ID] = struct{}{}
		case "Condition":
			conditions[tag.ID] = struct{}{}
		}
	}

	check := func(i int, ref *reference, declared map[string]struct{}, target string) error {
		if ref == nil {
			return nil
		}
		id, err := RefID(ref.Reference)
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		if _, ok := declared[id]; !ok {
			return fmt.Errorf("entry %d: %w: %s %q is not declared by this bundle", i, ErrDanglingReference, target, id)
		}
		return nil
	}

	for i, entry := range entries {
		if kinds[i] == "DiagnosticReport" {
			// Projects no rows, so its references are never read.
			continue
		}
		var refs entryRefs
		if err := json.Unmarshal(entry.Resource, &refs); err != nil {
			return fmt.Errorf("entry %d: decode references: %w", i, err)
		}
		if err := check(i, refs.Patient, patients, "patient"); err != nil {
			return err
		}
		if err := check(i, refs.Subject, patients, "patient"); err != nil {
			return err
		}
		if err := check(i, refs.Context, encounters, "encounter"); err != nil {
			return err
		}
		if err := check(i, refs.Encounter, encounters, "encounter"); err != nil {
			return err
		}
		if err := check(i, refs.ReasonReference, conditions, "condition"); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) indexEntry(ctx context.Context, kind string, raw json.RawMessage) error {
	switch kind {
	case "Patient":
		return s.indexPatient(ctx, raw)
	case "Encounter":
		return s.indexEncounter(ctx, raw)
	case "Observation":
		return s.indexObservation(ctx, raw)
	case "Condition":
		return s.indexCondition(ctx, raw)
	case "Procedure":
		return s.indexProcedure(ctx, raw)
	case "DiagnosticReport":
		// Carries nothing the schema models. Skipping is deliberate.
		s.log.Debug().Msg("skipping DiagnosticReport entry")
		return nil
	case "Immunization":
		return s.indexImmunization(ctx, raw)
	case "CarePlan":
		return s.indexCarePlan(ctx, raw)
	case "MedicationRequest":
		return s.indexMedicationRequest(ctx, raw)
	case "AllergyIntolerance":
		return s.indexAllergyIntolerance(ctx, raw)
	}
	return fmt.Errorf("%w: %q", ErrUnrecognizedKind, kind)
}

func (s *Service) indexPatient(ctx context.Context, raw json.RawMessage) error {
	var res patientResource
	if err := json.Unmarshal(raw, &res); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	birth, err := NormalizeInstant(res.BirthDate)
	if err != nil {
		return fmt.Errorf("birthDate: %w", err)
	}
	deceased, err := NormalizeOptionalInstant(res.DeceasedDateTime)
	if err != nil {
		return fmt.Errorf("deceasedDateTime: %w", err)
	}
	if len(res.Name) == 0 || len(res.Name[0].Given) == 0 || res.Name[0].Family == "" {
		return fmt.Errorf("%w: patient %q has no given and family name to derive an email from", ErrUnsupportedVariant, res.ID)
	}

	return s.repo.UpsertPatient(ctx, &PatientRow{
		ID:          res.ID,
		Gender:      res.Gender,
		DateOfBirth: birth,
		DeceasedAt:  deceased,
		Email:       fmt.Sprintf("%s.%s@localhost", res.Name[0].Given[0], res.Name[0].Family),
	})
}

func (s *Service) indexEncounter(ctx context.Context, raw json.RawMessage) error {
	var res encounterResource
	if err := json.Unmarshal(raw, &res); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	patientID, err := RefID(res.Patient.Reference)
	if err != nil {
		return err
	}
	start, err := NormalizeInstant(res.Period.Start)
	if err != nil {
		return fmt.Errorf("period.start: %w", err)
	}
	if res.Period.End == nil {
		return fmt.Errorf("%w: encounter without period end", ErrUnsupportedVariant)
	}
	end, err := NormalizeInstant(*res.Period.End)
	if err != nil {
		return fmt.Errorf("period.end: %w", err)
	}
	if len(res.Type) == 0 {
		return fmt.Errorf("%w: encounter without type", ErrUnsupportedVariant)
	}

	var reason *string
	if res.Reason != nil && len(res.Reason.Coding) > 0 {
		reason = &res.Reason.Coding[0].Display
	}

	return s.repo.UpsertEncounter(ctx, &EncounterRow{
		ID:            res.ID,
		PatientID:     patientID,
		Status:        res.Status,
		Class:         res.Class.Code,
		Type:          res.Type[0].Text,
		PeriodStart:   start,
		PeriodEnd:     end,
		ReasonDisplay: reason,
	})
}

func (s *Service) indexObservation(ctx context.Context, raw json.RawMessage) error {
	var res observationResource
	if err := json.Unmarshal(raw, &res); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	patientID, err := RefID(res.Subject.Reference)
	if err != nil {
		return err
	}
	encounterID, err := RefID(res.Encounter.Reference)
	if err != nil {
		return err
	}
	date, err := NormalizeInstant(res.EffectiveDateTime)
	if err != nil {
		return fmt.Errorf("effectiveDateTime: %w", err)
	}

	// Multi-component observations fan out into parallel arrays, one slot
	// per component in source order; a single scalar value becomes a
	// one-slot triple. Anything else is rejected, never dropped.
	var display []string
	var value []float64
	var unit []string
	switch {
	case len(res.Component) > 0:
		for _, comp := range res.Component {
			if len(comp.Code.Coding) == 0 || comp.ValueQuantity == nil {
				return fmt.Errorf("%w: observation component without coded quantity", ErrUnsupportedVariant)
			}
			display = append(display, comp.Code.Coding[0].Display)
			value = append(value, comp.ValueQuantity.Value)
			unit = append(unit, comp.ValueQuantity.Unit)
		}
	case res.ValueQuantity != nil:
		if len(res.Code.Coding) == 0 {
			return fmt.Errorf("%w: observation without coded display", ErrUnsupportedVariant)
		}
		display = []string{res.Code.Coding[0].Display}
		value = []float64{res.ValueQuantity.Value}
		unit = []string{res.ValueQuantity.Unit}
	default:
		return fmt.Errorf("%w: observation value shape", ErrUnsupportedVariant)
	}

	return s.repo.UpsertObservation(ctx, &ObservationRow{
		ID:              res.ID,
		PatientID:       patientID,
		EncounterID:     encounterID,
		ObservationDate: date,
		Status:          res.Status,
		Display:         display,
		Value:           value,
		Unit:            unit,
	})
}

func (s *Service) indexCondition(ctx context.Context, raw json.RawMessage) error {
	var res conditionResource
	if err := json.Unmarshal(raw, &res); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	patientID, err := RefID(res.Subject.Reference)
	if err != nil {
		return err
	}
	encounterID, err := RefID(res.Context.Reference)
	if err != nil {
		return err
	}
	onset, err := NormalizeInstant(res.OnsetDateTime)
	if err != nil {
		return fmt.Errorf("onsetDateTime: %w", err)
	}
	abatement, err := NormalizeOptionalInstant(res.AbatementDateTime)
	if err != nil {
		return fmt.Errorf("abatementDateTime: %w", err)
	}
	if len(res.Code.Coding) == 0 {
		return fmt.Errorf("%w: condition without coded display", ErrUnsupportedVariant)
	}

	return s.repo.UpsertCondition(ctx, &ConditionRow{
		ID:                 res.ID,
		PatientID:          patientID,
		EncounterID:        encounterID,
		ClinicalStatus:     res.ClinicalStatus,
		VerificationStatus: res.VerificationStatus,
		OnsetDate:          onset,
		AbatementDate:      abatement,
		CodeDisplay:        res.Code.Coding[0].Display,
	})
}

func (s *Service) indexProcedure(ctx context.Context, raw json.RawMessage) error {
	var res procedureResource
	if err := json.Unmarshal(raw, &res); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	patientID, err := RefID(res.Subject.Reference)
	if err != nil {
		return err
	}
	encounterID, err := RefID(res.Encounter.Reference)
	if err != nil {
		return err
	}
	var conditionID *string
	if res.ReasonReference != nil {
		id, err := RefID(res.ReasonReference.Reference)
		if err != nil {
			return err
		}
		conditionID = &id
	}

	// Either a point-in-time performedDateTime or a performedPeriod with a
	// start and an optional end.
	var performed time.Time
	var performedEnd *time.Time
	switch {
	case res.PerformedDateTime != nil:
		if performed, err = NormalizeInstant(*res.PerformedDateTime); err != nil {
			return fmt.Errorf("performedDateTime: %w", err)
		}
	case res.PerformedPeriod != nil:
		if performed, err = NormalizeInstant(res.PerformedPeriod.Start); err != nil {
			return fmt.Errorf("performedPeriod.start: %w", err)
		}
		if performedEnd, err = NormalizeOptionalInstant(res.PerformedPeriod.End); err != nil {
			return fmt.Errorf("performedPeriod.end: %w", err)
		}
	default:
		return fmt.Errorf("%w: procedure without performed date or period", ErrUnsupportedVariant)
	}
	if len(res.Code.Coding) == 0 {
		return fmt.Errorf("%w: procedure without coded display", ErrUnsupportedVariant)
	}

	return s.repo.AddProcedure(ctx, &ProcedureRow{
		PatientID:        patientID,
		EncounterID:      encounterID,
		ConditionID:      conditionID,
		Status:           res.Status,
		PerformedDate:    performed,
		PerformedDateEnd: performedEnd,
		CodeDisplay:      res.Code.Coding[0].Display,
	})
}

func (s *Service) indexImmunization(ctx context.Context, raw json.RawMessage) error {
	var res immunizationResource
	if err := json.Unmarshal(raw, &res); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	patientID, err := RefID(res.Patient.Reference)
	if err != nil {
		return err
	}
	encounterID, err := RefID(res.Encounter.Reference)
	if err != nil {
		return err
	}
	date, err := NormalizeInstant(res.Date)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}
	if len(res.VaccineCode.Coding) == 0 {
		return fmt.Errorf("%w: immunization without coded vaccine", ErrUnsupportedVariant)
	}

	return s.repo.AddImmunization(ctx, &ImmunizationRow{
		PatientID:      patientID,
		EncounterID:    encounterID,
		Date:           date,
		Status:         res.Status,
		VaccineDisplay: res.VaccineCode.Coding[0].Display,
		WasGiven:       !res.WasNotGiven,
		PrimarySource:  res.PrimarySource,
	})
}

func (s *Service) indexCarePlan(ctx context.Context, raw json.RawMessage) error {
	var res carePlanResource
	if err := json.Unmarshal(raw, &res); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	patientID, err := RefID(res.Subject.Reference)
	if err != nil {
		return err
	}
	encounterID, err := RefID(res.Context.Reference)
	if err != nil {
		return err
	}

	var labels []string
	for _, activity := range res.Activity {
		status := activity.Detail.Status
		if status != "in-progress" && status != "completed" {
			return fmt.Errorf("%w: care plan activity status %q", ErrUnsupportedVariant, status)
		}
		if len(activity.Detail.Code.Coding) == 0 {
			return fmt.Errorf("%w: care plan activity without coded display", ErrUnsupportedVariant)
		}
		labels = append(labels, activity.Detail.Code.Coding[0].Display)
	}
	if len(labels) == 0 {
		return fmt.Errorf("%w: care plan without activities", ErrUnsupportedVariant)
	}
	if len(res.Category) == 0 || len(res.Category[0].Coding) == 0 {
		return fmt.Errorf("%w: care plan without coded category", ErrUnsupportedVariant)
	}

	start, err := NormalizeInstant(res.Period.Start)
	if err != nil {
		return fmt.Errorf("period.start: %w", err)
	}
	end, err := NormalizeOptionalInstant(res.Period.End)
	if err != nil {
		return fmt.Errorf("period.end: %w", err)
	}

	return s.repo.AddCarePlan(ctx, &CarePlanRow{
		PatientID:       patientID,
		EncounterID:     encounterID,
		Status:          res.Status,
		CategoryDisplay: res.Category[0].Coding[0].Display,
		PeriodStartDate: start,
		PeriodEndDate:   end,
		Details:         joinActivities(labels),
	})
}

// joinActivities renders activity labels as natural language: a single label
// stands alone, two or more become "A, B and C".
func joinActivities(labels []string) string {
	if len(labels) == 1 {
		return labels[0]
	}
	return strings.Join(labels[:len(labels)-1], ", ") + " and " + labels[len(labels)-1]
}

func (s *Service) indexMedicationRequest(ctx context.Context, raw json.RawMessage) error {
	var res medicationRequestResource
	if err := json.Unmarshal(raw, &res); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	patientID, err := RefID(res.Patient.Reference)
	if err != nil {
		return err
	}
	encounterID, err := RefID(res.Context.Reference)
	if err != nil {
		return err
	}
	written, err := NormalizeInstant(res.DateWritten)
	if err != nil {
		return fmt.Errorf("dateWritten: %w", err)
	}
	if len(res.MedicationCodeableConcept.Coding) == 0 {
		return fmt.Errorf("%w: medication request without coded medication", ErrUnsupportedVariant)
	}

	instruction, err := dosageText(res.DosageInstruction)
	if err != nil {
		return err
	}

	return s.repo.AddMedicationRequest(ctx, &MedicationRequestRow{
		PatientID:         patientID,
		EncounterID:       encounterID,
		DateWritten:       written,
		MedicationDisplay: res.MedicationCodeableConcept.Coding[0].Display,
		DosageInstruction: instruction,
	})
}

// dosageText maps the small closed set of dosing shapes present in the
// dataset to a human-readable instruction. An absent block yields a nil
// instruction; an explicit as-needed flag short-circuits; exactly two timing
// shapes are recognized. Everything else is an unsupported variant.
func dosageText(instructions []dosageInstruction) (*string, error) {
	if len(instructions) > 1 {
		return nil, fmt.Errorf("%w: %d dosage instruction blocks", ErrUnsupportedVariant, len(instructions))
	}
	if len(instructions) == 0 {
		return nil, nil
	}

	d := instructions[0]
	if d.AsNeededBoolean == nil && d.Timing == nil && d.DoseQuantity == nil {
		// Empty instruction block, same as none at all.
		return nil, nil
	}
	if d.AsNeededBoolean == nil {
		return nil, fmt.Errorf("%w: dosage instruction without asNeeded flag", ErrUnsupportedVariant)
	}
	if *d.AsNeededBoolean {
		text := "as needed"
		return &text, nil
	}
	if d.Timing == nil || d.DoseQuantity == nil {
		return nil, fmt.Errorf("%w: dosage instruction without timing or dose quantity", ErrUnsupportedVariant)
	}

	repeat := d.Timing.Repeat
	switch {
	case repeat.Period == 1 && repeat.PeriodUnit == "d":
		text := fmt.Sprintf("%g dose %d times per day", d.DoseQuantity.Value, repeat.Frequency)
		return &text, nil
	case repeat.PeriodUnit == "h" && repeat.Frequency == 1:
		text := fmt.Sprintf("%g dose every %g hours", d.DoseQuantity.Value, repeat.Period)
		return &text, nil
	}
	return nil, fmt.Errorf("%w: dosing timing frequency=%d period=%g periodUnit=%q",
		ErrUnsupportedVariant, repeat.Frequency, repeat.Period, repeat.PeriodUnit)
}

func (s *Service) indexAllergyIntolerance(ctx context.Context, raw json.RawMessage) error {
	var res allergyIntoleranceResource
	if err := json.Unmarshal(raw, &res); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	patientID, err := RefID(res.Patient.Reference)
	if err != nil {
		return err
	}
	asserted, err := NormalizeInstant(res.AssertedDate)
	if err != nil {
		return fmt.Errorf("assertedDate: %w", err)
	}
	if len(res.Category) == 0 {
		return fmt.Errorf("%w: allergy intolerance without category", ErrUnsupportedVariant)
	}
	if len(res.Code.Coding) == 0 {
		return fmt.Errorf("%w: allergy intolerance without coded display", ErrUnsupportedVariant)
	}
	if len(res.Category) > 1 {
		// Only the first category survives; the schema has one slot.
		s.log.Debug().Int("discarded", len(res.Category)-1).Msg("allergy intolerance with extra categories")
	}

	return s.repo.AddAllergyIntolerance(ctx, &AllergyIntoleranceRow{
		PatientID:      patientID,
		AssertedDate:   asserted,
		ClinicalStatus: res.ClinicalStatus,
		Type:           res.Type,
		Category:       res.Category[0],
		Criticality:    res.Criticality,
		Display:        res.Code.Coding[0].Display,
	})
}
