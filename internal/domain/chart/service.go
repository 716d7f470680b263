package chart

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"
)

type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) Demographics(ctx context.Context, patientID string) (*Demographics, error) {
	return s.repo.GetDemographics(ctx, patientID)
}

func (s *Service) Encounters(ctx context.Context, patientID string) ([]Encounter, error) {
	return s.repo.ListEncounters(ctx, patientID)
}

func (s *Service) Conditions(ctx context.Context, patientID, encounterID string) ([]Condition, error) {
	return s.repo.ListConditions(ctx, patientID, encounterID)
}

func (s *Service) Observations(ctx context.Context, patientID, encounterID string) ([]Observation, error) {
	return s.repo.ListObservations(ctx, patientID, encounterID)
}

func (s *Service) Procedures(ctx context.Context, patientID, encounterID, conditionID string) ([]Procedure, error) {
	return s.repo.ListProcedures(ctx, patientID, encounterID, conditionID)
}

func (s *Service) CarePlans(ctx context.Context, patientID, encounterID string) ([]CarePlan, error) {
	return s.repo.ListCarePlans(ctx, patientID, encounterID)
}

func (s *Service) Immunizations(ctx context.Context, patientID, encounterID string) ([]Immunization, error) {
	return s.repo.ListImmunizations(ctx, patientID, encounterID)
}

func (s *Service) Medications(ctx context.Context, patientID, encounterID string) ([]Medication, error) {
	return s.repo.ListMedications(ctx, patientID, encounterID)
}

func (s *Service) Allergies(ctx context.Context, patientID string, onlyActive bool) ([]Allergy, error) {
	return s.repo.ListAllergies(ctx, patientID, onlyActive)
}

// Age reports the patient's age in whole years. A living patient is aged
// against the clock; a deceased one against their time of death.
func (s *Service) Age(d *Demographics) int {
	ref := time.Now()
	if d.DeceasedAt != nil {
		ref = *d.DeceasedAt
	}
	return AgeAt(d.DateOfBirth, ref)
}

// AgeAt computes whole years between birth and ref, counting a year only
// once the birthday has passed.
func AgeAt(birth, ref time.Time) int {
	years := ref.Year() - birth.Year()
	if ref.Month() < birth.Month() ||
		(ref.Month() == birth.Month() && ref.Day() < birth.Day()) {
		years--
	}
	return years
}

// AllergySummary groups a patient's active allergies by category, each
// rendered as "Label (severity)". The stored display strings read like
// "Allergy to peanuts" or "Latex allergy"; both decorations are stripped so
// the label is just the substance.
func (s *Service) AllergySummary(ctx context.Context, patientID string) (map[string][]string, error) {
	if _, err := s.repo.GetDemographics(ctx, patientID); err != nil {
		return nil, err
	}

	allergies, err := s.repo.ListAllergies(ctx, patientID, true)
	if err != nil {
		return nil, fmt.Errorf("list allergies: %w", err)
	}

	summary := make(map[string][]string)
	for _, a := range allergies {
		summary[a.Category] = append(summary[a.Category], fmt.Sprintf("%s (%s)", allergyLabel(a.Display), severity(a.Criticality)))
	}
	return summary, nil
}

func allergyLabel(display string) string {
	display = strings.TrimPrefix(display, "Allergy to ")
	display = strings.TrimSuffix(display, " allergy")
	return capitalize(display)
}

func severity(criticality string) string {
	switch criticality {
	case "high":
		return "severe"
	case "low":
		return "mild"
	}
	return criticality
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
