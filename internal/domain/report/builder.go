package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kulpsin/healthAssistant/internal/domain/chart"
)

const instantLayout = "2006-01-02 15:04:05"

// Builder renders a patient's full clinical history as one markdown
// document: a demographic summary followed by one subsection per encounter
// in chronological order. Category sections with no entries for an encounter
// are left out entirely.
type Builder struct {
	charts *chart.Service
	log    zerolog.Logger
}

func NewBuilder(charts *chart.Service, log zerolog.Logger) *Builder {
	return &Builder{charts: charts, log: log}
}

func (b *Builder) PatientReport(ctx context.Context, patientID string) (string, error) {
	d, err := b.charts.Demographics(ctx, patientID)
	if err != nil {
		return "", err
	}

	lines := []string{
		fmt.Sprintf("Patient is %d year old %s.", b.charts.Age(d), d.Gender),
		fmt.Sprintf("**Date of Birth:** %s", d.DateOfBirth.Format(instantLayout)),
		"",
		"## Medical encounters",
	}

	encounters, err := b.charts.Encounters(ctx, patientID)
	if err != nil {
		return "", fmt.Errorf("list encounters: %w", err)
	}

	for _, enc := range encounters {
		section, err := b.encounterSection(ctx, patientID, enc)
		if err != nil {
			return "", fmt.Errorf("encounter %s: %w", enc.ID, err)
		}
		lines = append(lines, section...)
	}

	b.log.Debug().Str("patient_id", patientID).Int("encounters", len(encounters)).Msg("report built")
	return strings.Join(lines, "\n"), nil
}

func (b *Builder) encounterSection(ctx context.Context, patientID string, enc chart.Encounter) ([]string, error) {
	lines := []string{
		fmt.Sprintf("### %s - %s", capitalize(enc.Class), enc.Type),
		fmt.Sprintf("- **Date**: %s", enc.PeriodStart.Format(instantLayout)),
	}
	if enc.Duration >= time.Hour {
		lines = append(lines, fmt.Sprintf("- **Duration**: %s", formatDuration(enc.Duration)))
	}
	reason := "Not specified"
	if enc.Reason != nil {
		reason = *enc.Reason
	}
	lines = append(lines, fmt.Sprintf("- **Reason**: %s", reason))

	conditions, err := b.charts.Conditions(ctx, patientID, enc.ID)
	if err != nil {
		return nil, fmt.Errorf("list conditions: %w", err)
	}
	if len(conditions) > 0 {
		labels := make([]string, 0, len(conditions))
		for _, c := range conditions {
			label := c.Display
			if c.AbatementDate != nil {
				label = fmt.Sprintf("%s (until %s)", c.Display, c.AbatementDate.Format(instantLayout))
			}
			labels = append(labels, label)
		}
		lines = append(lines, fmt.Sprintf("- **Conditions confirmed:** %s", strings.Join(labels, ", ")))
	}

	observations, err := b.charts.Observations(ctx, patientID, enc.ID)
	if err != nil {
		return nil, fmt.Errorf("list observations: %w", err)
	}
	if len(observations) > 0 {
		lines = append(lines, "- **Observations**:")
		for _, o := range observations {
			for _, comp := range o.Components {
				lines = append(lines, fmt.Sprintf("  - %s: %g %s", comp.Display, comp.Value, comp.Unit))
			}
		}
	}

	procedures, err := b.charts.Procedures(ctx, patientID, enc.ID, "")
	if err != nil {
		return nil, fmt.Errorf("list procedures: %w", err)
	}
	if len(procedures) > 0 {
		lines = append(lines, "- **Procedures**:")
		for _, p := range procedures {
			lines = append(lines, "  - "+p.Display)
		}
	}

	carePlans, err := b.charts.CarePlans(ctx, patientID, enc.ID)
	if err != nil {
		return nil, fmt.Errorf("list care plans: %w", err)
	}
	if len(carePlans) > 0 {
		lines = append(lines, "- **Care Plans**:")
		for _, cp := range carePlans {
			lines = append(lines, fmt.Sprintf("  - %s (Status: %s)", cp.Details, cp.Status))
		}
	}

	immunizations, err := b.charts.Immunizations(ctx, patientID, enc.ID)
	if err != nil {
		return nil, fmt.Errorf("list immunizations: %w", err)
	}
	if len(immunizations) > 0 {
		lines = append(lines, "- **Immunizations**:")
		for _, im := range immunizations {
			lines = append(lines, "  - "+im.Display)
		}
	}

	medications, err := b.charts.Medications(ctx, patientID, enc.ID)
	if err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}
	if len(medications) > 0 {
		lines = append(lines, "- **Medications**:")
		for _, m := range medications {
			lines = append(lines, "  - "+m.Display)
		}
	}

	lines = append(lines, "")
	return lines, nil
}

// formatDuration renders a duration as d day(s), H:MM:SS, days omitted when
// zero.
func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	d -= time.Duration(days) * 24 * time.Hour
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	hms := fmt.Sprintf("%d:%02d:%02d", h, m, s)
	switch {
	case days == 1:
		return "1 day, " + hms
	case days > 1:
		return fmt.Sprintf("%d days, %s", days, hms)
	}
	return hms
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
