package ingest

import "encoding/json"

// Bundle is the ingestion input: a batch of tagged clinical-record entries.
// Field names follow the wire format of the synthetic dataset bit-exactly.
type Bundle struct {
	ResourceType string  `json:"resourceType"`
	Type         string  `json:"type"`
	Entry        []Entry `json:"entry"`
}

// Entry wraps one resource. The payload stays raw until the dispatcher has
// read the resourceType tag; each handler then decodes its own shape. The
// resource kinds use conflicting types for the same field name (Encounter's
// "type" is a list of concepts, AllergyIntolerance's is a plain string), so
// a single umbrella struct cannot represent them.
type Entry struct {
	Resource json.RawMessage `json:"resource"`
}

type resourceTag struct {
	ResourceType string `json:"resourceType"`
	ID           string `json:"id"`
}

// Shared wire fragments.

type reference struct {
	Reference string `json:"reference"`
}

type coding struct {
	Code    string `json:"code"`
	Display string `json:"display"`
}

type codeableConcept struct {
	Coding []coding `json:"coding"`
	Text   string   `json:"text"`
}

type quantity struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type wirePeriod struct {
	Start string  `json:"start"`
	End   *string `json:"end"`
}

type humanName struct {
	Given  []string `json:"given"`
	Family string   `json:"family"`
}

// Per-kind wire shapes.

type patientResource struct {
	ID               string      `json:"id"`
	Gender           string      `json:"gender"`
	BirthDate        string      `json:"birthDate"`
	DeceasedDateTime *string     `json:"deceasedDateTime"`
	Name             []humanName `json:"name"`
}

type encounterResource struct {
	ID      string            `json:"id"`
	Patient reference         `json:"patient"`
	Status  string            `json:"status"`
	Class   coding            `json:"class"`
	Type    []codeableConcept `json:"type"`
	Period  wirePeriod        `json:"period"`
	Reason  *codeableConcept  `json:"reason"`
}

type observationComponent struct {
	Code          codeableConcept `json:"code"`
	ValueQuantity *quantity       `json:"valueQuantity"`
}

type observationResource struct {
	ID                string                 `json:"id"`
	Subject           reference              `json:"subject"`
	Encounter         reference              `json:"encounter"`
	EffectiveDateTime string                 `json:"effectiveDateTime"`
	Status            string                 `json:"status"`
	Code              codeableConcept        `json:"code"`
	Component         []observationComponent `json:"component"`
	ValueQuantity     *quantity              `json:"valueQuantity"`
}

type conditionResource struct {
	ID                 string          `json:"id"`
	Subject            reference       `json:"subject"`
	Context            reference       `json:"context"`
	ClinicalStatus     string          `json:"clinicalStatus"`
	VerificationStatus string          `json:"verificationStatus"`
	OnsetDateTime      string          `json:"onsetDateTime"`
	AbatementDateTime  *string         `json:"abatementDateTime"`
	Code               codeableConcept `json:"code"`
}

type procedureResource struct {
	Subject           reference       `json:"subject"`
	Encounter         reference       `json:"encounter"`
	ReasonReference   *reference      `json:"reasonReference"`
	Status            string          `json:"status"`
	PerformedDateTime *string         `json:"performedDateTime"`
	PerformedPeriod   *wirePeriod     `json:"performedPeriod"`
	Code              codeableConcept `json:"code"`
}

type immunizationResource struct {
	Patient       reference       `json:"patient"`
	Encounter     reference       `json:"encounter"`
	Date          string          `json:"date"`
	Status        string          `json:"status"`
	VaccineCode   codeableConcept `json:"vaccineCode"`
	WasNotGiven   bool            `json:"wasNotGiven"`
	PrimarySource bool            `json:"primarySource"`
}

type carePlanActivityDetail struct {
	Status string          `json:"status"`
	Code   codeableConcept `json:"code"`
}

type carePlanActivity struct {
	Detail carePlanActivityDetail `json:"detail"`
}

type carePlanResource struct {
	Subject  reference          `json:"subject"`
	Context  reference          `json:"context"`
	Status   string             `json:"status"`
	Category []codeableConcept  `json:"category"`
	Period   wirePeriod         `json:"period"`
	Activity []carePlanActivity `json:"activity"`
}

type timingRepeat struct {
	Frequency  int     `json:"frequency"`
	Period     float64 `json:"period"`
	PeriodUnit string  `json:"periodUnit"`
}

type dosageTiming struct {
	Repeat timingRepeat `json:"repeat"`
}

type dosageInstruction struct {
	AsNeededBoolean *bool         `json:"asNeededBoolean"`
	Timing          *dosageTiming `json:"timing"`
	DoseQuantity    *quantity     `json:"doseQuantity"`
}

type medicationRequestResource struct {
	Patient                   reference           `json:"patient"`
	Context                   reference           `json:"context"`
	DateWritten               string              `json:"dateWritten"`
	MedicationCodeableConcept codeableConcept     `json:"medicationCodeableConcept"`
	DosageInstruction         []dosageInstruction `json:"dosageInstruction"`
}

type allergyIntoleranceResource struct {
	Patient        reference       `json:"patient"`
	AssertedDate   string          `json:"assertedDate"`
	ClinicalStatus string          `json:"clinicalStatus"`
	Type           string          `json:"type"`
	Category       []string        `json:"category"`
	Criticality    string          `json:"criticality"`
	Code           codeableConcept `json:"code"`
}
