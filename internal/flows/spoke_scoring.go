package flows

import "github.com/google/jsonschema-go/jsonschema"

// SpokeScoreInput describes a dealer or vendor lead attached to an anchor.
type SpokeScoreInput struct {
	SpokeName       string   `json:"spokeName"`
	ContactNumber   string   `json:"contactNumber"`
	AnchorName      string   `json:"anchorName"`
	City            string   `json:"city"`
	BusinessType    string   `json:"businessType,omitempty"`
	MonthlyVolume   *float64 `json:"monthlyVolume,omitempty"`
	YearsInBusiness *int     `json:"yearsInBusiness,omitempty"`
	Language        string   `json:"language,omitempty"`
}

// SpokeScoreOutput is the model's onboarding assessment of a spoke.
type SpokeScoreOutput struct {
	Score     float64 `json:"score"`
	Priority  string  `json:"priority"`
	Rationale string  `json:"rationale"`
}

// Spoke priorities returned by the scoring flow.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// SpokeScoringFlow scores dealer and vendor leads for onboarding.
var SpokeScoringFlow = define[SpokeScoreInput, SpokeScoreOutput](
	SpokeScoring,
	"Scores a dealer or vendor lead for onboarding priority.",
	object([]string{"spokeName", "contactNumber", "anchorName", "city"}, map[string]*jsonschema.Schema{
		"spokeName":       nonEmpty("Dealer or vendor business name"),
		"contactNumber":   pattern("10-digit mobile number", `^[0-9]{10}$`),
		"anchorName":      nonEmpty("Anchor the spoke supplies or buys from"),
		"city":            nonEmpty("City of operation"),
		"businessType":    str("Nature of business"),
		"monthlyVolume":   number("Monthly business volume with the anchor in INR lakh", ptr(0.0), nil),
		"yearsInBusiness": integer("Years in business", ptr(0.0)),
		"language":        languageSchema(),
	}),
	object([]string{"score", "priority", "rationale"}, map[string]*jsonschema.Schema{
		"score":     number("Onboarding score", ptr(0.0), ptr(100.0)),
		"priority":  oneOf("Follow-up priority", PriorityHigh, PriorityMedium, PriorityLow),
		"rationale": nonEmpty("Why the score was given"),
	}),
	`You assess dealers and vendors for a supply-chain finance program.
Score this spoke from 0 to 100 for onboarding readiness and assign a priority of High, Medium or Low.

Spoke: {{.SpokeName}}
Contact number: {{.ContactNumber}}
Anchor: {{.AnchorName}}
City: {{.City}}
{{- with .BusinessType}}
Business type: {{.}}{{end}}
{{- with .MonthlyVolume}}
Monthly volume with anchor (INR lakh): {{.}}{{end}}
{{- with .YearsInBusiness}}
Years in business: {{.}}{{end}}

Write the rationale in {{languageName .Language}} in no more than three sentences.
Respond with a JSON object containing "score", "priority" and "rationale".`,
	nil,
)
