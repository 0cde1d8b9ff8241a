package flows

import "github.com/google/jsonschema-go/jsonschema"

// LeadScoreInput describes a prospective anchor account.
type LeadScoreInput struct {
	CompanyName    string   `json:"companyName"`
	Industry       string   `json:"industry"`
	Location       string   `json:"location"`
	AnnualTurnover *float64 `json:"annualTurnover,omitempty"`
	EmployeeCount  *int     `json:"employeeCount,omitempty"`
	LeadSource     string   `json:"leadSource,omitempty"`
	Notes          string   `json:"notes,omitempty"`
	Language       string   `json:"language,omitempty"`
}

// LeadScoreOutput is the model's assessment of a lead.
type LeadScoreOutput struct {
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale"`
}

func languageSchema() *jsonschema.Schema {
	return oneOf("Language code for free-text output", "en", "hi")
}

// LeadScoringFlow scores anchor leads from 0 to 100.
var LeadScoringFlow = define[LeadScoreInput, LeadScoreOutput](
	LeadScoring,
	"Scores a prospective anchor account from 0 to 100 with a short rationale.",
	object([]string{"companyName", "industry", "location"}, map[string]*jsonschema.Schema{
		"companyName":    nonEmpty("Registered company name"),
		"industry":       nonEmpty("Industry or sector"),
		"location":       nonEmpty("City and state"),
		"annualTurnover": number("Annual turnover in INR crore", ptr(0.0), nil),
		"employeeCount":  integer("Number of employees", ptr(0.0)),
		"leadSource":     str("Where the lead came from"),
		"notes":          str("Free-form notes from the sales team"),
		"language":       languageSchema(),
	}),
	object([]string{"score", "rationale"}, map[string]*jsonschema.Schema{
		"score":     number("Lead quality score", ptr(0.0), ptr(100.0)),
		"rationale": nonEmpty("Why the score was given"),
	}),
	`You are an expert B2B supply-chain finance analyst. Score the following anchor lead
on a scale of 0 to 100 based on its likelihood to convert into an active anchor program.

Company: {{.CompanyName}}
Industry: {{.Industry}}
Location: {{.Location}}
{{- with .AnnualTurnover}}
Annual turnover (INR crore): {{.}}{{end}}
{{- with .EmployeeCount}}
Employees: {{.}}{{end}}
{{- with .LeadSource}}
Lead source: {{.}}{{end}}
{{- with .Notes}}
Notes: {{.}}{{end}}

Consider company scale, industry fit for dealer and vendor financing, and engagement signals.
Write the rationale in {{languageName .Language}} in no more than three sentences.
Respond with a JSON object containing "score" and "rationale".`,
	nil,
)
