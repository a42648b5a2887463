package model

// ProviderDetails holds the per-provider aggregates served by the backend's
// provider-details endpoint: reimbursement totals, claim volume, beneficiary
// demographics and chronic-condition prevalences.
type ProviderDetails struct {
	Provider            string  `json:"Provider"`
	TotalReimbursed     float64 `json:"Total_Reimbursed"`
	MeanReimbursed      float64 `json:"Mean_Reimbursed"`
	ClaimCount          int     `json:"Claim_Count"`
	UniqueBeneficiaries int     `json:"Unique_Beneficiaries"`
	AvgAge              float64 `json:"Avg_Age"`
	PctMale             float64 `json:"Pct_Male"`

	Alzheimer      float64 `json:"Alzheimer"`
	Heartfailure   float64 `json:"Heartfailure"`
	Cancer         float64 `json:"Cancer"`
	ObstrPulmonary float64 `json:"ObstrPulmonary"`
	Depression     float64 `json:"Depression"`
	Diabetes       float64 `json:"Diabetes"`
	IschemicHeart  float64 `json:"IschemicHeart"`
	Osteoporasis   float64 `json:"Osteoporasis"`
	Arthritis      float64 `json:"Arthritis"`
	Stroke         float64 `json:"Stroke"`
	RenalDisease   float64 `json:"RenalDisease"`
}

// ChronicCondition pairs a display name with its prevalence value.
type ChronicCondition struct {
	Name  string
	Value float64
}

// ChronicConditions returns the prevalence values in a fixed display order.
func (d ProviderDetails) ChronicConditions() []ChronicCondition {
	return []ChronicCondition{
		{Name: "Cancer", Value: d.Cancer},
		{Name: "Stroke", Value: d.Stroke},
		{Name: "Diabetes", Value: d.Diabetes},
		{Name: "Heart Failure", Value: d.Heartfailure},
		{Name: "Alzheimer", Value: d.Alzheimer},
		{Name: "Depression", Value: d.Depression},
		{Name: "IschemicHeart", Value: d.IschemicHeart},
		{Name: "Osteoporosis", Value: d.Osteoporasis},
		{Name: "Arthritis", Value: d.Arthritis},
		{Name: "PulmonaryDisease", Value: d.ObstrPulmonary},
		{Name: "Kidney Disease", Value: d.RenalDisease},
	}
}

// DashboardRow is the per-provider aggregate used for ranking and charting.
// It shares the ProviderDetails column set. Synthesized marks rows the client
// fabricated as placeholders when the backend had no dashboard data; such
// rows are always labeled in any surface that renders them.
type DashboardRow struct {
	ProviderDetails
	Synthesized bool `json:"-"`
}

// ChatRole identifies the author of a chat message.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one entry in an assistant conversation.
type ChatMessage struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}
