package domain

// Organization is a participant in the financing programme. One organization may act
// as seller, buyer, or both; the financing bank is flagged IsBank.
type Organization struct {
	OrganizationID string `json:"organizationID"`
	Name           string `json:"name"`
	IsBuyer        bool   `json:"isBuyer"`
	IsSeller       bool   `json:"isSeller"`
	IsBank         bool   `json:"isBank"`
	AuditFields
}
