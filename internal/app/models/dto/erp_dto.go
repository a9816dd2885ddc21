package dto

// VerifyERPRequest verifies or rejects a submitted ERP record
type VerifyERPRequest struct {
	Action    ReviewDecision `json:"action" binding:"required,oneof=verify reject"`
	Points    int            `json:"points" binding:"min=0"`
	AdminNote string         `json:"adminNote" binding:"max=1000"`
}

// SetERPPointsRequest replaces the points awarded for a verified ERP record
type SetERPPointsRequest struct {
	Points *int `json:"points" binding:"required,min=0"`
}
