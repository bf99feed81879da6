package models

import "time"

// AnalysisRecordDTO - stored snapshot of a finished analysis
type AnalysisRecordDTO struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id,omitempty"`
	Premium   bool            `json:"premium"`
	Request   AnalysisRequest `json:"request"`
	Result    *AnalysisResult `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
}

// AnalysisSummaryDTO - list view of a stored analysis
type AnalysisSummaryDTO struct {
	ID              string    `json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	Premium         bool      `json:"premium"`
	FindingsCount   int       `json:"findings_count"`
	VulnerableCount int       `json:"vulnerable_count"`
	HasError        bool      `json:"has_error"`
}

// Summary builds the list view of a record
func (r *AnalysisRecordDTO) Summary() AnalysisSummaryDTO {
	s := AnalysisSummaryDTO{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		Premium:   r.Premium,
	}
	if r.Result != nil {
		s.FindingsCount = len(r.Result.AllFindings)
		s.VulnerableCount = len(VulnerableFindings(r.Result.AllFindings))
		s.HasError = r.Result.Error != nil
	}
	return s
}

// AnalyzeResponseDTO - response of POST /api/analyze
type AnalyzeResponseDTO struct {
	ID     string          `json:"id"`
	Result *AnalysisResult `json:"result"`
}

// AssistantResponseDTO - response of POST /api/assistant
type AssistantResponseDTO struct {
	Response string `json:"response"`
}
