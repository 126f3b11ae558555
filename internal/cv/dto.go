package cv

import "time"

// SummaryResponse is the outward-facing listing entry for a stored CV.
type SummaryResponse struct {
	CVID       string    `json:"cvId"`
	IsMain     bool      `json:"isMain"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func toSummaryResponse(sums []Summary) []SummaryResponse {
	out := make([]SummaryResponse, 0, len(sums))
	for _, sum := range sums {
		out = append(out, SummaryResponse{
			CVID:       sum.ID,
			IsMain:     sum.IsMain,
			UploadedAt: sum.UploadedAt,
		})
	}
	return out
}
