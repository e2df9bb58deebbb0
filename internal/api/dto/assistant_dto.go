package dto

// ImproveTextRequest payload for petition text improvement.
type ImproveTextRequest struct {
	Text     string `json:"text"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

// SuggestTitlesRequest payload for title suggestions.
type SuggestTitlesRequest struct {
	Description string `json:"description"`
	Category    string `json:"category"`
}

// CheckClarityRequest payload for clarity analysis.
type CheckClarityRequest struct {
	Text string `json:"text"`
}

// SuggestDetailsRequest payload for detail suggestions.
type SuggestDetailsRequest struct {
	Text     string `json:"text"`
	Category string `json:"category"`
	Location string `json:"location"`
}
