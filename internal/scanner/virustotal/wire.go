package virustotal

// objectResponse covers the url object, analysis object and submission
// responses, which share the data/id/attributes envelope.
type objectResponse struct {
	Data *object `json:"data"`
}

type object struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	Attributes *attributes `json:"attributes"`
}

type attributes struct {
	Status            string `json:"status"`
	Stats             *stats `json:"stats"`
	LastAnalysisStats *stats `json:"last_analysis_stats"`
}

type stats struct {
	Harmless   int `json:"harmless"`
	Malicious  int `json:"malicious"`
	Suspicious int `json:"suspicious"`
	Undetected int `json:"undetected"`
	Timeout    int `json:"timeout"`
}

func (a *attributes) inProgress() bool {
	return a.Status == "queued" || a.Status == "in-progress"
}

// counts prefers analysis stats and falls back to the url object's last
// analysis stats.
func (a *attributes) counts() *stats {
	if a.Stats != nil {
		return a.Stats
	}
	return a.LastAnalysisStats
}
