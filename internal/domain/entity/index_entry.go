package entity

// IndexEntry is the searchable projection of a located report.
type IndexEntry struct {
	ReportID  string    `json:"report_id" firestore:"reportId"`
	IssueType string    `json:"issue_type" firestore:"issueType"`
	Lat       float64   `json:"lat" firestore:"lat"`
	Lon       float64   `json:"lon" firestore:"lon"`
	CellToken string    `json:"cell_token" firestore:"cellToken"`
	Vector    []float32 `json:"-" firestore:"-"`
}

// IndexMatch is a nearest-neighbour hit. Similarity is on a [0,1] cosine scale.
type IndexMatch struct {
	ReportID       string
	Similarity     float64
	DistanceMeters float64
}
