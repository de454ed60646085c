package api

import "time"

// CaseStatus is a case lifecycle state as reported by the backend.
type CaseStatus string

const (
	StatusOpen     CaseStatus = "Open"
	StatusResolved CaseStatus = "Resolved"
	StatusAborted  CaseStatus = "Aborted"
)

// CaseSummary is the per-case metadata returned by the case history endpoint.
type CaseSummary struct {
	CaseID    string     `json:"case_id"`
	Title     string     `json:"title"`
	Status    CaseStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

// Entity is a party extracted from the case documents.
type Entity struct {
	Name       string `json:"name"`
	EntityType string `json:"entity_type"`
	Valid      bool   `json:"valid"`
}

// Asset is a property or holding extracted from the case documents.
type Asset struct {
	Name        string  `json:"name"`
	AssetType   string  `json:"asset_type"`
	NetWorth    float64 `json:"net_worth,omitempty"`
	Location    string  `json:"location,omitempty"`
	Coordinates string  `json:"coordinates,omitempty"`
}

// CaseAnalysis is the AI-generated summary block of a case.
type CaseAnalysis struct {
	Summary             string   `json:"summary"`
	CaseType            string   `json:"case_type"`
	Entities            []Entity `json:"entity"`
	Assets              []Asset  `json:"asset"`
	Document            string   `json:"document"`
	SupportingDocuments []string `json:"supporting_documents"`
	References          []string `json:"references"`
	Recommendations     []string `json:"recommendations"`
	Remarks             string   `json:"remarks"`
}

// CaseData is the full case detail payload: metadata plus analysis.
type CaseData struct {
	Meta    CaseSummary  `json:"meta"`
	Summary CaseAnalysis `json:"summary"`
}

// StatusChange is the response to a resolve/abort action.
type StatusChange struct {
	Message string     `json:"message"`
	Status  CaseStatus `json:"status"`
	Remarks string     `json:"remarks"`
}

// ChatMessage is one stored query/response exchange for a case.
type ChatMessage struct {
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

// Coordinates is a WGS84 point returned by GIS analysis.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GISResult holds location-risk metrics for a submitted address.
type GISResult struct {
	Address     string      `json:"address"`
	RiskLevel   string      `json:"risk_level"`
	RiskScore   float64     `json:"risk_score"`
	FloodRisk   string      `json:"flood_risk"`
	Summary     string      `json:"summary"`
	Coordinates Coordinates `json:"coordinates"`
}

// Report is a property report submitted from the portal.
type Report struct {
	ID        string    `json:"id,omitempty"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Report    string    `json:"report"`
	Address   string    `json:"address"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
