package schema

// SystemIncidentTable represents the 'system.incident' table
type SystemIncidentTable struct {
	Table          string
	ID             string
	IncidentType   string
	Severity       string
	Description    string
	ReportedBy     string
	AffectedUserID string
	IPAddress      string
	UserAgent      string
	AdditionalData string
	Status         string
	CreatedAt      string
	UpdatedAt      string
	ResolvedBy     string
	ResolvedAt     string
	Notes          string
}

var SystemIncident = SystemIncidentTable{
	Table:          "system.incident",
	ID:             "id",
	IncidentType:   "incidenttype",
	Severity:       "severity",
	Description:    "description",
	ReportedBy:     "reportedby",
	AffectedUserID: "affecteduserid",
	IPAddress:      "ipaddress",
	UserAgent:      "useragent",
	AdditionalData: "additionaldata",
	Status:         "status",
	CreatedAt:      "createdat",
	UpdatedAt:      "updatedat",
	ResolvedBy:     "resolvedby",
	ResolvedAt:     "resolvedat",
	Notes:          "notes",
}

// Columns returns all standard column names
func (t SystemIncidentTable) Columns() []string {
	return []string{
		t.ID, t.IncidentType, t.Severity, t.Description, t.ReportedBy, t.AffectedUserID,
		t.IPAddress, t.UserAgent, t.AdditionalData, t.Status, t.CreatedAt, t.UpdatedAt,
		t.ResolvedBy, t.ResolvedAt, t.Notes,
	}
}
