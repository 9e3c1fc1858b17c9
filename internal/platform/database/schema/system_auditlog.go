package schema

// SystemAuditLogTable represents the 'system.auditlog' table
type SystemAuditLogTable struct {
	Table      string
	ID         string
	UserID     string
	ResourceID string
	Action     string
	Success    string
	Timestamp  string
	IPAddress  string
	UserAgent  string
	Error      string
}

var SystemAuditLog = SystemAuditLogTable{
	Table:      "system.auditlog",
	ID:         "id",
	UserID:     "userid",
	ResourceID: "resourceid",
	Action:     "action",
	Success:    "success",
	Timestamp:  "ts",
	IPAddress:  "ipaddress",
	UserAgent:  "useragent",
	Error:      "error",
}

// Columns returns all standard column names
func (t SystemAuditLogTable) Columns() []string {
	return []string{
		t.ID, t.UserID, t.ResourceID, t.Action, t.Success, t.Timestamp, t.IPAddress, t.UserAgent, t.Error,
	}
}
