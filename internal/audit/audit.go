// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

/*
Package audit provides the append-only audit trail for file actions.

Every guarded operation on a shared file produces exactly one [Entry],
successful or not. The trail is the forensic record behind incident
investigations, so the package deliberately exposes no update or delete
operation of any kind.

# Architecture

  - Entity: [Entry] is the immutable fact being recorded.
  - Storage: [Recorder] and [Query] interfaces with PostgreSQL and
    in-memory implementations.
  - Service: fire-and-forget recording that never blocks or fails the
    operation being audited.
*/
package audit

import "time"

// # Actions

// Action identifies the file operation an audit entry describes.
type Action string

const (
	ActionUpload   Action = "upload"
	ActionDownload Action = "download"
	ActionDelete   Action = "delete"
	ActionView     Action = "view"
	ActionUpdate   Action = "update"
)

// Valid reports whether the action is one of the known file operations.
func (a Action) Valid() bool {
	switch a {
	case ActionUpload, ActionDownload, ActionDelete, ActionView, ActionUpdate:
		return true
	}
	return false
}

// ValidActions lists every recognized action name, for validation messages.
func ValidActions() []string {
	return []string{
		string(ActionUpload), string(ActionDownload), string(ActionDelete),
		string(ActionView), string(ActionUpdate),
	}
}

// # Entity

// Entry is one immutable line of the audit trail.
//
// Error carries the failure reason and is set exactly when Success is
// false. A successful entry never has an error message.
type Entry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	ResourceID string    `json:"resource_id"`
	Action     Action    `json:"action"`
	Success    bool      `json:"success"`
	Timestamp  time.Time `json:"timestamp"`
	IPAddress  string    `json:"ip_address,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	Error      string    `json:"error,omitempty"`
}
