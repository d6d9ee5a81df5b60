// Package access decides whether a caller may read or write a project's
// schedule. It is a predicate over an already-loaded project and an
// already-authenticated identity; it never touches storage itself.
package access

import (
	"github.com/google/uuid"

	"buildtrack/internal/apperr"
	"buildtrack/internal/model"
)

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleClient  = "client"
)

type Capability string

const (
	CapabilityRead  Capability = "schedule:read"
	CapabilityWrite Capability = "schedule:write"
)

// Caller is the trusted identity attached to a request by the auth middleware.
type Caller struct {
	ID   uuid.UUID
	Role string
}

// Authorize checks the caller against the project for the given capability.
// Admins see everything; managers read and write projects they manage;
// clients read their own project only. Everything else is denied.
func Authorize(project *model.Project, caller Caller, cap Capability) error {
	switch caller.Role {
	case RoleAdmin:
		return nil
	case RoleManager:
		if project.HasManager(caller.ID) {
			return nil
		}
	case RoleClient:
		if cap == CapabilityRead && project.ClientID == caller.ID {
			return nil
		}
	}
	return apperr.New(apperr.AccessDenied, "insufficient permissions for this project")
}
