// Package policy is the declarative authorization table: one capability
// per operation, each mapped to the set of roles allowed to perform it.
// Handlers gate routes with middleware.RequireCapability, so role sets
// live in exactly one place.
package policy

import "docflow/internal/model"

// Capability names, grouped by aggregate.
const (
	UsersManage = "users.manage"

	ProductsRead   = "products.read"
	ProductsWrite  = "products.write"
	ProductsDelete = "products.delete"

	DocumentsCreate  = "documents.create"
	DocumentsRead    = "documents.read"
	DocumentsApprove = "documents.approve"
	DocumentsSuspend = "documents.suspend"

	ProjectsCreate  = "projects.create"
	ProjectsRead    = "projects.read"
	ProjectsApprove = "projects.approve"
	ProjectsUpdate  = "projects.update"

	CostCentersManage = "costcenters.manage"

	FilesSubmit = "files.submit"
	FilesRead   = "files.read"
	FilesReview = "files.review"

	AuditRead   = "audit.read"
	StorageRead = "storage.read"
)

var allRoles = []string{
	model.RoleStaff, model.RoleApprover, model.RoleHeadOfAccounting,
	model.RoleDirector, model.RoleAdmin, model.RoleSuperAdmin,
}

var approverRoles = []string{
	model.RoleApprover, model.RoleHeadOfAccounting, model.RoleDirector,
	model.RoleAdmin, model.RoleSuperAdmin,
}

var adminRoles = []string{model.RoleAdmin, model.RoleSuperAdmin}

var table = map[string][]string{
	UsersManage: adminRoles,

	ProductsRead:   allRoles,
	ProductsWrite:  adminRoles,
	ProductsDelete: {model.RoleSuperAdmin},

	DocumentsCreate:  allRoles,
	DocumentsRead:    allRoles,
	DocumentsApprove: approverRoles,
	DocumentsSuspend: approverRoles,

	ProjectsCreate:  allRoles,
	ProjectsRead:    allRoles,
	ProjectsApprove: approverRoles,
	ProjectsUpdate:  allRoles,

	CostCentersManage: adminRoles,

	FilesSubmit: allRoles,
	FilesRead:   allRoles,
	FilesReview: adminRoles,

	AuditRead:   adminRoles,
	StorageRead: allRoles,
}

// Allowed reports whether role may perform the given operation. Unknown
// operations deny everyone.
func Allowed(operation, role string) bool {
	for _, allowed := range table[operation] {
		if allowed == role {
			return true
		}
	}
	return false
}
