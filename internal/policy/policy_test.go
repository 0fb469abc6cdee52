package policy

import (
	"testing"

	"docflow/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestAllowed(t *testing.T) {
	t.Run("product deletion is superAdmin only", func(t *testing.T) {
		assert.True(t, Allowed(ProductsDelete, model.RoleSuperAdmin))
		assert.False(t, Allowed(ProductsDelete, model.RoleAdmin))
		assert.False(t, Allowed(ProductsDelete, model.RoleDirector))
	})

	t.Run("every role reads products", func(t *testing.T) {
		for _, role := range allRoles {
			assert.True(t, Allowed(ProductsRead, role), role)
		}
	})

	t.Run("staff cannot approve", func(t *testing.T) {
		assert.False(t, Allowed(DocumentsApprove, model.RoleStaff))
		assert.True(t, Allowed(DocumentsApprove, model.RoleApprover))
	})

	t.Run("unknown operation denies everyone", func(t *testing.T) {
		assert.False(t, Allowed("nonexistent.op", model.RoleSuperAdmin))
	})
}
