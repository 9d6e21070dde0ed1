package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-lotes/internal/domain/access"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

func TestCan(t *testing.T) {
	tests := []struct {
		role string
		perm access.Permission
		want bool
	}{
		{entity.RoleAdmin, access.UsersManage, true},
		{entity.RoleAdmin, access.BatchesWrite, true},
		{entity.RoleBodeguero, access.BatchesWrite, true},
		{entity.RoleBodeguero, access.LabelsPrint, true},
		{entity.RoleBodeguero, access.UsersManage, false},
		{entity.RoleVendedor, access.BatchesRead, true},
		{entity.RoleVendedor, access.ExportsRead, true},
		{entity.RoleVendedor, access.BatchesWrite, false},
		{entity.RoleVendedor, access.LabelsPrint, false},
		{"auditor", access.BatchesRead, false},
		{"", access.MaterialsRead, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, access.Can(tt.role, tt.perm), "%s / %s", tt.role, tt.perm)
	}
}

func TestPermissionsOf(t *testing.T) {
	assert.Len(t, access.PermissionsOf(entity.RoleVendedor), 5)
	assert.Len(t, access.PermissionsOf(entity.RoleAdmin), 11)
	assert.Empty(t, access.PermissionsOf("desconocido"))
}
