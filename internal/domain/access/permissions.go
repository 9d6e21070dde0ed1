// Package access concentra la tabla estática de permisos por rol.
// Los handlers HTTP la consultan vía RequirePermission; no hay permisos por usuario.
package access

import "github.com/jhoicas/inventario-lotes/internal/domain/entity"

// Permission acción autorizable sobre un recurso ("recurso:acción").
type Permission string

const (
	MaterialsRead   Permission = "materials:read"
	MaterialsWrite  Permission = "materials:write"
	BatchesRead     Permission = "batches:read"
	BatchesWrite    Permission = "batches:write"
	SuppliersRead   Permission = "suppliers:read"
	SuppliersWrite  Permission = "suppliers:write"
	WarehousesRead  Permission = "warehouses:read"
	WarehousesWrite Permission = "warehouses:write"
	UsersManage     Permission = "users:manage"
	ExportsRead     Permission = "exports:read"
	LabelsPrint     Permission = "labels:print"
)

var readOnly = []Permission{MaterialsRead, BatchesRead, SuppliersRead, WarehousesRead, ExportsRead}

var rolePermissions = map[string]map[Permission]struct{}{
	entity.RoleAdmin: set(append(readOnly,
		MaterialsWrite, BatchesWrite, SuppliersWrite, WarehousesWrite, UsersManage, LabelsPrint)...),
	entity.RoleBodeguero: set(append(readOnly,
		MaterialsWrite, BatchesWrite, SuppliersWrite, WarehousesWrite, LabelsPrint)...),
	entity.RoleVendedor: set(readOnly...),
}

// Can indica si el rol tiene el permiso. Roles desconocidos no tienen ninguno.
func Can(role string, p Permission) bool {
	perms, ok := rolePermissions[role]
	if !ok {
		return false
	}
	_, ok = perms[p]
	return ok
}

// PermissionsOf lista los permisos de un rol (orden no garantizado).
func PermissionsOf(role string) []Permission {
	perms := rolePermissions[role]
	out := make([]Permission, 0, len(perms))
	for p := range perms {
		out = append(out, p)
	}
	return out
}

func set(perms ...Permission) map[Permission]struct{} {
	m := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		m[p] = struct{}{}
	}
	return m
}
