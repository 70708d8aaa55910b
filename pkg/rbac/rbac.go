package rbac

import "fmt"

// 权限常量
const (
	PermissionReadProject   = "project:read"
	PermissionCreateProject = "project:create"
	PermissionUpdateProject = "project:update"
	PermissionDeleteProject = "project:delete"

	// 管理操作权限
	PermissionReplayOutbox = "outbox:replay"
)

// 角色常量
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// 角色权限映射
var rolePermissions = map[string][]string{
	RoleUser: {
		PermissionReadProject,
		PermissionCreateProject,
		PermissionUpdateProject,
		PermissionDeleteProject,
	},
	RoleAdmin: {
		PermissionReadProject,
		PermissionCreateProject,
		PermissionUpdateProject,
		PermissionDeleteProject,
		PermissionReplayOutbox,
	},
}

// NormalizeRole 未知或空角色按普通用户处理
func NormalizeRole(role string) string {
	if _, ok := rolePermissions[role]; ok {
		return role
	}
	return RoleUser
}

// HasPermission 检查角色是否有指定权限
func HasPermission(role string, permission string) bool {
	for _, p := range rolePermissions[NormalizeRole(role)] {
		if p == permission {
			return true
		}
	}
	return false
}

// CheckPermission 检查用户是否有指定权限（返回错误而不是布尔值，便于处理）
func CheckPermission(userID int, role string, permission string) error {
	if !HasPermission(role, permission) {
		return &PermissionDeniedError{
			UserID:     userID,
			Role:       role,
			Permission: permission,
		}
	}
	return nil
}

// PermissionDeniedError 表示权限不足的错误
type PermissionDeniedError struct {
	UserID     int
	Role       string
	Permission string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("insufficient permissions: %s", e.Permission)
}
