package model

// RoleModel mirrors the 'sys_roles' table.
type RoleModel struct {
	ID      int64  `gorm:"primaryKey;autoIncrement"`
	Domain  string `gorm:"type:varchar(50);not null"`
	RoleKey string `gorm:"type:varchar(100);not null"`
	Name    string `gorm:"type:varchar(100);not null"`
	Status  string `gorm:"type:varchar(16);not null;default:active"`
}

// TableName explicitly sets the table name for GORM.
func (RoleModel) TableName() string {
	return "sys_roles"
}

// UserRoleModel mirrors the 'sys_user_roles' assignment table.
type UserRoleModel struct {
	Domain string `gorm:"type:varchar(50);primaryKey"`
	UserID int64  `gorm:"primaryKey"`
	RoleID int64  `gorm:"primaryKey"`
}

// TableName explicitly sets the table name for GORM.
func (UserRoleModel) TableName() string {
	return "sys_user_roles"
}

// MenuModel mirrors the 'sys_menus' table. Perms is NULL for menus that grant nothing.
type MenuModel struct {
	ID       int64   `gorm:"primaryKey;autoIncrement"`
	ParentID int64   `gorm:"not null;default:0"`
	Name     string  `gorm:"type:varchar(100);not null"`
	Path     string  `gorm:"type:varchar(255)"`
	MenuType string  `gorm:"type:varchar(16);not null"`
	Perms    *string `gorm:"type:varchar(100)"`
	Sort     int     `gorm:"not null;default:0"`
	Status   string  `gorm:"type:varchar(16);not null;default:active"`
}

// TableName explicitly sets the table name for GORM.
func (MenuModel) TableName() string {
	return "sys_menus"
}

// RoleMenuModel mirrors the 'sys_role_menus' assignment table.
type RoleMenuModel struct {
	RoleID int64 `gorm:"primaryKey"`
	MenuID int64 `gorm:"primaryKey"`
}

// TableName explicitly sets the table name for GORM.
func (RoleMenuModel) TableName() string {
	return "sys_role_menus"
}

// All lists every model, in dependency order, for migrations in tests and tooling.
func All() []any {
	return []any{
		&UserModel{},
		&CredentialModel{},
		&SessionModel{},
		&RoleModel{},
		&UserRoleModel{},
		&MenuModel{},
		&RoleMenuModel{},
	}
}
