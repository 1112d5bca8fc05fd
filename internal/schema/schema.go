// Package schema holds the two physical store schemas and the migration
// scripts as embedded SQL assets.
package schema

import (
	"embed"
	"strings"
)

//go:embed sql/*.sql
var assets embed.FS

const (
	oldDBPathPlaceholder   = "__OLD_DB_PATH_PLACEHOLDER__"
	superadminPlaceholder  = "__SUPERADMIN_ID_PLACEHOLDER__"
	singleTenantAsset      = "sql/single_tenant.sql"
	multiTenantAsset       = "sql/multi_tenant.sql"
	attachOldStoreAsset    = "sql/attach_old_store.sql"
	copyDataAsset          = "sql/copy_data.sql"
	ownershipTriggersAsset = "sql/triggers.sql"
)

func mustRead(name string) string {
	raw, err := assets.ReadFile(name)
	if err != nil {
		// Embedded assets are compiled in; a missing one is a build defect.
		panic(err)
	}
	return string(raw)
}

// SingleTenant returns the DDL for the single-tenant (non-auth) store.
func SingleTenant() string { return mustRead(singleTenantAsset) }

// MultiTenant returns the DDL for the multi-tenant (auth) store.
func MultiTenant() string { return mustRead(multiTenantAsset) }

// AttachOldStore returns the statement attaching the single-tenant store,
// with the old-store path substituted. The path is internally produced, so
// plain string replacement is acceptable here.
func AttachOldStore(oldPath string) string {
	return strings.ReplaceAll(mustRead(attachOldStoreAsset), oldDBPathPlaceholder, oldPath)
}

// CopyData returns the data-migration script with the superadmin id
// substituted; every copied row that requires an owner is tagged with it.
func CopyData(superadminID string) string {
	return strings.ReplaceAll(mustRead(copyDataAsset), superadminPlaceholder, superadminID)
}

// OwnershipTriggers returns the role-gating triggers installed after the
// bulk copy. They reference the users table, so they must not exist while
// rows are being copied in.
func OwnershipTriggers() string { return mustRead(ownershipTriggersAsset) }
