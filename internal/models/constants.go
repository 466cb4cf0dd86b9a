package models

// Defaults applied when the caller leaves a field empty.
const (
	DefaultCurrency      = "USD"
	DefaultCategoryColor = "#3b82f6"
	DefaultRulePriority  = 0
)

// File permissions
const (
	PermissionConfigFile = 0600
	PermissionDirectory  = 0750
	PermissionExportFile = 0644
)
