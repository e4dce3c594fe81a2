package config

const (
	KeyConfigFile      = "config"
	KeyAPIURL          = "api_url"
	KeyMinApprovals    = "min_approvals"
	KeyLogLevel        = "log_level"
	KeyToken           = "token"
	KeyAppID           = "app_id"
	KeyInstallationID  = "app_installation_id"
	KeyPrivateKeyPath  = "app_private_key_path"
	KeyFavoritesFile   = "favorites_file"
	KeyIgnoredContexts = "ignored_contexts"
)

const envPrefix = "GH_PR_STATUS"

// flag names bound to keys
var flagKeys = map[string]string{
	"config":        KeyConfigFile,
	"api-url":       KeyAPIURL,
	"min-approvals": KeyMinApprovals,
	"log-level":     KeyLogLevel,
}
