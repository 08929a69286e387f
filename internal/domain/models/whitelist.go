package models

// WhitelistEntry is one (method, path pattern) pair exempt from authentication.
type WhitelistEntry struct {
	Method  string `mapstructure:"method" json:"method"`
	Pattern string `mapstructure:"pattern" json:"pattern"`
}
