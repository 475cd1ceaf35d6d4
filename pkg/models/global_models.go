package models

// GlobalConfig represents the tool configuration, parsed from a YAML file.
type GlobalConfig struct {
	Project struct {
		RootFolder string `yaml:"root_folder"` // Project root scanned for compose files
		Scope      string `yaml:"scope"`       // Registry scope the records are written to
		MaxDepth   int    `yaml:"max_depth"`   // Maximum directory depth below the root
	} `yaml:"project"`
	Host struct {
		URL   string `yaml:"url"`   // Base URL of the host connection registry API
		Token string `yaml:"token"` // Bearer token for the host API
	} `yaml:"host"`
	Logging struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSize    int    `yaml:"max_size"` // MB
		MaxBackups int    `yaml:"max_backups"`
		MaxAge     int    `yaml:"max_age"` // days
		Compress   bool   `yaml:"compress"`
	} `yaml:"logging"`
}
