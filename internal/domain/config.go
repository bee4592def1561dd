package domain

// Config mirrors .cmdverify.yaml (or .cmdverify.toml) in the project root.
type Config struct {
	ConfigFormatVersion        string        `yaml:"configFormatVersion" toml:"configFormatVersion" validate:"omitempty,oneof=1"`
	Include                    []string      `yaml:"include" toml:"include" validate:"min=1,dive,required,glob"`
	Ignore                     []string      `yaml:"ignore" toml:"ignore" validate:"dive,required,glob"`
	CacheDir                   string        `yaml:"cacheDir" toml:"cacheDir" validate:"required"`
	KnowledgeBase              string        `yaml:"knowledgeBase" toml:"knowledgeBase" validate:"required"`
	TreatUnknownAsWarning      bool          `yaml:"treatUnknownAsWarning" toml:"treatUnknownAsWarning"`
	FailOnMissingKnowledgeBase bool          `yaml:"failOnMissingKnowledgeBase" toml:"failOnMissingKnowledgeBase"`
	ProbeTimeout               string        `yaml:"probeTimeout" toml:"probeTimeout" validate:"required,duration"`
	HistoryDB                  string        `yaml:"historyDB" toml:"historyDB"`
	MetricsFile                string        `yaml:"metricsFile" toml:"metricsFile"`
	Cache                      CacheSettings `yaml:"cache" toml:"cache"`
}

// CacheSettings selects the cache backend.
type CacheSettings struct {
	Backend string `yaml:"backend" toml:"backend" validate:"omitempty,oneof=file badger"`
}

// Cache backends.
const (
	CacheBackendFile   = "file"
	CacheBackendBadger = "badger"
)
