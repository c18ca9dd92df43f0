package config

// Application constants
const (
	AppName    = "hydrocli"
	AppVersion = "0.3.0"

	// EnvPrefix namespaces every environment variable (HYDRO_LOGGING_LEVEL, ...)
	EnvPrefix = "HYDRO"

	// File Paths (relative to the working directory)
	DefaultDataDir    = "data"
	DefaultLogsDir    = "logs"
	DefaultConfigFile = "hydrocli.yaml"
	DotEnvFile        = ".env"

	// Raw input patterns
	DefaultPiezometerPattern = "*COMPENSADA.xlsx"
	DefaultSoilPattern       = "z6*"

	// Output naming: {prefix}_{sensor}_{suffix}.csv
	PiezometerPrefix = "piezo-data"
	SoilPrefix       = "soil-data"
	SuffixFormatted  = "formatted"
	SuffixCleaned    = "cleaned"
	SuffixDaily      = "daily"
	OutputExt        = ".csv"

	// Per-campaign outlier counts written next to the cleaned tables
	OutlierSummaryFile = "outlier_summary.csv"

	// Timestamp layouts used in every output table
	TimestampLayout = "2006-01-02 15:04:05"
	DailyLayout     = "2006-01-02"

	// Defaults for the outlier filter
	DefaultZScoreThreshold = 3.0
	DefaultWorkers         = 1
)
