// Package config loads runtime configuration and the static catalog for hydrocli.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority, HYDRO_* namespace, .env honoured)
//  2. YAML file (HYDRO_CONFIG_FILE, ./hydrocli.yaml or ./configs/hydrocli.yaml)
//  3. Default values (lowest priority)
//
// Examples:
//
//	HYDRO_LOGGING_LEVEL=debug
//	HYDRO_PATHS_DATA_DIR=/srv/monitoring/data
//	HYDRO_PIPELINE_WORKERS=4
//	HYDRO_TELEMETRY_METRICS_TEXTFILE=/var/lib/node_exporter/hydrocli.prom
//
// # Catalog
//
// The catalog holds the static tables: piezometer rename and drop rules,
// datalogger port maps, soil timestamp layouts, field campaigns, the z-score
// threshold and missing-value tokens. The default is embedded from
// catalog.yaml; HYDRO_PATHS_CATALOG_FILE points to a replacement.
//
// # Path Management
//
// Paths derives every raw and processed directory from the data directory
// and builds output file names:
//
//	paths, _ := cfg.GetPaths()
//	out := paths.PiezometerFormattedPath("P1") // .../01_formatted/piezo-data_P1_formatted.csv
package config
