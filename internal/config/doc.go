// Package config loads application configuration.
//
// # Configuration Sources
//
// Values are resolved in order of precedence:
//
//	1. Environment variables, including a .env file in the working directory
//	2. A YAML config file (SBS_CONFIG_FILE, or config.yaml / configs/config.yaml)
//	3. Default()
//
// # Environment Variables
//
// Variables are namespaced SBS_<SECTION>_<FIELD>:
//
//	SBS_SERVER_PORT=8080
//	SBS_LOGGING_LEVEL=debug
//	SBS_PARSER_KEYWORD_SCAN_ROWS=100
//	SBS_HISTORY_DB_PATH=data/history.db
//
// Template positions for the layout cascade can only be overridden in YAML:
//
//	parser:
//	  primary_template:
//	    header_row: 16
//	    header_cols: [1, 2, 3]
//	    data_row: 18
//	    data_cols: [1, 2, 3]
//
// The merged configuration is validated with go-playground/validator struct tags.
package config
