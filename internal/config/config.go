// =============================================================================
// Sample Sheet Loader - Configuration Module
// =============================================================================
//
// This module loads the optional YAML configuration file. Every setting has
// a default, so the loader runs without a configuration file at all.
//
// EXAMPLE (samplesheet.yaml):
//
//   schema:
//     required_fields: [sample, fastqs, cytaimage, slide, area]
//     optional_fields: [id, image, darkimage, colorizedimage, loupe_alignment, barcode_csv]
//     remap:
//       - field: id
//         fallback: sample
//     filelike_fields: [fastqs, cytaimage, image, darkimage, colorizedimage, loupe_alignment, barcode_csv]
//     comment_prefix: "#"       # "" skips blank lines only
//     duplicates: merge          # merge | keep_first | reject
//     template: ""               # optional XLSX schema template
//   logging:
//     level: info                # debug | info | warn | error
//     format: text               # text | json
//   output:
//     format: json               # json | yaml | xml
//     error_log_dir: ""
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/samplesheet/internal/csvparser"
	"github.com/ginjaninja78/samplesheet/internal/output"
	"github.com/ginjaninja78/samplesheet/internal/samplesheet"
	"github.com/ginjaninja78/samplesheet/internal/tableindex"
	"github.com/ginjaninja78/samplesheet/internal/xlsxparser"
	"github.com/ginjaninja78/samplesheet/pkg/utils"
)

// DefaultConfigFile is looked up in the working directory when no
// configuration file is named explicitly.
const DefaultConfigFile = "samplesheet.yaml"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	Schema  SchemaConfig  `yaml:"schema"`
	Logging LoggingConfig `yaml:"logging"`
	Output  OutputConfig  `yaml:"output"`

	// Path is the file the configuration was read from ("" for defaults).
	Path string `yaml:"-"`
}

// SchemaConfig overrides the sample sheet schema. Nil lists keep the
// built-in defaults; an explicit empty list clears them.
type SchemaConfig struct {
	KeyField       string                  `yaml:"key_field"`
	RequiredFields []string                `yaml:"required_fields"`
	OptionalFields []string                `yaml:"optional_fields"`
	Remap          []samplesheet.RemapRule `yaml:"remap"`
	FileLikeFields []string                `yaml:"filelike_fields"`

	// CommentPrefix marks comment lines. Unset means "#"; an explicit empty
	// string turns comment filtering off so only blank lines are skipped.
	CommentPrefix *string `yaml:"comment_prefix"`

	// Duplicates is one of merge, keep_first, reject.
	Duplicates string `yaml:"duplicates"`

	// Template is an XLSX schema template. When set, its field definitions
	// replace the field lists above. Relative paths resolve against the
	// configuration file's directory.
	Template string `yaml:"template,omitempty"`
}

// LoggingConfig controls log/slog output.
type LoggingConfig struct {
	// Level: debug, info, warn, error. Default: info
	Level string `yaml:"level"`

	// Format: text or json. Default: text
	Format string `yaml:"format"`
}

// OutputConfig controls how results are written.
type OutputConfig struct {
	// Format: json, yaml or xml. Default: json
	Format string `yaml:"format"`

	// ErrorLogDir, when set, receives an error log file for every failed load.
	ErrorLogDir string `yaml:"error_log_dir"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the configuration file at path.
//
// PARAMETERS:
//   - path: The configuration file. When empty, DefaultConfigFile is used if
//     it exists in the working directory, otherwise the defaults.
//
// RETURNS:
//   - The configuration with defaults applied.
//   - An error if a named file cannot be read, parsed, or validated.
func Load(path string) (*Config, error) {
	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		path = DefaultConfigFile
	}

	path, err := utils.NormalizePath(path, "", false)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.Path = path

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	s := &cfg.Schema
	if s.KeyField == "" {
		s.KeyField = samplesheet.KeyField
	}
	if s.RequiredFields == nil {
		s.RequiredFields = samplesheet.DefaultRequiredFields()
	}
	if s.OptionalFields == nil {
		s.OptionalFields = samplesheet.DefaultOptionalFields()
	}
	if s.Remap == nil {
		s.Remap = samplesheet.DefaultRemap()
	}
	if s.FileLikeFields == nil {
		s.FileLikeFields = samplesheet.DefaultFileLikeFields()
	}
	if s.CommentPrefix == nil {
		prefix := csvparser.DefaultCommentPrefix
		s.CommentPrefix = &prefix
	}
	if s.Duplicates == "" {
		s.Duplicates = string(tableindex.DuplicateMerge)
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = "json"
	}
}

// validate checks values that defaults cannot repair.
func validate(cfg *Config) error {
	if _, err := tableindex.ParseDuplicatePolicy(cfg.Schema.Duplicates); err != nil {
		return err
	}

	for i, rule := range cfg.Schema.Remap {
		if rule.Field == "" || rule.Fallback == "" {
			return fmt.Errorf("remap rule %d needs both field and fallback", i+1)
		}
	}

	switch strings.ToLower(cfg.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown logging format %q", cfg.Logging.Format)
	}

	if _, err := output.ParseFormat(cfg.Output.Format); err != nil {
		return err
	}

	return nil
}

// =============================================================================
// SCHEMA CONSTRUCTION
// =============================================================================

// BuildSchema turns the schema section into a samplesheet.Schema, reading
// the XLSX template when one is configured.
func (c *Config) BuildSchema() (samplesheet.Schema, error) {
	duplicates, err := tableindex.ParseDuplicatePolicy(c.Schema.Duplicates)
	if err != nil {
		return samplesheet.Schema{}, err
	}

	commentPrefix := csvparser.DefaultCommentPrefix
	if c.Schema.CommentPrefix != nil {
		commentPrefix = *c.Schema.CommentPrefix
	}

	schema := samplesheet.Schema{
		KeyField:       c.Schema.KeyField,
		RequiredFields: c.Schema.RequiredFields,
		OptionalFields: c.Schema.OptionalFields,
		Remap:          c.Schema.Remap,
		FileLikeFields: c.Schema.FileLikeFields,
		CommentPrefix:  commentPrefix,
		Duplicates:     duplicates,
	}.Clone()

	if c.Schema.Template == "" {
		return schema, nil
	}

	base := ""
	if c.Path != "" {
		base = filepath.Dir(c.Path)
	}
	templatePath, err := utils.NormalizePath(c.Schema.Template, base, true)
	if err != nil {
		return samplesheet.Schema{}, fmt.Errorf("schema template: %w", err)
	}

	tmpl, err := xlsxparser.Parse(templatePath)
	if err != nil {
		return samplesheet.Schema{}, fmt.Errorf("schema template %s: %w", templatePath, err)
	}

	return samplesheet.SchemaFromTemplate(tmpl, schema), nil
}

// FromSchema converts a schema back into its configuration form, for
// printing the effective schema.
func FromSchema(s samplesheet.Schema) SchemaConfig {
	s = s.Clone()
	return SchemaConfig{
		KeyField:       s.KeyField,
		RequiredFields: s.RequiredFields,
		OptionalFields: s.OptionalFields,
		Remap:          s.Remap,
		FileLikeFields: s.FileLikeFields,
		CommentPrefix:  &s.CommentPrefix,
		Duplicates:     string(s.Duplicates),
	}
}
