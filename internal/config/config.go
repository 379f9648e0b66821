// Package config loads the settings shared by the admin tools.
// Values are merged with the priority: command line flags, environment
// variables, JSON config file, defaults. A .env file in the working
// directory is loaded into the environment first.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/patric-chuzhbe/lmkadmin/internal/auth"
)

const (
	DriverPgx = "pgx"
	DriverPq  = "postgres"
)

// Config holds every setting of the test user provisioner and the schema initializer.
type Config struct {
	ProjectURL          string        `env:"SUPABASE_URL" json:"supabase_url" validate:"required,url"`
	ServiceRoleKey      string        `env:"SUPABASE_SERVICE_ROLE_KEY" json:"supabase_service_role_key" validate:"required"`
	LogLevel            string        `env:"LOG_LEVEL" json:"log_level" validate:"loglevel"`
	RequestTimeout      time.Duration `env:"REQUEST_TIMEOUT" json:"request_timeout"`
	DatabaseDSN         string        `env:"DATABASE_DSN" json:"database_dsn"`
	DatabasePassword    string        `env:"SUPABASE_DB_PASSWORD" json:"supabase_db_password"`
	DBDriver            string        `env:"DB_DRIVER" json:"db_driver" validate:"dbdriver"`
	DBConnectionTimeout time.Duration `env:"DB_CONNECTION_TIMEOUT" json:"db_connection_timeout"`
	SchemaFile          string        `env:"SCHEMA_FILE" json:"schema_file" validate:"filepath"`
	MigrationsDir       string        `env:"MIGRATIONS_DIR" json:"migrations_dir"`
	TestUserEmail       string        `env:"TEST_USER_EMAIL" json:"test_user_email" validate:"omitempty,email"`
	TestUserPassword    string        `env:"TEST_USER_PASSWORD" json:"test_user_password" validate:"min=6"`
	TestUserFullName    string        `env:"TEST_USER_FULL_NAME" json:"test_user_full_name"`
	TestUserLocation    string        `env:"TEST_USER_LOCATION" json:"test_user_location"`
	TestUserTags        []string      `env:"TEST_USER_TAGS" envSeparator:"," json:"test_user_tags"`
	ConfigFile          string        `env:"CONFIG" json:"-"`
}

var defaultConfig = Config{
	LogLevel:            "info",
	RequestTimeout:      30 * time.Second,
	DBDriver:            DriverPgx,
	DBConnectionTimeout: 10 * time.Second,
	TestUserPassword:    "Password123!",
	TestUserFullName:    "Test User",
	TestUserLocation:    "Los Angeles, CA",
	TestUserTags:        []string{"Technology", "Food & Dining", "Entertainment"},
}

type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
	args                []string
}

// WithDisableFlagsParsing skips command line parsing; used by tests.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// WithArgs replaces os.Args[1:] as the source of command line flags.
func WithArgs(args []string) InitOption {
	return func(options *initOptions) {
		options.args = args
	}
}

func validateFilePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	if path == "" {
		return true
	}
	_, err := os.Stat(path)

	return err == nil || os.IsNotExist(err)
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug":   true,
		"info":    true,
		"warn":    true,
		"warning": true,
		"error":   true,
		"fatal":   true,
	}

	return allowedLogLevels[value]
}

func validateDBDriver(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	return value == DriverPgx || value == DriverPq
}

func (c *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("filepath", validateFilePath)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("dbdriver", validateDBDriver)
	if err != nil {
		return err
	}

	return validate.Struct(c)
}

func applyDefaults(values *Config, defaults Config) {
	if values.LogLevel == "" {
		values.LogLevel = defaults.LogLevel
	}
	if values.RequestTimeout == 0 {
		values.RequestTimeout = defaults.RequestTimeout
	}
	if values.DBDriver == "" {
		values.DBDriver = defaults.DBDriver
	}
	if values.DBConnectionTimeout == 0 {
		values.DBConnectionTimeout = defaults.DBConnectionTimeout
	}
	if values.TestUserPassword == "" {
		values.TestUserPassword = defaults.TestUserPassword
	}
	if values.TestUserFullName == "" {
		values.TestUserFullName = defaults.TestUserFullName
	}
	if values.TestUserLocation == "" {
		values.TestUserLocation = defaults.TestUserLocation
	}
	if len(values.TestUserTags) == 0 {
		values.TestUserTags = append([]string(nil), defaults.TestUserTags...)
	}
}

// overlay copies every non-zero field of src over dst.
func overlay(dst *Config, src Config) {
	if src.ProjectURL != "" {
		dst.ProjectURL = src.ProjectURL
	}
	if src.ServiceRoleKey != "" {
		dst.ServiceRoleKey = src.ServiceRoleKey
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.RequestTimeout != 0 {
		dst.RequestTimeout = src.RequestTimeout
	}
	if src.DatabaseDSN != "" {
		dst.DatabaseDSN = src.DatabaseDSN
	}
	if src.DatabasePassword != "" {
		dst.DatabasePassword = src.DatabasePassword
	}
	if src.DBDriver != "" {
		dst.DBDriver = src.DBDriver
	}
	if src.DBConnectionTimeout != 0 {
		dst.DBConnectionTimeout = src.DBConnectionTimeout
	}
	if src.SchemaFile != "" {
		dst.SchemaFile = src.SchemaFile
	}
	if src.MigrationsDir != "" {
		dst.MigrationsDir = src.MigrationsDir
	}
	if src.TestUserEmail != "" {
		dst.TestUserEmail = src.TestUserEmail
	}
	if src.TestUserPassword != "" {
		dst.TestUserPassword = src.TestUserPassword
	}
	if src.TestUserFullName != "" {
		dst.TestUserFullName = src.TestUserFullName
	}
	if src.TestUserLocation != "" {
		dst.TestUserLocation = src.TestUserLocation
	}
	if len(src.TestUserTags) > 0 {
		dst.TestUserTags = src.TestUserTags
	}
	if src.ConfigFile != "" {
		dst.ConfigFile = src.ConfigFile
	}
}

// jsonDuration accepts "30s"-style strings, like the environment does, as
// well as integer nanoseconds.
type jsonDuration time.Duration

func (d *jsonDuration) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch value := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = jsonDuration(parsed)
	case float64:
		*d = jsonDuration(time.Duration(value))
	default:
		return fmt.Errorf("invalid duration %s", data)
	}

	return nil
}

// fileConfig shadows the duration fields of Config in the JSON file.
type fileConfig struct {
	Config
	RequestTimeout      jsonDuration `json:"request_timeout"`
	DBConnectionTimeout jsonDuration `json:"db_connection_timeout"`
}

func loadJSONFile(path string) (Config, error) {
	var file fileConfig

	data, err := os.ReadFile(path)
	if err != nil {
		return file.Config, fmt.Errorf("unable to read the config file %q: %w", path, err)
	}

	if err := json.Unmarshal(data, &file); err != nil {
		return file.Config, fmt.Errorf("unable to parse the config file %q: %w", path, err)
	}

	values := file.Config
	values.RequestTimeout = time.Duration(file.RequestTimeout)
	values.DBConnectionTimeout = time.Duration(file.DBConnectionTimeout)

	return values, nil
}

func parseFlags(args []string) (Config, error) {
	var values Config

	flags := flag.NewFlagSet("lmkadmin", flag.ContinueOnError)
	flags.StringVar(&values.ConfigFile, "c", "", "path to a JSON config file")
	flags.StringVar(&values.ProjectURL, "u", "", "project URL, e.g. https://<project>.supabase.co")
	flags.StringVar(&values.ServiceRoleKey, "k", "", "service role key")
	flags.StringVar(&values.LogLevel, "l", "", "logger level")
	flags.StringVar(&values.DatabaseDSN, "d", "", "database connection string, overrides the derived one")
	flags.StringVar(&values.SchemaFile, "f", "", "SQL file to execute, the embedded schema when empty")
	flags.StringVar(&values.MigrationsDir, "m", "", "directory with goose migrations to apply after the SQL file")
	flags.StringVar(&values.TestUserEmail, "e", "", "email of the test user")

	if err := flags.Parse(args); err != nil {
		return values, err
	}

	return values, nil
}

// New builds the configuration from all sources and validates it.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
		args:                os.Args[1:],
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Unable to load .env file: %v", err)
	}

	var fromFlags Config
	if !options.disableFlagsParsing {
		fromFlags, err = parseFlags(options.args)
		if err != nil {
			return nil, err
		}
	}

	var fromEnv Config
	if err := env.Parse(&fromEnv); err != nil {
		return nil, err
	}

	configFile := fromFlags.ConfigFile
	if configFile == "" {
		configFile = fromEnv.ConfigFile
	}

	values := &Config{}
	if configFile != "" {
		fromJSON, err := loadJSONFile(configFile)
		if err != nil {
			return nil, err
		}
		overlay(values, fromJSON)
	}
	overlay(values, fromEnv)
	overlay(values, fromFlags)
	values.ConfigFile = configFile

	applyDefaults(values, defaultConfig)

	values.ProjectURL = strings.TrimRight(values.ProjectURL, "/")

	if err := values.validate(); err != nil {
		return nil, err
	}

	return values, nil
}

// ProjectRef returns the project identifier: the first DNS label of the
// project URL host, or the ref claim of the service role key when the URL
// host is not a platform subdomain.
func (c *Config) ProjectRef() (string, error) {
	parsed, err := url.Parse(c.ProjectURL)
	if err != nil {
		return "", fmt.Errorf("invalid project URL %q: %w", c.ProjectURL, err)
	}

	host := parsed.Hostname()
	if net.ParseIP(host) == nil {
		if label, _, found := strings.Cut(host, "."); found && label != "" {
			return label, nil
		}
	}

	claims, err := auth.ParseServiceKey(c.ServiceRoleKey)
	if err != nil {
		return "", err
	}
	if claims.Ref == "" {
		return "", fmt.Errorf("unable to derive the project ref from %q", c.ProjectURL)
	}

	return claims.Ref, nil
}

// DSN returns DatabaseDSN when set, the connection string derived from the
// project ref otherwise.
func (c *Config) DSN() (string, error) {
	if c.DatabaseDSN != "" {
		return c.DatabaseDSN, nil
	}

	ref, err := c.ProjectRef()
	if err != nil {
		return "", err
	}

	password := c.DatabasePassword
	if password == "" {
		password = c.ServiceRoleKey
	}

	dsn := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword("postgres", password),
		Host:   fmt.Sprintf("db.%s.supabase.co:5432", ref),
		Path:   "/postgres",
	}

	return dsn.String(), nil
}
