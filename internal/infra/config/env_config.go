// Package config loads configuration structs from environment variables.
//
// Fields are annotated with `env:"NAME"` and optionally `default:"..."`.
// Nested structs are walked recursively; an `envPrefix:"..."` tag on the
// field prepends to the names of the nested fields. Lookup tries the
// namespaced name first and falls back through shorter prefixes down to the
// bare name, so OTEBOT_API_PORT overrides PORT when both are set.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

var (
	// ErrInvalidConfig is returned when the provided config is not a pointer to a
	// struct that embeds EnvConfig.
	ErrInvalidConfig = errors.New("config must be a pointer to a struct embedding EnvConfig")

	// ErrVarNotSet is returned when a required environment variable is not set
	// and has no default.
	ErrVarNotSet = errors.New("env var not set")

	// ErrUnsupportedVarType is returned when an environment variable targets a
	// Go type the parser does not handle.
	ErrUnsupportedVarType = errors.New("unsupported env var type")
)

// EnvConfig must be embedded in the top-level configuration struct to enable
// environment variable parsing.
type EnvConfig struct {
	namespace string
}

func getEnvConfig(cfg any) (*EnvConfig, error) {
	value := reflect.ValueOf(cfg)

	if value.Kind() != reflect.Ptr || value.Elem().Kind() != reflect.Struct {
		return nil, ErrInvalidConfig
	}

	value = value.Elem()
	structType := value.Type()

	for i := range structType.NumField() {
		field := structType.Field(i)
		//nolint:exhaustruct
		if field.Anonymous && field.Type == reflect.TypeOf(EnvConfig{}) {
			if embedded := value.Field(i); embedded.CanAddr() {
				//nolint:forcetypeassert
				return embedded.Addr().Interface().(*EnvConfig), nil
			}
		}
	}

	return nil, ErrInvalidConfig
}

// Parse loads configuration values from environment variables into cfg.
// The namespace is a prefix (for example "OTEBOT_API") tried ahead of the bare
// variable names; pass "" to use bare names only.
// Returns an error if parsing fails or required variables are missing.
func Parse(ctx context.Context, cfg any, namespace string) error {
	envConfig, err := getEnvConfig(cfg)
	if err != nil {
		return fmt.Errorf("get env config: %w", err)
	}

	envConfig.namespace = namespace

	return parse(namespace, "", cfg)
}

func parse(namespace, prefix string, cfg interface{}) error {
	structType := reflect.TypeOf(cfg).Elem()
	structValue := reflect.ValueOf(cfg).Elem()

	for i := range structType.NumField() {
		field := structType.Field(i)
		fieldValue := structValue.Field(i)

		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(EnvConfig{}) {
			envPrefix := field.Tag.Get("envPrefix")

			if err := parse(namespace, prefix+envPrefix, fieldValue.Addr().Interface()); err != nil {
				return err
			}

			continue
		}

		if err := parseField(namespace, prefix, field, fieldValue); err != nil {
			return fmt.Errorf("parse field: %w", err)
		}
	}

	return nil
}

// lookupEnv walks the namespace cascade from most to least specific, ending at
// the bare variable name.
func lookupEnv(namespace, name string) (string, bool) {
	nsParts := strings.Split(namespace, "_")

	for i := len(nsParts); i >= 0; i-- {
		envName := strings.Join(nsParts[:i], "_")
		if envName != "" {
			envName += "_"
		}

		if value, ok := os.LookupEnv(envName + name); ok {
			return value, true
		}
	}

	return "", false
}

func parseField(
	namespace string,
	prefix string,
	field reflect.StructField,
	fieldValue reflect.Value,
) error {
	envTag := field.Tag.Get("env")
	if envTag == "" {
		return nil // Skip field if no env tag is set
	}

	defaultValue, hasDefault := field.Tag.Lookup("default")

	envValue, envExists := lookupEnv(namespace, prefix+envTag)
	if !envExists {
		if !hasDefault {
			return fmt.Errorf("%w: %s", ErrVarNotSet, envTag)
		}

		envValue = defaultValue
	}

	//nolint:exhaustive
	switch field.Type.Kind() {
	case reflect.String:
		fieldValue.SetString(envValue)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intValue, err := strconv.Atoi(envValue)
		if err != nil {
			return fmt.Errorf("invalid type for %s: %w", envTag, err)
		}

		fieldValue.SetInt(int64(intValue))
	case reflect.Bool:
		boolValue, err := strconv.ParseBool(envValue)
		if err != nil {
			return fmt.Errorf("invalid type for %s: %w", envTag, err)
		}

		fieldValue.SetBool(boolValue)
	default:
		return fmt.Errorf("%w: %s (%v)", ErrUnsupportedVarType, envTag, field.Type.Kind())
	}

	return nil
}
