package config_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/otebot/otebot-api/internal/infra/config"
)

type testConfig struct {
	EnvConfig

	StringValue string `env:"STRING_VALUE" default:"default"`
	IntValue    int    `env:"INT_VALUE" default:"42"`
	BoolValue   bool   `env:"BOOL_VALUE" default:"true"`
	NoEnvTag    string
	Nested      testNestedConfig `envPrefix:"NESTED_"`
}

type testNestedConfig struct {
	Value string `env:"VALUE" default:"nested-default"`
}

//nolint:paralleltest
func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		namespace string
		envVars   map[string]string
		want      testConfig
		wantErr   bool
	}{
		{
			name:      "uses default values when env vars not set",
			namespace: "",
			envVars:   map[string]string{},
			want: testConfig{
				StringValue: "default",
				IntValue:    42,
				BoolValue:   true,
				Nested: testNestedConfig{
					Value: "nested-default",
				},
			},
		},
		{
			name:      "reads bare environment variables",
			namespace: "",
			envVars: map[string]string{
				"STRING_VALUE": "env-value",
				"INT_VALUE":    "123",
				"BOOL_VALUE":   "false",
				"NESTED_VALUE": "env-nested",
			},
			want: testConfig{
				StringValue: "env-value",
				IntValue:    123,
				BoolValue:   false,
				Nested: testNestedConfig{
					Value: "env-nested",
				},
			},
		},
		{
			name:      "namespaced variable overrides bare name",
			namespace: "OTEBOT_API",
			envVars: map[string]string{
				"STRING_VALUE":            "bare",
				"OTEBOT_API_STRING_VALUE": "namespaced",
			},
			want: testConfig{
				StringValue: "namespaced",
				IntValue:    42,
				BoolValue:   true,
				Nested: testNestedConfig{
					Value: "nested-default",
				},
			},
		},
		{
			name:      "falls back to bare name when namespaced var not set",
			namespace: "OTEBOT_API",
			envVars: map[string]string{
				"STRING_VALUE": "bare",
			},
			want: testConfig{
				StringValue: "bare",
				IntValue:    42,
				BoolValue:   true,
				Nested: testNestedConfig{
					Value: "nested-default",
				},
			},
		},
		{
			name:      "fails on invalid int value",
			namespace: "",
			envVars: map[string]string{
				"INT_VALUE": "not-an-int",
			},
			wantErr: true,
		},
		{
			name:      "fails on invalid bool value",
			namespace: "",
			envVars: map[string]string{
				"BOOL_VALUE": "not-a-bool",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			var cfg testConfig

			err := Parse(context.Background(), &cfg, tt.namespace)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}

			if tt.wantErr {
				return
			}

			if cfg.StringValue != tt.want.StringValue {
				t.Errorf("StringValue = %q, want %q", cfg.StringValue, tt.want.StringValue)
			}
			if cfg.IntValue != tt.want.IntValue {
				t.Errorf("IntValue = %d, want %d", cfg.IntValue, tt.want.IntValue)
			}
			if cfg.BoolValue != tt.want.BoolValue {
				t.Errorf("BoolValue = %v, want %v", cfg.BoolValue, tt.want.BoolValue)
			}
			if cfg.Nested.Value != tt.want.Nested.Value {
				t.Errorf("Nested.Value = %q, want %q", cfg.Nested.Value, tt.want.Nested.Value)
			}
		})
	}
}

//nolint:paralleltest
func TestParse_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  any
	}{
		{name: "not a pointer", cfg: testConfig{}},
		{name: "pointer to non-struct", cfg: new(string)},
		{name: "struct without EnvConfig", cfg: &struct{ Value string }{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Parse(context.Background(), tt.cfg, ""); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Parse() error = %v, want %v", err, ErrInvalidConfig)
			}
		})
	}
}
