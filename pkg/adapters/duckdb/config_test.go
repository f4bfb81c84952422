package duckdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		name    string
		input   map[string]any
		want    *Params
		wantErr bool
	}{
		{
			name:  "nil params returns empty struct",
			input: nil,
			want:  &Params{},
		},
		{
			name: "extensions and settings",
			input: map[string]any{
				"extensions": []any{"httpfs", "json"},
				"settings":   map[string]any{"memory_limit": "4GB", "threads": 4},
			},
			want: &Params{
				Extensions: []string{"httpfs", "json"},
				Settings:   map[string]string{"memory_limit": "4GB", "threads": "4"},
			},
		},
		{
			name: "secret with scope list",
			input: map[string]any{
				"secrets": []any{
					map[string]any{
						"type":     "s3",
						"provider": "credential_chain",
						"scope":    []any{"s3://bucket1", "s3://bucket2"},
					},
				},
			},
			want: &Params{
				Secrets: []SecretConfig{
					{Type: "s3", Provider: "credential_chain", Scope: []any{"s3://bucket1", "s3://bucket2"}},
				},
			},
		},
		{
			name:    "unknown key",
			input:   map[string]any{"extension": []any{"httpfs"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseParams(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid duckdb params")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParams_Statements(t *testing.T) {
	useSSL := false
	p := &Params{
		Extensions: []string{"httpfs"},
		Settings:   map[string]string{"threads": "2", "memory_limit": "1GB"},
		Secrets: []SecretConfig{
			{Type: "s3", Provider: "config", KeyID: "key", Secret: "it's", Region: "us-east-1", Scope: "s3://bucket"},
			{Type: "s3", Endpoint: "localhost:9000", URLStyle: "path", UseSSL: &useSSL},
		},
	}

	got, err := p.statements()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"INSTALL httpfs",
		"LOAD httpfs",
		"SET memory_limit = '1GB'",
		"SET threads = '2'",
		"CREATE OR REPLACE SECRET semgen_secret_1 (TYPE s3, PROVIDER config, KEY_ID 'key', SECRET 'it''s', REGION 'us-east-1', SCOPE 's3://bucket')",
		"CREATE OR REPLACE SECRET semgen_secret_2 (TYPE s3, ENDPOINT 'localhost:9000', URL_STYLE 'path', USE_SSL false)",
	}, got)
}

func TestParams_StatementsErrors(t *testing.T) {
	tests := []struct {
		name   string
		secret SecretConfig
		errMsg string
	}{
		{"missing type", SecretConfig{Provider: "config"}, "type is required"},
		{"bad scope", SecretConfig{Type: "s3", Scope: 42}, "scope must be a string or list"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Params{Secrets: []SecretConfig{tt.secret}}
			_, err := p.statements()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
