package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const validConfig = `{
	"producers": [
		{"name": "greenhouse", "latitude": 52.37, "longitude": 4.89},
		{"name": "barn", "latitude": 0, "longitude": 0}
	]
}`

func TestParse(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cfg, err := Parse([]byte(validConfig))
		require.NoError(t, err)
		require.Len(t, cfg.Producers, 2)
		assert.Equal(t, Producer{Name: "greenhouse", Latitude: 52.37, Longitude: 4.89}, cfg.Producers[0])
		assert.Equal(t, Producer{Name: "barn"}, cfg.Producers[1])
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			name    string
			input   string
			wantMsg []string
		}{
			{name: "invalid json", input: "{", wantMsg: []string{"decode config"}},
			{name: "no producers", input: `{"producers": []}`, wantMsg: []string{"at least one producer"}},
			{
				name:    "missing fields",
				input:   `{"producers": [{"latitude": 1}]}`,
				wantMsg: []string{"producers[0]: name is required", "producers[0]: longitude is required"},
			},
			{
				name:    "out of range",
				input:   `{"producers": [{"name": "a", "latitude": 91, "longitude": -181}]}`,
				wantMsg: []string{"latitude 91 out of range", "longitude -181 out of range"},
			},
			{
				name:    "duplicate names",
				input:   `{"producers": [{"name": "a", "latitude": 1, "longitude": 1}, {"name": "a", "latitude": 2, "longitude": 2}]}`,
				wantMsg: []string{`duplicate name "a"`},
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := Parse([]byte(tt.input))
				require.Error(t, err)
				for _, msg := range tt.wantMsg {
					assert.Contains(t, err.Error(), msg)
				}
			})
		}
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(validConfig), 0o600))

	t.Setenv(EnvNATSURL, "nats://example:4222")
	t.Setenv(EnvSubject, "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Producers, 2)
	assert.Equal(t, "nats://example:4222", cfg.NATSURL)
	assert.Equal(t, DefaultSubject, cfg.Subject)

	_, err = Load(filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{EnvSubject: "plant.readings"}
	var cfg Config
	cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	assert.Equal(t, "plant.readings", cfg.Subject)
	assert.Empty(t, cfg.NATSURL)
}

func TestSchema(t *testing.T) {
	data, err := Schema()
	require.NoError(t, err)
	schema := gjson.ParseBytes(data)
	assert.Equal(t, "array", schema.Get("properties.producers.type").String())
	assert.Equal(t, int64(1), schema.Get("properties.producers.minItems").Int())
	assert.True(t, schema.Get("properties.producers.items.properties.latitude").Exists())
	assert.False(t, schema.Get("properties.NATSURL").Exists())
}
