package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantKey string
		wantErr bool
	}{
		{
			name:    "bare object",
			raw:     `{"skills":["Питон"]}`,
			wantKey: "skills",
		},
		{
			name:    "object wrapped in commentary",
			raw:     "Вот результат:\n```json\n{\"skills\":[\"Гит\"]}\n```\nНадеюсь, помог!",
			wantKey: "skills",
		},
		{
			name:    "widest span wins over inner braces",
			raw:     `prefix {"outer":{"inner":1},"ok":true} suffix`,
			wantKey: "outer",
		},
		{
			name:    "no braces at all",
			raw:     "просто текст без объекта",
			wantErr: true,
		},
		{
			name:    "unbalanced garbage",
			raw:     `{"skills": [`,
			wantErr: true,
		},
		{
			name:    "empty input",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := ExtractJSON(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				var malformed *MalformedOutputError
				assert.ErrorAs(t, err, &malformed)
				assert.Nil(t, payload, "never a partial object")
				return
			}
			require.NoError(t, err)
			assert.Contains(t, payload, tt.wantKey)
		})
	}
}

func TestRequireKeys(t *testing.T) {
	payload := map[string]any{
		"personality_type":  "ИНТЖ",
		"personality_short": "аналитик",
	}

	assert.NoError(t, RequireKeys(payload, "personality_type"))
	assert.NoError(t, RequireKeys(payload), "no keys means no constraint")

	err := RequireKeys(payload, "personality_type", "top_roles")
	require.Error(t, err)
	var malformed *MalformedOutputError
	assert.ErrorAs(t, err, &malformed)
}
