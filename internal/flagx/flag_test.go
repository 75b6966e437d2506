package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value is kept with its flag",
			args:    []string{"-a", ":9090", "-unknown", "x"},
			allowed: []string{"-a", "-s"},
			want:    []string{"-a", ":9090"},
		},
		{
			name:    "equals form is kept whole",
			args:    []string{"-s=http://store:9000", "positional"},
			allowed: []string{"-s"},
			want:    []string{"-s=http://store:9000"},
		},
		{
			name:    "several allowed flags keep their order",
			args:    []string{"-w", "100ms", "-a", ":8080", "-d", "cache.db"},
			allowed: []string{"-a", "-d", "-w"},
			want:    []string{"-w", "100ms", "-a", ":8080", "-d", "cache.db"},
		},
		{
			name:    "next dash token is not consumed as a value",
			args:    []string{"-a", "-s", "http://store:9000"},
			allowed: []string{"-a", "-s"},
			want:    []string{"-a", "-s", "http://store:9000"},
		},
		{
			name:    "trailing flag without value survives",
			args:    []string{"-a"},
			allowed: []string{"-a"},
			want:    []string{"-a"},
		},
		{
			name:    "nothing allowed yields empty slice",
			args:    []string{"-x", "1", "--y=2"},
			allowed: []string{"-a"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestJsonConfigFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("short form", func(t *testing.T) {
		os.Args = []string{"backoffice", "-c", "/etc/backoffice.json"}
		assert.Equal(t, "/etc/backoffice.json", JsonConfigFlags())
	})

	t.Run("long form", func(t *testing.T) {
		os.Args = []string{"backoffice", "-config", "/etc/alt.json"}
		assert.Equal(t, "/etc/alt.json", JsonConfigFlags())
	})

	t.Run("absent", func(t *testing.T) {
		os.Args = []string{"backoffice", "-a", ":8080"}
		assert.Empty(t, JsonConfigFlags())
	})
}
