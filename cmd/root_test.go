package cmd

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"cloudtrim/internal/config"
)

func TestExecute(t *testing.T) {
	originalArgs := os.Args
	defer func() { os.Args = originalArgs }()

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{
			name: "version command",
			args: []string{"cloudtrim", "version"},
		},
		{
			name: "list collectors",
			args: []string{"cloudtrim", "list", "collectors"},
		},
		{
			name:    "invalid command",
			args:    []string{"cloudtrim", "invalid"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			config.Config = &config.GlobalConfig{}

			os.Args = tt.args
			err := Execute()

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestExecuteLoadsConfigDefaults(t *testing.T) {
	originalArgs := os.Args
	defer func() { os.Args = originalArgs }()

	viper.Reset()
	config.Config = &config.GlobalConfig{}

	os.Args = []string{"cloudtrim", "version"}
	assert.NoError(t, Execute())

	assert.Equal(t, "default", config.Config.Profile)
	assert.Equal(t, 8, config.Config.MaxWorkers)
}
