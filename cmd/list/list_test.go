package list

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/undefinedlabs/go-mpatch"

	"cloudtrim/internal/collect"
	awscollect "cloudtrim/internal/collect/aws"
	"cloudtrim/internal/optimize"
)

// captureOutput captures stdout and returns the captured output
func captureOutput(f func()) string {
	oldStdout := os.Stdout

	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, err := io.Copy(&buf, r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error copying output: %v\n", err)
	}

	return buf.String()
}

// Helper function to execute a command and capture its output
func executeCommand(cmd *cobra.Command, args ...string) (string, error) {
	oldStdout := os.Stdout

	r, w, _ := os.Pipe()
	os.Stdout = w

	cmd.SetOut(w)
	cmd.SetErr(w)
	cmd.SetArgs(args)

	err := cmd.Execute()

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, copyErr := io.Copy(&buf, r)
	if copyErr != nil {
		fmt.Fprintf(os.Stderr, "Error copying output: %v\n", copyErr)
	}

	return buf.String(), err
}

// Helper function to safely unpatch
func safeUnpatch(patch *mpatch.Patch) {
	if err := patch.Unpatch(); err != nil {
		fmt.Fprintf(os.Stderr, "Error unpatching: %v\n", err)
	}
}

// Test collector implementation
type testCollector struct {
	name         string
	argumentName string
	label        string
}

func (c *testCollector) Name() string                { return c.name }
func (c *testCollector) ArgumentName() string        { return c.argumentName }
func (c *testCollector) Label() string               { return c.label }
func (c *testCollector) Provider() optimize.Provider { return optimize.AWS }

func (c *testCollector) Collect(ctx context.Context, opts collect.Options) ([]optimize.ResourceSample, error) {
	return nil, nil
}

// TestNewListCmd tests the creation of the list command
func TestNewListCmd(t *testing.T) {
	cmd := NewListCmd()
	assert.NotNil(t, cmd)
	assert.Equal(t, "list", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	// Verify subcommands
	subcommands := cmd.Commands()
	expectedSubcommands := []string{
		"collectors",
		"profiles",
	}

	assert.Len(t, subcommands, len(expectedSubcommands))
	for _, subcmd := range subcommands {
		assert.Contains(t, expectedSubcommands, subcmd.Name())
	}
}

// TestNewProfilesCmd tests the creation of the profiles command
func TestNewProfilesCmd(t *testing.T) {
	cmd := NewProfilesCmd()
	assert.NotNil(t, cmd)
	assert.Equal(t, "profiles", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.NotEmpty(t, cmd.Example)
}

// TestNewCollectorsCmd tests the creation of the collectors command
func TestNewCollectorsCmd(t *testing.T) {
	cmd := NewCollectorsCmd()
	assert.NotNil(t, cmd)
	assert.Equal(t, "collectors", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.NotEmpty(t, cmd.Example)
}

// TestRunProfiles tests the runProfiles function
func TestRunProfiles(t *testing.T) {
	tests := []struct {
		name           string
		mockProfiles   []string
		mockError      error
		expectedOutput string
		expectError    bool
	}{
		{
			name: "list available profiles",
			mockProfiles: []string{
				"default",
				"dev",
				"prod",
			},
			mockError:      nil,
			expectedOutput: "default\ndev\nprod\n",
			expectError:    false,
		},
		{
			name:           "no profiles found",
			mockProfiles:   []string{},
			mockError:      nil,
			expectedOutput: "",
			expectError:    false,
		},
		{
			name:           "error listing profiles",
			mockProfiles:   nil,
			mockError:      fmt.Errorf("mock error"),
			expectedOutput: "",
			expectError:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patch, err := mpatch.PatchMethod(awscollect.ListProfiles, func() ([]string, error) {
				return tt.mockProfiles, tt.mockError
			})
			require.NoError(t, err)
			defer safeUnpatch(patch)

			var cmdErr error

			if tt.expectError {
				cmdErr = runProfiles()
				assert.Error(t, cmdErr)
				return
			}

			output := captureOutput(func() {
				cmdErr = runProfiles()
			})

			assert.NoError(t, cmdErr)
			output = strings.ReplaceAll(output, "\r\n", "\n")
			assert.Equal(t, tt.expectedOutput, output)
		})
	}
}

// TestRunCollectors tests the collectors command RunE function
func TestRunCollectors(t *testing.T) {
	tests := []struct {
		name           string
		register       bool
		expectedOutput string
	}{
		{
			name:           "list available collectors",
			register:       true,
			expectedOutput: "Available collectors:\n  - test (AWS, Test Collector)\n",
		},
		{
			name:           "no collectors registered",
			register:       false,
			expectedOutput: "No collectors registered\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			originalRegistry := collect.DefaultRegistry
			collect.DefaultRegistry = collect.NewRegistry()
			defer func() { collect.DefaultRegistry = originalRegistry }()

			if tt.register {
				require.NoError(t, collect.DefaultRegistry.Register(&testCollector{
					name:         "test-collector",
					argumentName: "test",
					label:        "Test Collector",
				}))
			}

			cmd := NewCollectorsCmd()

			var cmdErr error
			output := captureOutput(func() {
				cmdErr = cmd.RunE(cmd, nil)
			})

			assert.NoError(t, cmdErr)
			output = strings.ReplaceAll(output, "\r\n", "\n")
			assert.Equal(t, tt.expectedOutput, output)
		})
	}
}

// TestIntegration tests the integration of all subcommands
func TestIntegration(t *testing.T) {
	originalRegistry := collect.DefaultRegistry
	collect.DefaultRegistry = collect.NewRegistry()
	defer func() { collect.DefaultRegistry = originalRegistry }()

	require.NoError(t, collect.DefaultRegistry.Register(&testCollector{
		name:         "test-collector",
		argumentName: "test",
		label:        "Test Collector",
	}))

	patchProfiles, err := mpatch.PatchMethod(awscollect.ListProfiles, func() ([]string, error) {
		return []string{"default", "test"}, nil
	})
	require.NoError(t, err)
	defer safeUnpatch(patchProfiles)

	testCases := []struct {
		args           []string
		expectedOutput string
	}{
		{
			args:           []string{"collectors"},
			expectedOutput: "Available collectors:\n  - test (AWS, Test Collector)\n",
		},
		{
			args:           []string{"profiles"},
			expectedOutput: "default\ntest\n",
		},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("list %s", tc.args[0]), func(t *testing.T) {
			cmd := NewListCmd()
			output, err := executeCommand(cmd, tc.args...)
			require.NoError(t, err)

			output = strings.ReplaceAll(output, "\r\n", "\n")
			assert.Contains(t, output, tc.expectedOutput)
		})
	}
}
