// ABOUTME: Tests for the backends listing command
// ABOUTME: Verifies registry contents are reported without an API key

package commands

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewBackendsCmd(t *testing.T) {
	cmd := NewBackendsCmd()

	if cmd.Use != "backends" {
		t.Errorf("Use = %q, want %q", cmd.Use, "backends")
	}
	if cmd.Short == "" {
		t.Error("Short description should not be empty")
	}
}

func TestBackendsCmd_WithoutAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	cmd := NewRootCmd()
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs([]string{"backends"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	outputStr := output.String()
	for _, want := range []string{"local", "offline", "Preference order"} {
		if !strings.Contains(outputStr, want) {
			t.Errorf("output should contain %q:\n%s", want, outputStr)
		}
	}
	if !strings.Contains(outputStr, "remote backend not registered") {
		t.Errorf("output should note the missing remote backend:\n%s", outputStr)
	}
}

func TestBackendsCmd_WithAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test-key")

	cmd := NewRootCmd()
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs([]string{"backends"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	outputStr := output.String()
	if !strings.Contains(outputStr, "remote") {
		t.Errorf("output should list the remote backend:\n%s", outputStr)
	}
	if !strings.Contains(outputStr, "(metered)") {
		t.Errorf("remote backend should be marked metered:\n%s", outputStr)
	}
}
