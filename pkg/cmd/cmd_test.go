package cmd_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tgagor/staged-dockerfiles/pkg/cmd"
)

func TestString(t *testing.T) {
	// Arrange
	input := []string{
		cmd.New("echo").Arg("hello").Arg("world").String(),
		cmd.New("docker").Arg("build", "-t", "owner/app:latest", ".").String(),
		cmd.New("cmd-only").String(),
		cmd.New("").String(),
	}
	expected := []string{
		"echo hello world",
		"docker build -t owner/app:latest .",
		"cmd-only",
		"",
	}

	// Assert
	for i, input := range input {
		assert.Equal(t, expected[i], input)
	}
}

func TestRunEmptyCommandFails(t *testing.T) {
	_, err := cmd.New("").Run(context.Background())
	assert.Error(t, err)
}

func TestRunCapturesOutput(t *testing.T) {
	out, err := cmd.New("echo").Arg("hello").Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "hello\n", out)
}
