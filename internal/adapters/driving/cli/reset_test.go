package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResetCmd_Use(t *testing.T) {
	assert.Equal(t, "reset", resetCmd.Use)
}

func TestResetCmd_RefusesWithoutForce(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"reset"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "--force")
}

func TestResetCmd_ExecutesWithForce(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"reset", "--force"})
	defer func() {
		rootCmd.SetArgs(nil)
		resetForce = false
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Index reset.")
}

func TestResetCmd_PropagatesServiceError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestService = &mockIngestService{resetErr: errMockService}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"reset", "--force"})
	defer func() {
		rootCmd.SetArgs(nil)
		resetForce = false
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.ErrorIs(t, err, errMockService)
}
