package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateNetwork_DescribesEveryModel(t *testing.T) {
	var out bytes.Buffer

	err := validateNetwork(filepath.Join(examples, "network.yaml"), &out)

	require.NoError(t, err)
	text := out.String()
	assert.Contains(t, text, "seeedBot: coupled, 8 children")
	assert.Contains(t, text, "seeedBot/lightBot: atomic")
	assert.Contains(t, text, "seeedBot/centerIR: atomic, in [], out [out:bool]")
}

func TestValidateNetwork_MissingFile(t *testing.T) {
	err := validateNetwork(filepath.Join(t.TempDir(), "absent.yaml"), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestPrintKinds_ListsLibrary(t *testing.T) {
	var out bytes.Buffer

	printKinds(&out)

	assert.Contains(t, out.String(), "lightbot\n")
	assert.Contains(t, out.String(), "pwm_output\n")
}
