package check

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tisoft/java-traits/cmd/traitgen/internal/cli"
)

const fixture = "../../../../traitgen/testdata/football.txtar"

func TestCheck(t *testing.T) {
	var stdout bytes.Buffer
	err := (&Cmd{Manifests: []string{fixture}, stdout: &stdout}).Run(&cli.Globals{})
	require.Error(t, err)
	out := stdout.String()
	assert.Contains(t, out, "✓ 4 types would be generated")
	assert.Contains(t, out, "✗ "+fixture+"/classes/hosts.yaml:6: host com.example.classes.Missing:")
}

func TestCheckReport(t *testing.T) {
	var stdout bytes.Buffer
	err := (&Cmd{Manifests: []string{fixture}, Report: true, stdout: &stdout}).Run(&cli.Globals{})
	require.Error(t, err)

	var report struct {
		Files []struct {
			Path string `json:"path"`
			Kind string `json:"kind"`
		} `json:"files"`
		Failures []struct {
			Element string `json:"element"`
			Code    string `json:"code"`
		} `json:"failures"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	require.Len(t, report.Files, 4)
	assert.Equal(t, "superclass", report.Files[0].Kind)
	require.Len(t, report.Failures, 3)
	assert.Equal(t, "conflict", report.Failures[0].Code)
}
