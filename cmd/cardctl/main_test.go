package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"librarycard/internal/card"
	"librarycard/internal/recommend"
)

const ashaYAML = `fullName: Asha Lin
enrollmentNumber: 1446RGUST23
department: Botany
course: BSc in Botany
semester: 1st
validityYears: 2
`

func TestLoadRequestOverlaysFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asha.yaml")
	require.NoError(t, os.WriteFile(path, []byte(ashaYAML), 0o600))

	req, err := loadRequest(path, card.Request{Semester: " 3rd ", ValidityYears: 4})
	require.NoError(t, err)
	assert.Equal(t, card.Request{
		FullName:         "Asha Lin",
		EnrollmentNumber: "1446RGUST23",
		Department:       "Botany",
		Course:           "BSc in Botany",
		Semester:         "3rd",
		ValidityYears:    4,
	}, req)
}

func TestLoadRequestBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fullName: [unterminated"), 0o600))
	_, err := loadRequest(path, card.Request{})
	assert.Error(t, err)
}

func TestRenderCommandWritesPDF(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "asha.yaml")
	out := filepath.Join(dir, "card.pdf")
	require.NoError(t, os.WriteFile(in, []byte(ashaYAML), 0o600))

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs([]string{"render", "--file", in, "--out", out, "--logo", ""})
	require.NoError(t, root.Execute())

	pdf, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
	assert.Contains(t, stdout.String(), "barcode 1446RGUST23")
	assert.Contains(t, stderr.String(), "photo: no photo provided")
}

func TestRenderCommandReportsPhotoFailure(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "asha.yaml")
	require.NoError(t, os.WriteFile(in, []byte(ashaYAML), 0o600))

	var stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&stderr)
	root.SetArgs([]string{"render", "--file", in, "--out", filepath.Join(dir, "card.pdf"), "--logo", "",
		"--photo", filepath.Join(dir, "missing.jpg")})
	require.NoError(t, root.Execute())

	assert.Contains(t, stderr.String(), "photo: photo unavailable: assets: unsupported photo reference")
	assert.NotContains(t, stderr.String(), "no photo provided")
}

func TestRenderCommandRejectsInvalidCard(t *testing.T) {
	var stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&stderr)
	root.SetArgs([]string{"render", "--name", "Asha Lin", "--years", "7", "--out", filepath.Join(t.TempDir(), "x.pdf")})

	err := root.Execute()
	var verr *card.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("validityYears"))
	assert.Contains(t, stderr.String(), "enrollmentNumber:")
}

func TestSuggestCommand(t *testing.T) {
	var stdout bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetArgs([]string{"suggest", "--api-key", "", "Physics"})
	require.NoError(t, root.Execute())

	var res recommend.Result
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &res))
	assert.Equal(t, recommend.SourceStatic, res.Source)
	assert.Len(t, res.Recommendations, 2)
}
