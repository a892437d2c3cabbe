package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Survey submissions",
		Headers: []string{"id", "user_name", "survey_type"},
		Rows: []map[string]string{
			{"id": "Student_alice", "user_name": "alice", "survey_type": "Student"},
			{"id": "Employer_acme", "user_name": "acme", "survey_type": "Employer"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,user_name,survey_type", lines[0])
	assert.Equal(t, "Student_alice,alice,Student", lines[1])
}

func TestCSVExporterEscapesFormulas(t *testing.T) {
	ds := Dataset{
		Headers: []string{"user_name", "answer"},
		Rows: []map[string]string{
			{"user_name": "mallory", "answer": "=HYPERLINK(\"http://x\")"},
			{"user_name": "bob", "answer": "-5 years"},
			{"user_name": "carol", "answer": "two years"},
		},
	}

	out, err := NewCSVExporter().Render(ds)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, `mallory,"'=HYPERLINK(""http://x"")"`, lines[1])
	assert.Equal(t, "bob,'-5 years", lines[2])
	assert.Equal(t, "carol,two years", lines[3])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	ds := sampleDataset()
	ds.Rows = append(ds.Rows, map[string]string{"id": "Student_" + strings.Repeat("x", 200)})

	out, err := NewPDFExporter().Render(ds)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	exporter := Exporter(NewPDFExporter())
	assert.Equal(t, "pdf", exporter.Extension())
	assert.Equal(t, "application/pdf", exporter.ContentType())
}
