package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func curriculumDataset() Dataset {
	return Dataset{
		Headers: []string{"Group", "Code", "Title", "Credits"},
		Rows: []map[string]string{
			{"Group": "", "Code": "CS101", "Title": "Programming I", "Credits": "3"},
			{"Group": "Core", "Code": "CS201", "Title": "Data Structures", "Credits": "3"},
		},
	}
}

func TestRenderCSV(t *testing.T) {
	out, err := RenderCSV(curriculumDataset())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Group,Code,Title,Credits", lines[0])
	assert.Equal(t, ",CS101,Programming I,3", lines[1])
	assert.Equal(t, "Core,CS201,Data Structures,3", lines[2])
}

func TestRenderCSVRequiresHeaders(t *testing.T) {
	_, err := RenderCSV(Dataset{})
	assert.Error(t, err)
}

func TestRenderPDF(t *testing.T) {
	out, err := RenderPDF(curriculumDataset(), "Curriculum", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
}

func TestRenderPDFMissingFontFile(t *testing.T) {
	_, err := RenderPDF(curriculumDataset(), "Curriculum", "/nonexistent/font.ttf")
	assert.Error(t, err)
}
