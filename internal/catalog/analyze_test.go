package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/pkg/anthropic"
)

type fakeModel struct {
	lastReq anthropic.MessageRequest
	text    string
	err     error
}

func (f *fakeModel) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &anthropic.MessageResponse{Text: f.text}, nil
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	m := &fakeModel{text: `Here is the analysis: {"description": "Explains attribution.", "persona": "VP Demand Generation"}`}
	post := &Post{URL: "https://x.com/blog/a", Title: "Attribution 101", Content: "long enough body"}

	a, err := Analyze(context.Background(), m, "model-x", 1024, post)
	require.NoError(t, err)
	assert.Equal(t, "Explains attribution.", a.Description)
	assert.Equal(t, "VP Demand Generation", a.Persona)
	assert.Contains(t, m.lastReq.Prompt, "Attribution 101")
}

func TestAnalyzePersonaDefaults(t *testing.T) {
	t.Parallel()

	m := &fakeModel{text: `{"description": "Something useful.", "persona": ""}`}

	a, err := Analyze(context.Background(), m, "model-x", 1024, &Post{Title: "T", Content: "c"})
	require.NoError(t, err)
	assert.Equal(t, "N/A", a.Persona)
}

func TestAnalyzeRejectsEmptyDescription(t *testing.T) {
	t.Parallel()

	m := &fakeModel{text: `{"description": "", "persona": "CMO"}`}

	_, err := Analyze(context.Background(), m, "model-x", 1024, &Post{Title: "T", Content: "c"})
	assert.Error(t, err)
}

func TestAnalyzeNoJSON(t *testing.T) {
	t.Parallel()

	m := &fakeModel{text: "I could not analyze this."}

	_, err := Analyze(context.Background(), m, "model-x", 1024, &Post{Title: "T", Content: "c"})
	assert.Error(t, err)
}

func TestAnalyzeTruncatesLongContent(t *testing.T) {
	t.Parallel()

	m := &fakeModel{text: `{"description": "D.", "persona": "CMO"}`}
	post := &Post{Title: "T", Content: strings.Repeat("x", maxContentChars+500)}

	_, err := Analyze(context.Background(), m, "model-x", 1024, post)
	require.NoError(t, err)
	assert.Less(t, len(m.lastReq.Prompt), maxContentChars+1000)
}
