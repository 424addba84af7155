package moderation

import (
	"io"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDropsHeaderAndBlankLines(t *testing.T) {
	ws, err := Parse(strings.NewReader("header line\n  死ね  \n\n   \nbad\n"))
	require.NoError(t, err)

	assert.Equal(t, 2, ws.Len())
	_, ok := ws.Match("header line")
	assert.False(t, ok, "header must not become a word")
}

func TestParseHeaderOnly(t *testing.T) {
	ws, err := Parse(strings.NewReader("only a header"))
	require.NoError(t, err)
	assert.Equal(t, 0, ws.Len())
}

func TestMatchIsPlainSubstring(t *testing.T) {
	ws := New("死ね", "bad")

	word, ok := ws.Match("私は死ねと言う")
	assert.True(t, ok)
	assert.Equal(t, "死ね", word)

	_, ok = ws.Match("こんにちは")
	assert.False(t, ok)

	// case-sensitive
	_, ok = ws.Match("BAD")
	assert.False(t, ok)

	_, ok = ws.Match("")
	assert.False(t, ok)
}

func TestNilWordSet(t *testing.T) {
	var ws *WordSet
	assert.Equal(t, 0, ws.Len())
	_, ok := ws.Match("anything")
	assert.False(t, ok)
}

func TestLoadMissingFileFailsOpen(t *testing.T) {
	logger, hook := test.NewNullLogger()

	ws := Load(fstest.MapFS{}, "words.txt", logger)

	assert.Equal(t, 0, ws.Len())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestLoadFromFS(t *testing.T) {
	logger, _ := test.NewNullLogger()
	fsys := fstest.MapFS{
		"list.txt": &fstest.MapFile{Data: []byte("# words\nfoo\nbar\n")},
	}

	ws := Load(fsys, "list.txt", logger)

	assert.Equal(t, 2, ws.Len())
	_, ok := ws.Match("xfoox")
	assert.True(t, ok)
}

func TestDefaultListIsBundled(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	ws := Default(logger)

	assert.Greater(t, ws.Len(), 0)
	_, ok := ws.Match("私は死ねと言う")
	assert.True(t, ok)
}

func TestFromFileMissingFailsOpen(t *testing.T) {
	logger, hook := test.NewNullLogger()

	ws := FromFile(t.TempDir()+"/nope.txt", logger)

	assert.Equal(t, 0, ws.Len())
	assert.Len(t, hook.Entries, 1)
}
