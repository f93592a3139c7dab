package extractor

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindFor(t *testing.T) {
	cases := map[string]Kind{
		"cv.pdf":         KindPDF,
		"CV.PDF":         KindPDF,
		"resume.docx":    KindDOCX,
		"Resume.DocX":    KindDOCX,
		"resume.doc":     KindUnsupported,
		"notes.txt":      KindUnsupported,
		"no-extension":   KindUnsupported,
		"archive.pdf.gz": KindUnsupported,
	}
	for name, want := range cases {
		assert.Equal(t, want, KindFor(name), name)
	}
}

func TestExtractTxtIsUnsupported(t *testing.T) {
	res := New().Extract("notes.txt", strings.NewReader("hello"))

	assert.Equal(t, UnsupportedText, res.Text)
	assert.False(t, res.Failed)
	assert.NoError(t, res.Err)
}

func TestExtractPDF(t *testing.T) {
	data := buildPDF(t, "Page one", "Page two")

	res := New().Extract("resume.pdf", bytes.NewReader(data))
	require.False(t, res.Failed, "%v", res.Err)
	assert.Equal(t, KindPDF, res.Kind)

	first := strings.Index(res.Text, "Page one")
	second := strings.Index(res.Text, "Page two")
	require.GreaterOrEqual(t, first, 0, res.Text)
	require.Greater(t, second, first, res.Text)
	assert.Contains(t, res.Text[first:second], "\n")
}

func TestExtractDOCX(t *testing.T) {
	data := buildDOCX(t, "Jane Doe", "Go engineer", "Berlin")

	res := New().Extract("resume.docx", bytes.NewReader(data))
	require.False(t, res.Failed, "%v", res.Err)
	assert.Equal(t, "Jane Doe\nGo engineer\nBerlin", res.Text)
}

func TestExtractMalformedBecomesSentinel(t *testing.T) {
	for _, name := range []string{"broken.pdf", "broken.docx"} {
		res := New().Extract(name, strings.NewReader("this is not a document"))
		assert.True(t, res.Failed, name)
		assert.Equal(t, FailedText, res.Text, name)
		assert.Error(t, res.Err, name)
	}
}

func TestExtractRecoversParserPanic(t *testing.T) {
	panicky := ParserFunc(func(io.ReaderAt, int64) (string, error) { panic("boom") })

	res := New().WithParser(KindPDF, panicky).Extract("x.pdf", strings.NewReader("%PDF"))
	assert.True(t, res.Failed)
	assert.Equal(t, FailedText, res.Text)
	assert.ErrorContains(t, res.Err, "boom")
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestExtractReadErrorBecomesSentinel(t *testing.T) {
	res := New().Extract("x.docx", failingReader{})
	assert.True(t, res.Failed)
	assert.ErrorContains(t, res.Err, "disk gone")
}

func TestParagraphsHandlesTabsAndBreaks(t *testing.T) {
	xml := `<w:document ` + docxNS + `><w:body>` +
		`<w:p><w:r><w:t>a</w:t><w:tab/><w:t>b</w:t></w:r></w:p>` +
		`<w:p></w:p>` +
		`<w:p><w:r><w:t>c</w:t><w:br/><w:t>d</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	got, err := Paragraphs(strings.NewReader(xml))
	require.NoError(t, err)
	assert.Equal(t, []string{"a\tb", "", "c\nd"}, got)
}
