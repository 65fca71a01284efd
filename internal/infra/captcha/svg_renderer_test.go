package captcha

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSVGRenderer_Render(t *testing.T) {
	r := NewSVGRenderer(nil)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, "12 - 7 = ?"))

	out := buf.String()
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, `width="120"`)
	assert.Contains(t, out, "</svg>")
	assert.Equal(t, 6, strings.Count(out, "<text"))
	assert.Contains(t, out, "<line")
	assert.Contains(t, out, "<circle")

	dec := xml.NewDecoder(strings.NewReader(out))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
}

func TestSVGRenderer_RandomizedNoise(t *testing.T) {
	r := NewSVGRenderer(nil)

	var a, b bytes.Buffer
	require.NoError(t, r.Render(&a, "1 + 1 = ?"))
	require.NoError(t, r.Render(&b, "1 + 1 = ?"))

	assert.NotEqual(t, a.String(), b.String())
}

func TestSVGRenderer_EmptyQuestion(t *testing.T) {
	assert.Error(t, NewSVGRenderer(nil).Render(io.Discard, ""))
}
