package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `title: config
sections:
  - name: server
    entries:
      - key: host
        value: localhost
      - key: port
        value: 8080
    sections:
      - name: tls
        entries:
          - key: enabled
            value: true
`

func Test_Decode(t *testing.T) {
	doc, err := Decode([]byte(sampleDocument))
	require.NoError(t, err)

	assert.Equal(t, "config", doc.Title())
	require.Len(t, doc.Sections(), 1)

	server := doc.Sections()[0]
	assert.Equal(t, "server", server.Name())
	require.Len(t, server.Entries(), 2)
	assert.Equal(t, "host", server.Entries()[0].Key())
	assert.Equal(t, "localhost", server.Entries()[0].Value())

	require.Len(t, server.Sections(), 1)
	tls := server.Sections()[0]
	assert.Equal(t, "tls", tls.Name())
	require.Len(t, tls.Entries(), 1)
	assert.Equal(t, true, tls.Entries()[0].Value())
}

func Test_Decode_Invalid(t *testing.T) {
	_, err := Decode([]byte("title: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing document")
}

func Test_EncodeDecode_RoundTrip(t *testing.T) {
	doc, err := Decode([]byte(sampleDocument))
	require.NoError(t, err)

	out, err := Encode(doc)
	require.NoError(t, err)

	again, err := Decode(out)
	require.NoError(t, err)
	assert.Equal(t, doc, again)
}
