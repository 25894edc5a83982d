package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageMarker(t *testing.T) {
	assert.Equal(t, "[Page 1]", PageMarker(1))
	assert.Equal(t, "[Page 42]", PageMarker(42))
}

func TestDocument_Bytes_ReturnsIndependentCopy(t *testing.T) {
	doc := &Document{RawBytes: []byte("%PDF-1.4")}

	cp := doc.Bytes()
	cp[0] = 'X'

	assert.Equal(t, byte('%'), doc.RawBytes[0])
	assert.Equal(t, "X"+"PDF-1.4", string(cp))
}

func TestDocument_Bytes_Nil(t *testing.T) {
	var doc *Document
	assert.Nil(t, doc.Bytes())
	assert.Nil(t, (&Document{}).Bytes())
}

func TestDocument_ContextBlock(t *testing.T) {
	doc := &Document{OriginalFilename: "Track (1).pdf", PageTaggedText: "\n[Page 1]\nHello"}
	assert.Equal(t, "FILENAME: Track (1).pdf\n\n[Page 1]\nHello", doc.ContextBlock())
}

func TestDocument_Summary(t *testing.T) {
	doc := &Document{ID: "d1", DisplayName: "Track", OriginalFilename: "Track.pdf", PageCount: 3, PageTaggedText: "abcd"}
	s := doc.Summary()

	assert.Equal(t, "d1", s.ID)
	assert.Equal(t, "Track", s.DisplayName)
	assert.Equal(t, 3, s.PageCount)
	assert.Equal(t, 4, s.TextLength)
}
