package sii

import (
	"encoding/base64"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign_InyectaUnSoloBloqueSignature(t *testing.T) {
	xmlBytes, err := NewXMLBuilder().Render(testDocumento())
	require.NoError(t, err)

	signed, err := NewMockSigner().Sign(xmlBytes)
	require.NoError(t, err)

	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = latin1Reader
	require.NoError(t, doc.ReadFromBytes(signed), "el XML firmado debe seguir siendo parseable")

	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "DTE", root.Tag)

	sigs := root.SelectElements("Signature")
	require.Len(t, sigs, 1, "debe haber exactamente un bloque Signature")
	sig := sigs[0]

	// El Documento original queda intacto
	require.NotNil(t, root.SelectElement("Documento"))

	sigValue := sig.FindElement("SignatureValue")
	require.NotNil(t, sigValue)
	assert.Equal(t, MockSignatureValue, sigValue.Text())

	signedInfo := sig.FindElement("SignedInfo")
	require.NotNil(t, signedInfo)
	assert.Equal(t, AlgC14N, signedInfo.FindElement("CanonicalizationMethod").SelectAttrValue("Algorithm", ""))
	assert.Equal(t, AlgRSASHA1, signedInfo.FindElement("SignatureMethod").SelectAttrValue("Algorithm", ""))

	ref := signedInfo.FindElement("Reference")
	require.NotNil(t, ref)
	assert.Equal(t, "#DTE-39-101", ref.SelectAttrValue("URI", ""))
}

func TestSign_DigestEsSHA1Real(t *testing.T) {
	xmlBytes, err := NewXMLBuilder().Render(testDocumento())
	require.NoError(t, err)

	signed, err := NewMockSigner().Sign(xmlBytes)
	require.NoError(t, err)

	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = latin1Reader
	require.NoError(t, doc.ReadFromBytes(signed))

	digest := doc.FindElement("//DigestValue")
	require.NotNil(t, digest)
	raw, err := base64.StdEncoding.DecodeString(digest.Text())
	require.NoError(t, err, "el DigestValue debe ser base64 válido")
	assert.Len(t, raw, 20, "SHA-1 produce 20 bytes")

	// El digest es determinista sobre el mismo documento.
	signed2, err := NewMockSigner().Sign(xmlBytes)
	require.NoError(t, err)
	doc2 := etree.NewDocument()
	doc2.ReadSettings.CharsetReader = latin1Reader
	require.NoError(t, doc2.ReadFromBytes(signed2))
	assert.Equal(t, digest.Text(), doc2.FindElement("//DigestValue").Text())
}

func TestSign_XMLVacio(t *testing.T) {
	_, err := NewMockSigner().Sign(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "XML vacío")
}

func TestSign_XMLMalformado(t *testing.T) {
	_, err := NewMockSigner().Sign([]byte("<DTE><sin-cerrar>"))
	assert.Error(t, err)
}
