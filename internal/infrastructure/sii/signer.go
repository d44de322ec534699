package sii

import (
	"bytes"
	"crypto/sha1"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/thecarebot/facturacion-sii/internal/application/billing"
)

// MockSigner agrega al DTE un bloque Signature con la estructura XMLDSig
// completa: el DigestValue es un SHA-1 real del documento canonicalizado
// (C14N) y el SignatureValue es un placeholder fijo. Un firmador con
// certificado reemplaza esta implementación detrás de billing.DTESigner sin
// tocar el resto del pipeline.
type MockSigner struct{}

// NewMockSigner crea el firmador simulado.
func NewMockSigner() *MockSigner { return &MockSigner{} }

// Sign inyecta el nodo Signature como hijo del elemento raíz DTE y devuelve
// el documento completo, de nuevo en ISO-8859-1.
func (s *MockSigner) Sign(xmlDTE []byte) ([]byte, error) {
	if len(xmlDTE) == 0 {
		return nil, fmt.Errorf("sii: XML vacío")
	}

	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = latin1Reader
	if err := doc.ReadFromBytes(xmlDTE); err != nil {
		return nil, fmt.Errorf("sii: parsear XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("sii: documento sin raíz")
	}
	documento := root.SelectElement("Documento")
	if documento == nil {
		return nil, fmt.Errorf("sii: no se encontró el nodo Documento")
	}
	refURI := "#" + documento.SelectAttrValue("ID", "")

	digestB64, err := digestC14N(xmlDTE)
	if err != nil {
		return nil, fmt.Errorf("sii: canonicalizar documento: %w", err)
	}

	sigDoc := etree.NewDocument()
	if err := sigDoc.ReadFromString(s.buildSignature(refURI, digestB64)); err != nil {
		return nil, fmt.Errorf("sii: parsear Signature: %w", err)
	}
	if sigRoot := sigDoc.Root(); sigRoot != nil {
		root.AddChild(sigRoot)
	}

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("sii: serializar XML firmado: %w", err)
	}
	return reencodeLatin1(buf.Bytes())
}

// buildSignature arma el bloque Signature XMLDSig con los identificadores de
// algoritmo que usa el SII (C14N + rsa-sha1).
func (s *MockSigner) buildSignature(refURI, digestB64 string) string {
	var sb strings.Builder
	sb.WriteString(`<Signature xmlns="` + NamespaceDS + `">`)
	sb.WriteString(`<SignedInfo>`)
	sb.WriteString(`<CanonicalizationMethod Algorithm="` + AlgC14N + `"/>`)
	sb.WriteString(`<SignatureMethod Algorithm="` + AlgRSASHA1 + `"/>`)
	sb.WriteString(`<Reference URI="` + refURI + `">`)
	sb.WriteString(`<DigestMethod Algorithm="` + AlgSHA1 + `"/>`)
	sb.WriteString(`<DigestValue>` + digestB64 + `</DigestValue>`)
	sb.WriteString(`</Reference>`)
	sb.WriteString(`</SignedInfo>`)
	sb.WriteString(`<SignatureValue>` + MockSignatureValue + `</SignatureValue>`)
	sb.WriteString(`</Signature>`)
	return sb.String()
}

// digestC14N canonicaliza el documento (C14N 1.0) y devuelve el SHA-1 en base64.
func digestC14N(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	dec.CharsetReader = latin1Reader
	canonical, err := c14n.Canonicalize(dec)
	if err != nil {
		return "", err
	}
	sum := sha1.Sum(canonical)
	return base64.StdEncoding.EncodeToString(sum[:]), nil
}

// latin1Reader permite a los parsers leer la declaración ISO-8859-1 del DTE.
func latin1Reader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "iso-8859-1", "latin1", "":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	case "utf-8":
		return input, nil
	default:
		return nil, fmt.Errorf("charset no soportado: %s", charset)
	}
}

// reencodeLatin1 reescribe la salida UTF-8 de etree como ISO-8859-1,
// dejando la declaración XML original al inicio.
func reencodeLatin1(data []byte) ([]byte, error) {
	// etree conserva la instrucción <?xml ...?> leída; separarla para no
	// transcodificarla dos veces no es necesario porque es ASCII puro.
	var out bytes.Buffer
	w := transform.NewWriter(&out, charmap.ISO8859_1.NewEncoder())
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

var _ billing.DTESigner = (*MockSigner)(nil)
