package sii

// Identificadores de algoritmo XMLDSig usados en el bloque Signature del DTE.
const (
	NamespaceDS = "http://www.w3.org/2000/09/xmldsig#"
	AlgC14N     = "http://www.w3.org/TR/2001/REC-xml-c14n-20010315"
	AlgRSASHA1  = "http://www.w3.org/2000/09/xmldsig#rsa-sha1"
	AlgSHA1     = "http://www.w3.org/2000/09/xmldsig#sha1"
)

// MockSignatureValue valor de firma simulado. El DigestValue sí se calcula
// sobre el documento canonicalizado; solo el SignatureValue es un placeholder
// hasta contar con certificado digital.
const MockSignatureValue = "MOCK_SIGNATURE_FOR_MVP_DEMO"

// XMLEncoding codificación exigida por el esquema DTE del SII.
const XMLEncoding = "ISO-8859-1"
