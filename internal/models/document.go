package models

import (
	"errors"
	"strings"
)

var ErrUnknownDocumentType = errors.New("unknown document type")

type DocumentType string

const (
	DocumentTypeStatement   DocumentType = "STATEMENT"
	DocumentTypeCardInvoice DocumentType = "CARD_INVOICE"
)

// Supported upload content types.
const (
	ContentTypePDF = "application/pdf"
	ContentTypeCSV = "text/csv"
)

var documentTypeAliases = map[string]DocumentType{
	"STATEMENT":      DocumentTypeStatement,
	"BANK_STATEMENT": DocumentTypeStatement,
	"EXTRATO":        DocumentTypeStatement,
	"CARD_INVOICE":   DocumentTypeCardInvoice,
	"INVOICE":        DocumentTypeCardInvoice,
	"FATURA_CARTAO":  DocumentTypeCardInvoice,
}

// ParseDocumentType accepts the canonical names and a few legacy aliases.
// An empty value means a bank statement.
func ParseDocumentType(s string) (DocumentType, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return DocumentTypeStatement, nil
	}
	if t, ok := documentTypeAliases[s]; ok {
		return t, nil
	}
	return "", ErrUnknownDocumentType
}

func (t DocumentType) Label() string {
	switch t {
	case DocumentTypeCardInvoice:
		return "credit card invoice"
	default:
		return "bank statement"
	}
}
