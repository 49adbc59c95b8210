package schema

import (
	"time"

	"github.com/google/uuid"

	"github.com/fieldlens/fieldlens/constants"
	"github.com/fieldlens/fieldlens/internal/entity"
)

// Built-in schema identifiers are stable across processes.
var (
	GenericInvoiceSchemaID = uuid.MustParse("6f1c2a84-0000-4a61-9c1e-2b9f5d1a0001")
	AmazonSchemaID         = uuid.MustParse("6f1c2a84-0000-4a61-9c1e-2b9f5d1a0002")
	UtilityBillSchemaID    = uuid.MustParse("6f1c2a84-0000-4a61-9c1e-2b9f5d1a0003")
)

const (
	amountPattern   = `([0-9]{1,3}(?:[.,'][0-9]{3})*(?:[.,][0-9]{2})|[0-9]+[.,][0-9]{2})`
	invoiceNoPat    = `(?i)invoice\s*(?:no|number|#)[:.]?\s*([A-Za-z0-9/-]+)`
	currencyCodePat = `\b(USD|EUR|GBP|CHF)\b|[$€£]`
)

// builtInSchemas returns fresh copies of the seeded schema set. The seed
// timestamps are fixed so repeated processes agree on them.
func builtInSchemas() []*entity.InvoiceSchema {
	seeded := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	return []*entity.InvoiceSchema{
		{
			ID:          GenericInvoiceSchemaID,
			Name:        "Generic Invoice",
			Description: "Label-driven defaults that fit most invoices",
			Version:     1,
			IsBuiltIn:   true,
			CreatedAt:   seeded,
			UpdatedAt:   seeded,
			FieldMappings: []entity.FieldMapping{
				{FieldType: constants.FieldVendor, LabelHint: "from", Confidence: 0.5},
				{FieldType: constants.FieldInvoiceNumber, Pattern: invoiceNoPat, LabelHint: "invoice", Confidence: 0.8},
				{FieldType: constants.FieldInvoiceDate, LabelHint: "invoice date", Confidence: 0.7},
				{FieldType: constants.FieldDueDate, LabelHint: "due date", Confidence: 0.7},
				{FieldType: constants.FieldSubtotal, Pattern: amountPattern, LabelHint: "subtotal", Confidence: 0.7},
				{FieldType: constants.FieldTax, Pattern: amountPattern, LabelHint: "tax", Confidence: 0.7},
				{FieldType: constants.FieldTotal, Pattern: amountPattern, LabelHint: "total", Confidence: 0.75},
				{FieldType: constants.FieldCurrency, Pattern: currencyCodePat, Confidence: 0.6},
			},
		},
		{
			ID:               AmazonSchemaID,
			Name:             "Amazon Order",
			VendorIdentifier: "amazon",
			Description:      "Amazon order confirmations and invoices",
			Version:          1,
			IsBuiltIn:        true,
			CreatedAt:        seeded,
			UpdatedAt:        seeded,
			FieldMappings: []entity.FieldMapping{
				{FieldType: constants.FieldVendor, LabelHint: "sold by", Confidence: 0.8},
				{FieldType: constants.FieldInvoiceNumber, Pattern: `\b(\d{3}-\d{7}-\d{7})\b`, LabelHint: "order", Confidence: 0.9},
				{FieldType: constants.FieldInvoiceDate, LabelHint: "order placed", Confidence: 0.7},
				{FieldType: constants.FieldTotal, Pattern: amountPattern, LabelHint: "grand total", Confidence: 0.85},
				{FieldType: constants.FieldCurrency, Pattern: currencyCodePat, Confidence: 0.6},
			},
		},
		{
			ID:          UtilityBillSchemaID,
			Name:        "Utility Bill",
			Description: "Power, water and telecom statements",
			Version:     1,
			IsBuiltIn:   true,
			CreatedAt:   seeded,
			UpdatedAt:   seeded,
			FieldMappings: []entity.FieldMapping{
				{FieldType: constants.FieldVendor, LabelHint: "billed by", Confidence: 0.6},
				{FieldType: constants.FieldInvoiceNumber, LabelHint: "account number", Confidence: 0.7},
				{FieldType: constants.FieldInvoiceDate, LabelHint: "bill date", Confidence: 0.7},
				{FieldType: constants.FieldDueDate, LabelHint: "due date", Confidence: 0.75},
				{FieldType: constants.FieldTotal, Pattern: amountPattern, LabelHint: "amount due", Confidence: 0.8},
			},
		},
	}
}
