package extraction

import (
	"strconv"
	"time"

	"github.com/fieldlens/fieldlens/constants"
	"github.com/fieldlens/fieldlens/internal/dateparse"
	"github.com/fieldlens/fieldlens/internal/entity"
)

// ApplyToDocument writes normalized extracted values onto the caller's
// document record. It is a pure transform: no I/O beyond the in-place write.
func ApplyToDocument(result *entity.SchemaExtractionResult, doc *entity.Document) {
	if result == nil || doc == nil {
		return
	}

	for _, f := range result.Fields {
		switch f.FieldType {
		case constants.FieldVendor:
			doc.Organization = f.Value
		case constants.FieldInvoiceNumber:
			doc.InvoiceNumber = f.Value
		case constants.FieldInvoiceDate:
			if d, ok := dateparse.Parse(f.Value); ok {
				doc.InvoiceDate = &d
			}
		case constants.FieldDueDate:
			if d, ok := dateparse.Parse(f.Value); ok {
				doc.DueDate = &d
			}
		case constants.FieldSubtotal:
			if v, err := strconv.ParseFloat(f.Value, 64); err == nil {
				doc.Subtotal = &v
			}
		case constants.FieldTax:
			if v, err := strconv.ParseFloat(f.Value, 64); err == nil {
				doc.Tax = &v
			}
		case constants.FieldTotal:
			if v, err := strconv.ParseFloat(f.Value, 64); err == nil {
				doc.Amount = &v
			}
		case constants.FieldCurrency:
			if code, ok := currencyCode(f.Value); ok {
				doc.CurrencyCode = code
			}
		}
	}

	id := result.SchemaID
	doc.SchemaID = &id
	doc.UpdatedAt = time.Now().UTC()
}
