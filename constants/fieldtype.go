package constants

import (
	"strings"
)

// FieldType is the closed set of invoice fields the extractor knows about.
type FieldType string

const (
	FieldVendor              FieldType = "vendor"
	FieldVendorAddress       FieldType = "vendorAddress"
	FieldCustomerName        FieldType = "customerName"
	FieldCustomerAddress     FieldType = "customerAddress"
	FieldInvoiceNumber       FieldType = "invoiceNumber"
	FieldInvoiceDate         FieldType = "invoiceDate"
	FieldDueDate             FieldType = "dueDate"
	FieldSubtotal            FieldType = "subtotal"
	FieldTax                 FieldType = "tax"
	FieldTotal               FieldType = "total"
	FieldCurrency            FieldType = "currency"
	FieldPONumber            FieldType = "poNumber"
	FieldPaymentTerms        FieldType = "paymentTerms"
	FieldLineItemDescription FieldType = "lineItemDescription"
	FieldLineItemQuantity    FieldType = "lineItemQuantity"
	FieldLineItemUnitPrice   FieldType = "lineItemUnitPrice"
	FieldLineItemTotal       FieldType = "lineItemTotal"
)

// FieldTypeInfo carries the static metadata for one field type.
type FieldTypeInfo struct {
	DisplayName     string
	IsRequired      bool
	IsLineItemField bool
}

var fieldTypeInfo = map[FieldType]FieldTypeInfo{
	FieldVendor:              {DisplayName: "Vendor", IsRequired: true},
	FieldVendorAddress:       {DisplayName: "Vendor Address"},
	FieldCustomerName:        {DisplayName: "Customer Name"},
	FieldCustomerAddress:     {DisplayName: "Customer Address"},
	FieldInvoiceNumber:       {DisplayName: "Invoice Number", IsRequired: true},
	FieldInvoiceDate:         {DisplayName: "Invoice Date", IsRequired: true},
	FieldDueDate:             {DisplayName: "Due Date"},
	FieldSubtotal:            {DisplayName: "Subtotal"},
	FieldTax:                 {DisplayName: "Tax"},
	FieldTotal:               {DisplayName: "Total", IsRequired: true},
	FieldCurrency:            {DisplayName: "Currency"},
	FieldPONumber:            {DisplayName: "PO Number"},
	FieldPaymentTerms:        {DisplayName: "Payment Terms"},
	FieldLineItemDescription: {DisplayName: "Line Item Description", IsLineItemField: true},
	FieldLineItemQuantity:    {DisplayName: "Line Item Quantity", IsLineItemField: true},
	FieldLineItemUnitPrice:   {DisplayName: "Line Item Unit Price", IsLineItemField: true},
	FieldLineItemTotal:       {DisplayName: "Line Item Total", IsLineItemField: true},
}

var allFieldTypes = []FieldType{
	FieldVendor,
	FieldVendorAddress,
	FieldCustomerName,
	FieldCustomerAddress,
	FieldInvoiceNumber,
	FieldInvoiceDate,
	FieldDueDate,
	FieldSubtotal,
	FieldTax,
	FieldTotal,
	FieldCurrency,
	FieldPONumber,
	FieldPaymentTerms,
	FieldLineItemDescription,
	FieldLineItemQuantity,
	FieldLineItemUnitPrice,
	FieldLineItemTotal,
}

// AllFieldTypes returns every known field type in declaration order.
func AllFieldTypes() []FieldType {
	result := make([]FieldType, len(allFieldTypes))
	copy(result, allFieldTypes)
	return result
}

// RequiredFieldTypes returns the field types an extraction must produce
// to avoid a missing-field warning.
func RequiredFieldTypes() []FieldType {
	var result []FieldType
	for _, ft := range allFieldTypes {
		if fieldTypeInfo[ft].IsRequired {
			result = append(result, ft)
		}
	}
	return result
}

func (f FieldType) Valid() bool {
	_, ok := fieldTypeInfo[f]
	return ok
}

func (f FieldType) DisplayName() string {
	if info, ok := fieldTypeInfo[f]; ok {
		return info.DisplayName
	}
	return string(f)
}

func (f FieldType) IsRequired() bool {
	return fieldTypeInfo[f].IsRequired
}

func (f FieldType) IsLineItemField() bool {
	return fieldTypeInfo[f].IsLineItemField
}

// ParseFieldType resolves a field type from its canonical name or display
// name, case-insensitively.
func ParseFieldType(input string) (FieldType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}
	for _, ft := range allFieldTypes {
		if normalized == strings.ToLower(string(ft)) || normalized == strings.ToLower(ft.DisplayName()) {
			return ft, true
		}
	}
	return "", false
}
