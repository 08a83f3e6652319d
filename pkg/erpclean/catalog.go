package erpclean

import (
	"net/http"
	"sort"
)

// Requirement is a body field that must be present and non-empty, with the
// message returned when it is not.
type Requirement struct {
	Field   string
	Message string
}

// Operation is one entry of the remote API catalog.
type Operation struct {
	Name     string
	Method   string
	Path     string
	Upload   bool
	Required []Requirement
}

// HasBody reports whether the operation sends a request body.
func (o Operation) HasBody() bool {
	return o.Method == http.MethodPost || o.Method == http.MethodPut
}

// Catalog names.
const (
	OpCreateCompany            = "create-company"
	OpUpdateCompanySettings    = "update-company-settings"
	OpListICMSTaxSituations    = "list-icms-tax-situations"
	OpListIPITaxSituations     = "list-ipi-tax-situations"
	OpListPISTaxSituations     = "list-pis-tax-situations"
	OpListCOFINSTaxSituations  = "list-cofins-tax-situations"
	OpListICMSModalities       = "list-icms-modalities"
	OpListICMSSTModalities     = "list-icms-st-modalities"
	OpListICMSExemptionReasons = "list-icms-exemption-reasons"
	OpCreateCFOP               = "create-cfop"
	OpCreateNCM                = "create-ncm"
	OpCreateCEST               = "create-cest"
	OpListProductUnits         = "list-product-units"
	OpListProductOrigins       = "list-product-origins"
	OpListProductTypes         = "list-product-types"
	OpListProductSpecificTypes = "list-product-specific-types"
	OpListBills                = "list-bills"
	OpListInvoicePayments      = "list-invoice-payments"
	OpListCategories           = "list-categories"
	OpListPersons              = "list-persons"
	OpListBankAccounts         = "list-bank-accounts"
	OpCreateProduct            = "create-product"
	OpCreateBankAccount        = "create-bank-account"
	OpCreateCategory           = "create-category"
	OpCreatePerson             = "create-person"
	OpCreateBilling            = "create-billing"
	OpCreateFiscalSeries       = "create-fiscal-series"
	OpCreateSale               = "create-sale"
	OpCreatePurchase           = "create-purchase"
	OpImportNFeXML             = "import-nfe-xml"
	OpVerifyCompany            = "verify-company"
	OpVerifyEmail              = "verify-email"
	OpRegisterFreeTrial        = "register-free-trial"
	OpCreateAccountantToken    = "create-accountant-token"
)

// OpCompanyLogo names the composite lookup-then-download call. It is not a
// catalog entry.
const OpCompanyLogo = "company-logo"

const logoPathFormat = "companies/%s/logo"

var operations = []Operation{
	{Name: OpCreateCompany, Method: http.MethodPost, Path: "systems/companies"},
	{Name: OpUpdateCompanySettings, Method: http.MethodPost, Path: "companies/settings"},
	{Name: OpListICMSTaxSituations, Method: http.MethodGet, Path: "cfops/situacao-tributaria-icms"},
	{Name: OpListIPITaxSituations, Method: http.MethodGet, Path: "cfops/situacao-tributaria-ipi"},
	{Name: OpListPISTaxSituations, Method: http.MethodGet, Path: "cfops/situacao-tributaria-pis"},
	{Name: OpListCOFINSTaxSituations, Method: http.MethodGet, Path: "cfops/situacao-tributaria-cofins"},
	{Name: OpListICMSModalities, Method: http.MethodGet, Path: "cfops/modalidade-icms"},
	{Name: OpListICMSSTModalities, Method: http.MethodGet, Path: "cfops/modalidade-icms-st"},
	{Name: OpListICMSExemptionReasons, Method: http.MethodGet, Path: "cfops/motivos-desoneracao"},
	{Name: OpCreateCFOP, Method: http.MethodPost, Path: "cfops"},
	{Name: OpCreateNCM, Method: http.MethodPost, Path: "ncms"},
	{Name: OpCreateCEST, Method: http.MethodPost, Path: "cests"},
	{Name: OpListProductUnits, Method: http.MethodGet, Path: "product-unit"},
	{Name: OpListProductOrigins, Method: http.MethodGet, Path: "product-origin"},
	{Name: OpListProductTypes, Method: http.MethodGet, Path: "product-type"},
	{Name: OpListProductSpecificTypes, Method: http.MethodGet, Path: "product-specific-types"},
	{Name: OpListBills, Method: http.MethodGet, Path: "installments/accountant"},
	{Name: OpListInvoicePayments, Method: http.MethodGet, Path: "invoices-payments"},
	{Name: OpListCategories, Method: http.MethodGet, Path: "categories/select"},
	{Name: OpListPersons, Method: http.MethodGet, Path: "persons"},
	{Name: OpListBankAccounts, Method: http.MethodGet, Path: "accounts"},
	{Name: OpCreateProduct, Method: http.MethodPost, Path: "products"},
	{Name: OpCreateBankAccount, Method: http.MethodPost, Path: "accounts"},
	{Name: OpCreateCategory, Method: http.MethodPost, Path: "categories"},
	{Name: OpCreatePerson, Method: http.MethodPost, Path: "persons"},
	{Name: OpCreateBilling, Method: http.MethodPost, Path: "systems/installments"},
	{Name: OpCreateFiscalSeries, Method: http.MethodPost, Path: "series"},
	{Name: OpCreateSale, Method: http.MethodPost, Path: "systems/orders"},
	{Name: OpCreatePurchase, Method: http.MethodPost, Path: "purchases"},
	{Name: OpImportNFeXML, Method: http.MethodPost, Path: "invoices/import", Upload: true, Required: []Requirement{
		{Field: "xmls", Message: "Informe os XMLs a serem importadas"},
	}},
	{Name: OpVerifyCompany, Method: http.MethodGet, Path: "companies/verifycompanyexist"},
	{Name: OpVerifyEmail, Method: http.MethodPost, Path: "companies/verify-email"},
	{Name: OpRegisterFreeTrial, Method: http.MethodPost, Path: "register"},
	{Name: OpCreateAccountantToken, Method: http.MethodPost, Path: "nfcontador/access-customer", Required: []Requirement{
		{Field: "name", Message: "Informe o nome do contador"},
		{Field: "email", Message: "Informe o e-mail do contador"},
		{Field: "cpfcnpj", Message: "Informe o CPF ou CNPJ do contador"},
		{Field: "phone", Message: "Informe o telefone do contador"},
		{Field: "name_company", Message: "Informe o nome da empresa do contador"},
		{Field: "customer_cpfcnpj", Message: "Informe o CPF ou CNPJ da empresa que o contador irá acessar"},
	}},
}

var operationIdx = func() map[string]Operation {
	idx := make(map[string]Operation, len(operations))
	for _, op := range operations {
		idx[op.Name] = op
	}
	return idx
}()

// Operations returns the catalog sorted by name.
func Operations() []Operation {
	out := make([]Operation, len(operations))
	copy(out, operations)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// OperationByName looks up a catalog entry.
func OperationByName(name string) (Operation, bool) {
	op, ok := operationIdx[name]
	return op, ok
}

// validate checks required fields in order and stops at the first missing one.
func (o Operation) validate(data Payload) error {
	for _, r := range o.Required {
		if isBlank(data[r.Field]) {
			return configError(o.Name, r.Message, nil)
		}
	}
	return nil
}
