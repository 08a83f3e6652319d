package erpclean

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Invoke runs a catalog operation by name. The result rule of Interpret applies.
func (c *Client) Invoke(ctx context.Context, name string, data Payload, params ...QueryParam) (*Response, error) {
	op, ok := OperationByName(name)
	if !ok {
		return nil, configError(name, fmt.Sprintf("unknown operation %q", name), nil)
	}
	return c.run(ctx, op, data, params)
}

func (c *Client) run(ctx context.Context, op Operation, data Payload, params []QueryParam, opts ...CallOption) (*Response, error) {
	if err := op.validate(data); err != nil {
		return nil, err
	}
	spec := RequestSpec{Method: op.Method, Path: op.Path, Params: params}
	if op.HasBody() {
		spec.Body = data
	}
	if op.Upload {
		// Applies to this call's config copy only; the client's default stays put.
		opts = append([]CallOption{UploadMode(true)}, opts...)
	}
	resp, err := c.Do(ctx, spec, opts...)
	if err != nil {
		return nil, withOp(op.Name, err)
	}
	return Interpret(op.Name, resp)
}

func (c *Client) call(ctx context.Context, name string, data Payload, params []QueryParam) (*Response, error) {
	return c.run(ctx, operationIdx[name], data, params)
}

// CreateCompany registers a company and its users.
func (c *Client) CreateCompany(ctx context.Context, data Payload, params ...QueryParam) (*Response, error) {
	return c.call(ctx, OpCreateCompany, data, params)
}

// UpdateCompanySettings updates a company's settings.
func (c *Client) UpdateCompanySettings(ctx context.Context, data Payload, params ...QueryParam) (*Response, error) {
	return c.call(ctx, OpUpdateCompanySettings, data, params)
}

// ListICMSTaxSituations lists ICMS tax situations.
func (c *Client) ListICMSTaxSituations(ctx context.Context, params ...QueryParam) (*Response, error) {
	return c.call(ctx, OpListICMSTaxSituations, nil, params)
}

// ListIPITaxSituations lists IPI tax situations.
func (c *Client) ListIPITaxSituations(ctx context.Context, params ...QueryParam) (*Response, error) {
	return c.call(ctx, OpListIPITaxSituations, nil, params)
}

// ListPISTaxSituations lists PIS tax situations.
func (c *Client) ListPISTaxSituations(ctx context.Context, params ...QueryParam) (*Response, error) {
	return c.call(ctx, OpListPISTaxSituations, nil, params)
}

// ListCOFINSTaxSituations lists COFINS tax situations.
func (c *Client) ListCOFINSTaxSituations(ctx context.Context, params ...QueryParam) (*Response, error) {
	return c.call(ctx, OpListCOFINSTaxSituations, nil, params)
}

// ListICMSModalities lists ICMS calculation modalities.
func (c *Client) ListICMSModalities(ctx context.Context, params ...QueryParam) (*Response, error) {
	return c.call(ctx, OpListICMSModalities, nil, params)
}

// ListICMSSTModalities lists ICMS-ST calculation modalities.
func (c *Client) ListICMSSTModalities(ctx context.Context, params ...QueryParam) (*Response, error) {
	return c.call(ctx, OpListICMSSTModalities, nil, params)
}

// ListICMSExemptionReasons lists ICMS exemption (desoneração) reasons.
func (c *Client) ListICMSExemptionReasons(ctx context.Context, params ...QueryParam) (*Response, error) {
	return c.call(ctx, OpListICMSExemptionReasons, nil, params)
}

// CreateCFOP registers a CFOP (fiscal operation code).
func (c *Client) CreateCFOP(ctx context.Context, data Payload, params ...QueryParam) (*Response, error) {
	return c.call(ctx, OpCreateCFOP, data, params)
}

// CreateNCM registers an NCM (Mercosur product classification) code.
func (c *Client) CreateNCM(ctx context.Context, data Payload, params ...QueryParam) (*Response, error) {
	return c.call(ctx, OpCreateNCM, data, params)
}

// CreateCEST registers a CEST (tax substitution specifier) code.
func (c *Client) CreateCEST(ctx context.Context, data Payload, params ...QueryParam) (*Response, error) {
	return c.call(ctx, OpCreateCEST, data, params)
}

// ListProductUnits lists product units of measure.
func (c *Client) ListProductUnits(ctx context.Context, params ...QueryParam) (*Response, error) {
	return c.call(ctx, OpListProductUnits, nil, params)
}

// ListProductOrigins lists product origins.
func (c *Client) ListProductOrigins(ctx context.Context, params ...QueryParam) (*Response, error) {
	return c.call(ctx, OpListProductOrigins, nil, params)
}

// ListProductTypes lists product types.
func (c *Client) ListProductTypes(ctx context.Context, params ...QueryParam) (*Response, error) {
	return c.call(ctx, OpListProductTypes, nil, params)
}

// ListProductSpecificTypes lists specific product types.
func (c *Client) ListProductSpecificTypes(ctx context.Context, params ...QueryParam) (*Response, error) {
	return c.call(ctx, OpListProductSpecificTypes, nil, params)
}

// ListBills lists payable and receivable installments.
func (c *Client) ListBills(ctx context.Context, params ...QueryParam) (*Response, error) {
	return c.call(ctx, OpListBills, nil, params)
}

// ListInvoicePayments lists installments settled through invoices.
func (c *Client) ListInvoicePayments(ctx context.Context, params ...QueryParam) (*Response, error) {
	return c.call(ctx, OpListInvoicePayments, nil, params)
}

// ListCategories lists categories for selection.
func (c *Client) ListCategories(ctx context.Context, params ...QueryParam) (*Response, error) {
	return c.call(ctx, OpListCategories, nil, params)
}

// ListPersons lists persons (customers and suppliers).
func (c *Client) ListPersons(ctx context.Context, params ...QueryParam) (*Response, error) {
	return c.call(ctx, OpListPersons, nil, params)
}

// ListBankAccounts lists bank accounts.
func (c *Client) ListBankAccounts(ctx context.Context, params ...QueryParam) (*Response, error) {
	return c.call(ctx, OpListBankAccounts, nil, params)
}

// CreateProduct creates a product.
func (c *Client) CreateProduct(ctx context.Context, data Payload, params ...QueryParam) (*Response, error) {
	return c.call(ctx, OpCreateProduct, data, params)
}

// CreateBankAccount creates a bank account.
func (c *Client) CreateBankAccount(ctx context.Context, data Payload, params ...QueryParam) (*Response, error) {
	return c.call(ctx, OpCreateBankAccount, data, params)
}

// CreateCategory creates a category.
func (c *Client) CreateCategory(ctx context.Context, data Payload, params ...QueryParam) (*Response, error) {
	return c.call(ctx, OpCreateCategory, data, params)
}

// CreatePerson creates a person (customer or supplier).
func (c *Client) CreatePerson(ctx context.Context, data Payload, params ...QueryParam) (*Response, error) {
	return c.call(ctx, OpCreatePerson, data, params)
}

// CreateBilling creates a billing (installment) record.
func (c *Client) CreateBilling(ctx context.Context, data Payload, params ...QueryParam) (*Response, error) {
	return c.call(ctx, OpCreateBilling, data, params)
}

// CreateFiscalSeries creates an invoice numbering series.
func (c *Client) CreateFiscalSeries(ctx context.Context, data Payload, params ...QueryParam) (*Response, error) {
	return c.call(ctx, OpCreateFiscalSeries, data, params)
}

// CreateSale creates a sale order.
func (c *Client) CreateSale(ctx context.Context, data Payload, params ...QueryParam) (*Response, error) {
	return c.call(ctx, OpCreateSale, data, params)
}

// CreatePurchase creates a purchase.
func (c *Client) CreatePurchase(ctx context.Context, data Payload, params ...QueryParam) (*Response, error) {
	return c.call(ctx, OpCreatePurchase, data, params)
}

// ImportNFeXML uploads NFe XML documents. data["xmls"] is required and is
// usually a []File. The call is sent as multipart form data regardless of
// the client's upload setting, which is left unchanged.
func (c *Client) ImportNFeXML(ctx context.Context, data Payload, params ...QueryParam) (*Response, error) {
	return c.call(ctx, OpImportNFeXML, data, params)
}

// CompanyByCNPJ checks whether a company with the given CNPJ exists. Any
// cnpj entry in params is replaced.
func (c *Client) CompanyByCNPJ(ctx context.Context, cnpj string, params ...QueryParam) (*Response, error) {
	params, err := cnpjParams(OpVerifyCompany, cnpj, params)
	if err != nil {
		return nil, err
	}
	return c.call(ctx, OpVerifyCompany, nil, params)
}

// CompanyLogo resolves the company by CNPJ and downloads its logo. A failed
// lookup is an error; a logo request answered with anything but 200 returns
// nil bytes and no error.
func (c *Client) CompanyLogo(ctx context.Context, cnpj string, params ...QueryParam) ([]byte, error) {
	logo, err := c.CompanyLogoResponse(ctx, cnpj, params...)
	if err != nil {
		return nil, err
	}
	if logo.HTTPCode != http.StatusOK {
		return nil, nil
	}
	return logo.Raw, nil
}

// CompanyLogoResponse is CompanyLogo without the status filter: it returns
// the logo answer as received, whatever its status, with the raw bytes in
// Raw.
func (c *Client) CompanyLogoResponse(ctx context.Context, cnpj string, params ...QueryParam) (*Response, error) {
	company, err := c.CompanyByCNPJ(ctx, cnpj, params...)
	if err != nil {
		return nil, withOp(OpCompanyLogo, err)
	}
	id, ok := company.Field("id")
	if !ok || isBlank(id) {
		return nil, &Error{
			Kind:     KindUnrecognizedResponse,
			Op:       OpCompanyLogo,
			Message:  "company lookup returned no id: " + serializeResponse(company),
			HTTPCode: company.HTTPCode,
			Response: company,
		}
	}

	path := fmt.Sprintf(logoPathFormat, formatScalar(id))
	logo, err := c.Do(ctx, RequestSpec{Method: http.MethodGet, Path: path}, DecodeMode(false))
	if err != nil {
		return nil, withOp(OpCompanyLogo, err)
	}
	if logo.HTTPCode != http.StatusOK {
		c.log.DebugObj("company logo unavailable", "company_logo", map[string]any{
			"company_id": formatScalar(id),
			"http_code":  logo.HTTPCode,
		})
	}
	return logo, nil
}

// VerifyEmail checks an e-mail address against existing accounts.
func (c *Client) VerifyEmail(ctx context.Context, email string, params ...QueryParam) (*Response, error) {
	return c.call(ctx, OpVerifyEmail, Payload{"email": email}, params)
}

// RegisterFreeTrial signs a company up for the free trial.
func (c *Client) RegisterFreeTrial(ctx context.Context, data Payload, params ...QueryParam) (*Response, error) {
	return c.call(ctx, OpRegisterFreeTrial, data, params)
}

// CreateAccountantToken issues an access token for an accountant to reach a
// customer company. name, email, cpfcnpj, phone, name_company and
// customer_cpfcnpj are required and checked in that order.
func (c *Client) CreateAccountantToken(ctx context.Context, data Payload, params ...QueryParam) (*Response, error) {
	return c.call(ctx, OpCreateAccountantToken, data, params)
}

func cnpjParams(op, cnpj string, params []QueryParam) ([]QueryParam, error) {
	cnpj = strings.TrimSpace(cnpj)
	if cnpj == "" {
		return nil, configError(op, "Informe o CNPJ a ser consultado", nil)
	}
	out := make([]QueryParam, 0, len(params)+1)
	for _, p := range params {
		if p.Name == "cnpj" {
			continue
		}
		out = append(out, p)
	}
	return append(out, Param("cnpj", cnpj)), nil
}
