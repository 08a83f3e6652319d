package erpclean

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/erpclean/erpclean-go/pkg/httpclient"
)

func TestCatalogIsComplete(t *testing.T) {
	ops := Operations()
	if len(ops) != 34 {
		t.Fatalf("expected 34 operations, got %d", len(ops))
	}
	for i := 1; i < len(ops); i++ {
		if ops[i-1].Name >= ops[i].Name {
			t.Fatalf("operations not sorted or duplicated at %q", ops[i].Name)
		}
	}
	for _, op := range ops {
		if op.Path == "" || strings.HasPrefix(op.Path, "/") {
			t.Fatalf("bad path for %s: %q", op.Name, op.Path)
		}
		if _, err := normalizeMethod(op.Method); err != nil {
			t.Fatalf("bad method for %s: %v", op.Name, err)
		}
	}
}

func TestCreateCompanySuccess(t *testing.T) {
	ft := &fakeTransport{respond: answer(http.StatusOK, `{"id":10}`)}
	c := newTestClient(ft)

	resp, err := c.CreateCompany(context.Background(), Payload{"name": "ACME"})
	if err != nil {
		t.Fatalf("CreateCompany: %v", err)
	}
	if id, _ := resp.Field("id"); formatScalar(id) != "10" {
		t.Fatalf("unexpected body %#v", resp.Body)
	}
	req := ft.requests()[0]
	if req.Method != http.MethodPost || req.URL != "https://api.test/api/systems/companies" {
		t.Fatalf("unexpected request %s %s", req.Method, req.URL)
	}
	if string(req.Body) != `{"name":"ACME"}` {
		t.Fatalf("unexpected body %q", req.Body)
	}
}

func TestCreateCompanyRemoteError(t *testing.T) {
	ft := &fakeTransport{respond: answer(http.StatusUnprocessableEntity, `{"message":"CNPJ já cadastrado"}`)}
	c := newTestClient(ft)

	_, err := c.CreateCompany(context.Background(), Payload{"name": "ACME"})
	if !errors.Is(err, ErrRemote) || err.Error() != "CNPJ já cadastrado" {
		t.Fatalf("unexpected error %v", err)
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Op != OpCreateCompany || apiErr.Response == nil {
		t.Fatalf("expected operation and response on error, got %#v", apiErr)
	}
}

func TestListOperationSendsNoBody(t *testing.T) {
	ft := &fakeTransport{}
	c := newTestClient(ft)

	if _, err := c.ListProductUnits(context.Background(), Param("page", 1)); err != nil {
		t.Fatalf("ListProductUnits: %v", err)
	}
	req := ft.requests()[0]
	if req.Method != http.MethodGet || req.Body != nil {
		t.Fatalf("unexpected request %#v", req)
	}
	if req.URL != "https://api.test/api/product-unit?page=1" {
		t.Fatalf("unexpected url %q", req.URL)
	}
}

func TestInvoke(t *testing.T) {
	ft := &fakeTransport{}
	c := newTestClient(ft)

	if _, err := c.Invoke(context.Background(), OpListBankAccounts, nil); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got := ft.requests()[0].URL; got != "https://api.test/api/accounts" {
		t.Fatalf("unexpected url %q", got)
	}

	_, err := c.Invoke(context.Background(), "no-such-op", nil)
	if KindOf(err) != KindConfiguration {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if len(ft.requests()) != 1 {
		t.Fatalf("unknown operation should not reach the network")
	}
}

func TestImportNFeXMLRequiresXMLs(t *testing.T) {
	ft := &fakeTransport{}
	c := newTestClient(ft)

	_, err := c.ImportNFeXML(context.Background(), Payload{"update": true})
	if KindOf(err) != KindConfiguration || err.Error() != "Informe os XMLs a serem importadas" {
		t.Fatalf("unexpected error %v", err)
	}
	if len(ft.requests()) != 0 {
		t.Fatalf("validation failure must not reach the network")
	}
}

func TestImportNFeXMLUploadsMultipart(t *testing.T) {
	ft := &fakeTransport{}
	c := newTestClient(ft)
	xml := File{Name: "nfe.xml", ContentType: "application/xml", Content: []byte("<nfe/>")}

	if _, err := c.ImportNFeXML(context.Background(), Payload{"xmls": []File{xml}}); err != nil {
		t.Fatalf("ImportNFeXML: %v", err)
	}
	req := ft.requests()[0]
	if !req.Multipart {
		t.Fatalf("expected multipart request")
	}
	if got := req.Header.Get("Content-Type"); got != "multipart/form-data" {
		t.Fatalf("Content-Type = %q", got)
	}
	part, ok := formValue(req, "xmls[0]")
	if !ok || !part.IsFile() || part.FileName != "nfe.xml" {
		t.Fatalf("missing file part: %#v", req.Form)
	}
	if c.Config().Upload {
		t.Fatalf("upload mode must not stick after the call")
	}

	ft.respond = answer(http.StatusInternalServerError, `{"message":"falhou"}`)
	if _, err := c.ImportNFeXML(context.Background(), Payload{"xmls": []File{xml}}); !errors.Is(err, ErrRemote) {
		t.Fatalf("expected remote error, got %v", err)
	}
	if c.Config().Upload {
		t.Fatalf("upload mode must not stick after a failed call")
	}
}

func TestCreateAccountantTokenValidatesInOrder(t *testing.T) {
	ft := &fakeTransport{}
	c := newTestClient(ft)
	ctx := context.Background()

	full := Payload{
		"name":             "Ana",
		"email":            "ana@example.com",
		"cpfcnpj":          "123",
		"phone":            "5511999999999",
		"name_company":     "Contábil",
		"customer_cpfcnpj": "456",
	}
	steps := []struct {
		drop string
		want string
	}{
		{"name", "Informe o nome do contador"},
		{"email", "Informe o e-mail do contador"},
		{"cpfcnpj", "Informe o CPF ou CNPJ do contador"},
		{"phone", "Informe o telefone do contador"},
		{"name_company", "Informe o nome da empresa do contador"},
		{"customer_cpfcnpj", "Informe o CPF ou CNPJ da empresa que o contador irá acessar"},
	}
	for _, step := range steps {
		data := Payload{}
		for k, v := range full {
			data[k] = v
		}
		data[step.drop] = ""
		_, err := c.CreateAccountantToken(ctx, data)
		if err == nil || err.Error() != step.want {
			t.Fatalf("dropping %s: got %v, want %q", step.drop, err, step.want)
		}
	}

	_, err := c.CreateAccountantToken(ctx, Payload{"phone": "1"})
	if err == nil || err.Error() != "Informe o nome do contador" {
		t.Fatalf("first missing field should win, got %v", err)
	}
	if len(ft.requests()) != 0 {
		t.Fatalf("validation failures must not reach the network")
	}

	if _, err := c.CreateAccountantToken(ctx, full); err != nil {
		t.Fatalf("CreateAccountantToken: %v", err)
	}
	if got := ft.requests()[0].URL; got != "https://api.test/api/nfcontador/access-customer" {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestCompanyByCNPJ(t *testing.T) {
	ft := &fakeTransport{}
	c := newTestClient(ft)
	ctx := context.Background()

	if _, err := c.CompanyByCNPJ(ctx, "  "); KindOf(err) != KindConfiguration || err.Error() != "Informe o CNPJ a ser consultado" {
		t.Fatalf("unexpected error %v", err)
	}
	if _, err := c.CompanyByCNPJ(ctx, "123", Param("cnpj", "999"), Param("page", 2)); err != nil {
		t.Fatalf("CompanyByCNPJ: %v", err)
	}
	reqs := ft.requests()
	if len(reqs) != 1 {
		t.Fatalf("expected one request, got %d", len(reqs))
	}
	if reqs[0].URL != "https://api.test/api/companies/verifycompanyexist?page=2&cnpj=123" {
		t.Fatalf("unexpected url %q", reqs[0].URL)
	}
}

func TestVerifyEmail(t *testing.T) {
	ft := &fakeTransport{}
	c := newTestClient(ft)

	if _, err := c.VerifyEmail(context.Background(), "a@b.com"); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}
	if got := string(ft.requests()[0].Body); got != `{"email":"a@b.com"}` {
		t.Fatalf("unexpected body %q", got)
	}

	ft.respond = answer(http.StatusConflict, `{"message":"E-mail já cadastrado"}`)
	if _, err := c.VerifyEmail(context.Background(), "a@b.com"); !errors.Is(err, ErrRemote) {
		t.Fatalf("expected remote error, got %v", err)
	}
}

func logoTransport(lookup, logo fakeResponse) *fakeTransport {
	return &fakeTransport{respond: func(req *httpclient.Request) (fakeResponse, error) {
		if strings.Contains(req.URL, "/logo") {
			return logo, nil
		}
		return lookup, nil
	}}
}

func TestCompanyLogo(t *testing.T) {
	ctx := context.Background()
	png := "\x89PNG\r\n"

	ft := logoTransport(
		fakeResponse{status: http.StatusOK, body: `{"id":55}`},
		fakeResponse{status: http.StatusOK, body: png},
	)
	c := newTestClient(ft)
	got, err := c.CompanyLogo(ctx, "123")
	if err != nil {
		t.Fatalf("CompanyLogo: %v", err)
	}
	if string(got) != png {
		t.Fatalf("unexpected logo bytes %q", got)
	}
	reqs := ft.requests()
	if len(reqs) != 2 || reqs[1].URL != "https://api.test/api/companies/55/logo" {
		t.Fatalf("unexpected requests %d", len(reqs))
	}
	if c.Config().Decode != true {
		t.Fatalf("decode mode must not change on the client")
	}

	ft = logoTransport(
		fakeResponse{status: http.StatusOK, body: `{"id":55}`},
		fakeResponse{status: http.StatusNotFound, body: `{"message":"sem logo"}`},
	)
	c = newTestClient(ft)
	got, err = c.CompanyLogo(ctx, "123")
	if err != nil || got != nil {
		t.Fatalf("missing logo should be nil without error, got %q, %v", got, err)
	}
}

func TestCompanyLogoLookupFailures(t *testing.T) {
	ctx := context.Background()

	ft := logoTransport(
		fakeResponse{status: http.StatusNotFound, body: `{"message":"Empresa não encontrada"}`},
		fakeResponse{status: http.StatusOK, body: "x"},
	)
	_, err := newTestClient(ft).CompanyLogo(ctx, "123")
	if !errors.Is(err, ErrRemote) || err.Error() != "Empresa não encontrada" {
		t.Fatalf("unexpected error %v", err)
	}
	if len(ft.requests()) != 1 {
		t.Fatalf("failed lookup must not fetch the logo")
	}

	ft = logoTransport(
		fakeResponse{status: http.StatusOK, body: `{"name":"ACME"}`},
		fakeResponse{status: http.StatusOK, body: "x"},
	)
	_, err = newTestClient(ft).CompanyLogo(ctx, "123")
	if KindOf(err) != KindUnrecognizedResponse {
		t.Fatalf("expected unrecognized response for missing id, got %v", err)
	}

	if _, err := newTestClient(&fakeTransport{}).CompanyLogo(ctx, ""); KindOf(err) != KindConfiguration {
		t.Fatalf("expected configuration error for empty cnpj, got %v", err)
	}
}

func TestConcurrentUploadAndJSONCalls(t *testing.T) {
	ft := &fakeTransport{}
	c := newTestClient(ft)
	ctx := context.Background()
	xml := File{Name: "nfe.xml", Content: []byte("<nfe/>")}

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := c.ImportNFeXML(ctx, Payload{"xmls": []File{xml}}); err != nil {
				errs <- err
			}
		}()
		go func(i int) {
			defer wg.Done()
			if _, err := c.CreateCompany(ctx, Payload{"name": fmt.Sprintf("c%d", i)}); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent call failed: %v", err)
	}

	for _, req := range ft.requests() {
		switch {
		case strings.HasSuffix(req.URL, "/invoices/import"):
			if !req.Multipart {
				t.Fatalf("upload call sent as JSON")
			}
		case strings.HasSuffix(req.URL, "/systems/companies"):
			if req.Multipart || req.Header.Get("Content-Type") != "application/json" {
				t.Fatalf("JSON call sent as multipart")
			}
		default:
			t.Fatalf("unexpected url %q", req.URL)
		}
	}
}

func TestCompanyLogoResponseKeepsStatus(t *testing.T) {
	ft := logoTransport(
		fakeResponse{status: http.StatusOK, body: `{"id":55}`},
		fakeResponse{status: http.StatusInternalServerError, body: `{"message":"falhou"}`},
	)
	c := newTestClient(ft)

	resp, err := c.CompanyLogoResponse(context.Background(), "123")
	if err != nil {
		t.Fatalf("CompanyLogoResponse: %v", err)
	}
	if resp.HTTPCode != http.StatusInternalServerError || string(resp.Raw) != `{"message":"falhou"}` {
		t.Fatalf("unexpected logo response %d %q", resp.HTTPCode, resp.Raw)
	}
	if logo, err := c.CompanyLogo(context.Background(), "123"); logo != nil || err != nil {
		t.Fatalf("CompanyLogo should hide non-200 answers, got %q, %v", logo, err)
	}

	_, err = newTestClient(logoTransport(
		fakeResponse{status: http.StatusOK, body: `{}`},
		fakeResponse{status: http.StatusOK},
	)).CompanyLogoResponse(context.Background(), "123")
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Op != OpCompanyLogo {
		t.Fatalf("expected error stamped with %s, got %v", OpCompanyLogo, err)
	}
}
