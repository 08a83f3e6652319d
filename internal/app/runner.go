package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/erpclean/erpclean-go/internal/config"
	"github.com/erpclean/erpclean-go/internal/journal"
	"github.com/erpclean/erpclean-go/internal/logger"
	"github.com/erpclean/erpclean-go/pkg/erpclean"
)

// Runner wires the API client, the call journal and logging, and executes
// catalog operations on behalf of the command line.
type Runner struct {
	cfg    *config.Config
	client *erpclean.Client
	store  journal.Store
	log    logger.Logger
}

// NewRunner builds a runner from config. Extra client options are applied
// after the ones derived from config.
func NewRunner(cfg *config.Config, log logger.Logger, opts ...erpclean.Option) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}

	clientOpts := []erpclean.Option{
		erpclean.WithToken(cfg.AccessToken),
		erpclean.WithUserToken(cfg.UserToken),
		erpclean.WithEnvironment(cfg.Environment),
		erpclean.WithDebug(cfg.Debug),
		erpclean.WithTimeout(cfg.Timeout),
		erpclean.WithLogger(log),
	}
	if cfg.BaseURLsFile != "" {
		urls, err := erpclean.LoadBaseURLs(cfg.BaseURLsFile)
		if err != nil {
			return nil, fmt.Errorf("load base urls: %w", err)
		}
		clientOpts = append(clientOpts, erpclean.WithBaseURLs(urls))
		log.InfoObj("base urls loaded", "base_urls_file", cfg.BaseURLsFile)
	}
	client := erpclean.New(append(clientOpts, opts...)...)

	storeOpts := journal.Options{
		TTL:             cfg.JournalTTL,
		CleanupInterval: cfg.JournalCleanupInterval,
	}
	store, err := journal.NewStore(cfg.JournalType, cfg.JournalPath, storeOpts)
	if err != nil {
		return nil, fmt.Errorf("init journal: %w", err)
	}
	log.InfoObj("journal initialized", "journal_config", map[string]any{
		"type":                     cfg.JournalType,
		"path":                     cfg.JournalPath,
		"ttl_seconds":              int(cfg.JournalTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.JournalCleanupInterval.Seconds()),
	})

	return &Runner{
		cfg:    cfg,
		client: client,
		store:  store,
		log:    log,
	}, nil
}

// Client exposes the underlying API client.
func (r *Runner) Client() *erpclean.Client {
	return r.client
}

// Operations lists the catalog.
func (r *Runner) Operations() []erpclean.Operation {
	return erpclean.Operations()
}

// Call executes a catalog operation by name and records it in the journal.
func (r *Runner) Call(ctx context.Context, name string, data erpclean.Payload, params []erpclean.QueryParam) (*erpclean.Response, error) {
	op, _ := erpclean.OperationByName(name)
	start := time.Now()
	resp, err := r.client.Invoke(ctx, name, data, params...)
	r.record(name, op.Method, op.Path, resp, err, start)
	return resp, err
}

// CompanyByCNPJ looks a company up by CNPJ and records the call.
func (r *Runner) CompanyByCNPJ(ctx context.Context, cnpj string) (*erpclean.Response, error) {
	op, _ := erpclean.OperationByName(erpclean.OpVerifyCompany)
	start := time.Now()
	resp, err := r.client.CompanyByCNPJ(ctx, cnpj)
	r.record(op.Name, op.Method, op.Path, resp, err, start)
	return resp, err
}

// Logo downloads a company logo. A nil slice with no error means the company
// has no logo; the journal keeps the status the logo request was answered with.
func (r *Runner) Logo(ctx context.Context, cnpj string) ([]byte, error) {
	start := time.Now()
	resp, err := r.client.CompanyLogoResponse(ctx, cnpj)
	r.record(erpclean.OpCompanyLogo, http.MethodGet, "companies/{id}/logo", resp, err, start)
	if err != nil {
		return nil, err
	}
	if resp.HTTPCode != http.StatusOK {
		return nil, nil
	}
	return resp.Raw, nil
}

// History returns the most recent journal entries, newest first.
func (r *Runner) History(limit int) ([]journal.Entry, error) {
	entries, err := r.store.Recent(limit)
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	return entries, nil
}

// Close releases the journal.
func (r *Runner) Close() error {
	if r == nil || r.store == nil {
		return nil
	}
	if err := r.store.Close(); err != nil {
		return fmt.Errorf("close journal: %w", err)
	}
	return nil
}

// record writes one journal entry. Journal failures are logged, never returned.
func (r *Runner) record(name, method, path string, resp *erpclean.Response, callErr error, start time.Time) {
	e := journal.Entry{
		Operation: name,
		Method:    method,
		Path:      path,
		At:        start.UTC(),
		ElapsedMS: time.Since(start).Milliseconds(),
	}
	if resp != nil {
		e.HTTPCode = resp.HTTPCode
	}
	if callErr != nil {
		e.Error = callErr.Error()
		var apiErr *erpclean.Error
		if errors.As(callErr, &apiErr) {
			e.ErrorKind = apiErr.Kind.String()
			e.HTTPCode = apiErr.HTTPCode
		}
	}

	if e.Failed() {
		r.log.WarnObj("api call failed", "api_call", e)
	} else {
		r.log.InfoObj("api call completed", "api_call", e)
	}
	if err := r.store.Record(e); err != nil {
		r.log.ErrorObj("journal record failed", "error", err.Error())
	}
}
