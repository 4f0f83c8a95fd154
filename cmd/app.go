package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/chainstash/chainstash/common"
	"github.com/chainstash/chainstash/config"
	"github.com/chainstash/chainstash/explorers"
	"github.com/chainstash/chainstash/fetcher"
	"github.com/chainstash/chainstash/index"
	"github.com/chainstash/chainstash/ingester"
	"github.com/chainstash/chainstash/nft"
	"github.com/chainstash/chainstash/reader"
	"github.com/chainstash/chainstash/resolver"
	"github.com/chainstash/chainstash/store"
	"github.com/chainstash/chainstash/ui"
	"github.com/chainstash/chainstash/webclient"
)

// errReported marks a failure whose user-facing message has already been
// printed by the command. Execute still exits non-zero on it but must not
// print the underlying classified error, which carries internal detail.
var errReported = errors.New("already reported")

// reportError prints the operator-facing message for err and returns the
// sentinel the root command swallows. Commands return this from RunE so the
// classified error itself never reaches stdout; the detail lives only in the
// structured log on stderr.
func reportError(u ui.UI, err error) error {
	u.Error("%s", friendlyError(err))
	return errReported
}

// app wires the service graph once per command invocation. Every component
// shares the same store handle, HTTP client and logger; nothing here is
// global so tests can build their own graph from fakes.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    *store.Store
	client   *webclient.Client
	resolver *resolver.Resolver
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, err := buildLogger()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		client:   webclient.New(cfg.RequestTimeout, cfg.RetryAttempts, logger),
		resolver: resolver.New(cfg.IPFSGateway, cfg.ArweaveGateway),
	}, nil
}

// buildLogger sends structured logs to stderr so stdout stays clean for the
// command's own output.
func buildLogger() (*zap.Logger, error) {
	logCfg := zap.NewProductionConfig()
	logCfg.OutputPaths = []string{"stderr"}
	logCfg.ErrorOutputPaths = []string{"stderr"}
	return logCfg.Build()
}

func (a *app) close() {
	_ = a.logger.Sync()
}

func (a *app) fetcher() *fetcher.Fetcher {
	return fetcher.New(a.store, a.client, a.cfg.IPFSGateway, a.logger)
}

func (a *app) ingester() *ingester.Ingester {
	explorer := explorers.NewEtherscanLikeExplorer(a.cfg.ExplorerDomain, a.cfg.ExplorerAPIKey, a.client)
	return ingester.New(explorer, a.store, a.cfg.TxPageSize, a.logger)
}

func (a *app) metadataIndex() (*index.MetadataIndex, error) {
	return index.Open(a.cfg.IndexPath)
}

func (a *app) assembler(idx *index.MetadataIndex) *nft.Assembler {
	ethReader := reader.NewEthReader(a.cfg.NodeURL, a.cfg.RequestTimeout, a.logger)
	return nft.NewAssembler(ethReader, a.resolver, a.client, a.store, idx, a.logger)
}

// commandContext derives a context cancelled by SIGINT/SIGTERM so an
// abandoned command releases its in-flight network calls.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// friendlyError maps a classified error to the message shown to the user.
// Caller mistakes and expected misses keep their detail; upstream and
// internal faults are reported generically; the specifics are already in
// the structured log on stderr.
func friendlyError(err error) string {
	switch {
	case errors.Is(err, common.ErrValidation):
		return err.Error()
	case errors.Is(err, common.ErrNotFound):
		return err.Error()
	case errors.Is(err, common.ErrChainRead):
		return "reading contract state failed"
	case errors.Is(err, common.ErrUpstream):
		return "an upstream service failed, try again later"
	case errors.Is(err, common.ErrMalformedData):
		return "upstream returned data that could not be parsed"
	case errors.Is(err, common.ErrPersistence):
		return "local store failure"
	default:
		return fmt.Sprintf("unexpected error: %s", err)
	}
}
