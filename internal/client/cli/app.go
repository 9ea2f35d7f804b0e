package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dmitrijs2005/gallerist/internal/client/bootstrap"
	"github.com/dmitrijs2005/gallerist/internal/client/client"
	"github.com/dmitrijs2005/gallerist/internal/client/config"
	"github.com/dmitrijs2005/gallerist/internal/client/models"
	"github.com/dmitrijs2005/gallerist/internal/client/services"
	"github.com/dmitrijs2005/gallerist/internal/client/session"
	"github.com/dmitrijs2005/gallerist/internal/client/storage"
	"github.com/dmitrijs2005/gallerist/internal/client/upload"
	"github.com/dmitrijs2005/gallerist/internal/cryptox"
	"github.com/dmitrijs2005/gallerist/internal/logging"
)

const sealerSalt = "gallerist-cookie-jar"

type App struct {
	cfg    *config.Config
	logger logging.Logger

	db      *sql.DB
	jar     *storage.CookieJar
	store   *session.Store
	auth    services.AuthService
	catalog *services.CatalogService
	uploads *upload.Registry
	boot    *bootstrap.Sequence

	views map[string]*view
	order []*view

	reader *bufio.Reader
	out    io.Writer
}

// deps are the pieces NewApp builds from config; tests pass their own.
type deps struct {
	db        *sql.DB
	sealer    *cryptox.Sealer
	api       client.Client
	transport upload.Transport
}

func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := storage.Open(ctx, cfg.StateDSN)
	if err != nil {
		return nil, fmt.Errorf("error initializing state database: %w", err)
	}

	sealer, err := cryptox.NewSealer([]byte(cfg.CookieSecret), []byte(sealerSalt))
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	api, err := client.NewHTTPClient(cfg.APIBaseURL, cfg.RequestTimeout, storage.NewCookieJar(db, sealer))
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	d := deps{db: db, sealer: sealer, api: api, transport: newTransport(cfg, api)}
	return newApp(cfg, d, logger, os.Stdin, os.Stdout), nil
}

func newTransport(cfg *config.Config, api client.Client) upload.Transport {
	if cfg.TransferMode == config.TransferS3 {
		return upload.NewS3Transport(upload.S3Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			BaseEndpoint:  cfg.S3BaseEndpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
		}, &http.Client{})
	}
	return upload.NewAPITransport(api)
}

func newApp(cfg *config.Config, d deps, logger logging.Logger, in io.Reader, out io.Writer) *App {
	jar := storage.NewCookieJar(d.db, d.sealer)
	store := session.NewStore(logger)
	auth := services.NewAuthService(d.api, d.db, d.sealer, store, logger)

	opts := upload.Options{
		Accept:       cfg.UploadAccept,
		MaxSize:      cfg.UploadMaxSize,
		Multiple:     cfg.UploadMultiple,
		StallTimeout: cfg.UploadStallTimeout,
	}

	a := &App{
		cfg:     cfg,
		logger:  logger,
		db:      d.db,
		jar:     jar,
		store:   store,
		auth:    auth,
		catalog: services.NewCatalogService(d.api, logger),
		uploads: upload.NewRegistry(opts, d.transport, logger),
		boot:    bootstrap.New(store, storage.NewSliceRepository(d.db), jar, auth.Fetcher(), logger),
		reader:  bufio.NewReader(in),
		out:     out,
	}
	a.registerViews()
	return a
}

// Run restores the session, starts the background watchers and blocks in
// the REPL until the user leaves.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		if err := a.auth.PersistSession(ctx); err != nil {
			a.logger.Error(ctx, "session persistence stopped", "error", err)
		}
	}()
	if err := a.boot.Run(ctx); err != nil {
		return err
	}
	go a.watchUploads(ctx)

	printlnFn(titleStyle.Render("gallerist") + " (type 'help' for commands)")

	// a pending stdin read cannot be interrupted, so a signal does not wait
	// for the REPL to notice
	done := make(chan struct{})
	go func() {
		defer close(done)
		runREPL(ctx, a, a.status, a.reader)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		printlnFn("Bye!")
	}
	return nil
}

// Close stops running transfers and releases the state database.
func (a *App) Close() {
	a.uploads.Close()
	if err := a.db.Close(); err != nil {
		a.logger.Warn(context.Background(), "closing state database", "error", err)
	}
}

func (a *App) status() string {
	s := a.store.Snapshot()
	switch {
	case s.IsLoading:
		return "(loading) "
	case s.User != nil:
		return fmt.Sprintf("(%s %s) ", s.User.Email, s.User.Role)
	}
	return ""
}

// watchUploads reports finished transfers while the user keeps working.
func (a *App) watchUploads(ctx context.Context) {
	events, stop := a.uploads.Subscribe()
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Removed {
				continue
			}
			switch it := ev.Item; it.Status {
			case models.UploadCompleted:
				success(fmt.Sprintf("%s uploaded: %s", it.File.Name, it.URL))
			case models.UploadFailed:
				failure(fmt.Sprintf("%s failed: %s (retry %s)", it.File.Name, it.Error, it.ID))
			}
		}
	}
}
