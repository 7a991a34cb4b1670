// app.go wires configuration, storage, the API client, and the workflow
// controllers for a single command invocation.
package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/applyninja/ninja/internal/agent"
	"github.com/applyninja/ninja/internal/api"
	"github.com/applyninja/ninja/internal/config"
	"github.com/applyninja/ninja/internal/flow"
	"github.com/applyninja/ninja/internal/history"
	"github.com/applyninja/ninja/internal/log"
	"github.com/applyninja/ninja/internal/payment"
	"github.com/applyninja/ninja/internal/profile"
	"github.com/applyninja/ninja/internal/storage"
	"github.com/applyninja/ninja/internal/ui"
	"github.com/applyninja/ninja/internal/upload"
)

// app is everything a command needs.
type app struct {
	home   string
	cfg    *config.Config
	out    io.Writer
	diag   *zerolog.Logger
	events *log.Logger
	slots  storage.Slots
	store  *profile.Store
	client *api.Client
	nav    *ui.Navigator
	prompt *ui.Prompter
}

// newApp loads config and opens storage. Callers must Close the app.
func newApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	home := resolveHome(opts)

	cfg, err := config.Load(home)
	if err != nil {
		return nil, err
	}
	if opts.server != "" {
		cfg.Server.BaseURL = opts.server
	}
	if opts.debug {
		cfg.Debug = true
	}
	if opts.ephemeral {
		cfg.Storage.Driver = config.DriverMemory
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	diag := log.NewDiagnostics(cmd.ErrOrStderr(), cfg.Debug)

	events, err := log.NewLogger(home)
	if err != nil {
		return nil, err
	}

	var slots storage.Slots
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		slots = storage.NewMemory()
	default:
		db, err := storage.OpenSQLite(filepath.Join(home, config.DBFile))
		if err != nil {
			return nil, fmt.Errorf("opening profile storage: %w", err)
		}
		slots = db
	}

	client, err := api.NewClient(api.Options{
		BaseURL:   cfg.Server.BaseURL,
		Logger:    &diag,
		UserAgent: "ninja/" + version,
	})
	if err != nil {
		_ = slots.Close()
		return nil, err
	}

	out := cmd.OutOrStdout()
	return &app{
		home:   home,
		cfg:    cfg,
		out:    out,
		diag:   &diag,
		events: events,
		slots:  slots,
		store:  profile.NewStore(slots, &diag),
		client: client,
		nav:    ui.NewNavigator(out, events),
		prompt: ui.NewPrompter(cmd.InOrStdin(), out),
	}, nil
}

// Close releases storage.
func (a *app) Close() error {
	return a.slots.Close()
}

func (a *app) gate(progress flow.Progress) *payment.Gate {
	return payment.NewGate(payment.Options{
		Store:      a.store,
		Verifier:   a.client,
		Navigator:  a.nav,
		Progress:   progress,
		Events:     a.events,
		ProofDelay: a.cfg.ProofDelay(),
	})
}

func (a *app) uploader(progress flow.Progress) *upload.Controller {
	return upload.NewController(upload.Options{
		Store:         a.store,
		Analyzer:      a.client,
		Promoter:      a.gate(progress),
		Navigator:     a.nav,
		Progress:      progress,
		Events:        a.events,
		Logger:        a.diag,
		RedirectDelay: a.cfg.RedirectDelay(),
	})
}

func (a *app) agent() *agent.Controller {
	return agent.NewController(agent.Options{
		Backend:  a.client,
		Resolver: a.gate(nil),
		Prompt:   ui.PaymentNotice{Out: a.out, Nav: a.nav},
		Events:   a.events,
		Logger:   a.diag,
	})
}

func (a *app) poller(renderer history.Renderer, confirmer history.Confirmer) *history.Poller {
	return history.NewPoller(history.Options{
		Source:     a.client,
		Renderer:   renderer,
		Confirmer:  confirmer,
		Interval:   a.cfg.PollInterval(),
		StaleAfter: a.cfg.History.StaleAfter,
		Events:     a.events,
		Logger:     a.diag,
	})
}

// withApp runs fn with a freshly built app and closes it afterwards.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(a *app) error) error {
	a, err := newApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
