// Command rsadmin inspects and edits the compensation plan settings of a
// running server: the Career Plan, Fidelity Bonus, Top SIGMA and SIGMA
// settings pages.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rsprolipsi/compplan/internal/client"
	"github.com/rsprolipsi/compplan/internal/config"
	"github.com/rsprolipsi/compplan/internal/route"
	"github.com/rsprolipsi/compplan/internal/settings"
	"github.com/rsprolipsi/compplan/pkg/logging"
)

// maxParallelLoads bounds the pages loaded at once by "show".
const maxParallelLoads = 4

type app struct {
	// Flags
	apiURL  string
	token   string
	output  string
	timeout time.Duration
	verbose bool
	dryRun  bool
	email   string
	pass    string

	scenario    string
	useDefaults bool

	cfg    *config.Config
	client *client.Client
	logger *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(&app{}).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "rsadmin",
		Short: "Inspect and edit compensation plan settings",
		Long: `rsadmin loads, validates and saves the compensation plan settings
through the configuration API.

Settings pages are addressed by route, e.g. "#/top-sigma" or "top-sigma".
Run "rsadmin routes" for the list.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "Server base URL (default: API_URL env)")
	root.PersistentFlags().StringVar(&a.token, "token", "", "Bearer token (default: API_TOKEN env)")
	root.PersistentFlags().StringVarP(&a.output, "output", "o", outputText, "Output format: text or yaml")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 15*time.Second, "HTTP client timeout")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(a.loginCmd(), a.whoamiCmd(), a.routesCmd(), a.showCmd(), a.setCmd(), a.simulateCmd())
	return root
}

// setup resolves flags against the environment and builds the API client.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	if a.apiURL == "" {
		a.apiURL = cfg.APIURL
	}
	if a.token == "" {
		a.token = cfg.APIToken
	}

	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	} else if v := os.Getenv("LOG_LEVEL"); v != "" {
		level = logging.ParseLevel(v)
	}
	a.logger = logging.New(cmd.ErrOrStderr(), logging.ParseFormat(cfg.LogFormat), level)

	a.client = client.New(&http.Client{Timeout: a.timeout}, strings.TrimRight(a.apiURL, "/"), a.token)
	return nil
}

func (a *app) loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print a token for API_TOKEN",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, pass := a.email, a.pass
			if email == "" {
				email = a.cfg.AdminEmail
			}
			if pass == "" {
				pass = a.cfg.AdminPassword
			}
			if email == "" || pass == "" {
				return errors.New("--email and --password are required")
			}

			user, err := a.client.Login(cmd.Context(), email, pass)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.output == outputYAML {
				return renderYAML(out, map[string]any{"user": user, "token": a.client.Token()})
			}
			fmt.Fprintf(out, "Logged in as %s (%s)\n", user.Email, user.Role)
			fmt.Fprintf(out, "export API_TOKEN=%s\n", a.client.Token())
			return nil
		},
	}
	cmd.Flags().StringVar(&a.email, "email", "", "Account email (default: ADMIN_EMAIL env)")
	cmd.Flags().StringVar(&a.pass, "password", "", "Account password (default: ADMIN_PASSWORD env)")
	return cmd
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the account behind the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.client.Me(cmd.Context())
			if err != nil {
				return err
			}
			if a.output == outputYAML {
				return renderYAML(cmd.OutOrStdout(), user)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s): %s\n", user.Email, user.Role, strings.Join(user.Permissions, ", "))
			return nil
		},
	}
}

func (a *app) routesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the settings pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return renderRoutes(cmd.OutOrStdout(), a.output, route.All())
		},
	}
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [route...]",
		Short: "Load pages and print their values and derived pools",
		Long: `Load one or more settings pages and print their pools and shares.
Without arguments every page is shown. A page that fails to load is shown
with its default values and makes the command exit non-zero.`,
		RunE: a.runShow,
	}
}

func (a *app) runShow(cmd *cobra.Command, args []string) error {
	views := route.All()
	if len(args) > 0 {
		views = make([]route.View, 0, len(args))
		for _, arg := range args {
			v := route.Parse(arg)
			if _, ok := v.(route.NotFound); ok {
				return unknownRoute(arg)
			}
			views = append(views, v)
		}
	}

	reports := make([]report, len(views))
	loadErrs := make([]error, len(views))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(maxParallelLoads)
	for i, v := range views {
		i, v := i, v
		g.Go(func() error {
			s := a.open(v)
			err := s.Load(ctx)
			reports[i] = s.Report(v)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			loadErrs[i] = err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := render(cmd.OutOrStdout(), a.output, reports...); err != nil {
		return err
	}
	return errors.Join(loadErrs...)
}

func (a *app) setCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <route> key=value...",
		Short: "Edit a page and save it",
		Long: `Load a page, apply key=value edits in order and save the result.
Blocking validation issues stop the save; warnings are printed and the save
proceeds. With --dry-run nothing is written.

Keys per page:
  career-plan      factor, percentage, period, add-pin, remove-pin,
                   pin.N.{name,cycles,lines,vmec,bonus,image}
  fidelity-bonus   percentage, base, levels, level.N
  top-sigma        percentage, base, top-count, weights, weight.N
  sigma-settings   cycle-value, payout-value, payout-percent, auto-reentry,
                   reentry-limit, spillover, depth-percent, depth-levels,
                   depth.N, top-percent, top-ranks, rank.N`,
		Args: cobra.MinimumNArgs(2),
		RunE: a.runSet,
	}
	cmd.Flags().BoolVar(&a.dryRun, "dry-run", false, "Validate the edits without saving")
	return cmd
}

func (a *app) runSet(cmd *cobra.Command, args []string) error {
	v := route.Parse(args[0])
	s := a.open(v)
	if s == nil {
		return unknownRoute(args[0])
	}

	ctx := cmd.Context()
	// A failed load leaves defaults in the draft; those must not be saved.
	if err := s.Load(ctx); err != nil {
		return err
	}
	for _, kv := range args[1:] {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("expected key=value, got %q", kv)
		}
		if err := s.Apply(strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}

	if a.dryRun {
		issues := s.Validate()
		if err := render(cmd.OutOrStdout(), a.output, s.Report(v)); err != nil {
			return err
		}
		for _, i := range issues {
			if i.Blocking() {
				return &settings.ValidationError{Issues: issues}
			}
		}
		return nil
	}

	saveErr := s.Save(ctx)
	if err := render(cmd.OutOrStdout(), a.output, s.Report(v)); err != nil {
		return err
	}
	return saveErr
}

// open starts a session for v, or returns nil for an unknown route.
func (a *app) open(v route.View) session {
	return route.Visit[session](v, sessions{
		remote: a.client,
		opts: []settings.Option{
			settings.WithLogger(a.logger),
			settings.WithBannerTTL(a.cfg.BannerTTL),
		},
	})
}

func unknownRoute(arg string) error {
	return fmt.Errorf("unknown route %q (see \"rsadmin routes\")", arg)
}
