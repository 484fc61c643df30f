// Command sleuth identifies people from local records and web search.
//
// Usage:
//
//	sleuth serve
//	sleuth identify "Elon Musk" --keywords CEO --location Austin
//	sleuth deep "Elon Musk" --keyword Tesla
//	sleuth search "Elon Musk" --mode strict
//	sleuth seed testdata/people.yaml
//	sleuth cache clear
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/sleuth/pkg/config"
	"github.com/codeGROOVE-dev/sleuth/pkg/httpcache"
	"github.com/codeGROOVE-dev/sleuth/pkg/profile"
	"github.com/codeGROOVE-dev/sleuth/pkg/sqlstore"
	"github.com/codeGROOVE-dev/sleuth/pkg/webfilter"
)

// Version is set at build time.
var Version = "dev"

type globalFlags struct {
	config string
	debug  bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var g globalFlags
	root := &cobra.Command{
		Use:           "sleuth",
		Short:         "Find out who someone is from local records and the web",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.config, "config", "", "config file (default ~/.sleuth/config.yaml then ./sleuth.yaml)")
	root.PersistentFlags().BoolVar(&g.debug, "debug", false, "enable debug logging")

	root.AddCommand(serveCmd(&g))
	root.AddCommand(identifyCmd(&g))
	root.AddCommand(deepCmd(&g))
	root.AddCommand(searchCmd(&g))
	root.AddCommand(historyCmd(&g))
	root.AddCommand(seedCmd(&g))
	root.AddCommand(cacheCmd(&g))
	return root
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func serveCmd(g *globalFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, g)
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			return a.server().Run(ctx, addr)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides server.addr)")
	return cmd
}

func identifyCmd(g *globalFlags) *cobra.Command {
	var req profile.IdentifyRequest
	cmd := &cobra.Command{
		Use:   "identify <name>",
		Short: "List the people a name could refer to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), g, func(ctx context.Context, a *app) error {
				req.Name = args[0]
				res, err := a.sleuth.Identify(ctx, req)
				if err != nil {
					return err
				}
				return outputJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().StringVarP(&req.Location, "location", "l", "", "where the person lives or works")
	cmd.Flags().StringVarP(&req.Keywords, "keywords", "k", "", "company, school or role")
	cmd.Flags().StringVarP(&req.Number, "number", "n", "", "phone number to search instead of the name")
	return cmd
}

func deepCmd(g *globalFlags) *cobra.Command {
	var person profile.Candidate
	cmd := &cobra.Command{
		Use:   "deep <name>",
		Short: "Build a full profile of one person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), g, func(ctx context.Context, a *app) error {
				person.Name = args[0]
				res, err := a.sleuth.DeepSearch(ctx, profile.DeepSearchRequest{Person: person})
				if err != nil {
					return err
				}
				return outputJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().StringVarP(&person.KeywordMatched, "keyword", "k", "", "keyword that identifies this person")
	cmd.Flags().StringVarP(&person.Location, "location", "l", "", "location")
	cmd.Flags().StringVarP(&person.Description, "description", "d", "", "description, usually \"Profession - Company\"")
	cmd.Flags().StringVar(&person.Image, "image", "", "known image URL")
	cmd.Flags().StringVar(&person.Email, "email", "", "known email address")
	cmd.Flags().StringSliceVar(&person.PhoneNumbers, "phone", nil, "known phone numbers")
	return cmd
}

func searchCmd(g *globalFlags) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search local records and the web",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := webfilter.Mode(mode)
			if m != webfilter.Simple && m != webfilter.Strict {
				return fmt.Errorf("mode must be %s or %s", webfilter.Simple, webfilter.Strict)
			}
			return withApp(cmd.Context(), g, func(ctx context.Context, a *app) error {
				items, err := a.sleuth.Search(ctx, args[0], m)
				if err != nil {
					return err
				}
				if items == nil {
					items = []profile.Item{}
				}
				return outputJSON(cmd.OutOrStdout(), items)
			})
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", string(webfilter.Simple), "filter mode: simple or strict")
	return cmd
}

func historyCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or prune past identify searches",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List past searches, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd.Context(), g, func(ctx context.Context, st *sqlstore.Store) error {
				entries, err := st.ListHistory(ctx)
				if err != nil {
					return err
				}
				if entries == nil {
					entries = []profile.HistoryEntry{}
				}
				return outputJSON(cmd.OutOrStdout(), entries)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one history entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), g, func(ctx context.Context, st *sqlstore.Store) error {
				return st.DeleteHistory(ctx, args[0])
			})
		},
	})
	return cmd
}

func seedCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <fixture.yaml>",
		Short: "Load people and documents into the SQLite store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fixture, err := sqlstore.LoadFixture(args[0])
			if err != nil {
				return err
			}
			return withStore(cmd.Context(), g, func(ctx context.Context, st *sqlstore.Store) error {
				n, err := st.Seed(ctx, fixture)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d rows\n", n)
				return nil
			})
		},
	}
}

func cacheCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the provider response cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every cached provider response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(g.config)
			if err != nil {
				return err
			}
			dir := cfg.Cache.Dir
			if dir == "" {
				dir = httpcache.DefaultDir()
			}
			n, err := httpcache.Clear(dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %d cache entries\n", n)
			return nil
		},
	})
	return cmd
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
