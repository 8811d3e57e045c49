package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"reviewdesk/internal/config"
	"reviewdesk/internal/domain"
	"reviewdesk/internal/logging"
)

// cli holds flag values and the runtime built by the root pre-run hook.
type cli struct {
	configPath string
	username   string
	password   string
	verbose    bool

	rt *Runtime
}

// Main is the process entry point.
func Main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		logging.Fatal("reviewdesk: %v", err)
	}
}

func NewRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "reviewdesk",
		Short: "Order review mini-app client",
		Long: `reviewdesk is a client for the order-review backend.

Workers review the orders of their assigned campaigns and save their
decisions; admins create workers, assign campaigns and watch stats.

Run without arguments to start the interactive terminal app.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.rt != nil {
				_ = c.rt.Logger.Sync()
			}
		},
		RunE: c.runTUI,
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $CONFIG_PATH or config.yaml)")
	root.PersistentFlags().StringVarP(&c.username, "username", "u", "", "login username (overrides config)")
	root.PersistentFlags().StringVarP(&c.password, "password", "p", "", "login password (overrides config)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		&cobra.Command{
			Use:   "tui",
			Short: "Start the interactive terminal app",
			Args:  cobra.NoArgs,
			RunE:  c.runTUI,
		},
		&cobra.Command{
			Use:   "orders <campaign-id>",
			Short: "List the open orders of a campaign",
			Long: `Lists the open orders of a campaign. Workers may only list their
assigned campaigns; admins may list any campaign.`,
			Args: cobra.ExactArgs(1),
			RunE: c.runOrders,
		},
		&cobra.Command{
			Use:   "review <campaign-id>",
			Short: "Review a campaign's orders on the console and save the decisions",
			Long: `Walks the open orders of an assigned campaign. For each order type
y (approve), n (reject) or s (skip), b to scan its barcode, an empty line to
leave it undecided or q to stop. Decisions are saved at the end.`,
			Args: cobra.ExactArgs(1),
			RunE: c.runReview,
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Show per-worker stats (admin)",
			Args:  cobra.NoArgs,
			RunE:  c.runStats,
		},
		&cobra.Command{
			Use:   "create-user <username> <password>",
			Short: "Create a worker account (admin)",
			Args:  cobra.ExactArgs(2),
			RunE:  c.runCreateUser,
		},
		&cobra.Command{
			Use:   "assign <username> <campaign-id>",
			Short: "Assign a campaign to a worker (admin)",
			Args:  cobra.ExactArgs(2),
			RunE:  c.runAssign,
		},
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.ResolvePath(c.configPath))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.username != "" {
		cfg.Username = c.username
	}
	if c.password != "" {
		cfg.Password = c.password
	}
	if c.verbose {
		cfg.LogLevel = "debug"
	}

	interactive := cmd.Name() == "reviewdesk" || cmd.Name() == "tui"
	rt, err := NewRuntime(cfg, interactive)
	if err != nil {
		return err
	}
	c.rt = rt
	return nil
}

func (c *cli) runTUI(cmd *cobra.Command, args []string) error {
	return RunTUI(cmd.Context(), c.rt)
}

func (c *cli) login(cmd *cobra.Command) (*ConsoleSession, error) {
	return LoginConsole(cmd.Context(), c.rt, cmd.InOrStdin(), cmd.OutOrStdout())
}

func (c *cli) runOrders(cmd *cobra.Command, args []string) error {
	s, err := c.login(cmd)
	if err != nil {
		return err
	}
	return s.PrintOrders(cmd.Context(), domain.CampaignID(args[0]))
}

func (c *cli) runReview(cmd *cobra.Command, args []string) error {
	s, err := c.login(cmd)
	if err != nil {
		return err
	}
	return s.Review(cmd.Context(), domain.CampaignID(args[0]))
}

func (c *cli) runStats(cmd *cobra.Command, args []string) error {
	s, err := c.login(cmd)
	if err != nil {
		return err
	}
	return s.PrintStats(cmd.Context())
}

func (c *cli) runCreateUser(cmd *cobra.Command, args []string) error {
	s, err := c.login(cmd)
	if err != nil {
		return err
	}
	return s.CreateUser(cmd.Context(), args[0], args[1])
}

func (c *cli) runAssign(cmd *cobra.Command, args []string) error {
	s, err := c.login(cmd)
	if err != nil {
		return err
	}
	return s.AssignCampaign(cmd.Context(), args[0], domain.CampaignID(args[1]))
}
