// Package cmd is the campusbite command line: account, catalog, order and
// delivery commands for one device, and the HTTP server.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"campusbite/app"
	"campusbite/config"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "campusbite",
	Short: "Campus food ordering for students, hotel managers and delivery staff",
	Long: `campusbite lets students order from campus restaurants, hotel managers post
food and hand orders to delivery staff, and delivery staff pick them up and
deliver them. The same commands run against the embedded SQLite backend or
a hosted Appwrite project.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./campusbite.yaml or $HOME/.campusbite/campusbite.yaml)")

	rootCmd.AddCommand(
		signupCmd(),
		loginCmd(),
		logoutCmd(),
		whoamiCmd(),
		settingsCmd(),
		prefsCmd(),
		foodsCmd(),
		ordersCmd(),
		deliveriesCmd(),
		notificationsCmd(),
		serveCmd(),
	)
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withApp runs fn against the device application: the configured backend
// and the local session file.
func withApp(fn func(ctx context.Context, a *app.App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer rt.Close()
		a, err := rt.deviceApp()
		if err != nil {
			return err
		}
		return fn(cmd.Context(), a, args)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
