// Package cli implements the kuflow command line client on top of the SDK.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kuflow/kuflow-sdk-go/internal/config"
	"github.com/kuflow/kuflow-sdk-go/internal/logger"
	"github.com/kuflow/kuflow-sdk-go/pkg/client"
)

const (
	noClientRequired = "noClientRequired" // annotation, indicating that no client is required to run the command
	program          = "kuflow"
)

func New(version string) *Cli {
	cli := Cli{version: version}

	cli.rootCmd = newRootCmd(&cli)

	return &cli
}

type Cli struct {
	version string

	rootCmd *cobra.Command

	c          *client.KuFlowClient
	ownsClient bool
	output     string
}

func (c *Cli) Execute() int {
	if err := c.rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func (c *Cli) help(cmd *cobra.Command, args []string) error {
	return cmd.Help()
}

func newRootCmd(cli *Cli) *cobra.Command {
	var (
		configFile   string
		endpoint     string
		clientID     string
		clientSecret string
		timeout      time.Duration
		debug        bool
	)

	c := cobra.Command{
		Use:   program,
		Short: "A command line client for the KuFlow REST API",
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			c.SilenceUsage = true

			if _, ok := c.Annotations[noClientRequired]; ok {
				return nil
			}

			if cli.c != nil {
				return nil // skip client creation when testing
			}

			cfg, err := config.LoadFile(configFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			// flags win over the configuration file and KUFLOW_* variables
			if c.Flags().Changed("endpoint") {
				cfg.Client.Endpoint = endpoint
			}
			if c.Flags().Changed("client-id") {
				cfg.Client.ClientID = clientID
			}
			if c.Flags().Changed("client-secret") {
				cfg.Client.ClientSecret = clientSecret
			}
			if c.Flags().Changed("timeout") {
				cfg.Client.Timeout = timeout
			}
			if debug {
				cfg.LogLevel = "debug"
			}

			logger.InitWriter(c.ErrOrStderr(), cfg.LogLevel, cfg.LogPretty)

			opts := append(cfg.Client.Options(),
				client.WithLogger(logger.WithComponent("kuflow-cli")),
				client.WithUserAgent(program+"/"+cli.version),
			)
			kc, err := client.New(cfg.Client.Endpoint, opts...)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			cli.c = kc
			cli.ownsClient = true
			return nil
		},
		RunE: cli.help,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if cli.ownsClient {
				_ = cli.c.Close()
				cli.c = nil
				cli.ownsClient = false
			}
		},
		Annotations: map[string]string{noClientRequired: ""},
	}

	c.PersistentFlags().StringVar(&configFile, "config", "", "Configuration file (default: kuflow.yaml in ., ./config or /etc/kuflow)")
	c.PersistentFlags().StringVar(&endpoint, "endpoint", "", "KuFlow API endpoint")
	c.PersistentFlags().StringVar(&clientID, "client-id", "", "Application client ID")
	c.PersistentFlags().StringVar(&clientSecret, "client-secret", "", "Application client secret")
	c.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Time limit for each request")
	c.PersistentFlags().BoolVar(&debug, "debug", false, "Log requests and responses")
	c.PersistentFlags().StringVarP(&cli.output, "output", "o", "table", "Output format: table or json")

	c.AddCommand(newEchoCmd(cli))
	c.AddCommand(newAuthCmd(cli))
	c.AddCommand(newKmsCmd(cli))
	c.AddCommand(newWorkerCmd(cli))
	c.AddCommand(newPrincipalCmd(cli))
	c.AddCommand(newProcessCmd(cli))
	c.AddCommand(newTaskCmd(cli))
	c.AddCommand(newVersionCmd(cli))

	return &c
}

func newVersionCmd(cli *Cli) *cobra.Command {
	c := cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(c *cobra.Command, _ []string) {
			fmt.Fprintln(c.OutOrStdout(), cli.version)
		},
		Annotations: map[string]string{noClientRequired: ""},
	}

	return &c
}
