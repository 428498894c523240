package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kuflow/kuflow-sdk-go/pkg/client"
)

func newEchoCmd(cli *Cli) *cobra.Command {
	c := cobra.Command{
		Use:   "echo",
		Short: "Check credentials and connectivity",
		Long:  "Calls the echo endpoint and prints the authentication the server associates with the credentials.",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			auth, err := cli.c.Echo().RequestEcho(c.Context())
			if err != nil {
				return err
			}
			return cli.render(c, auth, func() *table { return authenticationTable(auth) })
		},
	}

	return &c
}

func newAuthCmd(cli *Cli) *cobra.Command {
	c := cobra.Command{
		Use:   "auth",
		Short: "Manage authentications",
		RunE:  cli.help,
	}

	c.AddCommand(newAuthCreateCmd(cli))

	return &c
}

func newAuthCreateCmd(cli *Cli) *cobra.Command {
	var (
		authType string
		tenantID string
	)

	c := cobra.Command{
		Use:   "create",
		Short: "Create an authentication",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			tenant, err := parseOptionalUUID(tenantID)
			if err != nil {
				return err
			}

			auth, err := cli.c.Authentication().Create(c.Context(), client.AuthenticationCreateParams{
				Type:     client.AuthenticationType(authType),
				TenantID: tenant,
			})
			if err != nil {
				return err
			}
			return cli.render(c, auth, func() *table { return authenticationTable(auth) })
		},
	}

	c.Flags().StringVar(&authType, "type", string(client.AuthenticationTypeEngineToken), "Authentication type: ENGINE, ENGINE_TOKEN or ENGINE_CERTIFICATE")
	c.Flags().StringVar(&tenantID, "tenant-id", "", "Tenant ID")

	return &c
}

func authenticationTable(auth *client.Authentication) *table {
	t := newTable("ID", "TYPE", "TENANT", "EXPIRES")

	var expires string
	if auth.ExpiredAt != nil {
		expires = auth.ExpiredAt.Format(time.RFC3339)
	}
	t.addRow(auth.ID, string(auth.Type), formatUUID(auth.TenantID), expires)
	if auth.Token != "" {
		t.footer = fmt.Sprintf("token: %s\n", auth.Token)
	}
	return t
}

func newKmsCmd(cli *Cli) *cobra.Command {
	c := cobra.Command{
		Use:   "kms",
		Short: "Read keys from the key management service",
		RunE:  cli.help,
	}

	get := cobra.Command{
		Use:   "get KEY_ID",
		Short: "Retrieve a KMS key",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			key, err := cli.c.Kms().RetrieveKmsKey(c.Context(), args[0])
			if err != nil {
				return err
			}
			return cli.render(c, key, func() *table {
				t := newTable("ID", "VALUE")
				t.addRow(key.ID, key.Value)
				return t
			})
		},
	}

	c.AddCommand(&get)

	return &c
}
