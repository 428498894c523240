package cli

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kuflow/kuflow-sdk-go/pkg/client"
)

func newPrincipalCmd(cli *Cli) *cobra.Command {
	c := cobra.Command{
		Use:   "principal",
		Short: "Query principals",
		RunE:  cli.help,
	}

	c.AddCommand(newPrincipalListCmd(cli))
	c.AddCommand(newPrincipalGetCmd(cli))

	return &c
}

func newPrincipalListCmd(cli *Cli) *cobra.Command {
	var (
		page          pageFlags
		principalType string
		groupIDs      []string
	)

	c := cobra.Command{
		Use:   "list",
		Short: "List principals",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			groups, err := parseUUIDs(groupIDs)
			if err != nil {
				return err
			}

			result, err := cli.c.Principal().Find(c.Context(), client.PrincipalFindOptions{
				PageOptions: page.options(),
				Type:        client.PrincipalType(principalType),
				GroupIDs:    groups,
			})
			if err != nil {
				return err
			}

			return cli.render(c, result, func() *table {
				t := principalTable(result.Content...)
				t.footer = pageFooter(result.Metadata)
				return t
			})
		},
	}

	page.bind(&c)
	c.Flags().StringVar(&principalType, "type", "", "Principal type: USER, APPLICATION or SYSTEM")
	c.Flags().StringSliceVar(&groupIDs, "group-id", nil, "Group IDs")

	return &c
}

func newPrincipalGetCmd(cli *Cli) *cobra.Command {
	c := cobra.Command{
		Use:   "get PRINCIPAL_ID",
		Short: "Retrieve a principal",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}

			principal, err := cli.c.Principal().Retrieve(c.Context(), id)
			if err != nil {
				return err
			}
			return cli.render(c, principal, func() *table { return principalTable(*principal) })
		},
	}

	return &c
}

func principalTable(principals ...client.Principal) *table {
	t := newTable("ID", "TYPE", "NAME", "EMAIL")
	for _, p := range principals {
		var email string
		if p.User != nil {
			email = p.User.Email
		}
		t.addRow(p.ID.String(), string(p.Type), p.Name, email)
	}
	return t
}
