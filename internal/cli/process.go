package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kuflow/kuflow-sdk-go/pkg/client"
)

func newProcessCmd(cli *Cli) *cobra.Command {
	c := cobra.Command{
		Use:   "process",
		Short: "Manage processes",
		RunE:  cli.help,
	}

	c.AddCommand(newProcessListCmd(cli))
	c.AddCommand(newProcessGetCmd(cli))
	c.AddCommand(newProcessCreateCmd(cli))
	c.AddCommand(newProcessCancelCmd(cli))
	c.AddCommand(newProcessChangeInitiatorCmd(cli))

	return &c
}

func newProcessListCmd(cli *Cli) *cobra.Command {
	var (
		page      pageFlags
		tenantIDs []string
	)

	c := cobra.Command{
		Use:   "list",
		Short: "List processes",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			tenants, err := parseUUIDs(tenantIDs)
			if err != nil {
				return err
			}

			result, err := cli.c.Process().Find(c.Context(), client.ProcessFindOptions{
				PageOptions: page.options(),
				TenantIDs:   tenants,
			})
			if err != nil {
				return err
			}

			return cli.render(c, result, func() *table {
				t := processTable(result.Content...)
				t.footer = pageFooter(result.Metadata)
				return t
			})
		},
	}

	page.bind(&c)
	c.Flags().StringSliceVar(&tenantIDs, "tenant-id", nil, "Tenant IDs")

	return &c
}

func newProcessGetCmd(cli *Cli) *cobra.Command {
	c := cobra.Command{
		Use:   "get PROCESS_ID",
		Short: "Retrieve a process",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return cli.processAction(c, args[0], cli.c.Process().Retrieve)
		},
	}

	return &c
}

func newProcessCreateCmd(cli *Cli) *cobra.Command {
	var (
		id             string
		definitionID   string
		initiatorID    string
		initiatorEmail string
		metadata       string
	)

	c := cobra.Command{
		Use:   "create",
		Short: "Start a process",
		Long:  "Starts a process of the given definition. Passing --id makes the call idempotent.",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			params := client.ProcessCreateParams{InitiatorEmail: initiatorEmail}

			var err error
			if params.ID, err = parseOptionalUUID(id); err != nil {
				return err
			}
			if params.ProcessDefinitionID, err = uuid.Parse(definitionID); err != nil {
				return fmt.Errorf("invalid process definition id %q: %w", definitionID, err)
			}
			if params.InitiatorID, err = parseOptionalUUID(initiatorID); err != nil {
				return err
			}
			if metadata != "" {
				if err := json.Unmarshal([]byte(metadata), &params.Metadata); err != nil {
					return fmt.Errorf("invalid metadata: %w", err)
				}
			}

			process, err := cli.c.Process().Create(c.Context(), params)
			if err != nil {
				return err
			}
			return cli.render(c, process, func() *table { return processTable(*process) })
		},
	}

	c.Flags().StringVar(&id, "id", "", "Process ID")
	c.Flags().StringVar(&definitionID, "definition-id", "", "Process definition ID")
	c.Flags().StringVar(&initiatorID, "initiator-id", "", "Initiator principal ID")
	c.Flags().StringVar(&initiatorEmail, "initiator-email", "", "Initiator email")
	c.Flags().StringVar(&metadata, "metadata", "", "Metadata as a JSON object")

	_ = c.MarkFlagRequired("definition-id")
	c.MarkFlagsMutuallyExclusive("initiator-id", "initiator-email")

	return &c
}

func newProcessCancelCmd(cli *Cli) *cobra.Command {
	c := cobra.Command{
		Use:   "cancel PROCESS_ID",
		Short: "Cancel a running process",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return cli.processAction(c, args[0], cli.c.Process().Cancel)
		},
	}

	return &c
}

func newProcessChangeInitiatorCmd(cli *Cli) *cobra.Command {
	var (
		initiatorID    string
		initiatorEmail string
	)

	c := cobra.Command{
		Use:   "change-initiator PROCESS_ID",
		Short: "Change the initiator of a process",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			initiator, err := parseOptionalUUID(initiatorID)
			if err != nil {
				return err
			}

			params := client.ProcessChangeInitiatorParams{InitiatorID: initiator, InitiatorEmail: initiatorEmail}
			return cli.processAction(c, args[0], func(ctx context.Context, id uuid.UUID) (*client.Process, error) {
				return cli.c.Process().ChangeInitiator(ctx, id, params)
			})
		},
	}

	c.Flags().StringVar(&initiatorID, "initiator-id", "", "Initiator principal ID")
	c.Flags().StringVar(&initiatorEmail, "initiator-email", "", "Initiator email")

	c.MarkFlagsOneRequired("initiator-id", "initiator-email")
	c.MarkFlagsMutuallyExclusive("initiator-id", "initiator-email")

	return &c
}

func (c *Cli) processAction(cmd *cobra.Command, arg string, fn func(context.Context, uuid.UUID) (*client.Process, error)) error {
	id, err := uuid.Parse(arg)
	if err != nil {
		return fmt.Errorf("invalid process id %q: %w", arg, err)
	}

	process, err := fn(cmd.Context(), id)
	if err != nil {
		return err
	}
	return c.render(cmd, process, func() *table { return processTable(*process) })
}

func processTable(processes ...client.Process) *table {
	t := newTable("ID", "STATE", "DEFINITION", "INITIATOR")
	for _, p := range processes {
		t.addRow(p.ID.String(), string(p.State), p.ProcessDefinition.ID.String(), formatUUID(p.InitiatorID))
	}
	return t
}
