package cli

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kuflow/kuflow-sdk-go/pkg/client"
)

func newWorkerCmd(cli *Cli) *cobra.Command {
	c := cobra.Command{
		Use:   "worker",
		Short: "Register workers",
		RunE:  cli.help,
	}

	c.AddCommand(newWorkerRegisterCmd(cli))
	c.AddCommand(newWorkerHeartbeatCmd(cli))

	return &c
}

type workerFlags struct {
	id            string
	identity      string
	taskQueue     string
	workflowTypes []string
	activityTypes []string
	hostname      string
	ip            string
}

func (f *workerFlags) bind(c *cobra.Command) {
	c.Flags().StringVar(&f.id, "id", "", "Worker ID, generated when empty")
	c.Flags().StringVar(&f.identity, "identity", "", "Worker identity")
	c.Flags().StringVar(&f.taskQueue, "task-queue", "", "Task queue the worker polls")
	c.Flags().StringSliceVar(&f.workflowTypes, "workflow-type", nil, "Supported workflow types")
	c.Flags().StringSliceVar(&f.activityTypes, "activity-type", nil, "Supported activity types")
	c.Flags().StringVar(&f.hostname, "hostname", "", "Host name, defaults to the local host name")
	c.Flags().StringVar(&f.ip, "ip", "", "IP address, defaults to the first non-loopback address")

	_ = c.MarkFlagRequired("identity")
	_ = c.MarkFlagRequired("task-queue")
}

func (f *workerFlags) params() (client.WorkerCreateParams, error) {
	id, err := parseOptionalUUID(f.id)
	if err != nil {
		return client.WorkerCreateParams{}, err
	}

	hostname := f.hostname
	if hostname == "" {
		if hostname, err = os.Hostname(); err != nil {
			return client.WorkerCreateParams{}, fmt.Errorf("failed to resolve host name: %w", err)
		}
	}

	ip := f.ip
	if ip == "" {
		ip = localIP()
	}

	return client.WorkerCreateParams{
		ID:            id,
		Identity:      f.identity,
		TaskQueue:     f.taskQueue,
		WorkflowTypes: f.workflowTypes,
		ActivityTypes: f.activityTypes,
		Hostname:      hostname,
		IP:            ip,
	}, nil
}

func localIP() string {
	addrs, err := net.InterfaceAddrs()
	if err == nil {
		for _, addr := range addrs {
			if ipNet, ok := addr.(*net.IPNet); ok && !ipNet.IP.IsLoopback() && ipNet.IP.To4() != nil {
				return ipNet.IP.String()
			}
		}
	}
	return "127.0.0.1"
}

func newWorkerRegisterCmd(cli *Cli) *cobra.Command {
	var flags workerFlags

	c := cobra.Command{
		Use:   "register",
		Short: "Create or update a worker",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			params, err := flags.params()
			if err != nil {
				return err
			}

			worker, err := cli.c.Worker().CreateOrUpdate(c.Context(), params)
			if err != nil {
				return err
			}
			return cli.render(c, worker, func() *table { return workerTable(worker) })
		},
	}

	flags.bind(&c)

	return &c
}

func newWorkerHeartbeatCmd(cli *Cli) *cobra.Command {
	var (
		flags    workerFlags
		interval time.Duration
	)

	c := cobra.Command{
		Use:   "heartbeat",
		Short: "Keep a worker registration fresh until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			params, err := flags.params()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			hb := cli.c.NewWorkerHeartbeat(params, interval)
			hb.OnError(func(err error) {
				fmt.Fprintf(c.ErrOrStderr(), "heartbeat failed: %v\n", err)
			})
			if err := hb.Start(ctx); err != nil {
				hb.Stop()
				return err
			}

			fmt.Fprintf(c.OutOrStdout(), "worker %s registered, beating every %s\n", hb.WorkerID(), interval)

			<-ctx.Done()
			hb.Stop()
			return nil
		},
	}

	flags.bind(&c)
	c.Flags().DurationVar(&interval, "interval", 30*time.Second, "Time between two heartbeats")

	return &c
}

func workerTable(worker *client.Worker) *table {
	t := newTable("ID", "IDENTITY", "TASK QUEUE", "HOSTNAME", "IP")
	t.addRow(worker.ID.String(), worker.Identity, worker.TaskQueue, worker.Hostname, worker.IP)
	return t
}
