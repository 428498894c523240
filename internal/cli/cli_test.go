package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuflow/kuflow-sdk-go/internal/api"
	"github.com/kuflow/kuflow-sdk-go/internal/logger"
	"github.com/kuflow/kuflow-sdk-go/internal/store"
	"github.com/kuflow/kuflow-sdk-go/pkg/client"
)

func init() {
	logger.Init("error", false)
}

func newTestCli(t *testing.T) (*Cli, *api.Server) {
	t.Helper()

	stub := api.NewServer(store.NewMemoryStore(), api.Options{
		ClientID:     "app",
		ClientSecret: "secret",
		JWTSecret:    "jwt-secret",
		Users:        []string{"ada@example.com"},
		KmsKeys:      []string{"default"},
	})
	require.NoError(t, stub.Seed(context.Background()))

	srv := httptest.NewServer(stub)
	t.Cleanup(func() {
		srv.Close()
		_ = stub.Close()
	})

	c, err := client.New(srv.URL, client.WithCredentials("app", "secret"), client.WithRetryPolicy(client.NoRetry()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	cli := New("test")
	cli.c = c

	return cli, stub
}

// execute runs args on a fresh command tree, so flag values never leak
// between invocations.
func execute(cli *Cli, args ...string) (string, error) {
	cli.rootCmd = newRootCmd(cli)

	var out bytes.Buffer
	cli.rootCmd.SetOut(&out)
	cli.rootCmd.SetErr(io.Discard)
	cli.rootCmd.SetArgs(args)

	err := cli.rootCmd.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, cli *Cli, args ...string) string {
	t.Helper()
	out, err := execute(cli, args...)
	require.NoError(t, err, "kuflow %s", strings.Join(args, " "))
	return out
}

func mustExecuteJSON[T any](t *testing.T, cli *Cli, args ...string) T {
	t.Helper()
	out := mustExecute(t, cli, append(args, "-o", "json")...)

	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestHelp(t *testing.T) {
	cli, _ := newTestCli(t)

	for _, name := range []string{"", "auth", "kms", "worker", "principal", "process", "task"} {
		t.Run(name, func(t *testing.T) {
			var args []string
			if name != "" {
				args = append(args, name)
			}
			out := mustExecute(t, cli, args...)
			assert.Contains(t, out, "Usage:")
		})
	}
}

func TestVersion(t *testing.T) {
	cli := New("1.2.3")

	out, err := execute(cli, "version")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3\n", out)
}

func TestEcho(t *testing.T) {
	cli, stub := newTestCli(t)

	auth := mustExecuteJSON[client.Authentication](t, cli, "echo")
	assert.NotEmpty(t, auth.ID)
	require.NotNil(t, auth.TenantID)
	assert.Equal(t, stub.TenantID(), *auth.TenantID)

	out := mustExecute(t, cli, "echo")
	assert.True(t, strings.HasPrefix(out, "ID"))
	assert.Contains(t, out, stub.TenantID().String())
}

func TestAuthCreate(t *testing.T) {
	cli, _ := newTestCli(t)

	auth := mustExecuteJSON[client.Authentication](t, cli, "auth", "create", "--type", "ENGINE_TOKEN")
	assert.Equal(t, client.AuthenticationTypeEngineToken, auth.Type)
	assert.NotEmpty(t, auth.Token)

	out := mustExecute(t, cli, "auth", "create")
	assert.Contains(t, out, "token: ")

	_, err := execute(cli, "auth", "create", "--type", "PASSWORD")
	var validationErr *client.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestKmsGet(t *testing.T) {
	cli, _ := newTestCli(t)

	out := mustExecute(t, cli, "kms", "get", "default")
	assert.Contains(t, out, "default")

	_, err := execute(cli, "kms", "get", "missing")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestWorkerRegister(t *testing.T) {
	cli, _ := newTestCli(t)
	id := uuid.New()

	args := []string{"worker", "register", "--id", id.String(), "--identity", "w-1", "--task-queue", "q", "--hostname", "host-1", "--ip", "10.0.0.1"}
	first := mustExecuteJSON[client.Worker](t, cli, args...)
	second := mustExecuteJSON[client.Worker](t, cli, args...)

	assert.Equal(t, id, first.ID)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "host-1", second.Hostname)

	_, err := execute(cli, "worker", "register", "--identity", "w-1")
	assert.Error(t, err, "task-queue is required")
}

func TestPrincipalCommands(t *testing.T) {
	cli, _ := newTestCli(t)

	page := mustExecuteJSON[client.PrincipalPage](t, cli, "principal", "list", "--type", "USER")
	require.Len(t, page.Content, 1)
	assert.Equal(t, "ada@example.com", page.Content[0].User.Email)

	out := mustExecute(t, cli, "principal", "get", page.Content[0].ID.String())
	assert.Contains(t, out, "ada@example.com")

	out = mustExecute(t, cli, "principal", "list")
	assert.Contains(t, out, "page 1 of 1, 2 total")
}

func TestProcessCommands(t *testing.T) {
	cli, _ := newTestCli(t)
	id := uuid.New()

	created := mustExecuteJSON[client.Process](t, cli, "process", "create",
		"--id", id.String(),
		"--definition-id", uuid.NewString(),
		"--metadata", `{"priority":"high"}`,
	)
	assert.Equal(t, id, created.ID)
	assert.Equal(t, client.ProcessStateRunning, created.State)
	require.NotNil(t, created.Metadata)
	assert.Equal(t, "high", created.Metadata.Value["priority"])

	page := mustExecuteJSON[client.ProcessPage](t, cli, "process", "list")
	assert.Len(t, page.Content, 1)

	changed := mustExecuteJSON[client.Process](t, cli, "process", "change-initiator", id.String(), "--initiator-email", "ada@example.com")
	assert.NotEqual(t, created.InitiatorID, changed.InitiatorID)

	out := mustExecute(t, cli, "process", "cancel", id.String())
	assert.Contains(t, out, string(client.ProcessStateCancelled))

	_, err := execute(cli, "process", "cancel", id.String())
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)

	_, err = execute(cli, "process", "change-initiator", id.String())
	assert.Error(t, err)

	_, err = execute(cli, "process", "create", "--definition-id", "nope")
	assert.Error(t, err)
}

func TestTaskCommands(t *testing.T) {
	cli, _ := newTestCli(t)

	process := mustExecuteJSON[client.Process](t, cli, "process", "create", "--definition-id", uuid.NewString())

	first := mustExecuteJSON[client.Task](t, cli, "task", "create", "--process-id", process.ID.String(), "--code", "REVIEW")
	second := mustExecuteJSON[client.Task](t, cli, "task", "create", "--process-id", process.ID.String(), "--code", "APPROVE")
	assert.Equal(t, client.TaskStateReady, first.State)

	claimed := mustExecuteJSON[client.Task](t, cli, "task", "claim", first.ID.String())
	assert.Equal(t, client.TaskStateClaimed, claimed.State)
	require.NotNil(t, claimed.Owner)

	logged := mustExecuteJSON[client.Task](t, cli, "task", "log", first.ID.String(), "looks good", "--level", "warn")
	require.Len(t, logged.Logs, 1)
	assert.Equal(t, client.TaskLogLevelWarn, logged.Logs[0].Level)

	assigned := mustExecuteJSON[client.Task](t, cli, "task", "assign", second.ID.String(), "--owner-email", "ada@example.com")
	assert.Equal(t, "ada@example.com", assigned.Owner.User.Email)

	completed := mustExecuteJSON[client.Task](t, cli, "task", "complete", first.ID.String())
	assert.Equal(t, client.TaskStateCompleted, completed.State)

	out := mustExecute(t, cli, "task", "get", first.ID.String(), second.ID.String())
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], first.ID.String())
	assert.Contains(t, lines[1], "COMPLETED")
	assert.Contains(t, lines[2], second.ID.String())
	assert.Contains(t, lines[2], "ada@example.com")

	page := mustExecuteJSON[client.TaskPage](t, cli, "task", "list", "--process-id", process.ID.String(), "--state", "claimed")
	require.Len(t, page.Content, 1)
	assert.Equal(t, second.ID, page.Content[0].ID)
}

func TestTaskErrors(t *testing.T) {
	cli, _ := newTestCli(t)

	_, err := execute(cli, "task", "get", "not-a-uuid")
	assert.Error(t, err)

	_, err = execute(cli, "task", "get", uuid.NewString())
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	_, err = execute(cli, "task", "assign", uuid.NewString(), "--owner-id", uuid.NewString(), "--owner-email", "ada@example.com")
	assert.Error(t, err)

	_, err = execute(cli, "task", "log", uuid.NewString(), "msg", "--level", "DEBUG")
	var validationErr *client.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestUnsupportedOutput(t *testing.T) {
	cli, _ := newTestCli(t)

	_, err := execute(cli, "echo", "-o", "yaml")
	assert.ErrorContains(t, err, `unsupported output format "yaml"`)
}

func TestTableFormat(t *testing.T) {
	tbl := newTable("ID", "STATE", "CODE")
	tbl.addRow("1", "READY", "A")
	tbl.addRow("22", "COMPLETED", "B")
	tbl.footer = "page 1 of 1, 2 total\n"

	expected := "" +
		"ID  STATE      CODE\n" +
		"1   READY      A\n" +
		"22  COMPLETED  B\n" +
		"page 1 of 1, 2 total\n"
	assert.Equal(t, expected, tbl.format())
}
