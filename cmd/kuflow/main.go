// Command kuflow is a command line client for the KuFlow REST API.
//
// Credentials and the endpoint are read from kuflow.yaml, KUFLOW_*
// environment variables or flags:
//
//	kuflow echo --endpoint http://localhost:8480 --client-id app --client-secret secret
//	kuflow process create --definition-id 6d1f...
//	kuflow task list --process-id 8a02... --state READY
//	kuflow task claim 91c4...
//	kuflow worker heartbeat --identity worker-1 --task-queue default
package main

import (
	"os"

	"github.com/kuflow/kuflow-sdk-go/internal/cli"
	"github.com/kuflow/kuflow-sdk-go/pkg/client"
)

func main() {
	os.Exit(cli.New(client.Version).Execute())
}
