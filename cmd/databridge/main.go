package main

import "github.com/dataloop-ai-apps/databricks-bridge/cmd/databridge/cmd"

func main() {
	cmd.Execute()
}
