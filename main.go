package main

import "github.com/eirenik0/log-analyzer/cmd"

func main() {
	cmd.Execute()
}
