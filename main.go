package main

import "github.com/williamokano/docdeploy/pkg/cli"

func main() {
	cli.Execute()
}
