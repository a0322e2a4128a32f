package main

import "github.com/klytics/voxtable/cmd"

func main() {
	cmd.Execute()
}
