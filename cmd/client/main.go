package main

import "hostdesk/cmd/client/cmd"

func main() {
	cmd.Execute()
}
