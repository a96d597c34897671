package main

import "github.com/spss-platform/adminsync/cmd/adminsync/cmd"

func main() {
	cmd.Execute()
}
