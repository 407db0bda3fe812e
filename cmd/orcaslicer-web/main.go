package main

import "github.com/zvakanaka/orcaslicer-web/internal/cmd"

func main() {
	cmd.Execute()
}
