package main

import "github.com/oshokin/altsource-updater/cmd/altsource-updater/cmd"

func main() {
	cmd.Execute()
}
