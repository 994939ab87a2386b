package main

import "github.com/SureOnThisShiningNight/openrank/pkg/cli"

func main() {
	cli.Execute()
}
