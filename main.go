package main

import "github.com/LegacyCodeHQ/hdrmirror/cmd"

func main() {
	cmd.Execute()
}
