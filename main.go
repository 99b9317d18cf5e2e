package main

import "github.com/brcolow/codeartifact-maven-extension/cmd"

func main() {
	cmd.Execute()
}
