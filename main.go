package main

import "github.com/vibast-solutions/ms-go-purchases/cmd"

func main() {
	cmd.Execute()
}
