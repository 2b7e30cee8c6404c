package main

import "github.com/autocheckrh/reconciler/cmd"

func main() {
	cmd.Execute()
}
