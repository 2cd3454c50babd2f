// Copyright © 2026 The Vize authors

package main

import "github.com/ushironoko/vize-sub001/cmd"

func main() {
	cmd.Execute()
}
