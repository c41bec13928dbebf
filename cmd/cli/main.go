package main

import (
	"fmt"
	"os"

	"github.com/ycwei/img2md/cmd/cli/history"
	"github.com/ycwei/img2md/cmd/cli/root"
	"github.com/ycwei/img2md/cmd/cli/users"
)

func main() {
	rootCmd := root.GetRoot()
	users.InitUsers(rootCmd)
	history.InitHistory(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
