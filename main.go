package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fjacquet/rabbit/cmd/category"
	"fjacquet/rabbit/cmd/process"
	"fjacquet/rabbit/cmd/profile"
	"fjacquet/rabbit/cmd/root"
	"fjacquet/rabbit/cmd/rule"
	"fjacquet/rabbit/cmd/summary"
	"fjacquet/rabbit/internal/config"
)

func init() {
	// .env must be loaded before viper reads the environment
	config.LoadEnv()

	root.Init()

	root.Cmd.AddCommand(process.Cmd)
	root.Cmd.AddCommand(profile.Cmd)
	root.Cmd.AddCommand(category.Cmd)
	root.Cmd.AddCommand(rule.Cmd)
	root.Cmd.AddCommand(summary.Cmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.Cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
