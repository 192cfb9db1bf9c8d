package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.stakewheel.io/stakewheel/cmd/stakewheel/inspect"
	"go.stakewheel.io/stakewheel/cmd/stakewheel/params"
	"k8s.io/klog/v2"
)

var cmd = cobra.Command{
	Use:   "stakewheel",
	Short: "Stake account tooling",
}

func init() {
	klogFlags := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(klogFlags)
	cmd.PersistentFlags().AddGoFlagSet(klogFlags)

	cmd.AddCommand(
		&inspect.Cmd,
		&params.Cmd,
	)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	cobra.CheckErr(cmd.ExecuteContext(ctx))
}
