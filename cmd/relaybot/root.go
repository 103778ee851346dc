package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:           "relaybot",
		Short:         "Anonim xabar relay bot",
		Long:          serveLong,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), envFile)
		},
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Env fayl yo'li (bo'sh bo'lsa ./.env, mavjud bo'lsa)")

	cmd.AddCommand(newServeCmd(&envFile))
	cmd.AddCommand(newWorkerCmd(&envFile))

	return cmd
}
