package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hemchdev/aura/internal/ics"
	"github.com/hemchdev/aura/internal/store"
)

func newExportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Export your events as an iCalendar file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.initialize(); err != nil {
				return err
			}
			defer a.close()

			events, err := a.store.EventsByFilter(cmd.Context(), store.Filter{})
			if err != nil {
				return err
			}
			payload := ics.Export(events)
			if len(args) == 0 {
				fmt.Print(payload)
				return nil
			}
			if err := os.WriteFile(args[0], []byte(payload), 0o644); err != nil {
				return err
			}
			fmt.Printf("%s %d events written to %s\n", green("✅"), len(events), args[0])
			return nil
		},
	}
}
