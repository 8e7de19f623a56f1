package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List group names known to the groups file",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := newScheduleService()
		if err != nil {
			return err
		}

		for _, name := range service.GroupNames() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(groupsCmd)
}
