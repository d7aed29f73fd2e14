package main

import (
	"fmt"
	"text/tabwriter"

	adminsvc "support-desk/internal/service/admin"
	agentsvc "support-desk/internal/service/agent"

	"github.com/spf13/cobra"
)

func newAdminCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
	}
	cmd.AddCommand(newAdminAddCmd(configPath))
	return cmd
}

func newAdminAddCmd(configPath *string) *cobra.Command {
	var params adminsvc.CreateParams

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an admin account",
		Long:  "Creates an admin account. Admins cannot be created over HTTP.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdminAdd(cmd, *configPath, params)
		},
	}
	cmd.Flags().StringVar(&params.Username, "username", "", "login name (required)")
	cmd.Flags().StringVar(&params.Password, "password", "", "initial password (required)")
	cmd.Flags().StringVar(&params.Name, "name", "", "display name")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")
	return cmd
}

func runAdminAdd(cmd *cobra.Command, configPath string, params adminsvc.CreateParams) error {
	s, err := openStores(cmd.Context(), configPath)
	if err != nil {
		return err
	}
	defer s.Close()

	admin, err := s.Admins.Create(cmd.Context(), params)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (%s)\n", admin.Username, admin.ID)
	return nil
}

func newAgentCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Manage support agents",
	}
	cmd.AddCommand(newAgentAddCmd(configPath))
	cmd.AddCommand(newAgentListCmd(configPath))
	return cmd
}

func newAgentAddCmd(configPath *string) *cobra.Command {
	var params agentsvc.CreateParams

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an agent account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgentAdd(cmd, *configPath, params)
		},
	}
	cmd.Flags().StringVar(&params.Name, "name", "", "display name (required)")
	cmd.Flags().StringVar(&params.Username, "username", "", "login name (required)")
	cmd.Flags().StringVar(&params.Password, "password", "", "initial password (required)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")
	return cmd
}

func runAgentAdd(cmd *cobra.Command, configPath string, params agentsvc.CreateParams) error {
	s, err := openStores(cmd.Context(), configPath)
	if err != nil {
		return err
	}
	defer s.Close()

	agent, err := s.Agents.Create(cmd.Context(), params)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created agent %s (%s)\n", agent.Username, agent.AgentID)
	return nil
}

func newAgentListCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List agents",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgentList(cmd, *configPath)
		},
	}
}

func runAgentList(cmd *cobra.Command, configPath string) error {
	s, err := openStores(cmd.Context(), configPath)
	if err != nil {
		return err
	}
	defer s.Close()

	agents, err := s.Agents.List(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(agents) == 0 {
		fmt.Fprintln(out, "No agents found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "AGENT ID\tUSERNAME\tNAME\tSTATUS\tCHATS")
	for _, a := range agents {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", a.AgentID, a.Username, a.Name, a.Status, len(a.ActiveChats))
	}
	w.Flush()
	return nil
}
