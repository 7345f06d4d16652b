package cmd

import (
	"fmt"
	"io"

	"clubportal/internal/access/domain/model"
	clubmodel "clubportal/internal/clubs/domain/model"

	"github.com/spf13/cobra"
)

var mineOnly bool

func init() {
	clubsCmd.Flags().BoolVar(&mineOnly, "mine", false, "only clubs you belong to")

	clubCmd.AddCommand(clubShowCmd, clubJoinCmd, clubLeaveCmd)
	eventCmd.AddCommand(eventShowCmd, eventJoinCmd, eventLeaveCmd)
	RootCmd.AddCommand(clubsCmd, clubCmd, eventsCmd, eventCmd, accessCmd)
}

var clubsCmd = &cobra.Command{
	Use:   "clubs",
	Short: "List clubs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/clubs"
		if mineOnly {
			path = "/clubs/my-clubs"
		}
		var clubs []clubmodel.Club
		if err := client.call("GET", path, nil, &clubs); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if asJSON {
			return printJSON(out, clubs)
		}
		for _, c := range clubs {
			fmt.Fprintf(out, "%s\t%s\t%s\n", c.UID, c.Name, c.Role)
		}
		return nil
	},
}

var clubCmd = &cobra.Command{
	Use:   "club",
	Short: "Club page and membership",
}

var clubShowCmd = &cobra.Command{
	Use:   "show <club-uid>",
	Short: "Show a club with its members and events",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showClub(cmd, "GET", "/clubs/"+args[0])
	},
}

var clubJoinCmd = &cobra.Command{
	Use:   "join <club-uid>",
	Short: "Join a club",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showClub(cmd, "POST", "/clubs/"+args[0]+"/join")
	},
}

var clubLeaveCmd = &cobra.Command{
	Use:   "leave <club-uid>",
	Short: "Leave a club",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showClub(cmd, "POST", "/clubs/"+args[0]+"/leave")
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List events",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var events []clubmodel.Event
		if err := client.call("GET", "/events", nil, &events); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if asJSON {
			return printJSON(out, events)
		}
		for _, e := range events {
			printEvent(out, e)
		}
		return nil
	},
}

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event page and registration",
}

var eventShowCmd = &cobra.Command{
	Use:   "show <event-uid>",
	Short: "Show an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showEvent(cmd, "GET", "/events/"+args[0])
	},
}

var eventJoinCmd = &cobra.Command{
	Use:   "join <event-uid>",
	Short: "Register for an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showEvent(cmd, "POST", "/events/"+args[0]+"/join")
	},
}

var eventLeaveCmd = &cobra.Command{
	Use:   "leave <event-uid>",
	Short: "Cancel an event registration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showEvent(cmd, "POST", "/events/"+args[0]+"/leave")
	},
}

var accessCmd = &cobra.Command{
	Use:   "access <view>",
	Short: "Check whether this profile may open a view",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var decision model.Decision
		if err := client.call("GET", "/views/"+args[0]+"/access", nil, &decision); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if asJSON {
			return printJSON(out, decision)
		}
		if decision.Allowed {
			fmt.Fprintf(out, "%s: allowed\n", decision.View)
			return nil
		}
		fmt.Fprintf(out, "%s: denied, go to %s\n", decision.View, decision.Redirect)
		return nil
	},
}

func showClub(cmd *cobra.Command, method, path string) error {
	var page clubmodel.ClubPage
	if err := client.call(method, path, nil, &page); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if asJSON {
		return printJSON(out, page)
	}
	fmt.Fprintf(out, "%s\n", page.Club.Name)
	if page.Club.Description != "" {
		fmt.Fprintf(out, "%s\n", page.Club.Description)
	}
	fmt.Fprintf(out, "\nExecutives (%d)\n", len(page.Execs))
	for _, m := range page.Execs {
		fmt.Fprintf(out, "  %s\t%s\n", m.UserName, m.Role)
	}
	fmt.Fprintf(out, "Members (%d)\n", len(page.Members))
	for _, m := range page.Members {
		fmt.Fprintf(out, "  %s\n", m.UserName)
	}
	fmt.Fprintf(out, "Events (%d)\n", len(page.Events))
	for _, e := range page.Events {
		printEvent(out, e)
	}
	return nil
}

func showEvent(cmd *cobra.Command, method, path string) error {
	var event clubmodel.Event
	if err := client.call(method, path, nil, &event); err != nil {
		return err
	}
	if asJSON {
		return printJSON(cmd.OutOrStdout(), event)
	}
	printEvent(cmd.OutOrStdout(), event)
	return nil
}

func printEvent(out io.Writer, e clubmodel.Event) {
	going := ""
	if e.IsAttending {
		going = " (going)"
	}
	fmt.Fprintf(out, "  %s\t%s\t%s\t%d attending%s\n", e.UID, e.Name, e.StartDatetime, e.ParticipantCount, going)
}
