package cmd

import (
	"fmt"
	"strings"

	discussionhttp "clubportal/internal/discussion/adapter/http"
	"clubportal/internal/discussion/domain/model"
	discussionusecase "clubportal/internal/discussion/usecase"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(commentsCmd, commentCmd, replyCmd)
}

var commentsCmd = &cobra.Command{
	Use:   "comments <event-uid>",
	Short: "Show the discussion of an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp struct {
			Comments model.Forest `json:"comments"`
		}
		if err := client.call("GET", "/events/"+args[0]+"/comments", nil, &resp); err != nil {
			return err
		}
		if asJSON {
			return printJSON(cmd.OutOrStdout(), resp)
		}
		printForest(cmd.OutOrStdout(), resp.Comments)
		return nil
	},
}

var commentCmd = &cobra.Command{
	Use:   "comment <event-uid> <text...>",
	Short: "Post a comment on an event",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var result discussionusecase.CommentResult
		body := discussionhttp.ContentRequest{Content: strings.Join(args[1:], " ")}
		if err := client.call("POST", "/events/"+args[0]+"/comments", body, &result); err != nil {
			return err
		}
		if asJSON {
			return printJSON(cmd.OutOrStdout(), result)
		}
		printForest(cmd.OutOrStdout(), result.Forest)
		return nil
	},
}

var replyCmd = &cobra.Command{
	Use:   "reply <comment-uid> <text...>",
	Short: "Reply to a comment of the open discussion",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var result discussionusecase.ReplyResult
		body := discussionhttp.ContentRequest{Content: strings.Join(args[1:], " ")}
		if err := client.call("POST", "/comments/"+args[0]+"/replies", body, &result); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if asJSON {
			return printJSON(out, result)
		}
		if !result.Applied {
			fmt.Fprintln(out, result.Notice)
			return nil
		}
		printForest(out, result.Forest)
		return nil
	},
}
