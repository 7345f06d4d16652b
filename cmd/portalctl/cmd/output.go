package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"clubportal/internal/discussion/domain/model"
)

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// printForest renders a comment forest as an indented tree.
func printForest(w io.Writer, forest model.Forest) {
	if len(forest) == 0 {
		fmt.Fprintln(w, "No comments yet")
		return
	}
	model.Walk(forest, func(c model.Comment, depth int) bool {
		indent := strings.Repeat("  ", depth)
		when := ""
		if !c.CreatedAt.IsZero() {
			when = " · " + c.CreatedAt.Local().Format("Jan 2 15:04")
		}
		fmt.Fprintf(w, "%s%s%s [%s]\n", indent, c.Author, when, c.ID)
		for _, line := range strings.Split(c.Body, "\n") {
			fmt.Fprintf(w, "%s  %s\n", indent, line)
		}
		return true
	})
}
