package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question and print the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, _, err := buildSession()
		if err != nil {
			return err
		}

		question := strings.Join(args, " ")
		return withRouter(cmd.Context(), os.Stdout, func(ctx context.Context) error {
			answer, err := sess.Respond(ctx, question)
			if err != nil {
				return errors.Wrap(err, "request failed")
			}
			if answer == "" {
				fmt.Println("(the model returned no text)")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
