package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gemchat/gemchat/pkg/turns"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat session",
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	sess, registry, err := buildSession()
	if err != nil {
		return err
	}

	fmt.Printf("gemchat: %d tools loaded, type your message (/help for commands)\n\n", registry.Count())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println("\ngoodbye")
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch input {
		case "exit", "quit":
			fmt.Println("goodbye")
			return nil
		case "/help":
			fmt.Println("/reset    start a fresh conversation")
			fmt.Println("/history  dump the conversation history")
			fmt.Println("exit      leave")
			continue
		case "/reset":
			sess.Reset()
			fmt.Println("conversation reset")
			continue
		case "/history":
			if err := dumpHistory(sess.History()); err != nil {
				fmt.Fprintln(os.Stderr, "failed to dump history:", err)
			}
			continue
		}

		err := withRouter(cmd.Context(), os.Stdout, func(ctx context.Context) error {
			_, err := sess.Respond(ctx, input)
			return err
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "request failed:", err)
		}
		fmt.Println()
	}
}

func dumpHistory(t *turns.Turn) error {
	if t == nil || len(t.Blocks) == 0 {
		fmt.Println("(empty)")
		return nil
	}
	type entry struct {
		Kind    string         `yaml:"kind"`
		Payload map[string]any `yaml:"payload"`
	}
	entries := make([]entry, 0, len(t.Blocks))
	for _, b := range t.Blocks {
		entries = append(entries, entry{Kind: string(b.Kind), Payload: b.Payload})
	}
	out, err := yaml.Marshal(entries)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}
