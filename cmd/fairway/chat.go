package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the coach from the terminal",
	Long: `Talk to the coach from the terminal.

Starts an interactive session against the running fairway server. The
session keeps conversation context between turns; type "exit" (or press
Ctrl-D) to end it, which triggers a final profile update.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		golferID, _ := cmd.Flags().GetString("golfer")
		golferID = strings.TrimSpace(golferID)
		if golferID == "" {
			return fmt.Errorf("--golfer is required")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		fmt.Fprintf(os.Stderr, "Chatting as %s. Type 'exit' to end the session.\n\n", golferID)

		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 64*1024), 64*1024)
		for {
			fmt.Fprint(os.Stderr, colorize(colorBold, "you> "))
			if !scanner.Scan() {
				break
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if line == "exit" || line == "quit" {
				break
			}

			resp, err := client.post(ctx, "/v1/chat", map[string]string{
				"golfer_id": golferID,
				"message":   line,
			})
			if err != nil {
				return err
			}

			var reply struct {
				Reply string `json:"reply"`
			}
			if err := decodeJSON(resp, &reply); err != nil {
				printError("%v", err)
				continue
			}
			fmt.Fprintf(os.Stderr, "\n%s %s\n\n", colorize(colorCyan, "coach>"), reply.Reply)
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		// End the session so the final profile extraction runs. A 404 just
		// means no turns were exchanged.
		resp, err := client.post(ctx, "/v1/sessions/"+golferID+"/end", nil)
		if err != nil {
			printWarning("could not end session: %v", err)
			return nil
		}
		resp.Body.Close()
		if resp.StatusCode == 200 {
			printSuccess("Session ended")
		}
		return nil
	},
}

func init() {
	chatCmd.Flags().String("golfer", "local", "golfer identifier for this session")
}
