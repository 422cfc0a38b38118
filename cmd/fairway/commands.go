package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fairwaylabs/fairway/internal/config"
)

// --- golfers ---

var golfersCmd = &cobra.Command{
	Use:   "golfers",
	Short: "List golfers with a stored profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/v1/golfers")
		if err != nil {
			return err
		}

		var body struct {
			Golfers []string `json:"golfers"`
		}
		if err := decodeJSON(resp, &body); err != nil {
			return err
		}

		if len(body.Golfers) == 0 {
			fmt.Println("No golfers yet.")
			return nil
		}
		for _, id := range body.Golfers {
			fmt.Println(id)
		}
		return nil
	},
}

// --- profile ---

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage golfer profiles",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a golfer profile as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		golferID, _ := cmd.Flags().GetString("golfer")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/v1/golfers/"+golferID+"/profile")
		if err != nil {
			return err
		}

		var p any
		if err := decodeJSON(resp, &p); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set <field> <value>",
	Short: "Set a profile field (skill_level, swing_issues, goals)",
	Long: `Set a profile field.

skill_level takes a single value; swing_issues and goals take a
comma-separated list that replaces the stored one.

Examples:
  fairway profile set skill_level intermediate --golfer sam
  fairway profile set swing_issues "slice,early extension" --golfer sam`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		golferID, _ := cmd.Flags().GetString("golfer")
		field, value := args[0], args[1]

		body := map[string]any{}
		switch field {
		case "skill_level":
			body[field] = value
		case "swing_issues", "goals":
			items := strings.Split(value, ",")
			for i := range items {
				items[i] = strings.TrimSpace(items[i])
			}
			body[field] = items
		default:
			return fmt.Errorf("unknown profile field %q (valid: skill_level, swing_issues, goals)", field)
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.patch(cmd.Context(), "/v1/golfers/"+golferID+"/profile", body)
		if err != nil {
			return err
		}

		var updated any
		if err := decodeJSON(resp, &updated); err != nil {
			return err
		}

		printSuccess("Set %s = %s", field, value)
		return nil
	},
}

func init() {
	profileShowCmd.Flags().String("golfer", "local", "golfer identifier")
	profileSetCmd.Flags().String("golfer", "local", "golfer identifier")
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
}

// --- memory ---

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "List remembered notes about a golfer",
	RunE: func(cmd *cobra.Command, args []string) error {
		golferID, _ := cmd.Flags().GetString("golfer")
		limit, _ := cmd.Flags().GetInt("limit")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		path := fmt.Sprintf("/v1/golfers/%s/memory?limit=%d", golferID, limit)
		resp, err := client.get(cmd.Context(), path)
		if err != nil {
			return err
		}

		var body struct {
			Memories []struct {
				Note      string `json:"note"`
				CreatedAt string `json:"created_at"`
			} `json:"memories"`
		}
		if err := decodeJSON(resp, &body); err != nil {
			return err
		}

		if len(body.Memories) == 0 {
			fmt.Println("No memories yet.")
			return nil
		}
		for _, m := range body.Memories {
			fmt.Printf("%s  %s\n", colorize(colorCyan, m.CreatedAt), m.Note)
		}
		return nil
	},
}

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "List coaching insights recorded for a golfer",
	RunE: func(cmd *cobra.Command, args []string) error {
		golferID, _ := cmd.Flags().GetString("golfer")
		limit, _ := cmd.Flags().GetInt("limit")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		path := fmt.Sprintf("/v1/golfers/%s/insights?limit=%d", golferID, limit)
		resp, err := client.get(cmd.Context(), path)
		if err != nil {
			return err
		}

		var body struct {
			Insights []struct {
				Insight   string `json:"insight"`
				CreatedAt string `json:"created_at"`
			} `json:"insights"`
		}
		if err := decodeJSON(resp, &body); err != nil {
			return err
		}

		if len(body.Insights) == 0 {
			fmt.Println("No insights yet.")
			return nil
		}
		for _, in := range body.Insights {
			fmt.Printf("%s\n  %s\n", colorize(colorCyan, in.CreatedAt), in.Insight)
		}
		return nil
	},
}

func init() {
	memoryCmd.Flags().String("golfer", "local", "golfer identifier")
	memoryCmd.Flags().Int("limit", 20, "maximum number of notes to list")
	insightsCmd.Flags().String("golfer", "local", "golfer identifier")
	insightsCmd.Flags().Int("limit", 20, "maximum number of insights to list")
}

// --- drills ---

var drillsCmd = &cobra.Command{
	Use:   "drills",
	Short: "Manage the drill library",
}

var drillsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a drill document to the library",
	Long: `Add a drill document to the library.

Examples:
  fairway drills add --text "Gate drill: set two tees..." --title "Gate drill" --tags putting
  fairway drills add --url https://example.com/tempo-drills --tags tempo
  fairway drills add --file ./drills.pdf --title "Short game drills"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")
		url, _ := cmd.Flags().GetString("url")
		file, _ := cmd.Flags().GetString("file")
		title, _ := cmd.Flags().GetString("title")
		tagsStr, _ := cmd.Flags().GetString("tags")

		if text == "" && url == "" && file == "" {
			return fmt.Errorf("one of --text, --url, or --file is required")
		}

		req := map[string]any{}
		if title != "" {
			req["title"] = title
		}
		if tagsStr != "" {
			tags := strings.Split(tagsStr, ",")
			for i := range tags {
				tags[i] = strings.TrimSpace(tags[i])
			}
			req["tags"] = tags
		}

		switch {
		case text != "":
			req["type"] = "text"
			req["content"] = text
		case url != "":
			req["type"] = "url"
			req["url"] = url
		case file != "":
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading file: %w", err)
			}
			if strings.EqualFold(filepath.Ext(file), ".pdf") {
				req["type"] = "pdf"
				req["content"] = base64.StdEncoding.EncodeToString(data)
			} else {
				req["type"] = "text"
				req["content"] = string(data)
			}
			if title == "" {
				req["title"] = filepath.Base(file)
			}
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/v1/drills", req)
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Queued drill %s", result["id"])
		return nil
	},
}

var drillsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List drill documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), fmt.Sprintf("/v1/drills?limit=%d", limit))
		if err != nil {
			return err
		}

		var drills []struct {
			ID        string `json:"id"`
			Title     string `json:"title"`
			Source    string `json:"source"`
			Tags      string `json:"tags"`
			CreatedAt string `json:"created_at"`
		}
		if err := decodeJSON(resp, &drills); err != nil {
			return err
		}

		if len(drills) == 0 {
			fmt.Println("No drills found.")
			return nil
		}
		for _, d := range drills {
			line := fmt.Sprintf("%s  %-8s  %s", colorize(colorCyan, d.ID[:8]), d.Source, d.Title)
			if d.Tags != "" && d.Tags != "[]" {
				line += "  " + d.Tags
			}
			fmt.Println(line)
		}
		return nil
	},
}

var drillsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a drill document and its search index entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.delete(cmd.Context(), "/v1/drills/"+args[0])
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Deleted drill %s", args[0])
		return nil
	},
}

func init() {
	drillsAddCmd.Flags().String("text", "", "drill text to add")
	drillsAddCmd.Flags().String("url", "", "URL to fetch and add")
	drillsAddCmd.Flags().String("file", "", "file path to add (.pdf or plain text)")
	drillsAddCmd.Flags().String("title", "", "title for the drill document")
	drillsAddCmd.Flags().String("tags", "", "comma-separated tags")
	drillsListCmd.Flags().Int("limit", 50, "maximum number of drills to list")
	drillsCmd.AddCommand(drillsAddCmd)
	drillsCmd.AddCommand(drillsListCmd)
	drillsCmd.AddCommand(drillsDeleteCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
