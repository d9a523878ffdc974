package main

import (
	"bufio"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pdfchat/internal/chat"
	"pdfchat/internal/config"
)

// --- chat ---

var chatCmd = &cobra.Command{
	Use:   "chat <file.pdf>",
	Short: "Upload a PDF and chat about it interactively",
	Long: `Upload a PDF and chat about it interactively.

Inside the session:
  /sources   show the citations of the last answer
  /reset     discard the document and transcript
  /upload    re-upload the document after a reset
  /quit      leave the session`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := newController()
		if err != nil {
			return err
		}

		path := args[0]
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}
		filename := filepath.Base(path)

		docID, err := ctrl.Upload(cmd.Context(), filename, data)
		if err != nil {
			return err
		}
		printSuccess("Uploaded %s (doc %s)", filename, docID)

		return runREPL(cmd, ctrl, filename, data)
	},
}

func runREPL(cmd *cobra.Command, ctrl *chat.Controller, filename string, data []byte) error {
	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 64*1024), 64*1024)

	for {
		fmt.Fprint(os.Stderr, colorize(colorBold, "you> "))
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if cmdName, handled := replCommand(line); handled {
			switch cmdName {
			case "quit":
				return nil
			case "reset":
				ctrl.Reset()
				printWarning("Document discarded. Use /upload to start over.")
			case "upload":
				docID, err := ctrl.Upload(cmd.Context(), filename, data)
				if err != nil {
					printError("%v", err)
					continue
				}
				printSuccess("Uploaded %s (doc %s)", filename, docID)
			case "sources":
				sources := ctrl.Sources()
				if len(sources) == 0 {
					fmt.Println("No sources yet.")
					continue
				}
				for _, s := range sources {
					fmt.Printf("  %s %s\n", colorize(colorCyan, sourceLabel(s)), s.Snippet)
				}
			default:
				printWarning("Unknown command %q. Try /sources, /reset, /upload, /quit.", "/"+cmdName)
			}
			continue
		}

		reply, sources, err := ctrl.Ask(cmd.Context(), line)
		if err != nil {
			var pre *chat.PreconditionError
			if errors.As(err, &pre) {
				printWarning("%s", pre.Reason)
			} else {
				printError("%v", err)
			}
			continue
		}
		printAnswer(reply, sources)
	}
}

// replCommand recognizes "/name" session commands. "exit" and "q" are
// accepted as aliases for quit.
func replCommand(line string) (string, bool) {
	if !strings.HasPrefix(line, "/") {
		return "", false
	}
	name := strings.ToLower(strings.TrimPrefix(line, "/"))
	if name == "exit" || name == "q" {
		name = "quit"
	}
	return name, true
}

// --- upload ---

var uploadCmd = &cobra.Command{
	Use:   "upload <file.pdf>",
	Short: "Upload a PDF and print its document ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := newController()
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}

		docID, err := ctrl.Upload(cmd.Context(), filepath.Base(args[0]), data)
		if err != nil {
			return err
		}

		printSuccess("Uploaded %s", filepath.Base(args[0]))
		fmt.Println(docID)
		return nil
	},
}

// --- ask ---

var askCmd = &cobra.Command{
	Use:   "ask --doc <id> <question...>",
	Short: "Ask a one-shot question about an already-uploaded document",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		docID, _ := cmd.Flags().GetString("doc")
		if docID == "" {
			return fmt.Errorf("--doc is required")
		}
		question := strings.TrimSpace(strings.Join(args, " "))
		if question == "" {
			return fmt.Errorf("question is empty")
		}

		client, err := newGatewayClient()
		if err != nil {
			return err
		}

		// One-shot: no transcript, so the history is just this question.
		history := []chat.Turn{{Role: chat.RoleUser, Content: question}}
		ans, err := client.SubmitQuestion(cmd.Context(), docID, question, history)
		if err != nil {
			return err
		}

		fmt.Println(ans.Answer)
		for _, s := range ans.Sources {
			fmt.Printf("  %s %s\n", colorize(colorCyan, sourceLabel(s)), s.Snippet)
		}
		return nil
	},
}

func init() {
	askCmd.Flags().String("doc", "", "document ID returned by upload")
}

// --- status ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backend reachability and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		client := &http.Client{Timeout: 2 * time.Second}
		resp, err := client.Get(strings.TrimRight(cfg.Backend.BaseURL, "/") + "/health")
		if err != nil {
			printStatus("Backend", "unreachable at %s", cfg.Backend.BaseURL)
		} else {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				printStatus("Backend", "reachable at %s", cfg.Backend.BaseURL)
			} else {
				printStatus("Backend", "error (HTTP %d)", resp.StatusCode)
			}
		}

		printStatus("Timeout", "%s", cfg.Backend.Timeout)
		printStatus("Serve port", "%d", cfg.Serve.Port)
		printStatus("Data dir", "%s", cfg.Serve.DataDir)
		return nil
	},
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
