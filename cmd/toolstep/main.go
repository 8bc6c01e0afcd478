// Command toolstep inspects persisted tool-call state: pending approvals,
// recovered call arguments and provider-normalized history.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/stellarlinkco/toolstep/pkg/compat"
	"github.com/stellarlinkco/toolstep/pkg/config"
	"github.com/stellarlinkco/toolstep/pkg/memory"
	"github.com/stellarlinkco/toolstep/pkg/message"
)

var rootCmd = &cobra.Command{
	Use:   "toolstep",
	Short: "toolstep - inspect suspended tool calls and thread history",
}

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List pending tool approvals in a thread",
	RunE:  runPending,
}

var argsCmd = &cobra.Command{
	Use:   "args <toolCallID>",
	Short: "Recover the arguments for a tool call from thread history",
	Args:  cobra.ExactArgs(1),
	RunE:  runArgs,
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Print thread history normalized for a provider",
	RunE:  runNormalize,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show effective settings",
	RunE:  runStatus,
}

var (
	rootFlag     string
	threadFlag   string
	providerFlag string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", ".", "Project root holding .toolstep settings")
	rootCmd.PersistentFlags().StringVar(&threadFlag, "thread", "", "Thread id")
	normalizeCmd.Flags().StringVar(&providerFlag, "provider", "", "Target provider: anthropic or openai (defaults to settings)")
	rootCmd.AddCommand(pendingCmd, argsCmd, normalizeCmd, statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadSettings() (*config.Settings, error) {
	loader := config.Loader{ProjectRoot: rootFlag}
	return loader.Load()
}

func loadThreadMessages(settings *config.Settings) ([]message.Message, error) {
	if threadFlag == "" {
		return nil, fmt.Errorf("--thread is required")
	}
	store, err := memory.NewDiskStore(settings.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	msgs, err := store.LoadMessages(threadFlag)
	if err != nil {
		return nil, fmt.Errorf("load thread %s: %w", threadFlag, err)
	}
	return msgs, nil
}

func runPending(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	msgs, err := loadThreadMessages(settings)
	if err != nil {
		return err
	}
	return printPending(cmd.OutOrStdout(), msgs)
}

func printPending(out io.Writer, msgs []message.Message) error {
	pending := map[string]message.PendingApproval{}
	for _, msg := range msgs {
		if msg.Metadata == nil {
			continue
		}
		for id, rec := range msg.Metadata.PendingToolApprovals {
			pending[id] = rec
		}
	}
	if len(pending) == 0 {
		fmt.Fprintln(out, "no pending approvals")
		return nil
	}
	ids := make([]string, 0, len(pending))
	for id := range pending {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		rec := pending[id]
		data, err := json.Marshal(rec.Args)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\t%s\t%s\n", id, rec.ToolName, data)
	}
	return nil
}

func runArgs(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	msgs, err := loadThreadMessages(settings)
	if err != nil {
		return err
	}
	recovered := message.FindToolCallArgs(msgs, args[0])
	data, err := json.MarshalIndent(recovered, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func runNormalize(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	msgs, err := loadThreadMessages(settings)
	if err != nil {
		return err
	}

	provider := providerFlag
	if provider == "" {
		provider = settings.Provider
	}

	var converted any
	switch provider {
	case "anthropic":
		system, history, err := compat.ToAnthropic(msgs)
		if err != nil {
			return err
		}
		converted = map[string]any{"system": system, "messages": history}
	case "openai":
		history, err := compat.ToOpenAI(msgs)
		if err != nil {
			return err
		}
		converted = history
	default:
		return fmt.Errorf("unknown provider %q", provider)
	}

	data, err := json.MarshalIndent(converted, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "provider:     %s\n", settings.Provider)
	if settings.Model != "" {
		fmt.Fprintf(out, "model:        %s\n", settings.Model)
	}
	fmt.Fprintf(out, "storage:      %s\n", settings.StorageDir)
	fmt.Fprintf(out, "approval:     %v\n", config.RequireToolApproval(nil, settings))
	if settings.Trace != nil {
		fmt.Fprintf(out, "tracing:      %v\n", settings.Trace.Enabled)
	}
	return nil
}
