package cli

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"tarot-reading/configs"
	"tarot-reading/protocal"
)

type rootOptions struct {
	configDir string
	env       string
}

// NewRootCmd builds the tarot command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "tarot",
		Short: "Interactive five-card tarot readings in the terminal",
		Long: `tarot draws a Greek Cross spread of five cards and talks you through it.

Each card is interpreted in turn, you can answer with your own thoughts,
and the reading closes with a synthesis of the whole spread.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			configs.InitViper(opts.configDir, opts.env)
			protocal.ConfigureLogging(configs.GetViper())
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configDir, "config", "./configs", "Directory holding config.yaml")
	cmd.PersistentFlags().StringVar(&opts.env, "env", "", "The environment to use")

	cmd.AddCommand(newReadCmd())
	cmd.AddCommand(newDeckCmd())

	return cmd
}

func build(ctx context.Context) (*protocal.Components, error) {
	components, err := protocal.Build(ctx, configs.GetViper())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare the reading: %w", err)
	}
	return components, nil
}

func newReadCmd() *cobra.Command {
	var question string

	cmd := &cobra.Command{
		Use:   "read",
		Short: "Start an interactive reading",
		Example: `  # Ask about a specific topic
  tarot read --question "Should I change jobs?"

  # Use the default topic
  tarot read`,
		RunE: func(cmd *cobra.Command, args []string) error {
			components, err := build(cmd.Context())
			if err != nil {
				return err
			}
			defer components.Close()

			return NewReader(components.Tarot, cmd.InOrStdin(), cmd.OutOrStdout()).Run(cmd.Context(), question)
		},
	}

	cmd.Flags().StringVarP(&question, "question", "q", "", "Topic of the reading")

	return cmd
}

func newDeckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deck",
		Short: "List the loaded cards",
		RunE: func(cmd *cobra.Command, args []string) error {
			components, err := build(cmd.Context())
			if err != nil {
				return err
			}
			defer components.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d cards\n", components.Deck.Size())
			for i, card := range components.Deck.Cards() {
				fmt.Fprintf(out, "%2d. %s\n", i+1, card.Name)
			}
			return nil
		},
	}
}
