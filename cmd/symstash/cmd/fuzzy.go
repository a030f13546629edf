package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var fuzzyCmd = &cobra.Command{
	Use:   "fuzzy-match <id>",
	Short: "Find cached databases resembling an id",
	Long:  "Rank cached databases by similarity to a possibly partial id such as iOS_10.2.",
	Args:  cobra.ExactArgs(1),
	RunE:  runFuzzy,
}

func init() {
	rootCmd.AddCommand(fuzzyCmd)
}

func runFuzzy(_ *cobra.Command, args []string) error {
	stash, err := openStash()
	if err != nil {
		return err
	}

	matches, err := stash.FuzzyMatchSDKID(args[0])
	if err != nil {
		return err
	}

	for _, info := range matches {
		fmt.Println(info)
	}

	if len(matches) == 0 {
		fmt.Println("(no matches)")
	}

	return nil
}
