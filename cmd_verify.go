package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/nbd-wtf/go-nostr"
	"github.com/spf13/cobra"

	"nostr/pow"
)

var verifyInput string

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the proof of work of an event read as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		in, err := openInput(verifyInput)
		if err != nil {
			return err
		}
		defer in.Close()
		return verifyEvent(in, cmd.OutOrStdout(), cfg.Difficulty)
	},
}

func init() {
	verifyCmd.Flags().StringVarP(&verifyInput, "input", "i", "-", "event file, - for stdin")
}

// verifyEvent prints the difficulty report of the event read from r and returns
// an error if it does not satisfy required.
func verifyEvent(r io.Reader, w io.Writer, required int) error {
	var event nostr.Event
	if err := json.NewDecoder(r).Decode(&event); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}

	if event.ID != event.GetID() {
		return fmt.Errorf("event id %s does not match its content", event.ID)
	}

	fmt.Fprintf(w, "id:         %s\n", event.ID)
	fmt.Fprintf(w, "difficulty: %d\n", pow.Difficulty(event.ID))
	if committed, ok := pow.CommittedDifficulty(&event); ok {
		fmt.Fprintf(w, "committed:  %d\n", committed)
	} else {
		fmt.Fprintln(w, "committed:  none")
	}
	fmt.Fprintf(w, "required:   %d\n", required)

	if err := pow.Check(&event, required); err != nil {
		return err
	}
	fmt.Fprintln(w, "valid")
	return nil
}
