package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hpn/hpn-g-bot/internal/domain"
	"github.com/hpn/hpn-g-bot/internal/ui"
)

func newAskCmd(opts *rootOptions) *cobra.Command {
	var ids domain.Ids

	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Send one message and print the reply",
		Long: "Send one message and print the reply with the ids that continue the conversation.\n" +
			"The message is read from stdin when no argument is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")
			if message == "" {
				in, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read message from stdin: %w", err)
				}
				message = strings.TrimSpace(string(in))
			}

			rt, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if message == "" {
				ui.PrintWarning(cmd.ErrOrStderr(), "no message given; nothing is sent to the model")
			}

			text, newIds := rt.bot.Chat(cmd.Context(), message, ids)
			ui.PrintReply(cmd.OutOrStdout(), text, newIds)
			return nil
		},
	}

	cmd.Flags().StringVar(&ids.ParentMessageID, "parent-message-id", "", "parent message id from a previous reply")
	cmd.Flags().StringVar(&ids.ConversationID, "conversation-id", "", "conversation id from a previous reply")

	return cmd
}
