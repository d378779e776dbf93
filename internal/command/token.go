package command

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/iliyamo/todo-api/internal/auth"
)

func tokenCommand() *cobra.Command {
	var userID uint64
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a session token",
		Long: "Signs a session token for the given user id with the configured\n" +
			"JWT_SECRET and TOKEN_TTL. The user is not looked up.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			if userID == 0 {
				return errors.New("--user-id must be a positive integer")
			}
			tok, err := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL).Issue(userID)
			if err != nil {
				return err
			}
			logger.DebugContext(cmd.Context(), "issued token",
				slog.Uint64("user_id", userID), slog.Time("expires", tok.Exp))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok.Token)
			return err
		},
	}
	cmd.Flags().Uint64Var(&userID, "user-id", 0, "identity the token is issued for")
	_ = cmd.MarkFlagRequired("user-id")
	return cmd
}
