package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/jeopardyze-client/internal/client"
)

func newWhoamiCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current player, signing in as a guest if needed",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.initialize(cmd.Context(), false); err != nil {
				return err
			}
			rt.out.Print(rt.app.Session.Snapshot())
			return nil
		},
	}
}

func newLoginCmd(rt *runtime) *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with a username or e-mail",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := rt.initialize(ctx, true); err != nil {
				return err
			}

			result, err := rt.app.AuthAPI.Login(ctx, client.LoginRequest{UsernameOrEmail: user, Password: pass})
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			if err := rt.app.Session.OnLoginSuccess(ctx, result); err != nil {
				return err
			}

			rt.out.Print(rt.app.Session.Snapshot())
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username or e-mail (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newRegisterCmd(rt *runtime) *cobra.Command {
	var username, email, pass string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account; a verification code is sent by e-mail",
		Long: `Create an account. The current guest, if any, becomes the new account.

Running register again with the same details resends the verification code.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := rt.initialize(ctx, true); err != nil {
				return err
			}

			req := client.RegisterRequest{Username: username, Email: email, Password: pass}
			if player, ok := rt.app.Session.Player(); ok && player.IsGuest() {
				req.GuestID = &player.ID
			}

			resp, err := rt.app.AuthAPI.Register(ctx, req)
			if err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}

			rt.out.Print(resp)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (required)")
	cmd.Flags().StringVar(&email, "email", "", "E-mail address (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newVerifyEmailCmd(rt *runtime) *cobra.Command {
	var email, code string

	cmd := &cobra.Command{
		Use:   "verify-email",
		Short: "Confirm a verification code and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := rt.initialize(ctx, true); err != nil {
				return err
			}

			result, err := rt.app.AuthAPI.VerifyEmail(ctx, client.VerifyEmailRequest{Email: email, Code: code})
			if err != nil {
				return fmt.Errorf("verification failed: %w", err)
			}
			if err := rt.app.Session.OnEmailVerifiedSuccess(ctx, result); err != nil {
				return err
			}

			rt.out.Print(rt.app.Session.Snapshot())
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "E-mail address (required)")
	cmd.Flags().StringVar(&code, "code", "", "Verification code (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("code")

	return cmd
}

func newLogoutCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and continue as a new guest",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := rt.initialize(ctx, true); err != nil {
				return err
			}
			if err := rt.app.Session.Logout(ctx); err != nil {
				return err
			}

			rt.out.Print(rt.app.Session.Snapshot())
			return nil
		},
	}
}
