package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/spf13/cobra"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// commander is the command surface the REPL dispatches to. The real App
// satisfies it; tests can provide a lightweight stub.
type commander interface {
	SignInPassword(ctx context.Context, email string) error
	CreateAccount(ctx context.Context, email string) error
	SignInWithToken(ctx context.Context, kind models.ProviderKind, token string) error
	SignInTwitter(ctx context.Context, token, secret string) error
	PhoneRequest(ctx context.Context, countryCode, number string) error
	PhoneResend(ctx context.Context) error
	PhoneVerify(ctx context.Context, code string) error
	VerifyEmail(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	SignOut(ctx context.Context) error
	Disconnect(ctx context.Context) error
}

// runREPL reads commands line by line until EOF, "exit" or "quit". Errors
// returned by handlers are printed and the loop continues.
func runREPL(ctx context.Context, a commander, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("ga %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		root := newRootCmd(a)
		root.SetArgs(parts)
		if err := root.ExecuteContext(ctx); err != nil {
			printlnFn("Error:", describeError(err))
		}
	}
}

func newRootCmd(a commander) *cobra.Command {
	root := &cobra.Command{
		Use:           "ga",
		Short:         "gophauth interactive client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	optionalArg := func(args []string) string {
		if len(args) == 0 {
			return ""
		}
		return args[0]
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "signin-password [email]",
			Short: "sign in with email and password",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.SignInPassword(cmd.Context(), optionalArg(args))
			},
		},
		&cobra.Command{
			Use:   "create-account [email]",
			Short: "register an email/password account and sign in",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.CreateAccount(cmd.Context(), optionalArg(args))
			},
		},
		tokenCmd(a, "signin-google <id-token>", "sign in with a Google ID token", models.ProviderGoogle),
		tokenCmd(a, "signin-facebook <access-token>", "sign in with a Facebook access token", models.ProviderFacebook),
		tokenCmd(a, "signin-firebase <id-token>", "sign in with a Firebase ID token", models.ProviderFirebase),
		&cobra.Command{
			Use:   "signin-twitter <token> <secret>",
			Short: "sign in with a Twitter OAuth token pair",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.SignInTwitter(cmd.Context(), args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "phone-request <country-code> <number>",
			Short: "send an SMS verification code",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.PhoneRequest(cmd.Context(), args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "phone-resend",
			Short: "send the verification code again",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.PhoneResend(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "phone-verify <code>",
			Short: "sign in with the received SMS code",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.PhoneVerify(cmd.Context(), args[0])
			},
		},
		simpleCmd("verify-email", "mail a verification link to the signed-in address", a.VerifyEmail),
		simpleCmd("whoami", "show the current session", a.WhoAmI),
		simpleCmd("signout", "sign out", a.SignOut),
		simpleCmd("disconnect", "unlink the sign-in provider and sign out", a.Disconnect),
	)

	return root
}

func tokenCmd(a commander, use, short string, kind models.ProviderKind) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.SignInWithToken(cmd.Context(), kind, args[0])
		},
	}
}

func simpleCmd(use, short string, fn func(context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fn(cmd.Context())
		},
	}
}

// describeError turns classified failures into the messages a sign-in screen
// would show.
func describeError(err error) string {
	switch {
	case errors.Is(err, common.ErrValidation):
		return err.Error()
	case errors.Is(err, common.ErrAccountCollision):
		return "this identity belongs to an account created with another provider; sign in with that provider first"
	case errors.Is(err, common.ErrInvalidCredential):
		return "authentication failed: credential rejected"
	case errors.Is(err, common.ErrProviderUnavailable):
		return "identity service unavailable, try again later"
	case errors.Is(err, common.ErrInvalidPhoneNumber):
		return "invalid phone number"
	case errors.Is(err, common.ErrQuotaExceeded):
		return "SMS quota exceeded"
	case errors.Is(err, common.ErrProviderDisabled):
		return "this sign-in method is disabled"
	case errors.Is(err, common.ErrAlreadyAuthenticating):
		return "a sign-in is already in progress"
	case errors.Is(err, common.ErrNoActiveSession):
		return "not signed in"
	case errors.Is(err, common.ErrAuthenticationCanceled):
		return "sign-in canceled"
	case errors.Is(err, session.ErrClosed):
		return "client is shutting down"
	default:
		return err.Error()
	}
}
