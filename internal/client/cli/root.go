// Package cli builds the fileshare command tree.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Nithin3003/cloud-share-it/internal/client/api"
	"github.com/Nithin3003/cloud-share-it/internal/client/identity"
)

const defaultServer = "http://localhost:8080"

// Deps are the side effects the commands may touch. Zero values fall back to the OS.
type Deps struct {
	Fs        afero.Fs
	In        io.Reader
	Out       io.Writer
	Persister identity.Persister
}

type env struct {
	deps    Deps
	server  string
	verbose bool

	logger   *zap.Logger
	client   *api.Client
	identity *identity.Store
	in       *bufio.Reader
}

func NewRootCommand(ctx context.Context, deps Deps) *cobra.Command {
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	if deps.In == nil {
		deps.In = os.Stdin
	}
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	e := &env{deps: deps}

	cobra.EnableCommandSorting = false
	rootCmd := &cobra.Command{
		Use:           "fileshare",
		Short:         "Upload files to CloudShareIt and share them by link.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.init(cmd.Context())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if e.logger != nil {
				_ = e.logger.Sync()
			}
		},
	}
	rootCmd.SetContext(ctx)
	rootCmd.SetOut(deps.Out)
	rootCmd.SetErr(deps.Out)
	rootCmd.SetIn(deps.In)

	server := os.Getenv("CLOUDSHAREIT_SERVER")
	if server == "" {
		server = defaultServer
	}
	rootCmd.PersistentFlags().StringVar(&e.server, "server", server, "API base URL")
	rootCmd.PersistentFlags().BoolVarP(&e.verbose, "verbose", "v", false, "log diagnostics to stderr")

	rootCmd.AddCommand(newRegisterCmd(e))
	rootCmd.AddCommand(newLoginCmd(e))
	rootCmd.AddCommand(newLogoutCmd(e))
	rootCmd.AddCommand(newWhoamiCmd(e))
	rootCmd.AddCommand(newUploadCmd(e))
	rootCmd.AddCommand(newListCmd(e))
	rootCmd.AddCommand(newRemoveCmd(e))
	rootCmd.AddCommand(newOpenCmd(e))

	return rootCmd
}

func (e *env) init(ctx context.Context) error {
	e.logger = zap.NewNop()
	if e.verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		e.logger = l
	}

	persister := e.deps.Persister
	if persister == nil {
		persister = identity.NewFilePersister(e.deps.Fs, identity.DefaultSessionPath())
	}

	e.client = api.NewClient(e.server)
	e.identity = identity.NewStore(e.client, persister, e.logger)
	e.in = bufio.NewReader(e.deps.In)

	if err := e.identity.Load(ctx); err != nil {
		e.logger.Warn("ignoring saved session", zap.Error(err))
	}
	return nil
}

func (e *env) token() (string, error) {
	t := e.identity.Token()
	if t == "" {
		return "", fmt.Errorf("%w: run `fileshare login` first", identity.ErrNotLoggedIn)
	}
	return t, nil
}

// prompt reads one line from the command input when value is empty.
func (e *env) prompt(value, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprintf(e.deps.Out, "%s: ", label)

	line, err := e.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("%s is required", strings.ToLower(label))
	}
	return line, nil
}

// apiError turns a 401 from a protected call into a hint to log in again.
func apiError(err error) error {
	if errors.Is(err, api.ErrUnauthorized) {
		return fmt.Errorf("session expired or revoked: run `fileshare login`")
	}
	return err
}
