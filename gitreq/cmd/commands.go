package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/byte4ever/gitreq/config"
	"github.com/byte4ever/gitreq/credential"
	"github.com/byte4ever/gitreq/git"
	"github.com/byte4ever/gitreq/gitreq"
	"github.com/byte4ever/gitreq/prompt"
	"github.com/byte4ever/gitreq/remote"
	"github.com/byte4ever/gitreq/remote/origin"
	"github.com/byte4ever/gitreq/resolver"
)

// globalFlags are shared by every sub-command.
type globalFlags struct {
	remoteName string
	configPath string
	verbose    bool
}

// session is what a command needs once flags are
// parsed: configuration, repository and origin URL.
type session struct {
	cfg    config.Config
	repo   *git.Repo
	origin string
}

func newRootCmd() *cobra.Command {
	var gf globalFlags

	root := &cobra.Command{
		Use:   "git-req <id>",
		Short: "Check out merge requests of the origin repository",
		Long: `git-req fetches the merge (or pull) request with the given id from the
origin remote into a local branch and checks it out.

GitHub, GitLab and Bitbucket are supported. The API token of a domain is
asked for once and stored in the global git config as req.<domain>.apikey.`,
		Example: `  git-req 42                 # check out request 42
  git-req list               # list open requests
  git-req list -o json       # ... as JSON`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			setupLogging(gf.verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf(
					"request id must be a positive number, got %q",
					args[0],
				)
			}

			ctx := cmd.Context()

			s, err := openSession(ctx, gf)
			if err != nil {
				return err
			}

			rm, err := s.resolve(ctx)
			if err != nil {
				return err
			}

			branch, err := gitreq.Checkout(ctx, rm, s.repo, id)
			if err != nil {
				return err
			}

			fmt.Fprintf(
				cmd.ErrOrStderr(),
				"switched to branch %s\n", branch,
			)

			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(
		&gf.remoteName, "remote", "r", "origin",
		"git remote to read the project from",
	)
	pf.StringVar(
		&gf.configPath, "config", "",
		"config file (default $XDG_CONFIG_HOME/git-req/config.toml)",
	)
	pf.BoolVarP(
		&gf.verbose, "verbose", "v", false,
		"log API calls and git commands",
	)

	root.AddCommand(
		newListCmd(&gf),
		newProjectIDCmd(&gf),
		newClearCmd(&gf),
	)

	return root
}

func newListCmd(gf *globalFlags) *cobra.Command {
	var (
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List open requests",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := gitreq.ParseOutput(output)
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			s, err := openSession(ctx, *gf)
			if err != nil {
				return err
			}

			rm, err := s.resolve(ctx)
			if err != nil {
				return err
			}

			if format == "" {
				format = s.cfg.Format
			}

			return gitreq.List(ctx, rm, cmd.OutOrStdout(), gitreq.ListOptions{
				Output: out,
				Format: format,
				Color:  colorEnabled(),
			})
		},
	}

	cmd.Flags().StringVarP(
		&output, "output", "o", "text",
		"output format: text, json or yaml",
	)
	cmd.Flags().StringVar(
		&format, "format", "",
		"line template for text output ({id}, {title}, {branch}, {description})",
	)

	return cmd
}

func newProjectIDCmd(gf *globalFlags) *cobra.Command {
	var set string

	cmd := &cobra.Command{
		Use:   "project-id",
		Short: "Print the project id, or store one with --set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			s, err := openSession(ctx, *gf)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("set") {
				domain, err := s.domain()
				if err != nil {
					return err
				}

				kind, _, err := s.resolver().Kind(domain)
				if err != nil {
					return err
				}

				return gitreq.SetProjectID(
					ctx, s.repo, kind, domain, set,
				)
			}

			rm, err := s.resolve(ctx)
			if err != nil {
				return err
			}

			id, err := rm.ProjectID(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), id)

			return nil
		},
	}

	cmd.Flags().StringVar(
		&set, "set", "",
		"store this project id for the origin's domain",
	)

	return cmd
}

func newClearCmd(gf *globalFlags) *cobra.Command {
	var token bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget the cached project id of the origin's domain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			s, err := openSession(ctx, *gf)
			if err != nil {
				return err
			}

			domain, err := s.domain()
			if err != nil {
				return err
			}

			return gitreq.Clear(
				ctx, s.repo, s.repo.Global(), domain, token,
			)
		},
	}

	cmd.Flags().BoolVar(
		&token, "token", false,
		"also remove the stored API token",
	)

	return cmd
}

func openSession(
	ctx context.Context,
	gf globalFlags,
) (*session, error) {
	cfg, err := loadConfig(gf.configPath)
	if err != nil {
		return nil, err
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}

	repo, err := git.Open(ctx, wd, gf.remoteName)
	if err != nil {
		return nil, err
	}

	raw, err := repo.OriginURL(ctx)
	if err != nil {
		return nil, err
	}

	return &session{cfg: cfg, repo: repo, origin: raw}, nil
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}

	return config.Load()
}

func (s *session) domain() (string, error) {
	o, err := origin.Parse(s.origin)
	if err != nil {
		return "", err
	}

	return o.Domain, nil
}

func (s *session) resolver() *resolver.Resolver {
	tokens := credential.NewResolver(
		credential.ConfigStore{Config: s.repo.Global()},
		prompt.NewTerminal(),
	)

	return resolver.New(resolver.Options{
		Config:   s.cfg,
		Settings: s.repo,
		Tokens:   tokens,
	})
}

func (s *session) resolve(ctx context.Context) (remote.Remote, error) {
	return s.resolver().Resolve(ctx, s.origin)
}

func colorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	fd := os.Stdout.Fd()

	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
