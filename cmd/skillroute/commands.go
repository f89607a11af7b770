package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zen-systems/skillroute/pkg/diagnostics"
	"github.com/zen-systems/skillroute/pkg/router"
	"github.com/zen-systems/skillroute/pkg/skill"
)

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "skillroute",
		Short: "Select and compose skill documents for an agent goal",
		Long: `Skillroute decides which skill documents apply to a user goal and
	composes them, after the always-on document, into one prompt block.

	Keyword mode matches trigger phrases. Model mode asks an inference
	endpoint and accepts only strictly valid replies, falling back to the
	always-on document alone when every attempt fails.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "path to router config file")
	flags.StringVar(&a.modeFlag, "mode", "", "routing mode: keyword or model")
	flags.IntVar(&a.attemptsFlag, "attempts", router.DefaultMaxAttempts, "max classification attempts in model mode")
	flags.StringVar(&a.adapterFlag, "adapter", "", "classifier adapter (openai, anthropic, google, deepseek, mock)")
	flags.StringVar(&a.modelFlag, "model", "", "classifier model or alias")
	flags.StringVar(&a.skillsDirFlag, "skills-dir", "", "directory holding <skill>.md documents")
	flags.StringVar(&a.diagnosticsFlag, "diagnostics", "", "append one JSON line per routing call to this file")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(routeCmd(a))
	rootCmd.AddCommand(classifyCmd(a))
	rootCmd.AddCommand(skillsCmd(a))
	rootCmd.AddCommand(promptCmd())
	rootCmd.AddCommand(modelsCmd(a))
	rootCmd.AddCommand(validateCmd(a))
	rootCmd.AddCommand(statsCmd())

	return rootCmd
}

func (a *app) route(cmd *cobra.Command, args []string) (string, *router.Result, error) {
	goal, err := readGoal(cmd, args)
	if err != nil {
		return "", nil, err
	}
	s, err := a.openSession(cmd, true)
	if err != nil {
		return "", nil, err
	}
	defer s.Close()

	return s.router.Route(cmd.Context(), router.Request{
		Goal:        goal,
		Mode:        router.Mode(s.cfg.Router.Mode),
		MaxAttempts: s.cfg.Router.Attempts(),
	})
}

func routeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "route [goal]",
		Short: "Print the composed skill block for a goal",
		Long: `Classifies the goal and prints the composed skill block. The goal is
	read from stdin when no arguments are given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			block, _, err := a.route(cmd, args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), block)
			return nil
		},
	}
}

func classifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "classify [goal]",
		Short: "Print the routing result for a goal as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, res, err := a.route(cmd, args)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
}

func skillsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "skills",
		Short: "List the skill catalog, triggers and load status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(cmd, false)
			if err != nil {
				return err
			}
			defer s.Close()

			table, err := s.cfg.Router.TriggerTable()
			if err != nil {
				return err
			}
			keyword, err := router.NewKeywordClassifier(table)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SKILL\tCATEGORY\tLOADED\tTRIGGERS")
			for _, def := range skill.Catalog() {
				loaded := "no"
				if s.store.Has(def.Name) {
					loaded = "yes"
				}
				triggers := "-"
				if def.Name == skill.AlwaysOn {
					triggers = "(always)"
				} else if t := keyword.Triggers(def.Name); len(t) > 0 {
					triggers = formatList(t)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", def.Name, def.Category, loaded, triggers)
			}
			return w.Flush()
		},
	}
}

func promptCmd() *cobra.Command {
	var feedback string

	cmd := &cobra.Command{
		Use:   "prompt [goal]",
		Short: "Print the classifier prompt sent in model mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			goal, err := readGoal(cmd, args)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), router.BuildClassifierPrompt(goal, feedback))
			return nil
		},
	}
	cmd.Flags().StringVar(&feedback, "feedback", "", "render a retry prompt quoting this validation error")
	return cmd
}

func modelsCmd(a *app) *cobra.Command {
	var resolveFlag bool

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List classifier adapters, models, and aliases",
		Long: `Lists adapters and their available models.

	Use --resolve to show aliases and what they resolve to.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			aliases := cfg.Aliases

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			if resolveFlag {
				fmt.Fprintln(w, "ALIAS\tMODEL")
				for _, alias := range aliases.ListAliases() {
					fmt.Fprintf(w, "%s\t%s\n", alias, aliases.Resolve(alias))
				}
				return w.Flush()
			}

			fmt.Fprintln(w, "PROVIDER\tMODELS\tSTATUS")
			for _, provider := range aliases.ListProviders() {
				status := "no key"
				if cfg.HasAdapter(provider) {
					status = "ready"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", provider, formatList(aliases.GetProviderModels(provider)), status)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&resolveFlag, "resolve", false, "show aliases and what they resolve to")
	return cmd
}

func validateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate router config and skill documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(cmd, false)
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			var problems []string
			if err := s.cfg.Aliases.ValidateClassifier(s.cfg.Router); err != nil {
				problems = append(problems, err.Error())
			}
			for _, def := range skill.Catalog() {
				if !s.store.Has(def.Name) {
					problems = append(problems, fmt.Sprintf("skill %s: no document (%s)", def.Name, skill.FileName(def.Name)))
				}
			}

			if len(problems) == 0 {
				fmt.Fprintln(out, "Router config and skill documents are valid.")
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Found %d problems:\n", len(problems))
			for _, p := range problems {
				fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", p)
			}
			return fmt.Errorf("validation failed")
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats [diagnostics.jsonl]",
		Short: "Summarize a diagnostics file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := diagnostics.ReadRecords(args[0])
			if err != nil {
				return err
			}
			sum, err := diagnostics.Summarize(records)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "calls\t%d\n", sum.Total)
			fmt.Fprintf(w, "failed\t%d\n", sum.Failed)
			fmt.Fprintf(w, "mean attempts\t%.2f\n", sum.MeanAttempts)
			for _, mode := range []router.Mode{router.ModeKeyword, router.ModeModel} {
				fmt.Fprintf(w, "mode %s\t%d\n", mode, sum.ByMode[mode])
			}
			names := make([]string, 0, len(sum.SkillCounts))
			for name := range sum.SkillCounts {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(w, "skill %s\t%d\n", name, sum.SkillCounts[name])
			}
			return w.Flush()
		},
	}
}
