// Command fwconvert translates firewall configurations between Cisco ASA,
// Check Point, Fortinet FortiGate, and Palo Alto Networks PAN-OS. Grounded
// on the newtron CLI's cobra command-tree shape in cmd/newtron/main.go.
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fwconvert/fwconvert/analyzer"
	"github.com/fwconvert/fwconvert/generator"
	_ "github.com/fwconvert/fwconvert/generator/asa"
	_ "github.com/fwconvert/fwconvert/generator/checkpoint"
	_ "github.com/fwconvert/fwconvert/generator/fortinet"
	_ "github.com/fwconvert/fwconvert/generator/paloalto"
	"github.com/fwconvert/fwconvert/internal/cliutil"
	"github.com/fwconvert/fwconvert/internal/config"
	"github.com/fwconvert/fwconvert/internal/convert"
	"github.com/fwconvert/fwconvert/internal/logging"
	"github.com/fwconvert/fwconvert/mapper"
	"github.com/fwconvert/fwconvert/parser"
	_ "github.com/fwconvert/fwconvert/parser/asa"
	_ "github.com/fwconvert/fwconvert/parser/checkpoint"
	_ "github.com/fwconvert/fwconvert/parser/fortinet"
	_ "github.com/fwconvert/fwconvert/parser/paloalto"
)

// App holds CLI state shared across subcommands, the way newtron's App
// struct threads a settings object and logger into every command's RunE.
type App struct {
	settings   config.Settings
	configPath string
	logLevel   string
	jsonLogs   string
}

func main() {
	app := &App{}
	if err := app.rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *App) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fwconvert",
		Short:         "Translate firewall configurations between vendor syntaxes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.settings = settings
			level := a.logLevel
			if level == "" {
				level = settings.LogLevel
			}
			if level != "" {
				logging.SetLogLevel(level)
			}
			if a.jsonLogs == "true" || settings.JSONLogs {
				logging.SetJSONFormat(true)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "optional YAML settings file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.jsonLogs, "json-logs", "", "emit JSON log lines (true/false)")

	root.AddCommand(a.convertCmd())
	root.AddCommand(a.analyzeCmd())
	root.AddCommand(a.vendorsCmd())
	return root
}

func (a *App) convertCmd() *cobra.Command {
	var source, target, input, output, hostname, vdom string
	var standalone bool
	var mapFile string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Parse a source config and emit an equivalent target config",
		RunE: func(cmd *cobra.Command, args []string) error {
			if source == "" {
				source = a.settings.DefaultSource
			}
			if target == "" {
				target = a.settings.DefaultTarget
			}
			if source == "" || target == "" {
				return fmt.Errorf("convert: --source and --target are required (or set default_source/default_target in --config)")
			}

			data, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("convert: reading %s: %w", input, err)
			}

			m := mapper.Mapping{Interfaces: a.settings.Interfaces, Zones: a.settings.Zones}
			if mapFile != "" {
				extra, err := config.Load(mapFile)
				if err != nil {
					return err
				}
				m = mapper.Mapping{Interfaces: extra.Interfaces, Zones: extra.Zones}
			}

			req := convert.Request{
				SourceVendor: parser.Vendor(source),
				TargetVendor: parser.Vendor(target),
				Inputs:       []parser.Input{{Role: "config", Data: data}},
				Mapping:      m,
				Options: generator.Options{
					Hostname:   hostname,
					VDOM:       vdom,
					Standalone: standalone,
				},
			}

			res, err := convert.Run(cmd.Context(), req)
			if err != nil {
				return err
			}
			for _, w := range res.Warnings {
				logging.WithOperation(w.Category).Warn(w.Message)
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(res.Output)
				return err
			}
			return os.WriteFile(output, res.Output, 0o644)
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "source vendor: asa, checkpoint, fortinet, paloalto")
	cmd.Flags().StringVar(&target, "target", "", "target vendor: asa, checkpoint, fortinet, paloalto")
	cmd.Flags().StringVar(&input, "input", "", "path to the source config export")
	cmd.Flags().StringVar(&output, "output", "-", "path to write the generated config, or - for stdout")
	cmd.Flags().StringVar(&hostname, "hostname", "", "hostname to emit into the target config, if supported")
	cmd.Flags().StringVar(&vdom, "vdom", "", "FortiGate VDOM to scope output to")
	cmd.Flags().BoolVar(&standalone, "standalone", false, "emit PAN-OS output without a Panorama device-group prefix")
	cmd.Flags().StringVar(&mapFile, "map", "", "YAML file with interface/zone renaming tables")
	cmd.MarkFlagRequired("input")
	return cmd
}

func (a *App) analyzeCmd() *cobra.Command {
	var source, input string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run pre-migration static analysis over a source config without generating output",
		RunE: func(cmd *cobra.Command, args []string) error {
			if source == "" {
				source = a.settings.DefaultSource
			}
			if source == "" {
				return fmt.Errorf("analyze: --source is required (or set default_source in --config)")
			}
			p, err := parser.Get(parser.Vendor(source))
			if err != nil {
				return err
			}
			data, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("analyze: reading %s: %w", input, err)
			}
			cfg, err := p.Parse(cmd.Context(), parser.Request{Inputs: []parser.Input{{Role: "config", Data: data}}})
			if err != nil {
				return err
			}
			result := analyzer.Analyze(cfg)
			fmt.Fprintln(cmd.OutOrStdout(), cliutil.Bold(result.Summary()))

			dup := cliutil.NewTable("KIND", "KEY", "OBJECTS")
			for _, d := range result.Duplicates {
				dup.Row(d.Kind, d.CanonicalKey, strings.Join(d.Names, ", "))
			}
			if out := dup.String(); out != "" {
				fmt.Fprintln(cmd.OutOrStdout(), "\nDuplicate objects:")
				fmt.Fprint(cmd.OutOrStdout(), out)
			}

			shadow := cliutil.NewTable("SHADOWED", "SHADOWED BY")
			for _, s := range result.Shadowed {
				shadow.Row(s.ShadowedName, s.ShadowerName)
			}
			if out := shadow.String(); out != "" {
				fmt.Fprintln(cmd.OutOrStdout(), "\nShadowed rules:")
				fmt.Fprint(cmd.OutOrStdout(), out)
			}

			risks := cliutil.NewTable("SEVERITY", "RULE", "REASON")
			for _, r := range result.Risks {
				risks.Row(cliutil.Severity(string(r.Severity)), r.RuleName, r.Reason)
			}
			if out := risks.String(); out != "" {
				fmt.Fprintln(cmd.OutOrStdout(), "\nSecurity risks:")
				fmt.Fprint(cmd.OutOrStdout(), out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "source vendor: asa, checkpoint, fortinet, paloalto")
	cmd.Flags().StringVar(&input, "input", "", "path to the source config export")
	cmd.MarkFlagRequired("input")
	return cmd
}

func (a *App) vendorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vendors",
		Short: "List every supported source and target vendor",
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl := cliutil.NewTable("VENDOR", "PARSE", "GENERATE")
			parsable := map[parser.Vendor]struct{}{}
			for _, v := range parser.Supported() {
				parsable[v] = struct{}{}
			}
			generatable := map[parser.Vendor]struct{}{}
			for _, v := range generator.Supported() {
				generatable[v] = struct{}{}
			}
			seen := map[string]struct{}{}
			names := make([]string, 0, len(parsable)+len(generatable))
			for v := range parsable {
				if _, ok := seen[string(v)]; !ok {
					seen[string(v)] = struct{}{}
					names = append(names, string(v))
				}
			}
			for v := range generatable {
				if _, ok := seen[string(v)]; !ok {
					seen[string(v)] = struct{}{}
					names = append(names, string(v))
				}
			}
			sort.Strings(names)
			for _, name := range names {
				v := parser.Vendor(name)
				_, canParse := parsable[v]
				_, canGenerate := generatable[v]
				tbl.Row(name, yesNo(canParse), yesNo(canGenerate))
			}
			fmt.Fprint(cmd.OutOrStdout(), tbl.String())
			return nil
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

