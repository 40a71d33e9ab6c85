package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cli "github.com/blimu-dev/asyncapi-gen/internal/cli"
	"github.com/blimu-dev/asyncapi-gen/pkg/logger"
)

const defaultRegistryURL = "http://redpanda:8081"

func main() {
	root := &cobra.Command{
		Use:           "asyncapi-gen",
		Short:         "Generate AsyncAPI documents from Avro schemas",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, asJSON, source, err := logger.FlagsFromCommand(cmd)
			if err != nil {
				return err
			}
			l, err := logger.Setup(level, asJSON, source)
			if err != nil {
				return err
			}
			cmd.SetContext(logger.ContextWithLogger(cmd.Context(), l))
			return nil
		},
	}
	root.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error, disabled)")
	root.PersistentFlags().Bool("log-json", false, "Log as JSON")
	root.PersistentFlags().Bool("log-source", false, "Include source location in logs")

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newConvertCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newCheckCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newGenerateCmd() *cobra.Command {
	var configPath string
	var document string
	var fb cli.FallbackParams

	cmd := &cobra.Command{
		Use:       "generate [producer|consumer]",
		Short:     "Generate AsyncAPI documents",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"producer", "consumer"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if fb.Role != "" && fb.Role != args[0] {
					return fmt.Errorf("role %q conflicts with --role %q", args[0], fb.Role)
				}
				fb.Role = args[0]
			}
			return cli.RunGenerate(cmd.Context(), cli.RunGenerateParams{
				ConfigPath: configPath,
				Document:   document,
				Fallback:   fb,
				Stdout:     cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to asyncapigen.yaml config")
	cmd.Flags().StringVar(&document, "document", "", "Generate only the named document from config")
	// Fallback single-document flags
	cmd.Flags().StringVar(&fb.Role, "role", "", "Document role (producer or consumer)")
	cmd.Flags().StringVarP(&fb.Schema, "schema", "s", "", "Avro schema file (.avsc)")
	cmd.Flags().StringVar(&fb.Subject, "subject", "", "Schema registry subject (defaults to <channel>-value)")
	cmd.Flags().StringVar(&fb.Channel, "channel", "", "Channel name (defaults to the subject's topic, else the record name in kebab-case)")
	cmd.Flags().StringVar(&fb.RegistryURL, "registry-url", defaultRegistryURL, "Schema registry URL")
	cmd.Flags().StringVar(&fb.Payload, "payload", "", "Payload mode (ref, inline or avro)")
	cmd.Flags().BoolVar(&fb.Fetch, "fetch", false, "Fetch the schema from the registry, falling back to --schema")
	cmd.Flags().BoolVar(&fb.Inline, "inline", false, "Fetch the schema from the registry and embed it (same as --payload avro --fetch)")
	cmd.Flags().BoolVar(&fb.Strict, "strict", false, "Reject schemas that are not valid Avro")
	cmd.Flags().StringVarP(&fb.Format, "format", "f", "", "Output format (json, yaml or markdown)")
	cmd.Flags().StringVarP(&fb.Output, "out", "o", "", "Output file (stdout when empty)")
	cmd.Flags().StringVar(&fb.Title, "title", "", "Document title")

	return cmd
}

func newConvertCmd() *cobra.Command {
	var p cli.RunConvertParams
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert an Avro schema to JSON Schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Stdout = cmd.OutOrStdout()
			return cli.RunConvert(cmd.Context(), p)
		},
	}
	cmd.Flags().StringVarP(&p.Schema, "schema", "s", "", "Avro schema file (.avsc)")
	cmd.Flags().BoolVar(&p.Strict, "strict", false, "Reject schemas that are not valid Avro")
	cmd.Flags().StringVarP(&p.Format, "format", "f", "json", "Output format (json or yaml)")
	cmd.Flags().StringVarP(&p.Output, "out", "o", "", "Output file (stdout when empty)")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var schema string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an Avro schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunValidate(cmd.Context(), schema)
		},
	}
	cmd.Flags().StringVarP(&schema, "schema", "s", "", "Avro schema file (.avsc)")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

func newCheckCmd() *cobra.Command {
	var p cli.RunCheckParams
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check a JSON message against the JSON Schema of an Avro schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunCheck(cmd.Context(), p)
		},
	}
	cmd.Flags().StringVarP(&p.Schema, "schema", "s", "", "Avro schema file (.avsc)")
	cmd.Flags().StringVarP(&p.Message, "message", "m", "-", "JSON message file (- for stdin)")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}
