package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lazyconf/lazyconf/pkg/convert"
	"github.com/lazyconf/lazyconf/pkg/loader"
	"github.com/lazyconf/lazyconf/pkg/schema"
)

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <schema-file>",
		Short: "Validate a schema document",
		Long: `Validate a schema document: parse it and check it against the schema
rules (known scalar types, no key both required and optional, element
schemas on lists, defaults compatible with nullability).`,
		Example: `  lazyconf validate ./schema.yaml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			log.Info().Str("path", path).Msg("Validating schema")

			s, err := loader.LoadSchemaFile(path)
			if err != nil {
				return err
			}
			if err := schema.Validate(s, convert.Default().Has); err != nil {
				return err
			}

			fmt.Println("Schema is valid.")
			return nil
		},
	}
	return cmd
}
