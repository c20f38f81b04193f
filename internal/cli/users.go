package cli

import (
	"github.com/aussiebroadwan/openjub/pkg/jubsdk"
	"github.com/spf13/cobra"
)

func newMeCmd(rt *runtime) *cobra.Command {
	var fields []string

	cmd := &cobra.Command{
		Use:   "me",
		Short: "Show your own directory record",
		Args:  cobra.NoArgs,
		RunE: rt.run(func(cmd *cobra.Command, args []string) error {
			if err := rt.requireToken(); err != nil {
				return err
			}
			resp, err := rt.session.GetMe(cmd.Context(), fields...)
			return rt.printResponse(cmd, resp, err)
		}),
	}

	cmd.Flags().StringSliceVarP(&fields, "fields", "f", nil, "Fields to return (comma separated)")
	return cmd
}

func newUserCmd(rt *runtime) *cobra.Command {
	var fields []string

	cmd := &cobra.Command{
		Use:   "user",
		Short: "Look up a single directory record",
	}
	cmd.PersistentFlags().StringSliceVarP(&fields, "fields", "f", nil, "Fields to return (comma separated)")

	lookup := func(get func(*jubsdk.Session, *cobra.Command, string) (*jubsdk.Response, error)) func(*cobra.Command, []string) error {
		return rt.run(func(cmd *cobra.Command, args []string) error {
			if err := rt.requireToken(); err != nil {
				return err
			}
			resp, err := get(rt.session, cmd, args[0])
			return rt.printResponse(cmd, resp, err)
		})
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "id <id>",
			Short: "Look up a user by id",
			Args:  cobra.ExactArgs(1),
			RunE: lookup(func(s *jubsdk.Session, cmd *cobra.Command, id string) (*jubsdk.Response, error) {
				return s.GetUserByID(cmd.Context(), id, fields...)
			}),
		},
		&cobra.Command{
			Use:   "name <username>",
			Short: "Look up a user by username",
			Args:  cobra.ExactArgs(1),
			RunE: lookup(func(s *jubsdk.Session, cmd *cobra.Command, name string) (*jubsdk.Response, error) {
				return s.GetUserByName(cmd.Context(), name, fields...)
			}),
		},
	)
	return cmd
}

func (rt *runtime) printResponse(cmd *cobra.Command, resp *jubsdk.Response, err error) error {
	if err != nil {
		return err
	}
	return rt.print(cmd, resp.Payload)
}
