package cli

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"orgtasks/internal/app"
	"orgtasks/internal/types"
)

type uploadPhotoOptions struct {
	Photo string
	Where []string
}

func newUploadPhotoCommand() *cobra.Command {
	opts := uploadPhotoOptions{}
	cmd := &cobra.Command{
		Use:   "upload-photo",
		Short: "Upload a profile photo for exactly one user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUploadPhoto(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Photo, "photo", "", "Path to the user's profile photo")
	cmd.Flags().StringArrayVar(&opts.Where, "where", nil, "Field=Value filter selecting the user (repeatable; omit for the default user)")
	_ = viper.BindPFlag("photo", cmd.Flags().Lookup("photo"))
	_ = viper.BindPFlag("where", cmd.Flags().Lookup("where"))
	return cmd
}

func runUploadPhoto(cmd *cobra.Command, opts uploadPhotoOptions) error {
	filters, err := parseWhereFilters(resolveStrings(cmd, opts.Where, "where", "where"))
	if err != nil {
		return err
	}
	service, err := newPlatformService()
	if err != nil {
		return err
	}

	ctx := operationContext(cmd)
	userID, err := service.ResolveUserID(ctx, filters)
	if err != nil {
		return err
	}
	result, err := service.UploadPhoto(ctx, app.UploadPhotoRequest{
		UserID:    userID,
		PhotoPath: resolveString(cmd, opts.Photo, "photo", "photo"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("profile photo set for user %s\n", result.UserID)
	return nil
}

// parseWhereFilters splits repeated Field=Value pairs, preserving their
// order so the generated query is stable.
func parseWhereFilters(raw []string) ([]types.FieldFilter, error) {
	filters := make([]types.FieldFilter, 0, len(raw))
	for _, pair := range raw {
		field, value, ok := strings.Cut(pair, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("where filter %q must be Field=Value", pair))
		}
		filters = append(filters, types.FieldFilter{Field: field, Value: strings.TrimSpace(value)})
	}
	return filters, nil
}
