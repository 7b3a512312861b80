package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	listrender "github.com/localpad/localpad/internal/adapters/render/list"
	"github.com/localpad/localpad/internal/application"
	"github.com/localpad/localpad/internal/domain"
)

func newAppsCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "apps",
		Short: "List available pads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, profile := range app.profiles {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", profile.Name, profile.Title)
			}
			return nil
		},
	}
}

func newAddCmd(app *app) *cobra.Command {
	var appName string
	var setValues []string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a record to a pad",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile, err := app.profile(appName)
			if err != nil {
				return err
			}

			fields, err := parseSetFlags(profile, setValues)
			if err != nil {
				return err
			}
			if err := profile.Validate(fields); err != nil {
				return err
			}

			store, err := app.storeFor(cmd.Context(), profile)
			if err != nil {
				return err
			}

			rec, err := store.Add(cmd.Context(), fields)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), rec.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&appName, "app", "", "Pad name (see `pad apps`)")
	cmd.Flags().StringArrayVar(&setValues, "set", nil, "Field assignment key=value (repeatable)")
	_ = cmd.MarkFlagRequired("app")
	_ = cmd.MarkFlagRequired("set")

	return cmd
}

func newEditCmd(app *app) *cobra.Command {
	var appName string
	var setValues []string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Merge field changes into an existing record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := app.profile(appName)
			if err != nil {
				return err
			}

			fields, err := parseSetFlags(profile, setValues)
			if err != nil {
				return err
			}
			if err := profile.ValidatePartial(fields); err != nil {
				return err
			}

			store, err := app.storeFor(cmd.Context(), profile)
			if err != nil {
				return err
			}

			rec, err := store.Update(cmd.Context(), domain.RecordID(args[0]), fields)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), rec.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&appName, "app", "", "Pad name")
	cmd.Flags().StringArrayVar(&setValues, "set", nil, "Field assignment key=value (repeatable)")
	_ = cmd.MarkFlagRequired("app")
	_ = cmd.MarkFlagRequired("set")

	return cmd
}

func newRemoveCmd(app *app) *cobra.Command {
	var appName string

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a record (no-op if it does not exist)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := app.profile(appName)
			if err != nil {
				return err
			}

			store, err := app.storeFor(cmd.Context(), profile)
			if err != nil {
				return err
			}

			return store.Remove(cmd.Context(), domain.RecordID(args[0]))
		},
	}

	cmd.Flags().StringVar(&appName, "app", "", "Pad name")
	_ = cmd.MarkFlagRequired("app")

	return cmd
}

func newListCmd(app *app) *cobra.Command {
	var (
		appName    string
		filters    []string
		search     string
		dateField  string
		dateFrom   string
		dateTo     string
		sortKey    string
		sortDesc   bool
		page       int
		pageSize   int
		asJSON     bool
		columnsCSV string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records, filtered, sorted, and paginated",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile, err := app.profile(appName)
			if err != nil {
				return err
			}

			spec, err := buildSpec(profile, filters, search, sortKey, sortDesc)
			if err != nil {
				return err
			}
			if err := applyDateRange(&spec, dateField, dateFrom, dateTo); err != nil {
				return err
			}

			store, err := app.storeFor(cmd.Context(), profile)
			if err != nil {
				return err
			}

			result := store.Project(spec, page, pageSize)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			var columns []string
			if columnsCSV != "" {
				columns = strings.Split(columnsCSV, ",")
			}

			rendered, err := listrender.Render(result, listrender.RenderOptions{
				Title:   profile.Title,
				Columns: columns,
				Page:    page,
			})
			if err != nil {
				return fmt.Errorf("render listing: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return nil
		},
	}

	cmd.Flags().StringVar(&appName, "app", "", "Pad name")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "Equality filter key=value (repeatable, ANDed)")
	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive text search")
	cmd.Flags().StringVar(&dateField, "date-field", "", "Date field the --from/--to bounds apply to")
	cmd.Flags().StringVar(&dateFrom, "from", "", "Earliest date to include (RFC 3339 or yyyy-mm-dd)")
	cmd.Flags().StringVar(&dateTo, "to", "", "Latest date to include (RFC 3339 or yyyy-mm-dd)")
	cmd.Flags().StringVar(&sortKey, "sort", "", "Sort field (default: the pad's default sort)")
	cmd.Flags().BoolVar(&sortDesc, "desc", false, "Sort descending")
	cmd.Flags().IntVar(&page, "page", 1, "Page number (1-based)")
	cmd.Flags().IntVar(&pageSize, "size", 0, "Page size (0 = everything on one page)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().StringVar(&columnsCSV, "columns", "", "Comma-separated fields to show")
	_ = cmd.MarkFlagRequired("app")

	return cmd
}

func buildSpec(profile application.Profile, filters []string, search, sortKey string, sortDesc bool) (domain.Spec, error) {
	spec := domain.Spec{
		Search:       search,
		SearchFields: profile.SearchFields,
		SortKey:      sortKey,
		SortDesc:     sortDesc,
	}

	if spec.SortKey == "" {
		spec.SortKey = profile.DefaultSort
		if !sortDesc {
			spec.SortDesc = profile.SortDesc
		}
	}

	for _, raw := range filters {
		key, value, ok := strings.Cut(raw, "=")
		if !ok {
			return domain.Spec{}, fmt.Errorf("invalid --filter %q, expected key=value", raw)
		}
		if spec.Equals == nil {
			spec.Equals = map[string]string{}
		}
		spec.Equals[key] = value
	}

	return spec, nil
}

func applyDateRange(spec *domain.Spec, field, from, to string) error {
	if field == "" {
		if from != "" || to != "" {
			return fmt.Errorf("--from/--to need --date-field")
		}
		return nil
	}

	spec.DateField = field
	if from != "" {
		at, ok := domain.ParseInstant(from)
		if !ok {
			return fmt.Errorf("invalid --from %q, expected RFC 3339 or yyyy-mm-dd", from)
		}
		spec.DateFrom = at
	}
	if to != "" {
		at, ok := domain.ParseInstant(to)
		if !ok {
			return fmt.Errorf("invalid --to %q, expected RFC 3339 or yyyy-mm-dd", to)
		}
		spec.DateTo = at
	}

	return nil
}

func parseSetFlags(profile application.Profile, setValues []string) (domain.Fields, error) {
	fields := domain.Fields{}

	for _, raw := range setValues {
		key, value, ok := strings.Cut(raw, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set %q, expected key=value", raw)
		}
		fields[key] = coerceFieldValue(profile, key, value)
	}

	return fields, nil
}

// coerceFieldValue turns CLI text into the scalar the profile declares.
// Unknown fields stay strings; validation rejects them with a better
// message than a parse error would give.
func coerceFieldValue(profile application.Profile, key, value string) any {
	for _, def := range profile.Fields {
		if def.Name != key {
			continue
		}
		switch def.Kind {
		case application.KindNumber:
			if n, err := strconv.ParseFloat(value, 64); err == nil {
				return n
			}
		case application.KindBool:
			if b, err := strconv.ParseBool(value); err == nil {
				return b
			}
		}
		break
	}
	return value
}
