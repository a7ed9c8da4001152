package app

import (
	"fmt"
	"strings"

	calendarlink "github.com/agis/calendar-link"
	"github.com/agis/calendar-link/internal/contract"
	"github.com/agis/calendar-link/internal/output"
	"github.com/spf13/cobra"
)

func newVersionCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !flagValueChanged(cmd, "json") && !flagValueChanged(cmd, "jsonl") {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "calendar-link %s\n", BuildVersionString())
				return err
			}
			p, _, err := buildContext(cmd, opts, "version")
			if err != nil {
				return err
			}
			return p.Success(currentBuildInfo(), nil, nil)
		},
	}
}

var providerInfo = map[calendarlink.Provider]contract.ProviderInfo{
	calendarlink.ProviderGoogle:    {Aliases: []string{"gcal"}, Output: "https://calendar.google.com/calendar/render", Times: "utc"},
	calendarlink.ProviderOutlook:   {Aliases: []string{"outlook.com"}, Output: "https://outlook.live.com/calendar/0/deeplink/compose", Times: "local"},
	calendarlink.ProviderOffice365: {Aliases: []string{"office", "o365"}, Output: "https://outlook.office.com/calendar/0/deeplink/compose", Times: "local"},
	calendarlink.ProviderYahoo:     {Output: "https://calendar.yahoo.com/", Times: "utc"},
	calendarlink.ProviderICS:       {Aliases: []string{"ical", "calendar-file"}, Output: strings.TrimSuffix(calendarlink.CalendarFilePrefix, ","), Times: "utc"},
}

func newProvidersCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List supported providers",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			p, _, err := buildContext(c, opts, "providers")
			if err != nil {
				return err
			}
			items := make([]contract.ProviderInfo, 0, len(calendarlink.Providers()))
			for _, pr := range calendarlink.Providers() {
				info := providerInfo[pr]
				info.Name = string(pr)
				items = append(items, info)
			}
			if p.EffectiveSuccessMode() == output.ModePlain && len(p.Fields) == 0 {
				for _, it := range items {
					if _, err := fmt.Fprintf(c.OutOrStdout(), "%s\t%s\t%s\n", it.Name, it.Times, it.Output); err != nil {
						return err
					}
				}
				return nil
			}
			return p.Success(items, map[string]any{"count": len(items)}, nil)
		},
	}
}

func newCompletionCmd(root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "completion <bash|zsh|fish|powershell>",
		Short: "Generate shell completion scripts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shell := strings.ToLower(args[0])
			switch shell {
			case "bash":
				return root.GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return root.GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return root.GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return root.GenPowerShellCompletion(cmd.OutOrStdout())
			default:
				return Wrap(2, fmt.Errorf("unsupported shell: %s", shell))
			}
		},
	}
}
