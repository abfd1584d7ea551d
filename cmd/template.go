package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tallysheet/tally/internal/model"
	"github.com/tallysheet/tally/internal/timecalc"
)

var (
	templateAddStart    string
	templateAddEnd      string
	templateAddBreak    int
	templateAddRate     float64
	templateAddCurrency string
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage entry templates",
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved templates",
	Args:  cobra.NoArgs,
	RunE:  runTemplateList,
}

var templateAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Save a new template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateAdd,
}

var templateRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Delete a template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateRm,
}

func init() {
	templateAddCmd.Flags().StringVar(&templateAddStart, "start", "", "Default start time (HH:MM)")
	templateAddCmd.Flags().StringVar(&templateAddEnd, "end", "", "Default end time (HH:MM)")
	templateAddCmd.Flags().IntVar(&templateAddBreak, "break", 0, "Default break minutes")
	templateAddCmd.Flags().Float64Var(&templateAddRate, "rate", 0, "Default hourly rate")
	templateAddCmd.Flags().StringVar(&templateAddCurrency, "currency", "USD", "Default currency code")
	templateCmd.AddCommand(templateListCmd)
	templateCmd.AddCommand(templateAddCmd)
	templateCmd.AddCommand(templateRmCmd)
}

func runTemplateList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := newSession(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	templates, err := s.client.ListTemplates(ctx, s.user.ID)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if len(templates) == 0 {
		fmt.Println("No templates saved.")
		return nil
	}
	for _, t := range templates {
		span := "any time"
		if t.StartTime != "" {
			end := t.EndTime
			if end == "" {
				end = "open"
			}
			span = t.StartTime + "–" + end
		}
		fmt.Printf("%-20s%s, break %dm, %s %g/h\n",
			t.Name, span, t.BreakTime, t.Currency, t.HourlyRate)
	}
	return nil
}

func runTemplateAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := newSession(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	for _, clock := range []string{templateAddStart, templateAddEnd} {
		if clock == "" {
			continue
		}
		if _, err := timecalc.ParseClock(clock); err != nil {
			return err
		}
	}
	if !model.ValidCurrency(templateAddCurrency) {
		return fmt.Errorf("unsupported currency %q", templateAddCurrency)
	}

	created, err := s.client.CreateTemplate(ctx, model.Template{
		UserID:     s.user.ID,
		Name:       args[0],
		StartTime:  templateAddStart,
		EndTime:    templateAddEnd,
		BreakTime:  templateAddBreak,
		HourlyRate: templateAddRate,
		Currency:   templateAddCurrency,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	fmt.Printf("Saved template %q\n", created.Name)
	return nil
}

func runTemplateRm(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := newSession(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	tmpl, err := findTemplate(cmd, s, args[0])
	if err != nil {
		return err
	}
	if err := s.client.DeleteTemplate(ctx, tmpl.ID); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	fmt.Printf("Deleted template %q\n", tmpl.Name)
	return nil
}
