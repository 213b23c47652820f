package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/peterbourgon/ff/v4"

	"github.com/MrJamesThe3rd/tally/internal/app"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/money"
	"github.com/MrJamesThe3rd/tally/internal/plan"
)

func (c *cli) planCommand(parent *ff.FlagSet) *ff.Command {
	fs := ff.NewFlagSet("plan").SetParent(parent)

	return &ff.Command{
		Name:      "plan",
		Usage:     "tally plan [add|inc|dec|rm|clear|finalize] ...",
		ShortHelp: "plan what to buy before going to the shop",
		Flags:     fs,
		Exec: c.withApp(func(_ context.Context, a *app.App, _ []string) error {
			printPlan(a.Plan.Items())
			return nil
		}),
		Subcommands: []*ff.Command{
			c.planAddCommand(fs),
			c.planAdjustCommand(fs, "inc", 1),
			c.planAdjustCommand(fs, "dec", -1),
			c.planRemoveCommand(fs),
			c.planClearCommand(fs),
			c.planFinalizeCommand(fs),
		},
	}
}

func (c *cli) planAddCommand(parent *ff.FlagSet) *ff.Command {
	fs := ff.NewFlagSet("add").SetParent(parent)
	qty := fs.IntLong("qty", 1, "quantity")

	return &ff.Command{
		Name:      "add",
		Usage:     "tally plan add NAME... [--qty N]",
		ShortHelp: "put an item at the top of the plan",
		Flags:     fs,
		Exec: c.withApp(func(ctx context.Context, a *app.App, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("%w: plan add needs a name", errUsage)
			}

			item, err := a.Plan.Add(ctx, strings.Join(args, " "), *qty)
			if err != nil {
				return err
			}

			fmt.Printf("planned %d x %s\n", item.Quantity, item.Name)

			return nil
		}),
	}
}

func (c *cli) planAdjustCommand(parent *ff.FlagSet, name string, sign int) *ff.Command {
	fs := ff.NewFlagSet(name).SetParent(parent)
	by := fs.IntLong("by", 1, "amount to change the quantity by")

	help := "raise an item's quantity"
	if sign < 0 {
		help = "lower an item's quantity, never below 1"
	}

	return &ff.Command{
		Name:      name,
		Usage:     fmt.Sprintf("tally plan %s ID|NAME [--by N]", name),
		ShortHelp: help,
		Flags:     fs,
		Exec: c.withApp(func(ctx context.Context, a *app.App, args []string) error {
			item, err := findPlanned(a.Plan, args)
			if err != nil {
				return err
			}

			updated, err := a.Plan.Adjust(ctx, item.ID, sign*max(*by, 1))
			if err != nil {
				return err
			}

			fmt.Printf("%s: %d\n", updated.Name, updated.Quantity)

			return nil
		}),
	}
}

func (c *cli) planRemoveCommand(parent *ff.FlagSet) *ff.Command {
	return &ff.Command{
		Name:      "rm",
		Usage:     "tally plan rm ID|NAME",
		ShortHelp: "drop an item from the plan",
		Flags:     ff.NewFlagSet("rm").SetParent(parent),
		Exec: c.withApp(func(ctx context.Context, a *app.App, args []string) error {
			item, err := findPlanned(a.Plan, args)
			if err != nil {
				return err
			}

			if err := a.Plan.Remove(ctx, item.ID); err != nil {
				return err
			}

			fmt.Printf("removed %s\n", item.Name)

			return nil
		}),
	}
}

func (c *cli) planClearCommand(parent *ff.FlagSet) *ff.Command {
	fs := ff.NewFlagSet("clear").SetParent(parent)
	yes := fs.BoolLong("yes", "confirm deleting every planned item")

	return &ff.Command{
		Name:      "clear",
		Usage:     "tally plan clear --yes",
		ShortHelp: "delete every planned item",
		Flags:     fs,
		Exec: c.withApp(func(ctx context.Context, a *app.App, _ []string) error {
			if !*yes {
				return fmt.Errorf("%w: plan clear needs --yes", errUsage)
			}

			if err := a.Plan.ClearAll(ctx); err != nil {
				return err
			}

			fmt.Println("plan cleared")

			return nil
		}),
	}
}

func (c *cli) planFinalizeCommand(parent *ff.FlagSet) *ff.Command {
	fs := ff.NewFlagSet("finalize").SetParent(parent)

	var (
		mode   = fs.StringLong("mode", string(plan.ModeSum), "sum or budget")
		budget = fs.StringLong("budget", "", "ceiling to set for the budget mode")
	)

	return &ff.Command{
		Name:      "finalize",
		Usage:     "tally plan finalize [--mode sum|budget] [--budget AMOUNT]",
		ShortHelp: "start shopping for the plan",
		Flags:     fs,
		Exec: c.withApp(func(ctx context.Context, a *app.App, _ []string) error {
			m, err := plan.ParseMode(*mode)
			if err != nil {
				return err
			}

			h, err := a.Plan.Finalize(m)
			if err != nil {
				return err
			}

			if h.Mode == plan.ModeBudget {
				if err := applyPlanBudget(ctx, a.Ledger, *budget); err != nil {
					return err
				}
			}

			printShoppingChecklist(h, a.Ledger)

			return nil
		}),
	}
}

// applyPlanBudget sets the ceiling from --budget. Without the flag an existing ceiling is kept.
func applyPlanBudget(ctx context.Context, l *ledger.Service, raw string) error {
	if raw == "" {
		if _, ok := l.Ceiling(); ok {
			return nil
		}

		return fmt.Errorf("%w: the budget mode needs --budget when no ceiling is set", errUsage)
	}

	amount, err := money.Parse(raw)
	if err != nil {
		return &ledger.ValidationError{Field: "ceiling", Message: err.Error()}
	}

	return l.SetBudgetCeiling(ctx, &amount)
}

// findPlanned accepts an id prefix or an item name, ignoring case.
func findPlanned(p *plan.Service, args []string) (plan.Item, error) {
	if len(args) == 0 {
		return plan.Item{}, fmt.Errorf("%w: expected an item id or name", errUsage)
	}

	query := strings.ToLower(strings.Join(args, " "))

	var matches []plan.Item

	for _, item := range p.Items() {
		if strings.ToLower(item.Name) == query {
			return item, nil
		}

		if strings.HasPrefix(item.ID.String(), query) {
			matches = append(matches, item)
		}
	}

	switch len(matches) {
	case 0:
		return plan.Item{}, plan.ErrNotFound
	case 1:
		return matches[0], nil
	}

	return plan.Item{}, fmt.Errorf("%w: id prefix %q is ambiguous", errUsage, query)
}

func printPlan(items []plan.Item) {
	if len(items) == 0 {
		fmt.Println("nothing planned")
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			return lipgloss.NewStyle()
		}).
		Headers("ID", "Qty", "Name")

	for _, item := range items {
		t.Row(item.ID.String()[:8], strconv.Itoa(item.Quantity), item.Name)
	}

	fmt.Println(t.Render())
}

func printShoppingChecklist(h plan.Handoff, l *ledger.Service) {
	left := h.Outstanding(l.Items())

	fmt.Printf("shopping in %s mode, %d of %d planned items still to buy\n", h.Mode, len(left), len(h.Items))

	for _, item := range left {
		fmt.Printf("  tally add --name %q --qty %d --price PRICE\n", item.Name, item.Quantity)
	}

	if h.Mode == plan.ModeBudget {
		printBudget(l)
	}
}
