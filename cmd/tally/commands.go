package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/peterbourgon/ff/v4"

	"github.com/MrJamesThe3rd/tally/internal/app"
	"github.com/MrJamesThe3rd/tally/internal/catalog"
	"github.com/MrJamesThe3rd/tally/internal/draft"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/money"
)

var errUsage = errors.New("invalid arguments")

func (c *cli) listCommand(parent *ff.FlagSet) *ff.Command {
	return &ff.Command{
		Name:      "list",
		Usage:     "tally list",
		ShortHelp: "show the items, total and remaining budget",
		Flags:     ff.NewFlagSet("list").SetParent(parent),
		Exec: c.withApp(func(_ context.Context, a *app.App, _ []string) error {
			printLedger(a.Ledger)
			return nil
		}),
	}
}

func (c *cli) addCommand(parent *ff.FlagSet) *ff.Command {
	fs := ff.NewFlagSet("add").SetParent(parent)

	var (
		barcode = fs.StringLong("barcode", "", "product barcode")
		name    = fs.StringLong("name", "", "product name")
		price   = fs.StringLong("price", "", "unit price, e.g. 12,50")
		qty     = fs.StringLong("qty", "1", "quantity")
		lookup  = fs.BoolLong("lookup", "fill name and price from the catalogs using --barcode")
	)

	return &ff.Command{
		Name:      "add",
		Usage:     "tally add --name NAME --price PRICE [--qty N] [--barcode CODE [--lookup]]",
		ShortHelp: "add an item to the list",
		Flags:     fs,
		Exec: c.withApp(func(ctx context.Context, a *app.App, _ []string) error {
			form := draft.New(draft.Fields{Barcode: *barcode, Name: *name, Price: *price, Quantity: *qty})

			if *lookup {
				if err := fillFromCatalog(ctx, a, form); err != nil {
					return err
				}
			}

			params, err := form.Params()
			if err != nil {
				return err
			}

			item, err := a.Ledger.Add(ctx, params)
			if err != nil {
				return err
			}

			fmt.Printf("added %s (%s)\n", item.Name, shortID(item))

			return nil
		}),
	}
}

// fillFromCatalog resolves the form's barcode; flags typed by the user win over catalog data.
func fillFromCatalog(ctx context.Context, a *app.App, form *draft.Form) error {
	typed := form.Fields()
	if strings.TrimSpace(typed.Barcode) == "" {
		return fmt.Errorf("%w: --lookup needs --barcode", errUsage)
	}

	ticket := form.BeginLookup()

	res, err := a.Resolver.Resolve(ctx, typed.Barcode)
	if err != nil {
		return err
	}

	form.Apply(ticket, res)
	reportResolution(res)

	merged := form.Fields()
	if typed.Name != "" {
		merged.Name = typed.Name
	}

	if typed.Price != "" {
		merged.Price = typed.Price
	}

	form.Set(merged)

	return nil
}

func (c *cli) editCommand(parent *ff.FlagSet) *ff.Command {
	fs := ff.NewFlagSet("edit").SetParent(parent)

	var (
		barcode = fs.StringLong("barcode", "", "new barcode")
		name    = fs.StringLong("name", "", "new name")
		price   = fs.StringLong("price", "", "new unit price")
		qty     = fs.StringLong("qty", "", "new quantity")
	)

	return &ff.Command{
		Name:      "edit",
		Usage:     "tally edit ID [--name NAME] [--price PRICE] [--qty N] [--barcode CODE]",
		ShortHelp: "change an item; omitted flags keep their value",
		Flags:     fs,
		Exec: c.withApp(func(ctx context.Context, a *app.App, args []string) error {
			item, err := findItem(a.Ledger, args)
			if err != nil {
				return err
			}

			form := draft.FromItem(item)
			fields := form.Fields()

			for flagValue, field := range map[*string]*string{barcode: &fields.Barcode, name: &fields.Name, price: &fields.Price, qty: &fields.Quantity} {
				if *flagValue != "" {
					*field = *flagValue
				}
			}

			form.Set(fields)

			params, err := form.Params()
			if err != nil {
				return err
			}

			updated, err := a.Ledger.Update(ctx, item.ID, params)
			if err != nil {
				return err
			}

			fmt.Printf("updated %s: %s x %d\n", updated.Name, money.Format(updated.UnitPrice), updated.Quantity)

			return nil
		}),
	}
}

func (c *cli) removeCommand(parent *ff.FlagSet) *ff.Command {
	return &ff.Command{
		Name:      "rm",
		Usage:     "tally rm ID",
		ShortHelp: "remove an item",
		Flags:     ff.NewFlagSet("rm").SetParent(parent),
		Exec: c.withApp(func(ctx context.Context, a *app.App, args []string) error {
			item, err := findItem(a.Ledger, args)
			if err != nil {
				return err
			}

			if err := a.Ledger.Remove(ctx, item.ID); err != nil {
				return err
			}

			fmt.Printf("removed %s\n", item.Name)

			return nil
		}),
	}
}

func (c *cli) budgetCommand(parent *ff.FlagSet) *ff.Command {
	fs := ff.NewFlagSet("budget").SetParent(parent)
	unset := fs.BoolLong("unset", "remove the ceiling")

	return &ff.Command{
		Name:      "budget",
		Usage:     "tally budget [AMOUNT | --unset]",
		ShortHelp: "show or set the budget ceiling",
		Flags:     fs,
		Exec: c.withApp(func(ctx context.Context, a *app.App, args []string) error {
			switch {
			case *unset:
				if err := a.Ledger.SetBudgetCeiling(ctx, nil); err != nil {
					return err
				}
			case len(args) == 1:
				amount, err := money.Parse(args[0])
				if err != nil {
					return &ledger.ValidationError{Field: "ceiling", Message: err.Error()}
				}

				if err := a.Ledger.SetBudgetCeiling(ctx, &amount); err != nil {
					return err
				}
			case len(args) > 1:
				return fmt.Errorf("%w: budget takes one amount", errUsage)
			}

			printBudget(a.Ledger)

			return nil
		}),
	}
}

func (c *cli) clearCommand(parent *ff.FlagSet) *ff.Command {
	fs := ff.NewFlagSet("clear").SetParent(parent)
	yes := fs.BoolLong("yes", "confirm removing every item and the ceiling")

	return &ff.Command{
		Name:      "clear",
		Usage:     "tally clear --yes",
		ShortHelp: "empty the list and unset the ceiling",
		Flags:     fs,
		Exec: c.withApp(func(ctx context.Context, a *app.App, _ []string) error {
			if !*yes {
				return fmt.Errorf("%w: clear needs --yes", errUsage)
			}

			if err := a.Ledger.ClearAll(ctx); err != nil {
				return err
			}

			fmt.Println("list cleared")

			return nil
		}),
	}
}

func (c *cli) lookupCommand(parent *ff.FlagSet) *ff.Command {
	return &ff.Command{
		Name:      "lookup",
		Usage:     "tally lookup BARCODE",
		ShortHelp: "resolve a barcode against the catalogs",
		Flags:     ff.NewFlagSet("lookup").SetParent(parent),
		Exec: c.withApp(func(ctx context.Context, a *app.App, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("%w: lookup takes one barcode", errUsage)
			}

			res, err := a.Resolver.Resolve(ctx, args[0])
			if err != nil {
				return err
			}

			reportResolution(res)

			return nil
		}),
	}
}

func (c *cli) reportCommand(parent *ff.FlagSet) *ff.Command {
	fs := ff.NewFlagSet("report").SetParent(parent)
	out := fs.StringLong("out", "", "write report.txt and items.csv into this directory")

	return &ff.Command{
		Name:      "report",
		Usage:     "tally report [--out DIR]",
		ShortHelp: "print or export the list summary",
		Flags:     fs,
		Exec: c.withApp(func(_ context.Context, a *app.App, _ []string) error {
			if *out == "" {
				fmt.Print(a.Report.Text())
				return nil
			}

			paths, err := a.Report.Export(*out)
			if err != nil {
				return err
			}

			for _, p := range paths {
				fmt.Println(p)
			}

			return nil
		}),
	}
}

func reportResolution(res catalog.Result) {
	for _, src := range res.Unreachable {
		fmt.Printf("warning: %s catalog unreachable\n", src)
	}

	if !res.Found() {
		fmt.Println("product not found")
		return
	}

	fmt.Printf("%s  %s  %s  (%s)\n", res.Product.Barcode, res.Product.Name, money.Format(res.Product.Price), res.Product.Source)
}

// findItem accepts a full id or an unambiguous prefix of one.
func findItem(l *ledger.Service, args []string) (*ledger.LineItem, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: expected one item id", errUsage)
	}

	var match *ledger.LineItem

	for _, item := range l.Items() {
		if !strings.HasPrefix(item.ID.String(), strings.ToLower(args[0])) {
			continue
		}

		if match != nil {
			return nil, fmt.Errorf("%w: id prefix %q is ambiguous", errUsage, args[0])
		}

		match = item
	}

	if match == nil {
		return nil, ledger.ErrNotFound
	}

	return match, nil
}

func shortID(item *ledger.LineItem) string {
	return item.ID.String()[:8]
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	overStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func printLedger(l *ledger.Service) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			return lipgloss.NewStyle()
		}).
		Headers("ID", "Barcode", "Name", "Unit", "Qty", "Total")

	for _, item := range l.Items() {
		t.Row(shortID(item), item.Barcode, item.Name, money.Format(item.UnitPrice),
			fmt.Sprint(item.Quantity), money.Format(item.LineTotal()))
	}

	fmt.Println(t.Render())
	printBudget(l)
}

func printBudget(l *ledger.Service) {
	fmt.Printf("Total: %s\n", money.Format(l.AggregateTotal()))

	ceiling, ok := l.Ceiling()
	if !ok {
		fmt.Println("Budget: not set")
		return
	}

	remaining, _ := l.Remaining()

	line := fmt.Sprintf("Budget: %s  Remaining: %s", money.Format(ceiling), money.Format(remaining))
	if remaining.IsNegative() {
		line = overStyle.Render(line + "  (over budget)")
	}

	fmt.Println(line)
}
