// Command billingctl drives the billing API from a terminal using the same session store as the console.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/jrsteele09/billing-admin/apiclient"
	"github.com/jrsteele09/billing-admin/billing"
	"github.com/jrsteele09/billing-admin/internal/bootstrap"
	"github.com/jrsteele09/billing-admin/internal/config"
	"github.com/jrsteele09/billing-admin/internal/obs"
)

const passwordEnvVar = "BILLING_PASSWORD"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := config.New()
	obs.ConfigureLogger(c.GetEnv())

	if err := run(ctx, c, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, c config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("billingctl", flag.ContinueOnError)
	fs.SetOutput(out)
	cmd := fs.String("cmd", "whoami", "Command: login|logout|whoami|dashboard|devices|categories|transactions|users|block|unblock")
	email := fs.String("email", "", "Email (for login)")
	password := fs.String("password", "", "Password (for login, defaults to $"+passwordEnvVar+")")
	userID := fs.String("id", "", "User ID (for block/unblock)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	signedOut := false
	app, err := bootstrap.Open(ctx, c, apiclient.NavigatorFunc(func() { signedOut = true }))
	if err != nil {
		return err
	}
	defer app.Close()

	err = dispatch(ctx, app, *cmd, *email, *password, *userID, out)
	if signedOut {
		fmt.Fprintln(out, "Session expired. Run -cmd login again.")
	}
	return err
}

func dispatch(ctx context.Context, app *bootstrap.App, cmd, email, password, userID string, out io.Writer) error {
	switch cmd {
	case "login":
		if password == "" {
			password = os.Getenv(passwordEnvVar)
		}
		if email == "" || password == "" {
			return errors.New("--email and a password are required")
		}
		if err := app.Store.Login(ctx, email, password); err != nil {
			return err
		}
		fmt.Fprintf(out, "Signed in as %s\n", app.Store.Snapshot().User.DisplayName())
		return nil
	case "logout":
		app.Store.Logout(ctx)
		fmt.Fprintln(out, "Signed out")
		return nil
	case "whoami":
		snap := app.Store.Snapshot()
		if !snap.IsAuthenticated() {
			fmt.Fprintln(out, "Not signed in")
			return nil
		}
		fmt.Fprintf(out, "%s <%s> (%s)\n", snap.User.DisplayName(), snap.User.Email, snap.User.Type)
		return nil
	case "dashboard":
		d, err := app.Billing.Dashboard(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "Devices\t%d (%d active)\n", d.TotalDevices, d.ActiveDevices)
		fmt.Fprintf(tw, "Categories\t%d\n", d.TotalCategories)
		fmt.Fprintf(tw, "Users\t%d\n", d.TotalUsers)
		fmt.Fprintf(tw, "Income today\t%s\n", billing.FormatIDR(d.TodayIncome))
		fmt.Fprintf(tw, "Income this month\t%s\n", billing.FormatIDR(d.MonthIncome))
		return tw.Flush()
	case "devices":
		devices, err := app.Billing.Devices(ctx)
		if err != nil {
			return err
		}
		return table(out, "ID\tNAME\tCATEGORY\tREMAINING\tPRICE", devices, func(d billing.Device) string {
			return fmt.Sprintf("%d\t%s\t%s\t%s\t%s", d.ID, d.Name, d.Category, d.TimeRemaining, billing.FormatIDR(d.RentalPrice))
		})
	case "categories":
		categories, err := app.Billing.Categories(ctx)
		if err != nil {
			return err
		}
		return table(out, "ID\tNAME\tPERIOD\tPRICE", categories, func(c billing.Category) string {
			return fmt.Sprintf("%d\t%s\t%s\t%s", c.ID, c.Name, c.Period, billing.FormatIDR(c.Price))
		})
	case "transactions":
		txs, err := app.Billing.Transactions(ctx)
		if err != nil {
			return err
		}
		if err := table(out, "ID\tDEVICE\tCATEGORY\tTIME\tPRICE", txs, func(t billing.Transaction) string {
			return fmt.Sprintf("%d\t%s\t%s\t%s\t%s", t.ID, t.DeviceName, t.Category, t.RentalTime, billing.FormatIDR(t.Price))
		}); err != nil {
			return err
		}
		fmt.Fprintf(out, "Total: %s\n", billing.FormatIDR(billing.TotalIncome(txs)))
		return nil
	case "users":
		list, err := app.Billing.Users(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tEMAIL\tTYPE\tACTIVE")
		for _, u := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", u.ID, u.Email, u.Type, u.IsActive)
		}
		return tw.Flush()
	case "block", "unblock":
		if userID == "" {
			return errors.New("--id required")
		}
		// blocking acts on an active user, unblocking on a blocked one
		res, err := app.Billing.SetBlocked(ctx, userID, cmd == "block")
		if err != nil {
			return err
		}
		state := "blocked"
		if res.IsActive {
			state = "active"
		}
		fmt.Fprintf(out, "%s is now %s\n", userID, state)
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func table[T any](out io.Writer, header string, rows []T, format func(T) string) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	for _, row := range rows {
		fmt.Fprintln(tw, strings.TrimRight(format(row), "\t"))
	}
	return tw.Flush()
}
