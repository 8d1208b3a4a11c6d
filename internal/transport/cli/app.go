package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/akraev/folioterm/utils"
)

type AppSession interface {
	SessionService
	Restore(ctx context.Context)
	IsLoading() bool
}

// App is the command loop. It restores the session before accepting any
// command, so a protected view is never shown from a half-restored state.
type App struct {
	ctrl    *Controller
	session AppSession
	in      io.Reader
	out     io.Writer
}

func NewApp(ctrl *Controller, session AppSession, in io.Reader, out io.Writer) *App {
	return &App{ctrl: ctrl, session: session, in: in, out: out}
}

func (a *App) Run(ctx context.Context) error {
	fmt.Fprintln(a.out, "restoring session...")
	a.session.Restore(utils.CtxWithRqID(ctx))

	if a.session.IsAuthenticated() {
		fmt.Fprintf(a.out, "welcome back, %s\n", a.session.Identity().Email)
	} else {
		fmt.Fprintln(a.out, "not logged in, use: login <email> <password>")
	}

	scanner := bufio.NewScanner(a.in)
	for {
		fmt.Fprint(a.out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}

		a.dispatch(utils.CtxWithRqID(ctx), fields[0], fields[1:])

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

func (a *App) dispatch(ctx context.Context, cmd string, args []string) {
	switch cmd {
	case "login":
		if len(args) != 2 {
			fmt.Fprintln(a.out, "usage: login <email> <password>")
			return
		}
		a.ctrl.Login(ctx, args[0], args[1])
	case "register":
		if len(args) < 2 {
			fmt.Fprintln(a.out, "usage: register <email> <password> [full name]")
			return
		}
		a.ctrl.Register(ctx, args[0], args[1], strings.Join(args[2:], " "))
	case "logout":
		a.ctrl.Logout(ctx)
	case "whoami":
		a.ctrl.WhoAmI(ctx)
	case "portfolios":
		a.requireAuth(ctx, func() { a.ctrl.Portfolios(ctx) })
	case "holdings":
		a.requireAuth(ctx, func() { a.ctrl.Holdings(ctx, args) })
	case "buy":
		a.requireAuth(ctx, func() { a.ctrl.Buy(ctx, args) })
	case "sell":
		a.requireAuth(ctx, func() { a.ctrl.Sell(ctx, args) })
	case "add-holding":
		a.requireAuth(ctx, func() { a.ctrl.AddHolding(ctx, args) })
	case "update-holding":
		a.requireAuth(ctx, func() { a.ctrl.UpdateHolding(ctx, args) })
	case "update-transaction":
		a.requireAuth(ctx, func() { a.ctrl.UpdateTransaction(ctx, args) })
	case "rm-holding":
		a.requireAuth(ctx, func() { a.ctrl.RemoveHolding(ctx, args) })
	case "rm-transaction":
		a.requireAuth(ctx, func() { a.ctrl.RemoveTransaction(ctx, args) })
	case "report":
		a.requireAuth(ctx, func() { a.ctrl.Report(ctx) })
	case "help":
		a.printHelp()
	default:
		fmt.Fprintf(a.out, "unknown command %q, try help\n", cmd)
	}
}

func (a *App) requireAuth(_ context.Context, fn func()) {
	if !a.session.IsAuthenticated() {
		fmt.Fprintln(a.out, "please login first")
		return
	}
	fn()
}

func (a *App) printHelp() {
	fmt.Fprintln(a.out, `commands:
  login <email> <password>
  register <email> <password> [full name]
  logout
  whoami
  portfolios
  holdings <portfolioID> [symbol|shares|price|cost|value|gain|gainPercent] [asc|desc]
  buy <portfolioID> <securityID> <shares> <price>
  sell <portfolioID> <securityID> <shares> <price>
  add-holding <portfolioID> <securityID> <shares> [avgCost]
  update-holding <portfolioID> <holdingID> <securityID> <shares> [avgCost]
  rm-holding <portfolioID> <holdingID>
  update-transaction <portfolioID> <transactionID> <securityID> <buy|sell> <shares> <price>
  rm-transaction <portfolioID> <transactionID>
  report
  quit`)
}
