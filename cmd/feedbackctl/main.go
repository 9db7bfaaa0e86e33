// Command feedbackctl is a terminal client for the feedback portal API.
//
//	feedbackctl signup -name Ada -email ada@example.com -password ...
//	feedbackctl login -email ada@example.com -password ... [-remember]
//	feedbackctl submit -title "Slow page" -body "..." [-category bug] [-anonymous]
//	feedbackctl list [-status open] [-category bug] [-q text] [-sort -createdAt] [-page 1] [-limit 10]
//	feedbackctl status <id> <open|in_review|resolved>
//	feedbackctl thread <id>
//	feedbackctl reply <id> <text>
//	feedbackctl whoami | logout
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"

	"github.com/AnshRaj112/feedback-portal/pkg/client"
)

const appName = "feedbackctl"

type app struct {
	api   *client.Client
	creds *client.CredentialStore
	out   io.Writer
}

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	store, err := client.DefaultCredentialStore(appName)
	if err != nil {
		fatal(err)
	}
	baseURL := os.Getenv("FEEDBACK_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:5000/api/v1"
	}

	a := &app{api: client.New(baseURL, nil), creds: store, out: os.Stdout}
	if creds, ok, err := store.Load(); err != nil {
		fatal(err)
	} else if ok {
		a.api.SetToken(creds.Token)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fatal(err)
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "signup":
		return a.signup(ctx, args)
	case "login":
		return a.login(ctx, args)
	case "logout":
		return a.logout()
	case "whoami":
		return a.whoami(ctx)
	case "submit":
		return a.submit(ctx, args)
	case "list":
		return a.list(ctx, args)
	case "status":
		return a.status(ctx, args)
	case "thread":
		return a.thread(ctx, args)
	case "reply":
		return a.reply(ctx, args)
	case "help", "-h", "--help":
		usage(a.out)
		return nil
	default:
		usage(os.Stderr)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) signup(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password (min 8 characters)")
	remember := fs.Bool("remember", false, "stay signed in across restarts")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res, err := a.api.Register(ctx, *name, *email, *password)
	if err != nil {
		return err
	}
	if err := a.creds.Save(client.Credentials{Token: res.Token, User: res.User}, *remember); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome, %s (%s)\n", res.User.Name, res.User.Role)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	remember := fs.Bool("remember", false, "stay signed in across restarts")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res, err := a.api.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	if err := a.creds.Save(client.Credentials{Token: res.Token, User: res.User}, *remember); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s (%s)\n", res.User.Email, res.User.Role)
	return nil
}

func (a *app) logout() error {
	if err := a.creds.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	if a.api.Token() == "" {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}
	u, err := a.api.Me(ctx)
	if client.IsStatus(err, 401) {
		_ = a.creds.Clear()
		fmt.Fprintln(a.out, "Session expired, please log in again")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s> role=%s id=%s\n", u.Name, u.Email, u.Role, u.ID)
	return nil
}

func (a *app) submit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	title := fs.String("title", "", "short summary")
	body := fs.String("body", "", "details")
	category := fs.String("category", "", "bug, feature, ux, process or other")
	anonymous := fs.Bool("anonymous", false, "submit without your name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	f, err := a.api.CreateFeedback(ctx, client.NewFeedback{
		Title:       *title,
		Body:        *body,
		Category:    *category,
		IsAnonymous: *anonymous,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Submitted %s [%s/%s]\n", f.ID, f.Category, f.Status)
	return nil
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	var p client.ListParams
	fs.StringVar(&p.Status, "status", "", "open, in_review or resolved")
	fs.StringVar(&p.Category, "category", "", "bug, feature, ux, process or other")
	fs.StringVar(&p.Q, "q", "", "search title and body")
	fs.StringVar(&p.Sort, "sort", "", "field, prefix with - for descending")
	fs.IntVar(&p.Page, "page", 1, "page number")
	fs.IntVar(&p.Limit, "limit", 10, "items per page (max 50)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	page, err := a.api.ListFeedback(ctx, p)
	if err != nil {
		return err
	}
	printFeedback(a.out, page)
	return nil
}

func (a *app) status(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: status <id> <open|in_review|resolved>")
	}
	f, err := a.api.UpdateStatus(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s is now %s\n", f.ID, f.Status)
	return nil
}

func (a *app) thread(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: thread <id>")
	}
	t, err := a.api.ListComments(ctx, args[0])
	if err != nil {
		return err
	}
	if len(t.Results) == 0 {
		fmt.Fprintln(a.out, "No comments yet")
	}
	for _, c := range t.Results {
		fmt.Fprintf(a.out, "[%s] %s (%s): %s\n", c.CreatedAt.Local().Format("2006-01-02 15:04"), c.Author.Name, c.Author.Role, c.Body)
	}
	fmt.Fprintf(a.out, "state: %s\n", t.State)
	return nil
}

func (a *app) reply(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: reply <id> <text>")
	}
	c, err := a.api.AddComment(ctx, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Posted comment %s\n", c.ID)
	return nil
}

func printFeedback(w io.Writer, page *client.FeedbackPage) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tCATEGORY\tTITLE\tBY\tCREATED")
	for _, f := range page.Results {
		by := "anonymous"
		if f.CreatedBy != nil {
			by = *f.CreatedBy
		} else if !f.IsAnonymous {
			by = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", f.ID, f.Status, f.Category, f.Title, by, f.CreatedAt.Local().Format("2006-01-02"))
	}
	_ = tw.Flush()

	pages := 1
	if page.Limit > 0 && page.Total > 0 {
		pages = (page.Total + page.Limit - 1) / page.Limit
	}
	fmt.Fprintf(w, "page %d of %d (%d total)\n", page.Page, pages, page.Total)
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: feedbackctl <signup|login|logout|whoami|submit|list|status|thread|reply> [flags]")
}

func fatal(err error) {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		fmt.Fprintln(os.Stderr, "error:", apiErr.Message)
	} else {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	os.Exit(1)
}
