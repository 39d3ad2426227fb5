// Command quizhub is a CLI client for the QuizHub service.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"quizhub/internal/api"
	"quizhub/internal/attempt"
	"quizhub/internal/config"
	"quizhub/internal/errs"
	"quizhub/internal/session"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func usage() {
	fmt.Fprintf(os.Stderr, `quizhub CLI
Usage:
  quizhub [-api URL] [-v] <cmd> [args]

Commands:
  version
  register    -u <username> -e <email> -p <password>
  login       -e <email> -p <password>
  guest       [-name <username>]
  logout
  whoami
  quizzes     [-search <text>] [-category <id>]
  quiz        -id <id>
  play        -id <id> [-shuffle]
  attempts
  stats
  matches
  match       -id <id>
  match-create -quiz <id>
  match-join  [-id <id> | -code <code>]
  match-leave -id <id>
  match-watch -id <id>
  leaderboard [-quiz <id> | -category <id>]
`)
	os.Exit(2)
}

// main dispatches subcommands against a configured API client.
func main() {
	apiURL := flag.String("api", "", "backend base URL (overrides QUIZHUB_API_URL)")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)
	args := flag.Args()[1:]

	cfg := config.Load()
	if *apiURL != "" {
		cfg.APIBaseURL = strings.TrimRight(*apiURL, "/")
	}

	logger := zap.NewNop()
	if *verbose {
		logger, _ = zap.NewDevelopment()
	}
	defer func() { _ = logger.Sync() }()

	store := session.NewFileStore("")
	client := api.New(cfg.APIBaseURL, store, logger)
	client.SetTimeout(cfg.RequestTimeout)

	ctx, cancel := withTimeout(cfg.RequestTimeout)
	defer cancel()

	switch cmd {

	case "version":
		fmt.Printf("quizhub %s (%s)\n", version, buildDate)

	case "register":
		fs := flag.NewFlagSet("register", flag.ExitOnError)
		u := fs.String("u", "", "username")
		e := fs.String("e", "", "email")
		p := fs.String("p", "", "password")
		_ = fs.Parse(args)
		if *u == "" || *e == "" || *p == "" {
			fmt.Fprintln(os.Stderr, "need -u, -e and -p")
			os.Exit(1)
		}
		user, err := client.Register(ctx, api.RegisterParams{Username: *u, Email: *e, Password: *p})
		if err != nil {
			fail(err)
		}
		fmt.Printf("welcome to QuizHub, %s\n", user.Username)

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		e := fs.String("e", "", "email")
		p := fs.String("p", "", "password")
		_ = fs.Parse(args)
		if *e == "" || *p == "" {
			fmt.Fprintln(os.Stderr, "need -e and -p")
			os.Exit(1)
		}
		user, err := client.Login(ctx, *e, *p)
		if err != nil {
			fail(err)
		}
		fmt.Printf("welcome back, %s (%d points)\n", user.Username, user.Points)

	case "guest":
		fs := flag.NewFlagSet("guest", flag.ExitOnError)
		name := fs.String("name", "", "guest username (optional)")
		_ = fs.Parse(args)
		guest, err := client.CreateGuest(ctx, *name)
		if err != nil {
			fail(err)
		}
		fmt.Printf("playing as guest %s\n", guest.Username)

	case "logout":
		if err := client.Logout(ctx); err != nil {
			fail(err)
		}
		fmt.Println("see you next time")

	case "whoami":
		creds, err := store.Load()
		if err != nil {
			fail(err)
		}
		profile := creds.Profile()
		if profile == nil {
			fmt.Println("not logged in")
			return
		}
		printJSON(profile)
		if exp, ok := session.AccessTokenExpiry(creds.Access); ok {
			fmt.Fprintf(os.Stderr, "access token expires %s\n", exp.UTC().Format(time.RFC3339))
		}

	case "quizzes":
		fs := flag.NewFlagSet("quizzes", flag.ExitOnError)
		search := fs.String("search", "", "search text")
		category := fs.String("category", "", "category id")
		_ = fs.Parse(args)
		params := url.Values{}
		if *search != "" {
			params.Set("search", *search)
		}
		if *category != "" {
			params.Set("category", *category)
		}
		quizzes, err := client.ListQuizzes(ctx, params)
		if err != nil {
			fail(err)
		}
		printJSON(quizzes)

	case "quiz":
		fs := flag.NewFlagSet("quiz", flag.ExitOnError)
		id := fs.Int64("id", 0, "quiz id")
		_ = fs.Parse(args)
		if *id == 0 {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}
		quiz, err := client.GetQuiz(ctx, *id)
		if err != nil {
			fail(err)
		}
		printJSON(quiz)

	case "play":
		cmdPlay(client, store, logger, cfg.RequestTimeout, args)

	case "attempts":
		attempts, err := client.MyAttempts(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(attempts)

	case "stats":
		stats, err := client.GetAttemptStats(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(stats)

	case "matches":
		matches, err := client.ListMatches(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(matches)

	case "match":
		fs := flag.NewFlagSet("match", flag.ExitOnError)
		id := fs.Int64("id", 0, "match id")
		_ = fs.Parse(args)
		if *id == 0 {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}
		m, err := client.GetMatch(ctx, *id)
		if err != nil {
			fail(err)
		}
		printJSON(m)

	case "match-create":
		fs := flag.NewFlagSet("match-create", flag.ExitOnError)
		quizID := fs.Int64("quiz", 0, "quiz id")
		_ = fs.Parse(args)
		if *quizID == 0 {
			fmt.Fprintln(os.Stderr, "need -quiz")
			os.Exit(1)
		}
		m, err := client.CreateMatch(ctx, *quizID)
		if err != nil {
			fail(err)
		}
		printJSON(m)

	case "match-join":
		fs := flag.NewFlagSet("match-join", flag.ExitOnError)
		id := fs.Int64("id", 0, "match id")
		code := fs.String("code", "", "share code")
		_ = fs.Parse(args)
		var (
			m   interface{}
			err error
		)
		switch {
		case *code != "":
			m, err = client.JoinByCode(ctx, *code)
		case *id != 0:
			m, err = client.JoinMatch(ctx, *id)
		default:
			fmt.Fprintln(os.Stderr, "need -id or -code")
			os.Exit(1)
		}
		if err != nil {
			fail(err)
		}
		printJSON(m)

	case "match-leave":
		fs := flag.NewFlagSet("match-leave", flag.ExitOnError)
		id := fs.Int64("id", 0, "match id")
		_ = fs.Parse(args)
		if *id == 0 {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}
		if err := client.LeaveMatch(ctx, *id); err != nil {
			fail(err)
		}
		fmt.Println("left match")

	case "match-watch":
		cmdMatchWatch(cfg, logger, args)

	case "leaderboard":
		fs := flag.NewFlagSet("leaderboard", flag.ExitOnError)
		quizID := fs.Int64("quiz", 0, "quiz id")
		categoryID := fs.Int64("category", 0, "category id")
		_ = fs.Parse(args)
		var (
			rows interface{}
			err  error
		)
		switch {
		case *quizID != 0:
			rows, err = client.QuizRankings(ctx, *quizID)
		case *categoryID != 0:
			rows, err = client.CategoryRankings(ctx, *categoryID)
		default:
			rows, err = client.GlobalRankings(ctx)
		}
		if err != nil {
			fail(err)
		}
		printJSON(rows)

	default:
		usage()
	}
}

// ---- helpers ----

func withTimeout(d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), d)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// fail prints a friendly message for taxonomy errors and exits.
func fail(err error) {
	switch {
	case errors.Is(err, errs.ErrAuth):
		fmt.Fprintln(os.Stderr, "authentication required: log in again (quizhub login)")
	case errors.Is(err, errs.ErrNotFound):
		fmt.Fprintln(os.Stderr, "not found:", err)
	case errors.Is(err, errs.ErrValidation):
		fmt.Fprintln(os.Stderr, err)
	case errors.Is(err, errs.ErrNetwork):
		fmt.Fprintln(os.Stderr, "cannot reach server:", err)
	case errors.Is(err, errs.ErrServer):
		fmt.Fprintln(os.Stderr, "server error, try again later")
	case errors.Is(err, attempt.ErrState):
		fmt.Fprintln(os.Stderr, err)
	default:
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
}
