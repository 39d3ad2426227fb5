package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"quizhub/internal/api"
	"quizhub/internal/attempt"
	"quizhub/internal/model"
	"quizhub/internal/session"
)

// cmdPlay drives one solo attempt interactively: answer by option number,
// n/p to navigate, f to finish early, q to abandon.
func cmdPlay(client *api.Client, store session.Store, logger *zap.Logger, timeout time.Duration, args []string) {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	id := fs.Int64("id", 0, "quiz id")
	shuffle := fs.Bool("shuffle", false, "shuffle answer order")
	_ = fs.Parse(args)
	if *id == 0 {
		fmt.Fprintln(os.Stderr, "need -id")
		os.Exit(1)
	}

	sess := attempt.New(client, store, logger)

	loadCtx, cancel := withTimeout(timeout)
	err := sess.Load(loadCtx, *id)
	cancel()
	if err != nil {
		fail(err)
	}

	quiz := sess.Quiz()
	_, total := sess.Progress()
	fmt.Printf("\n%s\n%s\n", quiz.Title, quiz.Description)
	fmt.Printf("%d questions", total)
	if quiz.TimeLimit != nil {
		fmt.Printf(", %s time limit", (time.Duration(*quiz.TimeLimit) * time.Second).String())
	}
	fmt.Println("\npress enter to start")

	in := bufio.NewScanner(os.Stdin)
	in.Scan()

	if err := sess.Start(); err != nil {
		fail(err)
	}

	for {
		q, idx, ok := sess.Current()
		if !ok {
			break // time expired mid-prompt
		}
		order := q.Answers
		if *shuffle {
			order = attempt.Shuffle(order)
		}
		printQuestion(sess, q, idx, total, order)

		if !in.Scan() {
			sess.Abort()
			return
		}
		input := strings.TrimSpace(in.Text())

		if sess.State() != attempt.Playing {
			break
		}
		switch input {
		case "q":
			sess.Abort()
			fmt.Println("attempt abandoned")
			return
		case "p":
			if err := sess.Previous(); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
			continue
		case "f":
			finishCtx, cancel := withTimeout(timeout)
			_, err := sess.Finish(finishCtx)
			cancel()
			reportResult(sess, err, timeout, in)
			return
		case "n", "":
			// skip without answering
		default:
			n, err := strconv.Atoi(input)
			if err != nil || n < 1 || n > len(order) {
				fmt.Fprintln(os.Stderr, "answer with an option number, or n/p/f/q")
				continue
			}
			if err := sess.SelectAnswer(order[n-1].ID); err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
		}

		nextCtx, cancel := withTimeout(timeout)
		finished, err := sess.Next(nextCtx)
		cancel()
		if finished {
			reportResult(sess, err, timeout, in)
			return
		}
	}

	// Loop exits when the countdown fired; the session already submitted.
	reportResult(sess, nil, timeout, in)
}

func printQuestion(sess *attempt.Session, q model.Question, idx, total int, order []model.AnswerOption) {
	answered, _ := sess.Progress()
	fmt.Printf("\n[%d/%d] %s  (%d answered", idx+1, total, q.Text, answered)
	if remaining, timed := sess.Remaining(); timed {
		fmt.Printf(", %s left", remaining.String())
	}
	fmt.Println(")")
	if q.Media != nil {
		fmt.Printf("  [%s] %s\n", q.Media.Kind, q.Media.URL)
	}
	selected, hasSelection := sess.Selected(q.ID)
	for i, a := range order {
		marker := " "
		if hasSelection && a.ID == selected.ID {
			marker = "*"
		}
		fmt.Printf("  %s %d) %s\n", marker, i+1, a.Text)
	}
	fmt.Print("> ")
}

// reportResult prints the outcome and offers a manual retry when submission
// failed; recorded answers stay in memory until the user gives up.
func reportResult(sess *attempt.Session, err error, timeout time.Duration, in *bufio.Scanner) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "submission failed:", err)
	}
	for sess.SubmitFailed() {
		fmt.Print("retry submission? [y/N] ")
		if !in.Scan() || strings.TrimSpace(in.Text()) != "y" {
			fmt.Println("answers discarded")
			return
		}
		ctx, cancel := withTimeout(timeout)
		_, rerr := sess.RetrySubmit(ctx)
		cancel()
		if rerr != nil {
			fmt.Fprintln(os.Stderr, "submission failed:", rerr)
		}
	}
	res := sess.Result()
	if res == nil {
		return
	}
	fmt.Printf("\nquiz complete! %d points, %d correct (%.0f%%) in %s\n",
		res.Score, res.CorrectAnswers, res.Percentage,
		(time.Duration(res.TimeTaken) * time.Second).String(),
	)
}
