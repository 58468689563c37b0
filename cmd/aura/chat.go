package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hemchdev/aura/internal/assistant"
)

// runOnce handles a single utterance and exits.
func (a *app) runOnce(ctx context.Context, text string) error {
	log := a.sessions.Get(ctx, a.cfg.UserID)
	outcome, err := a.engine.HandleUtterance(ctx, log, text, false)
	if err != nil {
		return err
	}
	printOutcome(outcome)
	return nil
}

// runChat is the interactive loop. One utterance is in flight at a time;
// the next prompt is not shown until the previous outcome is printed.
func (a *app) runChat(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := a.scheduler.Start(ctx); err != nil {
		return err
	}
	defer a.scheduler.Stop()

	fmt.Printf("%s %s\n", bold(green("Aura")), gray("type a message, or \"quit\" to exit"))
	a.printAgenda(ctx)

	log := a.sessions.Get(ctx, a.cfg.UserID)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(cyan("you> "))
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "quit" || text == "exit" {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		outcome, err := a.engine.HandleUtterance(ctx, log, text, false)
		if err != nil {
			fmt.Println(red("error: " + err.Error()))
			continue
		}
		printOutcome(outcome)
	}
}

func (a *app) printAgenda(ctx context.Context) {
	events, reminders, err := a.engine.Agenda(ctx)
	if err != nil {
		a.logger.Warn("agenda: %v", err)
		return
	}
	if len(events) == 0 && len(reminders) == 0 {
		fmt.Println(gray("Nothing on your schedule today."))
		return
	}
	if len(events) > 0 {
		fmt.Println(bold("Today's events:"))
		for _, event := range events {
			fmt.Printf("  %s %s\n", event.StartTime.Format("15:04"), event.Title)
		}
	}
	if len(reminders) > 0 {
		fmt.Println(bold("Today's reminders:"))
		for _, reminder := range reminders {
			fmt.Printf("  %s %s\n", reminder.RemindAt.Format("15:04"), reminder.Title)
		}
	}
}

func printOutcome(outcome assistant.Outcome) {
	switch {
	case outcome.Kind == assistant.OutcomeClarification:
		fmt.Println(yellow(outcome.Message))
	case !outcome.OK:
		fmt.Println(red(outcome.Message))
	default:
		fmt.Println(green(outcome.Message))
	}
}
