package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hemchdev/aura/internal/notify"
	"github.com/hemchdev/aura/internal/store"
)

// newNotifyCommand runs the standalone notification loop: load upcoming
// reminders from the store, schedule them, and deliver to the terminal as
// they come due. Fired reminders can be snoozed or marked done in place.
func newNotifyCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "notify",
		Short: "Run the notification loop in the foreground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.initialize(); err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			handler := notify.NewActionHandler(a.store, a.scheduler, a.logger)
			a.scheduler.SetSink(notify.SinkFunc(func(ctx context.Context, trigger notify.Trigger) {
				printTrigger(ctx, trigger)
				if trigger.Type == notify.TriggerReminder {
					promptAction(ctx, handler, trigger)
				}
			}))

			if err := a.seedScheduler(ctx); err != nil {
				return err
			}
			if err := a.scheduler.Start(ctx); err != nil {
				return err
			}
			defer a.scheduler.Stop()

			fmt.Printf("%s %s\n", bold(green("Aura")), gray(fmt.Sprintf("watching %d scheduled notifications, Ctrl-C to stop", a.scheduler.Pending())))
			<-ctx.Done()
			return nil
		},
	}
}

// seedScheduler loads the next week of open reminders and timed events so a
// fresh process picks up where the last one left off.
func (a *app) seedScheduler(ctx context.Context) error {
	now := time.Now()
	horizon := now.AddDate(0, 0, 7)
	open := false

	reminders, err := a.store.RemindersByFilter(ctx, store.Filter{StartDate: &now, EndDate: &horizon, Completed: &open})
	if err != nil {
		return err
	}
	for _, reminder := range reminders {
		if err := a.scheduler.ScheduleReminderAt(ctx, reminder.ID, reminder.Title, reminder.Text, reminder.RemindAt); err != nil {
			a.logger.Warn("seed reminder %s: %v", reminder.ID, err)
		}
	}

	events, err := a.store.EventsByFilter(ctx, store.Filter{StartDate: &now, EndDate: &horizon})
	if err != nil {
		return err
	}
	for _, event := range events {
		if event.AllDay {
			continue
		}
		if err := a.scheduler.ScheduleEventReminder(ctx, event.ID, event.Title, event.StartTime, 15); err != nil {
			a.logger.Warn("seed event %s: %v", event.ID, err)
		}
	}
	return nil
}

func promptAction(ctx context.Context, handler *notify.ActionHandler, trigger notify.Trigger) {
	fmt.Print(gray("[d]one, snooze [5]/[10] minutes, or enter to dismiss: "))
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return
	}
	var action string
	switch strings.TrimSpace(line) {
	case "d":
		action = notify.ActionDone
	case "5":
		action = notify.ActionSnooze5
	case "10":
		action = notify.ActionSnooze10
	default:
		return
	}
	if err := handler.Handle(ctx, action, trigger); err != nil {
		fmt.Println(red("error: " + err.Error()))
	}
}
