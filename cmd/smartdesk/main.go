package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"smartdesk/internal/app"
	"smartdesk/internal/config"
	"smartdesk/internal/db"
	"smartdesk/internal/domain"
	"smartdesk/internal/engine"
	"smartdesk/internal/notify"
	"smartdesk/internal/scheduler"
	"smartdesk/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "smartdesk",
	Short: "SmartDesk CLI",
	Long: `SmartDesk keeps personal tasks and notes in a local SQLite workspace.
Tasks carry priorities, types and reminder settings; the dashboard groups
them into lanes (Overdue, Today, Upcoming, Someday, Courses, Anniversaries,
Completed). 'smartdesk remind' runs the background reminder scanner in the
foreground and prints reminders as their windows open.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if _, err := db.EnsureWorkspace(workspace); err != nil {
			return err
		}
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("SMARTDESK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func registerCommands() {
	rootCmd.AddCommand(taskCmd())
	rootCmd.AddCommand(boardCmd())
	rootCmd.AddCommand(noteCmd())
	rootCmd.AddCommand(logCmd())
	rootCmd.AddCommand(remindCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(configCmd())
}

func taskCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "task", Short: "Manage tasks"}
	cmd.AddCommand(taskAddCmd())
	cmd.AddCommand(taskListCmd())
	cmd.AddCommand(taskShowCmd())
	cmd.AddCommand(taskDeleteCmd())
	cmd.AddCommand(taskCompleteCmd())
	cmd.AddCommand(taskStartCmd())
	cmd.AddCommand(taskSnoozeCmd())
	return cmd
}

func taskAddCmd() *cobra.Command {
	var (
		title, desc, due, start, priority, taskType string
		remind                                      bool
		lead                                        int
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				b := domain.NewTaskBuilder().
					WithTitle(title).
					WithDescription(desc).
					WithReminderEnabled(remind).
					WithReminderLeadMinutes(lead)
				if priority != "" {
					p, err := domain.ParsePriority(strings.ToUpper(priority))
					if err != nil {
						return err
					}
					b.WithPriority(p)
				}
				if taskType != "" {
					b.WithType(domain.TaskType(strings.ToUpper(taskType)))
				}
				if due != "" {
					ts, err := parseWhen(due)
					if err != nil {
						return fmt.Errorf("--due: %w", err)
					}
					b.WithDueAt(&ts)
				}
				if start != "" {
					ts, err := parseWhen(start)
					if err != nil {
						return fmt.Errorf("--start: %w", err)
					}
					b.WithStartAt(&ts)
				}
				task, err := b.Build()
				if err != nil {
					return err
				}
				created, err := e.CreateTask(ctx, task)
				if err != nil {
					return err
				}
				return printJSONOrTasks([]domain.Task{created})
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "task title (required)")
	cmd.Flags().StringVar(&desc, "desc", "", "description")
	cmd.Flags().StringVar(&due, "due", "", "due date-time (2006-01-02 or '2006-01-02 15:04')")
	cmd.Flags().StringVar(&start, "start", "", "start date-time")
	cmd.Flags().StringVar(&priority, "priority", "", "LOW|NORMAL|HIGH|URGENT|CRITICAL")
	cmd.Flags().StringVar(&taskType, "type", "", "TODO|COURSE|ANNIVERSARY|EVENT")
	cmd.Flags().BoolVar(&remind, "remind", false, "enable reminder")
	cmd.Flags().IntVar(&lead, "lead", domain.DefaultReminderLeadMinutes, "reminder lead minutes")
	return cmd
}

func taskListCmd() *cobra.Command {
	var taskType, status, minPriority, from, to string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks in canonical order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				opts := engine.FilterOptions{}
				if taskType != "" {
					t := domain.TaskType(strings.ToUpper(taskType))
					opts.Type = &t
				}
				if status != "" {
					s := domain.TaskStatus(strings.ToUpper(status))
					opts.Status = &s
				}
				if minPriority != "" {
					p, err := domain.ParsePriority(strings.ToUpper(minPriority))
					if err != nil {
						return err
					}
					opts.MinimumPriority = &p
				}
				if from != "" {
					ts, err := parseWhen(from)
					if err != nil {
						return fmt.Errorf("--from: %w", err)
					}
					opts.From = &ts
				}
				if to != "" {
					ts, err := parseWhen(to)
					if err != nil {
						return fmt.Errorf("--to: %w", err)
					}
					opts.To = &ts
				}
				return printJSONOrTasks(e.FilterTasks(ctx, opts))
			})
		},
	}
	cmd.Flags().StringVar(&taskType, "type", "", "filter by type")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().StringVar(&minPriority, "min-priority", "", "minimum priority")
	cmd.Flags().StringVar(&from, "from", "", "due date lower bound")
	cmd.Flags().StringVar(&to, "to", "", "due date upper bound")
	return cmd
}

func taskShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				task, err := e.GetTask(ctx, id)
				if err != nil {
					return err
				}
				return printJSON(task)
			})
		},
	}
}

func taskDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				deleted, err := e.DeleteTask(ctx, id)
				if err != nil {
					return err
				}
				if !deleted {
					fmt.Println("no such task")
					return nil
				}
				fmt.Println("deleted")
				return nil
			})
		},
	}
}

func taskCompleteCmd() *cobra.Command {
	return taskActionCmd("complete <id>", "Mark a task completed",
		func(ctx context.Context, e engine.Engine, id int64) (domain.Task, error) {
			return e.MarkTaskCompleted(ctx, id)
		})
}

func taskStartCmd() *cobra.Command {
	return taskActionCmd("start <id>", "Move a task to IN_PROGRESS",
		func(ctx context.Context, e engine.Engine, id int64) (domain.Task, error) {
			return e.StartTask(ctx, id)
		})
}

func taskActionCmd(use, short string, action func(context.Context, engine.Engine, int64) (domain.Task, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				task, err := action(ctx, e, id)
				if err != nil {
					return err
				}
				return printJSONOrTasks([]domain.Task{task})
			})
		},
	}
}

func taskSnoozeCmd() *cobra.Command {
	var forDur string
	cmd := &cobra.Command{
		Use:   "snooze <id>",
		Short: "Push a task's deadline forward",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			dur, err := time.ParseDuration(forDur)
			if err != nil {
				return fmt.Errorf("--for: %w", err)
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				task, err := e.SnoozeTask(ctx, id, dur)
				if err != nil {
					return err
				}
				return printJSONOrTasks([]domain.Task{task})
			})
		},
	}
	cmd.Flags().StringVar(&forDur, "for", "1h", "snooze duration (e.g. 2h, 30m)")
	return cmd
}

func boardCmd() *cobra.Command {
	var date string
	var upcoming int
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show the dashboard lanes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				referenceDate := time.Now()
				if date != "" {
					parsed, err := time.ParseInLocation("2006-01-02", date, time.Local)
					if err != nil {
						return fmt.Errorf("--date: %w", err)
					}
					referenceDate = parsed
				}
				if upcoming < 0 {
					upcoming = e.Config.Dashboard.UpcomingDays
				}
				columns, err := e.BuildBoard(ctx, referenceDate, upcoming)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(columns)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Lane", "Tasks", "Done", "Progress"})
				for _, column := range columns {
					tw.AppendRow(table.Row{
						column.Title,
						column.TotalTasks(),
						column.CompletedTasks(),
						fmt.Sprintf("%.0f%%", column.CompletionRatio()*100),
					})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "reference date (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&upcoming, "upcoming", -1, "days counted as upcoming (default from config)")
	return cmd
}

func noteCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "note", Short: "Manage notes"}

	var title, content, tag string
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a note",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				note, err := e.CreateNote(ctx, domain.Note{Title: title, Content: content, Tag: tag})
				if err != nil {
					return err
				}
				return printJSON(note)
			})
		},
	}
	add.Flags().StringVar(&title, "title", "", "note title (required)")
	add.Flags().StringVar(&content, "content", "", "note body")
	add.Flags().StringVar(&tag, "tag", "", "note tag")
	cmd.AddCommand(add)

	var listTag string
	list := &cobra.Command{
		Use:   "list",
		Short: "List notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				notes, err := e.ListNotes(ctx, listTag)
				if err != nil {
					return err
				}
				return printJSON(notes)
			})
		},
	}
	list.Flags().StringVar(&listTag, "tag", "", "filter by tag")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				deleted, err := e.DeleteNote(ctx, id)
				if err != nil {
					return err
				}
				if !deleted {
					fmt.Println("no such note")
					return nil
				}
				fmt.Println("deleted")
				return nil
			})
		},
	})
	return cmd
}

func logCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				evts, err := e.Repo.RecentEvents(ctx, limit)
				if err != nil {
					return err
				}
				return printJSON(evts)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "number of entries")
	return cmd
}

func remindCmd() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Run the reminder scanner in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				sched := scheduler.New(e)
				if interval == 0 {
					interval = time.Duration(e.Config.Scheduler.ScanIntervalMinutes) * time.Minute
				}
				if err := sched.SetScanInterval(interval); err != nil {
					return err
				}
				sched.AddReminderListener(notify.NewLogNotifier(os.Stdout))
				if hooks := e.Config.Notifications.Webhooks; len(hooks) > 0 {
					sched.AddReminderListener(notify.NewWebhookNotifier(hooks))
				}
				sched.Start()
				defer sched.Close()
				fmt.Printf("scanning for reminders every %s; ctrl-c to stop\n", interval)
				waitForSignal()
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "scan interval (minimum 1m, default from config)")
	return cmd
}

func serveCmd() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				if listen == "" {
					listen = e.Config.API.Listen
				}
				handler := server.New(server.Config{
					Engine: e,
					Auth:   server.AuthConfig{JWTSecret: e.Config.API.JWTSecret},
				})
				sched := scheduler.New(e)
				if hooks := e.Config.Notifications.Webhooks; len(hooks) > 0 {
					sched.AddReminderListener(notify.NewWebhookNotifier(hooks))
				}
				if mins := e.Config.Scheduler.ScanIntervalMinutes; mins > 1 {
					if err := sched.SetScanInterval(time.Duration(mins) * time.Minute); err != nil {
						return err
					}
				}
				sched.Start()
				defer sched.Close()
				fmt.Printf("listening on %s\n", listen)
				return http.ListenAndServe(listen, handler)
			})
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config)")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Manage configuration"}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the default smartdesk.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(viper.GetString("workspace"))
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
				return err
			}
			fmt.Println("wrote", path)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOptional(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			return printJSON(cfg)
		},
	})
	return cmd
}

func withEngine(ctx context.Context, fn func(context.Context, engine.Engine) error) error {
	e, conn, err := app.Open(viper.GetString("workspace"))
	if err != nil {
		return err
	}
	defer conn.Close()
	return fn(ctx, e)
}

func printJSONOrTasks(tasks []domain.Task) error {
	if viper.GetBool("json") {
		return printJSON(tasks)
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"ID", "Title", "Due", "Priority", "Type", "Status"})
	for _, t := range tasks {
		id := ""
		if t.ID != nil {
			id = strconv.FormatInt(*t.ID, 10)
		}
		due := ""
		if t.DueAt != nil {
			due = t.DueAt.Format("2006-01-02 15:04")
		}
		tw.AppendRow(table.Row{id, t.Title, due, t.Priority.String(), t.Type, t.Status})
	}
	tw.Render()
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

// parseWhen accepts a date or a date-time in the common local layouts.
func parseWhen(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"} {
		if ts, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", value)
}

func waitForSignal() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
}
