package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/daybook-app/daybook/internal/entity"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks (local-first)",
	Long: `Create, list, and complete tasks.

Every mutation lands in the local store and the outbox immediately, so it
succeeds even offline; the sync daemon (or 'daybook sync') pushes it to the
backend later.`,
}

var (
	taskTitle    string
	taskNotes    string
	taskPriority int
	taskDue      string
)

var taskAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a task",
	Run: func(cmd *cobra.Command, args []string) {
		if taskTitle == "" {
			fatal("--title is required")
		}

		a := openApp()
		defer a.close()

		now := time.Now().UTC()
		task := entity.Task{
			ID:        "tk-" + uuid.NewString()[:8],
			Title:     taskTitle,
			Notes:     taskNotes,
			Status:    "open",
			Priority:  taskPriority,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if taskDue != "" {
			due, err := time.Parse("2006-01-02", taskDue)
			if err != nil {
				fatal("--due must be YYYY-MM-DD: %v", err)
			}
			task.DueAt = &due
		}
		if err := task.Validate(); err != nil {
			fatal("Invalid task: %v", err)
		}

		rec, err := entity.ToRecord(&task)
		if err != nil {
			fatal("%v", err)
		}
		if _, err := a.store.UpsertLocal(a.cfg.UserID, entity.KindTask, rec); err != nil {
			// Persist failure: the task is live in memory but this process
			// is about to exit, so surface it.
			fmt.Fprintf(os.Stderr, "Warning: task saved in memory only: %v\n", err)
		}

		fmt.Printf("Added %s: %s\n", task.ID, task.Title)
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks (remote-preferred, cache fallback)",
	Run: func(cmd *cobra.Command, args []string) {
		a := openApp()
		defer a.close()

		recs, err := a.syncer.Collection(context.Background(), a.cfg.UserID, entity.KindTask)
		if err != nil {
			fatal("Failed to list tasks: %v", err)
		}
		if len(recs) == 0 {
			fmt.Println("No tasks.")
			return
		}

		for _, rec := range recs {
			var task entity.Task
			if err := entity.FromRecord(rec, &task); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: skipping malformed record %s: %v\n", rec.ID, err)
				continue
			}
			marker := " "
			if task.Status == "done" {
				marker = "x"
			}
			due := ""
			if task.DueAt != nil {
				due = " (due " + task.DueAt.Format("2006-01-02") + ")"
			}
			fmt.Printf("[%s] %s  P%d  %s%s\n", marker, task.ID, task.Priority, task.Title, due)
		}
	},
}

var taskDoneCmd = &cobra.Command{
	Use:   "done <task-id>",
	Short: "Mark a task done",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := openApp()
		defer a.close()

		rec, ok := a.store.GetRecord(a.cfg.UserID, entity.KindTask, args[0])
		if !ok {
			fatal("No such task: %s", args[0])
		}
		var task entity.Task
		if err := entity.FromRecord(rec, &task); err != nil {
			fatal("Malformed task record: %v", err)
		}

		task.Status = "done"
		task.UpdatedAt = time.Now().UTC()
		updated, err := entity.ToRecord(&task)
		if err != nil {
			fatal("%v", err)
		}
		if _, err := a.store.UpsertLocal(a.cfg.UserID, entity.KindTask, updated); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: change saved in memory only: %v\n", err)
		}

		fmt.Printf("Done: %s\n", task.Title)
	},
}

var taskRmCmd = &cobra.Command{
	Use:   "rm <task-id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := openApp()
		defer a.close()

		if _, err := a.store.RemoveLocal(a.cfg.UserID, entity.KindTask, args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: change saved in memory only: %v\n", err)
		}
		fmt.Printf("Deleted %s\n", args[0])
	},
}

func init() {
	taskAddCmd.Flags().StringVar(&taskTitle, "title", "", "task title (required)")
	taskAddCmd.Flags().StringVar(&taskNotes, "notes", "", "free-form notes")
	taskAddCmd.Flags().IntVar(&taskPriority, "priority", 2, "priority 0-4 (0 highest)")
	taskAddCmd.Flags().StringVar(&taskDue, "due", "", "due date (YYYY-MM-DD)")

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskDoneCmd)
	taskCmd.AddCommand(taskRmCmd)
}
