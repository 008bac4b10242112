package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/nibzard/bucketlist-go/internal/task"
)

// lsCommand lists tasks newest first, or as JSON in stored order.
func lsCommand(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("bucketlist ls", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	completed := fs.Bool("completed", false, "Only completed tasks")
	pending := fs.Bool("pending", false, "Only tasks not yet completed")
	asJSON := fs.Bool("json", false, "Print the tasks as a JSON object keyed by id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if *completed && *pending {
		return errors.New("-completed and -pending are mutually exclusive")
	}

	ctrl, err := startController(ctx, e)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	var tasks []task.Task
	for _, t := range ctrl.Tasks().Tasks() {
		if (*completed && !t.Completed) || (*pending && t.Completed) {
			continue
		}
		tasks = append(tasks, t)
	}

	if *asJSON {
		data, err := json.MarshalIndent(task.NewCollection(tasks...), "", "  ")
		if err != nil {
			return fmt.Errorf("encoding tasks: %w", err)
		}
		fmt.Fprintln(e.stdout, string(data))
		return nil
	}

	if len(tasks) == 0 {
		fmt.Fprintln(e.stdout, "Nothing on the list.")
		return nil
	}
	for i := len(tasks) - 1; i >= 0; i-- {
		printTask(e.stdout, tasks[i])
	}
	return nil
}

// addCommand adds one task whose text is the joined arguments.
func addCommand(ctx context.Context, e *env, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: bucketlist add <text>")
	}
	ctrl, err := startController(ctx, e)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	t, err := ctrl.AddTask(ctx, joinArgs(args))
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "Added %s\n", t.ID)
	return nil
}

// toggleCommand flips the completed flag of one task.
func toggleCommand(ctx context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: bucketlist toggle <id>")
	}
	ctrl, err := startController(ctx, e)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	id, err := resolveID(ctrl.Tasks(), args[0])
	if err != nil {
		return err
	}
	if err := ctrl.ToggleTask(ctx, id); err != nil {
		return err
	}
	t, _ := ctrl.Tasks().Get(id)
	printTask(e.stdout, t)
	return nil
}

// editCommand replaces the text of one task.
func editCommand(ctx context.Context, e *env, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: bucketlist edit <id> <text>")
	}
	text := joinArgs(args[1:])
	if strings.TrimSpace(text) == "" {
		return errors.New("task text is empty")
	}

	ctrl, err := startController(ctx, e)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	id, err := resolveID(ctrl.Tasks(), args[0])
	if err != nil {
		return err
	}
	t, ok := ctrl.Tasks().Get(id)
	if !ok {
		return &task.NotFoundError{ID: id}
	}
	t.Text = text
	if err := ctrl.UpdateTask(ctx, t); err != nil {
		return err
	}
	printTask(e.stdout, t)
	return nil
}

// rmCommand deletes one task. Deleting an unknown id is not an error.
func rmCommand(ctx context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: bucketlist rm <id>")
	}
	ctrl, err := startController(ctx, e)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	id, err := resolveID(ctrl.Tasks(), args[0])
	if err != nil {
		return err
	}
	existed := ctrl.Tasks().Has(id)
	if err := ctrl.DeleteTask(ctx, id); err != nil {
		return err
	}
	if existed {
		fmt.Fprintf(e.stdout, "Deleted %s\n", id)
	} else {
		fmt.Fprintf(e.stdout, "No task %s\n", id)
	}
	return nil
}

// clearCommand deletes every completed task.
func clearCommand(ctx context.Context, e *env, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	ctrl, err := startController(ctx, e)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	n := ctrl.Tasks().CountCompleted()
	if err := ctrl.DeleteAllCompleted(ctx); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "Deleted %d completed %s\n", n, plural(n, "task", "tasks"))
	return nil
}

// resolveID maps an exact id or a unique id prefix to an id. Unknown ids
// are returned unchanged so the intent decides how to treat them.
func resolveID(c task.Collection, arg string) (string, error) {
	if c.Has(arg) || arg == "" {
		return arg, nil
	}
	var matches []string
	for _, id := range c.IDs() {
		if strings.HasPrefix(id, arg) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return arg, nil
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("id prefix %q is ambiguous (%d tasks match)", arg, len(matches))
	}
}

func printTask(w io.Writer, t task.Task) {
	box := "[ ]"
	if t.Completed {
		box = "[x]"
	}
	fmt.Fprintf(w, "%s %s  %s\n", box, t.Text, t.ID)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
