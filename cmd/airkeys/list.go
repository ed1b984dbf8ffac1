package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/ayusman/airkeys/internal/config"
	"github.com/ayusman/airkeys/internal/plugin"
	"github.com/ayusman/airkeys/internal/store"
)

// SessionsCmd prints the typing history.
type SessionsCmd struct {
	Limit int `help:"Number of sessions to show." default:"20"`

	out io.Writer `kong:"-"`
}

// Run is called by kong when the sessions command is executed.
func (c *SessionsCmd) Run(logger *slog.Logger, s *config.Settings) error {
	if s.Storage.DB == "" {
		return fmt.Errorf("no database configured")
	}
	if _, err := os.Stat(s.Storage.DB); err != nil {
		return fmt.Errorf("no history at %s: %w", s.Storage.DB, err)
	}

	st, err := store.New(s.Storage.DB)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	return c.print(st)
}

func (c *SessionsCmd) print(st *store.Store) error {
	sessions, err := st.Sessions().List(c.Limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.writer(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tDURATION\tKEYS\tTEXT")
	for _, sess := range sessions {
		keys, err := st.KeyPresses().CountBySession(sess.ID)
		if err != nil {
			return err
		}
		duration := "active"
		if !sess.Active() {
			duration = sess.EndedAt.Sub(sess.StartedAt).Round(time.Second).String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%q\n",
			sess.ID, sess.StartedAt.Local().Format(time.DateTime), duration, keys, sess.Text)
	}
	return w.Flush()
}

func (c *SessionsCmd) writer() io.Writer {
	if c.out != nil {
		return c.out
	}
	return os.Stdout
}

// PluginsCmd prints the installed plugins.
type PluginsCmd struct {
	out io.Writer `kong:"-"`
}

// Run is called by kong when the plugins command is executed.
func (c *PluginsCmd) Run(logger *slog.Logger, s *config.Settings) error {
	mgr := plugin.NewManager(s.Plugins.Dir, logger)
	if err := mgr.Discover(); err != nil {
		return fmt.Errorf("failed to discover plugins in %s: %w", s.Plugins.Dir, err)
	}
	return c.print(mgr)
}

func (c *PluginsCmd) print(mgr *plugin.Manager) error {
	out := c.out
	if out == nil {
		out = os.Stdout
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tKEYSTROKE\tDESCRIPTION")
	for _, p := range mgr.List() {
		fmt.Fprintf(w, "%s\t%s\t%t\t%s\n",
			p.Manifest.Name, p.Manifest.Version, p.Manifest.Supports(plugin.ActionKeystroke), p.Manifest.Description)
	}
	return w.Flush()
}
