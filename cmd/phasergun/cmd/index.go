package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/phazer-schmid/phasergun/pkg/phasergun"
)

var (
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

func newIndexCmd() *cobra.Command {
	var noTUI bool

	cmd := &cobra.Command{
		Use:   "index [path]",
		Short: "Build or refresh the retrieval cache for a project",
		Long: `index builds (or, if the project has changed, rebuilds) the on-disk
cache of chunked and embedded content for Procedures/ and Context/ under
the given project root.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			absPath, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			useTUI := !noTUI && isatty.IsTerminal(os.Stdout.Fd())
			return runIndex(ctx, absPath, useTUI)
		},
	}

	cmd.Flags().BoolVar(&noTUI, "no-tui", false, "Disable the spinner, use plain text output")
	return cmd
}

func runIndex(ctx context.Context, projectRoot string, useTUI bool) error {
	svc, err := phasergun.New(projectRoot)
	if err != nil {
		return err
	}
	defer svc.Close()

	if !useTUI {
		fmt.Printf("Indexing %s...\n", projectRoot)
		_, err := svc.Coordinator.GetOrBuild(ctx, projectRoot, "")
		if err != nil {
			fmt.Println(errorStyle.Render("index failed: " + err.Error()))
			return err
		}
		fmt.Println(doneStyle.Render("index complete"))
		return nil
	}

	m := newIndexingModel(projectRoot)
	program := tea.NewProgram(m)

	go func() {
		_, buildErr := svc.Coordinator.GetOrBuild(ctx, projectRoot, "")
		program.Send(indexDoneMsg{err: buildErr})
	}()

	finalModel, err := program.Run()
	if err != nil {
		return err
	}
	if final, ok := finalModel.(indexingModel); ok && final.err != nil {
		return final.err
	}
	return nil
}

type indexingModel struct {
	spinner     spinner.Model
	projectRoot string
	done        bool
	err         error
}

type indexDoneMsg struct{ err error }

func newIndexingModel(projectRoot string) indexingModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle
	return indexingModel{spinner: s, projectRoot: projectRoot}
}

func (m indexingModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m indexingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case indexDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

func (m indexingModel) View() string {
	if m.done {
		if m.err != nil {
			return errorStyle.Render("index failed: "+m.err.Error()) + "\n"
		}
		return doneStyle.Render("index complete for "+m.projectRoot) + "\n"
	}
	return fmt.Sprintf("%s indexing %s...\n", m.spinner.View(), m.projectRoot)
}
