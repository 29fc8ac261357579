package cmd

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Starts an interactive session in a tview-based interface",
	Long: `Connects to the broker and opens a two-pane interface. Lines typed at the
bottom are sent verbatim; everything the broker sends shows up above.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		conn, err := net.DialTimeout("tcp", serverAddress, timeout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Unable to connect to %s: %v\n", serverAddress, err)
			os.Exit(1)
		}
		defer conn.Close()

		if err := runChatUITview(conn); err != nil {
			fmt.Fprintf(os.Stderr, "Chat UI error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChatUITview(conn net.Conn) error {
	app := tview.NewApplication()

	textView := tview.NewTextView().
		SetDynamicColors(true).
		SetWordWrap(true).
		SetScrollable(true).
		ScrollToEnd()

	inputField := tview.NewInputField().
		SetLabel("pushy ❯❯ ").
		SetFieldWidth(0).
		SetAcceptanceFunc(tview.InputFieldMaxLength(4000))

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(textView, 0, 1, false).
		AddItem(inputField, 1, 0, true)

	app.SetRoot(flex, true).SetFocus(inputField)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fmt.Fprintf(textView, "[green]Connected to %s. Start sending messages (Ctrl+C to exit)\n", conn.RemoteAddr())

	go func() {
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			line := scanner.Text()
			app.QueueUpdateDraw(func() {
				fmt.Fprintf(textView, "[white][%s] %s\n", time.Now().Format("15:04:05"), tview.Escape(line))
				textView.ScrollToEnd()
			})
		}
		if ctx.Err() != nil {
			return
		}
		app.QueueUpdateDraw(func() {
			fmt.Fprintln(textView, "[red]Disconnected from pushy server.")
		})
	}()

	inputField.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		text := strings.TrimSpace(inputField.GetText())
		if text == "" {
			return
		}
		if _, err := conn.Write([]byte(text + "\n")); err != nil {
			fmt.Fprintf(textView, "[red]Failed to send message: %v\n", err)
		}
		inputField.SetText("")
	})

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlC {
			cancel()
			app.Stop()
			return nil
		}
		return event
	})

	if err := app.Run(); err != nil {
		cancel()
		return err
	}
	return nil
}
