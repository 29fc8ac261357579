/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var wait time.Duration

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send <line>...",
	Short: "Sends lines to the broker and prints what comes back.",
	Long: `Connects to the broker, sends each argument as one line and prints the reply
to every command before sending the next one. With --wait, keeps printing
deliveries for that long after the last reply.

  pushy-cli send "/reg 1 alice p1" "/id 1 p1" "/pub hello world"
  pushy-cli send "/id 2 p2" "/sub 1" --wait 1m`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		conn, err := net.DialTimeout("tcp", serverAddress, timeout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Unable to connect to %s: %v\n", serverAddress, err)
			return
		}
		defer conn.Close()

		if err := sendLines(cmd.OutOrStdout(), conn, args, timeout, wait); err != nil {
			fmt.Fprintf(os.Stderr, "Error talking to %s: %v\n", serverAddress, err)
		}
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().DurationVarP(&wait, "wait", "w", 0, "Keep printing deliveries for this long after the last reply")
}

// sendLines writes each line, waiting up to replyTimeout for the reply to a
// command before the next write so two commands never share one read on
// the broker. Lines that are not commands get no reply and are not waited on.
func sendLines(out io.Writer, conn net.Conn, lines []string, replyTimeout, wait time.Duration) error {
	reader := bufio.NewReader(conn)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, err := io.WriteString(conn, line+"\n"); err != nil {
			return fmt.Errorf("failed to send %q: %w", line, err)
		}
		if !strings.HasPrefix(line, "/") {
			continue
		}
		reply, err := readLine(conn, reader, replyTimeout)
		if err != nil {
			return fmt.Errorf("no reply to %q: %w", line, err)
		}
		fmt.Fprintln(out, reply)
	}

	if wait <= 0 {
		return nil
	}
	deadline := time.Now().Add(wait)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil
		}
		line, err := readLine(conn, reader, remaining)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return nil
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out, "Disconnected from pushy server")
				return nil
			}
			return err
		}
		fmt.Fprintln(out, line)
	}
}

func readLine(conn net.Conn, reader *bufio.Reader, timeout time.Duration) (string, error) {
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
