package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"

	"clubportal/internal/realtime"
	"clubportal/internal/shared/eventbus"
	"clubportal/internal/shared/profile"

	"github.com/fasthttp/websocket"
	"github.com/spf13/cobra"
)

var exitOnReload bool

func init() {
	watchCmd.Flags().BoolVar(&exitOnReload, "exit-on-reload", false, "stop watching once the edge asks views to reload")
	RootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow session events of this profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, _, err := websocket.DefaultDialer.Dial(
			client.websocketURL("/ws/session"),
			http.Header{profile.HeaderName: {client.profile}},
		)
		if err != nil {
			return fmt.Errorf("cannot open session channel: %w", err)
		}
		defer conn.Close()

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)
		defer signal.Stop(interrupt)
		go func() {
			<-interrupt
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			_ = conn.Close()
		}()

		fmt.Fprintln(cmd.ErrOrStderr(), "Watching session events, Ctrl-C to stop")
		return watch(conn, cmd.OutOrStdout(), exitOnReload)
	},
}

// frameReader is the part of a websocket connection watch needs.
type frameReader interface {
	ReadJSON(v interface{}) error
}

func watch(conn frameReader, out io.Writer, stopOnReload bool) error {
	for {
		var msg realtime.Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("session channel closed: %w", err)
		}
		if asJSON {
			if err := printJSON(out, msg); err != nil {
				return err
			}
		} else {
			fmt.Fprintln(out, describe(msg))
		}
		if msg.Type == realtime.MessageTypeReload && stopOnReload {
			return nil
		}
	}
}

func describe(msg realtime.Message) string {
	switch msg.Type {
	case realtime.MessageTypeReload:
		return "Session ended, views are reloading"
	case eventbus.EventTypeSessionLoggedIn:
		return "Signed in"
	case eventbus.EventTypeSessionLoggedOut:
		return "Signed out"
	case eventbus.EventTypeSessionExpired:
		return "Session expired"
	case eventbus.EventTypeSessionDecodeFailed:
		return "Session token has no readable expiry"
	default:
		return msg.Type
	}
}
