// chat - Command line client for the chat-app backend
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bonssss/chat-app/internal/backend"
	"github.com/bonssss/chat-app/internal/backend/rest"
	"github.com/bonssss/chat-app/internal/models"
	"github.com/bonssss/chat-app/internal/viewmodel"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	baseURL := os.Getenv("CHAT_APP_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.WarnLevel).
		With().Timestamp().Logger()

	client := rest.NewClient(baseURL)
	if s := loadSession(); s != nil {
		client.Resume(s)
	}

	ctx := context.Background()
	cmd := os.Args[1]

	switch cmd {
	case "health":
		resp, err := client.Health(ctx)
		exitOnError(err)
		printJSON(resp)

	case "signup":
		if len(os.Args) < 4 {
			fmt.Fprintln(os.Stderr, "Usage: chat signup <email> <password>")
			os.Exit(1)
		}
		flow := viewmodel.NewAuthFlow(client, logger)
		session, fieldErrs, err := flow.SignUp(ctx, os.Args[2], os.Args[3], os.Args[3])
		exitOnFieldErrors(fieldErrs)
		exitOnError(err)
		exitOnError(saveSession(session))
		fmt.Printf("Signed up as %s (%s)\n", session.Email, session.UserID)

	case "signin":
		if len(os.Args) < 4 {
			fmt.Fprintln(os.Stderr, "Usage: chat signin <email> <password>")
			os.Exit(1)
		}
		flow := viewmodel.NewAuthFlow(client, logger)
		session, fieldErrs, err := flow.SignIn(ctx, os.Args[2], os.Args[3])
		exitOnFieldErrors(fieldErrs)
		exitOnError(err)
		exitOnError(saveSession(session))
		fmt.Printf("Signed in as %s (%s)\n", session.Email, session.UserID)

	case "signout":
		flow := viewmodel.NewAuthFlow(client, logger)
		_ = flow.SignOut(ctx)
		clearSession()
		fmt.Println("Signed out")

	case "whoami":
		session, err := client.Auth().User(ctx)
		exitOnError(err)
		fmt.Printf("%s (%s)\n", session.Email, session.UserID)

	case "conversations":
		session := requireSession(client)
		vm := viewmodel.NewConversations(client, *session, logger)
		defer vm.Close()
		exitOnError(vm.Load(ctx))
		conversations := vm.List()
		if len(conversations) == 0 {
			fmt.Println("No conversations yet")
			return
		}
		for _, c := range conversations {
			ts := c.LastMessageTime.Local().Format("2006-01-02 15:04")
			fmt.Printf("[%s] %s  %s\n", ts, c.ContactID, c.LastMessage)
		}

	case "send":
		if len(os.Args) < 4 {
			fmt.Fprintln(os.Stderr, "Usage: chat send <contact_id> <message>")
			os.Exit(1)
		}
		session := requireSession(client)
		vm, err := viewmodel.NewChat(client, *session, os.Args[2], logger)
		exitOnError(err)
		defer vm.Close()
		vm.SetDraft(strings.Join(os.Args[3:], " "))
		exitOnError(vm.Send(ctx))
		fmt.Println("Sent")

	case "chat":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: chat chat <contact_id>")
			os.Exit(1)
		}
		session := requireSession(client)
		exitOnError(runChat(ctx, client, *session, os.Args[2], logger))

	case "profile":
		session := requireSession(client)
		vm := viewmodel.NewProfileEditor(client, *session, logger)
		exitOnError(vm.Load(ctx))
		printJSON(vm.Profile())

	case "profile-set":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: chat profile-set <username> [full_name] [bio]")
			os.Exit(1)
		}
		session := requireSession(client)
		vm := viewmodel.NewProfileEditor(client, *session, logger)
		exitOnError(vm.Load(ctx))
		vm.BeginEdit()
		vm.Username = os.Args[2]
		if len(os.Args) > 3 {
			vm.FullName = os.Args[3]
		}
		if len(os.Args) > 4 {
			vm.Bio = strings.Join(os.Args[4:], " ")
		}
		exitOnError(vm.Save(ctx))
		printJSON(vm.Profile())

	case "avatar":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: chat avatar <image_file>")
			os.Exit(1)
		}
		session := requireSession(client)
		data, err := os.ReadFile(os.Args[2])
		exitOnError(err)
		ext := strings.TrimPrefix(filepath.Ext(os.Args[2]), ".")
		if ext == "" {
			ext = "png"
		}
		vm := viewmodel.NewProfileEditor(client, *session, logger)
		exitOnError(vm.Load(ctx))
		vm.BeginEdit()
		exitOnError(vm.UpdateAvatar(ctx, data, ext))
		exitOnError(vm.Save(ctx))
		fmt.Println(vm.AvatarURL)

	case "help", "--help", "-h":
		usage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

// runChat runs the interactive chat screen: history, live incoming
// messages, and a stdin send loop.
func runChat(ctx context.Context, client backend.Client, session backend.Session, contactID string, logger zerolog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	vm, err := viewmodel.NewChat(client, session, contactID, logger)
	if err != nil {
		return err
	}
	defer vm.Close()

	if err := vm.Load(ctx); err != nil {
		return err
	}

	contact := vm.Contact()
	fmt.Printf("Chatting with %s. Type a message and press enter, or /quit to leave.\n\n", contact.DisplayName())

	history := vm.Messages()
	for i := len(history) - 1; i >= 0; i-- {
		printMessage(history[i], session.UserID, contact.DisplayName())
	}

	// A dedicated subscription for display. The view-model keeps its own
	// feed for state; this one only drives the terminal.
	sub, err := client.Realtime().SubscribeMessages(ctx)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	go func() {
		for msg := range sub.Events() {
			if !msg.Between(session.UserID, contactID) {
				continue
			}
			printMessage(msg, session.UserID, contact.DisplayName())
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "/quit" {
			return nil
		}
		vm.SetDraft(line)
		if err := vm.Send(ctx); err != nil {
			if err == viewmodel.ErrEmptyMessage {
				continue
			}
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}
	return scanner.Err()
}

func printMessage(msg models.Message, selfID, contactName string) {
	from := contactName
	if msg.SenderID == selfID {
		from = "me"
	}
	ts := msg.CreatedAt.Local().Format("15:04:05")
	fmt.Printf("[%s] %s: %s\n", ts, from, msg.Text)
}

// requireSession exits when no session is saved.
func requireSession(client *rest.Client) *backend.Session {
	session := client.Session()
	if session == nil {
		fmt.Fprintln(os.Stderr, "Not signed in. Run: chat signin <email> <password>")
		os.Exit(1)
	}
	return session
}

func usage() {
	fmt.Println(`chat - Direct message client

Usage: chat <command> [options]

Commands:
  signup <email> <password>              Create an account
  signin <email> <password>              Sign in
  signout                                Sign out
  whoami                                 Show the signed-in account
  conversations                          List conversations
  chat <contact_id>                      Interactive chat with a contact
  send <contact_id> <message>            Send a single message
  profile                                Show your profile
  profile-set <username> [name] [bio]    Update your profile
  avatar <image_file>                    Upload a profile image
  health                                 Check server health

Environment:
  CHAT_APP_URL      Server URL (default: http://localhost:8080)
  CHAT_APP_CONFIG   Config directory (default: ~/.chat-app)`)
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func exitOnFieldErrors(fieldErrs viewmodel.FieldErrors) {
	if fieldErrs.Valid() {
		return
	}
	for field, msg := range fieldErrs {
		fmt.Fprintf(os.Stderr, "%s: %s\n", field, msg)
	}
	os.Exit(1)
}

func printJSON(v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}
